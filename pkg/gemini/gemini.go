package gemini

import (
	"context"
	"errors"
	"os"
	"strings"

	"ReceiptTracker/pkg/receiptparse"

	"github.com/google/generative-ai-go/genai"
	jsoniter "github.com/json-iterator/go"
	"google.golang.org/api/option"
)

// IGemini extracts structured receipt fields with a vision model. Used as a
// fallback when rule-based extraction comes back empty.
type IGemini interface {
	ExtractReceiptFields(ctx context.Context, imageData []byte, mimeType string) (*receiptparse.ParsedReceipt, error)
}

type geminiClient struct {
	apiKey    string
	modelName string
	client    *genai.Client
}

const extractionPrompt = `
Extract all information from this receipt or invoice image and answer in JSON.
Expected output format:
{
	"vendor": "MERCHANT OR COMPANY NAME",
	"amount": 7000.00,
	"date": "2025-11-07",
	"category": "groceries|restaurant|retail|technology|utilities|financial|fuel|transportation|personal|business|other",
	"line_items": [
		{"name": "Item name", "quantity": 1, "unit_price": 500.0, "total_price": 500.0}
	]
}
The amount is the grand total paid. Answer with ONLY the JSON, no extra text.
`

func NewGeminiClient() (IGemini, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")

	modelName := os.Getenv("GEMINI_MODEL_NAME")
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	if modelName == "" {
		modelName = "gemini-pro-vision"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &geminiClient{
		apiKey:    apiKey,
		modelName: modelName,
		client:    client,
	}, nil
}

func (g *geminiClient) ExtractReceiptFields(ctx context.Context, imageData []byte, mimeType string) (*receiptparse.ParsedReceipt, error) {
	model := g.client.GenerativeModel(g.modelName)

	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	img := genai.ImageData(strings.TrimPrefix(mimeType, "image/"), imageData)
	res, err := model.GenerateContent(ctx, genai.Text(extractionPrompt), img)
	if err != nil {
		return nil, err
	}

	if len(res.Candidates) == 0 || len(res.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("no response from Gemini API")
	}

	text, ok := res.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, errors.New("unexpected response format from Gemini API")
	}

	return parseExtractionResponse(string(text))
}

// parseExtractionResponse slices the first {...} out of the model reply; the
// model tends to wrap JSON in prose or code fences no matter the prompt.
func parseExtractionResponse(response string) (*receiptparse.ParsedReceipt, error) {
	jsonStart := strings.Index(response, "{")
	jsonEnd := strings.LastIndex(response, "}")

	if jsonStart == -1 || jsonEnd == -1 || jsonEnd <= jsonStart {
		return nil, errors.New("cannot find valid JSON in response")
	}

	var parsed receiptparse.ParsedReceipt
	if err := jsoniter.UnmarshalFromString(response[jsonStart:jsonEnd+1], &parsed); err != nil {
		return nil, err
	}

	if parsed.Empty() {
		return nil, errors.New("failed to extract receipt fields")
	}

	if parsed.Category == "" {
		parsed.Category = receiptparse.CategoryOther
	}

	return &parsed, nil
}

func (g *geminiClient) Close() {
	if g.client != nil {
		g.client.Close()
	}
}
