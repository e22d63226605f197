package receiptparse

// LineItem is one purchased item parsed off a receipt body.
type LineItem struct {
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
}

// ParsedReceipt holds the structured fields extracted from recognized text.
// Any field the rules cannot find stays at its zero value; the caller decides
// whether to fall back to an AI extractor.
type ParsedReceipt struct {
	Vendor    string     `json:"vendor"`
	Amount    float64    `json:"amount"`
	Date      string     `json:"date"`
	Category  string     `json:"category"`
	LineItems []LineItem `json:"line_items"`
	RawText   string     `json:"raw_text"`
}

// Empty reports whether rule extraction produced nothing a caller could act
// on, which is the trigger for the AI-assisted fallback.
func (p ParsedReceipt) Empty() bool {
	return p.Vendor == "" && p.Amount == 0
}
