package receiptparse

import (
	"regexp"
	"strconv"
	"strings"
)

// Parse runs the rule-based field extraction over recognized receipt text.
// Text shorter than a handful of characters is treated as no extraction at
// all rather than an error; the OCR stage already reported its confidence.
func Parse(text string) ParsedReceipt {
	parsed := ParsedReceipt{RawText: text}
	if len(strings.TrimSpace(text)) < 10 {
		return parsed
	}

	parsed.Vendor = extractVendor(text)
	parsed.Amount = extractAmount(text)
	parsed.Date = extractDate(text)
	parsed.Category = ClassifyCategory(parsed.Vendor, text)
	parsed.LineItems = extractLineItems(text)

	return parsed
}

var (
	recipientLinePattern = regexp.MustCompile(`(?i)recipient\s+details\s*(.+)`)
	companyPatterns      = []*regexp.Regexp{
		regexp.MustCompile(`(?i)merchant[:\s]+([A-Z][A-Z\s&.-]+(?:LTD|LIMITED|INC|COMPANY|CORP|PLC)?)`),
		regexp.MustCompile(`(?i)payee[:\s]+([A-Z][A-Z\s&.-]+(?:LTD|LIMITED|INC|COMPANY|CORP|PLC)?)`),
		regexp.MustCompile(`([A-Z][A-Za-z\s&.-]+(?:Corporation|Corp|Ltd|Limited|Inc|Company|LLC|PLC))`),
		regexp.MustCompile(`([A-Z][A-Z\s]{2,20}(?:LTD|LIMITED|INC|COMPANY|CORP|PLC))`),
	}
	vendorSkipWords = []string{"invoice", "receipt", "transaction", "successful", "date", "bill to", "session", "@"}
)

func extractVendor(text string) string {
	lines := nonEmptyLines(text)

	// Payment-app receipts put the counterparty after "Recipient Details".
	for _, line := range lines {
		if m := recipientLinePattern.FindStringSubmatch(line); m != nil {
			vendor := strings.TrimSpace(m[1])
			if len(vendor) > 3 {
				return vendor
			}
		}
	}

	for _, pattern := range companyPatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			vendor := strings.TrimSpace(strings.SplitN(m[1], "\n", 2)[0])
			if len(vendor) > 3 && !strings.Contains(strings.ToLower(vendor), "bank") {
				return vendor
			}
		}
	}

	// Fallback: an early mostly-uppercase line is usually the letterhead.
	limit := len(lines)
	if limit > 5 {
		limit = 5
	}
	for _, line := range lines[:limit] {
		if containsAnyFold(line, vendorSkipWords) {
			continue
		}
		if len(line) <= 3 || len(line) >= 50 {
			continue
		}
		if uppercaseRatio(line) > 0.5 {
			return strings.TrimSpace(line)
		}
	}

	return ""
}

var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)amount\s+due\s+\$([0-9,]+\.?\d{0,2})\s*USD`),
	regexp.MustCompile(`(?i)\$([0-9,]+\.?\d{0,2})\s*USD\s+due`),
	regexp.MustCompile(`(?i)total\s+\$([0-9,]+\.?\d{0,2})`),
	regexp.MustCompile(`(?i)amount\s+due\s+\$([0-9,]+\.?\d{0,2})`),
	regexp.MustCompile(`₦\s*([0-9,]+\.?\d{0,2})`),
	regexp.MustCompile(`#([0-9,]+\.?\d{0,2})`),
	regexp.MustCompile(`(?i)([0-9,]+\.?\d{0,2})\s*naira`),
	regexp.MustCompile(`(?i)total[:\s]*\$?([0-9,]+\.?\d{0,2})`),
	regexp.MustCompile(`(?i)amount[:\s]*\$?([0-9,]+\.?\d{0,2})`),
}

// extractAmount collects every plausible money figure and keeps the largest;
// on receipts the grand total dominates subtotals and unit prices. Values
// outside 0.01..10,000,000 are discarded as IDs misread as money.
func extractAmount(text string) float64 {
	var best float64
	for _, pattern := range amountPatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			raw := strings.ReplaceAll(m[1], ",", "")
			amount, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			if amount < 0.01 || amount > 10_000_000 {
				continue
			}
			if amount > best {
				best = amount
			}
		}
	}
	return best
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)((?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`(?i)((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)-?\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\s+\d{1,2}:\d{2}:\d{2})`),
	regexp.MustCompile(`(?i)((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s*-?\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4})`),
	regexp.MustCompile(`(\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{2,4})`),
	regexp.MustCompile(`(\d{4}-\d{1,2}-\d{1,2})`),
	regexp.MustCompile(`(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`),
}

func extractDate(text string) string {
	for _, pattern := range datePatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func containsAnyFold(s string, words []string) bool {
	lower := strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func uppercaseRatio(line string) float64 {
	compact := strings.ReplaceAll(line, " ", "")
	if compact == "" {
		return 0
	}
	var upper int
	for _, r := range compact {
		if r >= 'A' && r <= 'Z' {
			upper++
		}
	}
	return float64(upper) / float64(len(compact))
}
