package receiptparse

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	itemQtyPattern    = regexp.MustCompile(`(?i)^([A-Za-z][A-Za-z\s.,&-]+?)\s+(?:Pcs?|REGULAR)\s+(\d+)\s+([0-9,]+\.?\d{0,2})$`)
	itemSimplePattern = regexp.MustCompile(`^([A-Za-z][A-Za-z\s.,&-]+?)\s+([0-9,]+\.?\d{0,2})$`)

	itemSkipWords = []string{"item name", "subtotal", "total", "discount", "settled", "thank you", "receipt", "===="}
)

// extractLineItems parses "name [qty] price" rows from the receipt body.
// Amounts under 10 are dropped as noise (loyalty points, per-unit tax rows).
func extractLineItems(text string) []LineItem {
	var items []LineItem

	for _, line := range nonEmptyLines(text) {
		if containsAnyFold(line, itemSkipWords) {
			continue
		}
		if len(line) < 5 || !strings.ContainsAny(line, "0123456789") {
			continue
		}

		if m := itemQtyPattern.FindStringSubmatch(line); m != nil {
			qty, err := strconv.Atoi(m[2])
			if err != nil || qty <= 0 {
				continue
			}
			total, err := parsePrice(m[3])
			if err != nil || total < 10 {
				continue
			}
			items = append(items, LineItem{
				Name:       titleCase(m[1]),
				Quantity:   qty,
				UnitPrice:  total / float64(qty),
				TotalPrice: total,
			})
			continue
		}

		if m := itemSimplePattern.FindStringSubmatch(line); m != nil {
			total, err := parsePrice(m[2])
			if err != nil || total < 10 {
				continue
			}
			items = append(items, LineItem{
				Name:       titleCase(m[1]),
				Quantity:   1,
				UnitPrice:  total,
				TotalPrice: total,
			})
		}
	}

	return items
}

func parsePrice(raw string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
}

func titleCase(s string) string {
	words := strings.Fields(strings.TrimSpace(s))
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
