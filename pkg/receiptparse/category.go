package receiptparse

import "strings"

const CategoryOther = "other"

// Category keyword tables, vendor-name matches first since they are the more
// precise signal.
var vendorCategories = []struct {
	category string
	keywords []string
}{
	{"technology", []string{"railway", "hosting", "domain", "server", "cloud", "software", "saas", "vercel", "netlify"}},
	{"electronics", []string{"electro", "galactica", "electronics", "computer", "tech", "gadget"}},
	{"groceries", []string{"shoprite", "grocery", "supermarket", "food", "market", "stores", "spar", "provision"}},
	{"retail", []string{"konga", "jumia", "amazon", "shop", "mall", "boutique", "shopping", "clothing", "fashion"}},
	{"utilities", []string{"mtn", "airtel", "glo", "communications", "telecom", "electric", "water", "internet", "phone"}},
	{"financial", []string{"bank", "fintech", "mobile money", "wallet"}},
	{"restaurant", []string{"restaurant", "cafe", "dining", "bar", "pizza", "kitchen", "eatery", "grill"}},
	{"fuel", []string{"fuel", "petrol", "filling station", "mobil", "oando"}},
	{"transportation", []string{"uber", "bolt", "taxi", "transport", "airline", "travel"}},
	{"pharmacy", []string{"pharmacy", "medical", "drug", "hospital", "clinic"}},
	{"education", []string{"school", "university", "education", "training", "course"}},
}

var textCategories = []struct {
	category string
	keywords []string
}{
	{"financial", []string{"opay", "mobile money", "wallet", "payment app"}},
	{"business", []string{"company ltd", "limited", "corporation", "enterprise"}},
}

var companyIndicators = []string{"ltd", "limited", "inc", "corp", "company", "plc", "stores", "bank", "communications"}

// ClassifyCategory buckets a receipt by vendor first, then by full-text
// keywords. A multi-word vendor with no company indicator reads as a transfer
// to a person.
func ClassifyCategory(vendor, text string) string {
	vendorLower := strings.ToLower(vendor)
	textLower := strings.ToLower(text)

	for _, entry := range vendorCategories {
		for _, keyword := range entry.keywords {
			if strings.Contains(vendorLower, keyword) {
				return entry.category
			}
		}
	}

	if vendor != "" && len(strings.Fields(vendor)) >= 2 && !containsAnyFold(vendor, companyIndicators) {
		return "personal"
	}

	for _, entry := range textCategories {
		for _, keyword := range entry.keywords {
			if strings.Contains(textLower, keyword) {
				return entry.category
			}
		}
	}

	return CategoryOther
}
