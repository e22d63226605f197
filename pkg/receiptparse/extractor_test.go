package receiptparse

import "testing"

const transferReceipt = `Transaction Successful
OPay
Recipient Details SHOPRITE STORES LTD
Amount ₦5,250.00
Date: 2024-03-15
`

const storeReceipt = `STARLIGHT CAFE
123 Allen Avenue
Item Name Qty Price
Bread Loaf Pcs 2 1,500.00
Milk 850.50
Total 2,350.50
March 15, 2024
Thank you for your visit
`

func TestParseTransferReceipt(t *testing.T) {
	parsed := Parse(transferReceipt)

	if parsed.Vendor != "SHOPRITE STORES LTD" {
		t.Fatalf("unexpected vendor: %q", parsed.Vendor)
	}
	if parsed.Amount != 5250.00 {
		t.Fatalf("unexpected amount: %v", parsed.Amount)
	}
	if parsed.Date != "2024-03-15" {
		t.Fatalf("unexpected date: %q", parsed.Date)
	}
	if parsed.Category != "groceries" {
		t.Fatalf("unexpected category: %q", parsed.Category)
	}
	if parsed.Empty() {
		t.Fatalf("parsed receipt should not be empty")
	}
}

func TestParseStoreReceipt(t *testing.T) {
	parsed := Parse(storeReceipt)

	if parsed.Vendor != "STARLIGHT CAFE" {
		t.Fatalf("unexpected vendor: %q", parsed.Vendor)
	}
	if parsed.Amount != 2350.50 {
		t.Fatalf("unexpected amount: %v", parsed.Amount)
	}
	if parsed.Category != "restaurant" {
		t.Fatalf("unexpected category: %q", parsed.Category)
	}
	if parsed.Date != "March 15, 2024" {
		t.Fatalf("unexpected date: %q", parsed.Date)
	}

	if len(parsed.LineItems) != 2 {
		t.Fatalf("unexpected line items: %+v", parsed.LineItems)
	}
	first := parsed.LineItems[0]
	if first.Name != "Bread Loaf" || first.Quantity != 2 || first.TotalPrice != 1500 || first.UnitPrice != 750 {
		t.Fatalf("unexpected first item: %+v", first)
	}
	second := parsed.LineItems[1]
	if second.Name != "Milk" || second.Quantity != 1 || second.TotalPrice != 850.50 {
		t.Fatalf("unexpected second item: %+v", second)
	}
}

func TestParseShortTextIsEmpty(t *testing.T) {
	parsed := Parse("HELLO")

	if !parsed.Empty() {
		t.Fatalf("short text should parse to an empty receipt: %+v", parsed)
	}
	if parsed.RawText != "HELLO" {
		t.Fatalf("raw text not preserved: %q", parsed.RawText)
	}
}

func TestExtractAmountKeepsLargestInRange(t *testing.T) {
	text := `Subtotal $12.00
Total $45.99
Reference 99999999999
`
	if got := extractAmount(text); got != 45.99 {
		t.Fatalf("extractAmount() = %v", got)
	}
}

func TestClassifyCategory(t *testing.T) {
	cases := []struct {
		vendor string
		text   string
		want   string
	}{
		{"Shoprite Stores", "", "groceries"},
		{"MTN Communications", "", "utilities"},
		{"John Doe", "", "personal"},
		{"", "paid via opay wallet", "financial"},
		{"", "no signal here", CategoryOther},
	}
	for _, tc := range cases {
		if got := ClassifyCategory(tc.vendor, tc.text); got != tc.want {
			t.Fatalf("ClassifyCategory(%q, %q) = %q, want %q", tc.vendor, tc.text, got, tc.want)
		}
	}
}
