package entity

import "time"

type Receipt struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	FileHandle  string    `db:"file_handle" json:"-"`
	FileName    string    `db:"file_name" json:"file_name"`
	ContentType string    `db:"content_type" json:"content_type"`
	Vendor      string    `db:"vendor" json:"vendor,omitempty"`
	Amount      float64   `db:"amount" json:"amount,omitempty"`
	Date        string    `db:"date" json:"date,omitempty"`
	Category    string    `db:"category" json:"category,omitempty"`
	RawText     string    `db:"raw_text" json:"raw_text,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	LineItems []LineItem `db:"-" json:"line_items"`
}

type LineItem struct {
	ID         string  `db:"id" json:"id"`
	ReceiptID  string  `db:"receipt_id" json:"receipt_id"`
	Name       string  `db:"name" json:"name"`
	Quantity   int     `db:"quantity" json:"quantity"`
	UnitPrice  float64 `db:"unit_price" json:"unit_price"`
	TotalPrice float64 `db:"total_price" json:"total_price"`
}

// MaxReceiptsPerUser caps stored receipts per account; the upload endpoint
// returns 429 beyond it.
const MaxReceiptsPerUser = 10
