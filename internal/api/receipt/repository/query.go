package receiptRepository

const (
	queryCreateReceipt = `
INSERT INTO receipts (id, user_id, file_handle, file_name, content_type, vendor, amount, date, category, raw_text, created_at, updated_at)
VALUES (:id, :user_id, :file_handle, :file_name, :content_type, :vendor, :amount, :date, :category, :raw_text, :created_at, :updated_at)`

	queryGetReceiptByID = `
SELECT id, user_id, file_handle, file_name, content_type, vendor, amount, date, category, raw_text, created_at, updated_at
FROM receipts
    WHERE id = :id`

	queryListReceiptsByUser = `
SELECT id, user_id, file_handle, file_name, content_type, vendor, amount, date, category, raw_text, created_at, updated_at
FROM receipts
    WHERE user_id = :user_id
ORDER BY created_at DESC`

	queryCountReceiptsByUser = `
SELECT COUNT(*) AS total
FROM receipts
    WHERE user_id = :user_id`

	queryUpdateReceipt = `
UPDATE receipts
SET vendor = :vendor,
    amount = :amount,
    date = :date,
    category = :category,
    raw_text = :raw_text,
    updated_at = :updated_at
WHERE id = :id`

	queryDeleteReceipt = `
DELETE FROM receipts
WHERE id = :id`

	queryListLineItemsByReceipt = `
SELECT id, receipt_id, name, quantity, unit_price, total_price
FROM line_items
    WHERE receipt_id = :receipt_id
ORDER BY id`

	queryDeleteLineItemsByReceipt = `
DELETE FROM line_items
WHERE receipt_id = :receipt_id`

	queryCreateLineItem = `
INSERT INTO line_items (id, receipt_id, name, quantity, unit_price, total_price)
VALUES (:id, :receipt_id, :name, :quantity, :unit_price, :total_price)`
)
