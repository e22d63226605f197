package receiptRepository

import (
	"context"
	"database/sql"

	"ReceiptTracker/internal/entity"
	contextPkg "ReceiptTracker/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type LineItemDB struct {
	ID         sql.NullString  `db:"id"`
	ReceiptID  sql.NullString  `db:"receipt_id"`
	Name       sql.NullString  `db:"name"`
	Quantity   sql.NullInt64   `db:"quantity"`
	UnitPrice  sql.NullFloat64 `db:"unit_price"`
	TotalPrice sql.NullFloat64 `db:"total_price"`
}

func (r *lineItemRepository) ListByReceipt(c context.Context, receiptID string) ([]entity.LineItem, error) {
	requestID := contextPkg.GetRequestID(c)

	argsKV := map[string]interface{}{
		"receipt_id": receiptID,
	}

	query, args, err := sqlx.Named(queryListLineItemsByReceipt, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListByReceipt named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	rows, err := r.q.QueryxContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListByReceipt execution err")
		return nil, err
	}
	defer rows.Close()

	items := make([]entity.LineItem, 0)
	for rows.Next() {
		var row LineItemDB
		if err := rows.StructScan(&row); err != nil {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("ListByReceipt scan err")
			return nil, err
		}
		items = append(items, entity.LineItem{
			ID:         row.ID.String,
			ReceiptID:  row.ReceiptID.String,
			Name:       row.Name.String,
			Quantity:   int(row.Quantity.Int64),
			UnitPrice:  row.UnitPrice.Float64,
			TotalPrice: row.TotalPrice.Float64,
		})
	}

	return items, rows.Err()
}

// ReplaceForReceipt swaps a receipt's line items wholesale. Meant to run
// inside a transaction client so a failed insert does not leave the receipt
// without items.
func (r *lineItemRepository) ReplaceForReceipt(c context.Context, receiptID string, items []entity.LineItem) error {
	requestID := contextPkg.GetRequestID(c)

	query, args, err := sqlx.Named(queryDeleteLineItemsByReceipt, map[string]interface{}{
		"receipt_id": receiptID,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ReplaceForReceipt delete query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ReplaceForReceipt delete execution err")
		return err
	}

	for _, item := range items {
		argsKV := map[string]interface{}{
			"id":          item.ID,
			"receipt_id":  receiptID,
			"name":        item.Name,
			"quantity":    item.Quantity,
			"unit_price":  item.UnitPrice,
			"total_price": item.TotalPrice,
		}

		query, args, err := sqlx.Named(queryCreateLineItem, argsKV)
		if err != nil {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("ReplaceForReceipt insert query preparation err")
			return err
		}
		query = r.q.Rebind(query)

		if _, err := r.q.ExecContext(c, query, args...); err != nil {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("ReplaceForReceipt insert execution err")
			return err
		}
	}

	return nil
}
