package receiptRepository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ReceiptTracker/internal/api/receipt"
	"ReceiptTracker/internal/entity"
	contextPkg "ReceiptTracker/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ReceiptDB struct {
	ID          sql.NullString  `db:"id"`
	UserID      sql.NullString  `db:"user_id"`
	FileHandle  sql.NullString  `db:"file_handle"`
	FileName    sql.NullString  `db:"file_name"`
	ContentType sql.NullString  `db:"content_type"`
	Vendor      sql.NullString  `db:"vendor"`
	Amount      sql.NullFloat64 `db:"amount"`
	Date        sql.NullString  `db:"date"`
	Category    sql.NullString  `db:"category"`
	RawText     sql.NullString  `db:"raw_text"`
	CreatedAt   sql.NullTime    `db:"created_at"`
	UpdatedAt   sql.NullTime    `db:"updated_at"`
}

func (r *receiptRepository) CreateReceipt(c context.Context, rec entity.Receipt) error {
	requestID := contextPkg.GetRequestID(c)
	now := time.Now()
	argsKV := map[string]interface{}{
		"id":           rec.ID,
		"user_id":      rec.UserID,
		"file_handle":  rec.FileHandle,
		"file_name":    rec.FileName,
		"content_type": rec.ContentType,
		"vendor":       rec.Vendor,
		"amount":       rec.Amount,
		"date":         rec.Date,
		"category":     rec.Category,
		"raw_text":     rec.RawText,
		"created_at":   now,
		"updated_at":   now,
	}

	query, args, err := sqlx.Named(queryCreateReceipt, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateReceipt")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating receipt")
		return err
	}

	return nil
}

func (r *receiptRepository) GetByID(c context.Context, id string) (entity.Receipt, error) {
	requestID := contextPkg.GetRequestID(c)
	var row ReceiptDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetReceiptByID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByID named query preparation err")
		return entity.Receipt{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Receipt{}, receipt.ErrReceiptNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByID execution err")
		return entity.Receipt{}, err
	}

	return r.makeReceipt(row), nil
}

func (r *receiptRepository) ListByUser(c context.Context, userID string) ([]entity.Receipt, error) {
	requestID := contextPkg.GetRequestID(c)

	argsKV := map[string]interface{}{
		"user_id": userID,
	}

	query, args, err := sqlx.Named(queryListReceiptsByUser, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListByUser named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	rows, err := r.q.QueryxContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListByUser execution err")
		return nil, err
	}
	defer rows.Close()

	receipts := make([]entity.Receipt, 0)
	for rows.Next() {
		var row ReceiptDB
		if err := rows.StructScan(&row); err != nil {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("ListByUser scan err")
			return nil, err
		}
		receipts = append(receipts, r.makeReceipt(row))
	}

	return receipts, rows.Err()
}

func (r *receiptRepository) CountByUser(c context.Context, userID string) (int, error) {
	requestID := contextPkg.GetRequestID(c)

	argsKV := map[string]interface{}{
		"user_id": userID,
	}

	query, args, err := sqlx.Named(queryCountReceiptsByUser, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CountByUser named query preparation err")
		return 0, err
	}

	query = r.q.Rebind(query)

	var total int
	if err := r.q.QueryRowxContext(c, query, args...).Scan(&total); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CountByUser execution err")
		return 0, err
	}

	return total, nil
}

func (r *receiptRepository) UpdateReceipt(c context.Context, rec entity.Receipt) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":         rec.ID,
		"vendor":     rec.Vendor,
		"amount":     rec.Amount,
		"date":       rec.Date,
		"category":   rec.Category,
		"raw_text":   rec.RawText,
		"updated_at": time.Now(),
	}

	query, args, err := sqlx.Named(queryUpdateReceipt, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateReceipt named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateReceipt execution err")
		return err
	}

	return nil
}

func (r *receiptRepository) DeleteReceipt(c context.Context, id string) error {
	requestID := contextPkg.GetRequestID(c)

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryDeleteReceipt, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteReceipt named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteReceipt execution err")
		return err
	}

	return nil
}

func (r *receiptRepository) makeReceipt(row ReceiptDB) entity.Receipt {
	return entity.Receipt{
		ID:          row.ID.String,
		UserID:      row.UserID.String,
		FileHandle:  row.FileHandle.String,
		FileName:    row.FileName.String,
		ContentType: row.ContentType.String,
		Vendor:      row.Vendor.String,
		Amount:      row.Amount.Float64,
		Date:        row.Date.String,
		Category:    row.Category.String,
		RawText:     row.RawText.String,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}
