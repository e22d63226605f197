package receiptRepository

import (
	"ReceiptTracker/internal/entity"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var db sqlx.ExtContext
	var commitFunc, rollbackFunc func() error

	db = r.DB

	if tx {
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		db = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Receipts:  &receiptRepository{q: db, log: r.log},
		LineItems: &lineItemRepository{q: db, log: r.log},
		Commit:    commitFunc,
		Rollback:  rollbackFunc,
	}, nil
}

type Client struct {
	Receipts interface {
		CreateReceipt(ctx context.Context, receipt entity.Receipt) error
		GetByID(ctx context.Context, id string) (entity.Receipt, error)
		ListByUser(ctx context.Context, userID string) ([]entity.Receipt, error)
		CountByUser(ctx context.Context, userID string) (int, error)
		UpdateReceipt(ctx context.Context, receipt entity.Receipt) error
		DeleteReceipt(ctx context.Context, id string) error
	}

	LineItems interface {
		ListByReceipt(ctx context.Context, receiptID string) ([]entity.LineItem, error)
		ReplaceForReceipt(ctx context.Context, receiptID string, items []entity.LineItem) error
	}

	Commit   func() error
	Rollback func() error
}

type receiptRepository struct {
	q   sqlx.ExtContext
	log *logrus.Logger
}

type lineItemRepository struct {
	q   sqlx.ExtContext
	log *logrus.Logger
}
