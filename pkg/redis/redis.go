package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"ReceiptTracker/internal/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var ErrRecordNotFound = errors.New("processing record not found")

// Records are kept for a day; after that callers get ErrRecordNotFound and
// can re-run processing.
const recordTTL = 24 * time.Hour

type IRedis interface {
	SetRecord(ctx context.Context, record entity.ProcessingRecord) error
	GetRecord(ctx context.Context, receiptID string) (entity.ProcessingRecord, error)
	DeleteRecord(ctx context.Context, receiptID string) error
}

type redisClient struct {
	client *redis.Client
}

func New() IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return &redisClient{client: client}
}

func recordKey(receiptID string) string {
	return "processing:" + receiptID
}

func (r *redisClient) SetRecord(ctx context.Context, record entity.ProcessingRecord) error {
	payload, err := jsoniter.Marshal(record)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, recordKey(record.ReceiptID), payload, recordTTL).Err(); err != nil {
		logrus.Error(fmt.Sprintf("Error storing processing record for %s: %v", record.ReceiptID, err))
		return err
	}
	return nil
}

func (r *redisClient) GetRecord(ctx context.Context, receiptID string) (entity.ProcessingRecord, error) {
	val, err := r.client.Get(ctx, recordKey(receiptID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return entity.ProcessingRecord{}, ErrRecordNotFound
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error getting processing record for %s: %v", receiptID, err))
		return entity.ProcessingRecord{}, err
	}

	var record entity.ProcessingRecord
	if err := jsoniter.Unmarshal(val, &record); err != nil {
		return entity.ProcessingRecord{}, err
	}
	return record, nil
}

func (r *redisClient) DeleteRecord(ctx context.Context, receiptID string) error {
	if err := r.client.Del(ctx, recordKey(receiptID)).Err(); err != nil {
		logrus.Error(fmt.Sprintf("Error deleting processing record for %s: %v", receiptID, err))
		return err
	}
	return nil
}
