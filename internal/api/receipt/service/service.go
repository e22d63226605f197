package receiptService

import (
	"context"
	"mime/multipart"

	"ReceiptTracker/internal/api/receipt"
	receiptRepository "ReceiptTracker/internal/api/receipt/repository"
	"ReceiptTracker/internal/entity"
	"ReceiptTracker/internal/pipeline"
	"ReceiptTracker/pkg/gemini"
	"ReceiptTracker/pkg/redis"
	"ReceiptTracker/pkg/storage"
	"ReceiptTracker/pkg/utils"

	"github.com/sirupsen/logrus"
)

type IReceiptService interface {
	UploadReceipt(c context.Context, user entity.UserLoginData, file *multipart.FileHeader) (receipt.UploadReceiptResponse, error)
	ListReceipts(c context.Context, user entity.UserLoginData) (receipt.ListReceiptsResponse, error)
	GetReceipt(c context.Context, user entity.UserLoginData, receiptID string) (entity.Receipt, error)
	UpdateReceipt(c context.Context, user entity.UserLoginData, receiptID string, req receipt.UpdateReceiptRequest) (entity.Receipt, error)
	DeleteReceipt(c context.Context, user entity.UserLoginData, receiptID string) error

	ProcessReceipt(c context.Context, user entity.UserLoginData, receiptID string, req receipt.ProcessReceiptRequest) (receipt.ProcessReceiptResponse, error)
	GetProcessingStatus(c context.Context, user entity.UserLoginData, receiptID string) (entity.ProcessingRecord, error)
	PreviewFrame(c context.Context, frame []byte) (receipt.PreviewResponse, error)
}

type receiptService struct {
	log          *logrus.Logger
	repo         receiptRepository.Repository
	fileStorage  storage.Storage
	pipeline     pipeline.IPipeline
	redisServer  redis.IRedis
	geminiClient gemini.IGemini
	utils        utils.IUtils
}

func New(log *logrus.Logger,
	repo receiptRepository.Repository,
	fileStorage storage.Storage,
	pl pipeline.IPipeline,
	redisServer redis.IRedis,
	geminiClient gemini.IGemini,
	utils utils.IUtils,
) IReceiptService {
	return &receiptService{
		log:          log,
		repo:         repo,
		fileStorage:  fileStorage,
		pipeline:     pl,
		redisServer:  redisServer,
		geminiClient: geminiClient,
		utils:        utils,
	}
}
