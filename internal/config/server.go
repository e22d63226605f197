package config

import (
	"fmt"
	"os"
	"strconv"

	"ReceiptTracker/database/postgres"
	authHandler "ReceiptTracker/internal/api/auth/handler"
	authRepository "ReceiptTracker/internal/api/auth/repository"
	authService "ReceiptTracker/internal/api/auth/service"
	receiptHandler "ReceiptTracker/internal/api/receipt/handler"
	receiptRepository "ReceiptTracker/internal/api/receipt/repository"
	receiptService "ReceiptTracker/internal/api/receipt/service"
	"ReceiptTracker/internal/middleware"
	"ReceiptTracker/internal/pipeline"
	"ReceiptTracker/pkg/bcrypt"
	"ReceiptTracker/pkg/gemini"
	"ReceiptTracker/pkg/ocr"
	"ReceiptTracker/pkg/redis"
	"ReceiptTracker/pkg/storage"
	"ReceiptTracker/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine       *fiber.App
	db           *sqlx.DB
	log          *logrus.Logger
	middleware   middleware.Middleware
	validator    *validator.Validate
	utils        utils.IUtils
	bcryptUtils  bcrypt.IBcrypt
	handlers     []handler
	redisServer  redis.IRedis
	fileStorage  storage.Storage
	ocrEngine    ocr.Engine
	pipeline     pipeline.IPipeline
	geminiClient gemini.IGemini
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithStorage() ServerOption {
	return func(s *Server) error {
		fileStorage, err := storage.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize file storage: %v", err)
			}
			return fmt.Errorf("failed to create file storage: %w", err)
		}
		s.fileStorage = fileStorage
		return nil
	}
}

func WithOCREngine() ServerOption {
	return func(s *Server) error {
		engine, err := ocr.NewTesseractEngine()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize OCR engine: %v", err)
			}
			return fmt.Errorf("failed to create OCR engine: %w", err)
		}
		s.ocrEngine = engine
		return nil
	}
}

func WithPipeline() ServerOption {
	return func(s *Server) error {
		if s.ocrEngine == nil {
			return fmt.Errorf("OCR engine must be initialized before the pipeline")
		}
		workers, _ := strconv.Atoi(os.Getenv("PIPELINE_WORKERS"))
		s.pipeline = pipeline.New(s.ocrEngine, s.redisServer, workers, s.log)
		return nil
	}
}

// WithGeminiClient is optional wiring: without an API key the rule-based
// extractor runs alone and AI fallback is skipped.
func WithGeminiClient() ServerOption {
	return func(s *Server) error {
		client, err := gemini.NewGeminiClient()
		if err != nil {
			if s.log != nil {
				s.log.Warnf("Gemini client unavailable, AI extraction fallback disabled: %v", err)
			}
			return nil
		}
		s.geminiClient = client
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func WithBcryptUtils() ServerOption {
	return func(s *Server) error {
		s.bcryptUtils = bcrypt.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Auth Domain
	authRepo := authRepository.New(s.db, s.log)
	authServices := authService.New(s.log, authRepo, s.bcryptUtils, s.utils)
	authHandlers := authHandler.New(s.log, authServices, s.validator, s.middleware)

	// Receipt Domain
	receiptRepo := receiptRepository.New(s.db, s.log)
	receiptServices := receiptService.New(s.log, receiptRepo, s.fileStorage, s.pipeline, s.redisServer, s.geminiClient, s.utils)
	receiptHandlers := receiptHandler.New(s.log, s.validator, s.middleware, receiptServices)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, authHandlers, receiptHandlers)
}

func (s *Server) Run() error {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())
	s.engine.Use(s.middleware.NewRateLimiter)

	router := s.engine.Group("/api/v1")

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
