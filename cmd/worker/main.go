/**
 * OCR Frame Worker - Main Entry Point
 *
 * Annotates camera frames with recognized text and layout.
 *
 * Architecture:
 * - Orientation classifier polling live accelerometer samples (5 Hz)
 * - Geometry correction (front-camera mirroring, engine orientation tag)
 * - Tesseract recognition through one shared engine instance
 * - Normalized document -> blocks -> lines -> elements output
 * - Frame intake from a Redis list or an Asynq queue
 * - Optional PostgreSQL archive of outcomes
 */

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/mosijchuk/vision-camera-ocr/internal/config"
	"github.com/mosijchuk/vision-camera-ocr/internal/logging"
	"github.com/mosijchuk/vision-camera-ocr/internal/processor"
	"github.com/mosijchuk/vision-camera-ocr/internal/queue"
	"github.com/mosijchuk/vision-camera-ocr/internal/recognizer/tesseract"
	"github.com/mosijchuk/vision-camera-ocr/internal/sensor"
	"github.com/mosijchuk/vision-camera-ocr/internal/storage"
)

type lifecycle interface {
	Start() error
	Stop() error
}

func main() {
	// Load environment variables
	if err := godotenv.Load(".env.ocr"); err != nil {
		log.Printf("Warning: .env.ocr not found, using system environment variables")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.SetLevel(cfg.LogLevel)
	logger := logging.NewLogger("worker")
	defer logger.Sync()

	logger.Info("OCR frame worker starting",
		"queue", cfg.FrameQueue,
		"backend", cfg.QueueBackend,
		"workers", cfg.WorkerConcurrency,
		"languages", cfg.TesseractLanguages,
		"archive", cfg.ArchiveEnabled())

	// Redis is shared by the accelerometer source and the list consumer
	redisOpt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpt)
	defer redisClient.Close()

	accelerometer, err := sensor.NewRedisAccelerometer(&sensor.RedisAccelerometerConfig{
		Client: redisClient,
		Key:    cfg.AccelerometerKey,
	})
	if err != nil {
		log.Fatalf("Failed to initialize accelerometer source: %v", err)
	}

	engine, err := tesseract.New(&tesseract.Config{
		Languages:      cfg.TesseractLanguages,
		TessdataPrefix: cfg.TessdataPrefix,
		PageSegMode:    cfg.TesseractPSM,
	})
	if err != nil {
		log.Fatalf("Failed to initialize Tesseract: %v", err)
	}

	// The processor owns the engine and the sampling goroutine from here on
	proc, err := processor.NewFrameProcessor(&processor.ProcessorConfig{
		Recognizer:       engine,
		Accelerometer:    accelerometer,
		SamplingInterval: cfg.SamplingInterval,
		Logger:           logger.Named("processor"),
	})
	if err != nil {
		engine.Close()
		log.Fatalf("Failed to initialize frame processor: %v", err)
	}
	defer proc.Close()

	var archiver queue.FrameArchiver
	if cfg.ArchiveEnabled() {
		pg, err := storage.NewPostgresClient(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to archive database: %v", err)
		}
		defer pg.Close()

		if err := pg.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Failed to prepare archive schema: %v", err)
		}
		archiver = pg
		logger.Info("Outcome archive enabled")
	}

	var consumer lifecycle
	switch cfg.QueueBackend {
	case config.BackendAsynq:
		consumer, err = queue.NewConsumer(&queue.ConsumerConfig{
			RedisURL:    cfg.RedisURL,
			QueueName:   cfg.FrameQueue,
			Concurrency: cfg.WorkerConcurrency,
			Processor:   proc,
			Archiver:    archiver,
			Logger:      logger.Named("queue"),
		})
	default:
		consumer, err = queue.NewRedisConsumer(&queue.RedisConsumerConfig{
			Client:      redisClient,
			QueueName:   cfg.FrameQueue,
			Concurrency: cfg.WorkerConcurrency,
			Processor:   proc,
			Archiver:    archiver,
			Logger:      logger.Named("queue"),
		})
	}
	if err != nil {
		log.Fatalf("Failed to initialize queue consumer: %v", err)
	}

	if err := consumer.Start(); err != nil {
		log.Fatalf("Failed to start queue consumer: %v", err)
	}
	logger.Info("OCR frame worker is ready, waiting for frames")

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("Received signal, initiating graceful shutdown", "signal", sig.String())

	if err := consumer.Stop(); err != nil {
		logger.Error("Error stopping queue consumer", "error", err)
	}

	logger.Info("Shutdown complete")
}
