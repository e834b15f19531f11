package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"productimporter/internal/domain/entity"
	"productimporter/internal/domain/usecase"
	psqlRepo "productimporter/internal/repository/psql"
	"productimporter/internal/repository/rabbitmq"
	redisRepo "productimporter/internal/repository/redis"
	"productimporter/pkg/client/psql"
	redisGo "productimporter/pkg/client/redis"
)

type Config struct {
	RedisAddr string
	RedisDB   int

	PSQLHost     string
	PSQLPort     int
	PSQLUser     string
	PSQLPassword string
	PSQLDBName   string
	PSQLSSLMode  string

	RabbitMQURL    string
	ChunkSize      int
	WebhookTimeout time.Duration
}

func main() {
	cfg := loadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	redisClient, err := redisGo.NewRedisClient(ctx, redisGo.Config{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	tracker := redisRepo.NewProgressRepo(redisClient, 24*time.Hour)

	db, err := psql.NewPostgresDB(psql.Config{
		Host:     cfg.PSQLHost,
		User:     cfg.PSQLUser,
		Password: cfg.PSQLPassword,
		DBName:   cfg.PSQLDBName,
		Port:     cfg.PSQLPort,
		SslMode:  cfg.PSQLSSLMode,
	})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}

	jobRepo := psqlRepo.NewGormJobRepo(db)
	productRepo := psqlRepo.NewGormProductRepo(db)

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()

	importerUC := usecase.NewImporterUseCase(productRepo, jobRepo, tracker, cfg.ChunkSize)
	senderUC := usecase.NewWebhookSenderUseCase(&http.Client{Timeout: cfg.WebhookTimeout})

	importConsumer, err := rabbitmq.NewConsumer(conn, "imports.exchange", "imports.created", "imports.created.q",
		func(ctx context.Context, body []byte) error {
			var msg entity.ImportJobMessage
			if err := json.Unmarshal(body, &msg); err != nil {
				log.Printf("failed to unmarshal import job: %v", err)
				return nil
			}
			return importerUC.ProcessJob(ctx, msg)
		})
	if err != nil {
		log.Fatalf("failed to init import consumer: %v", err)
	}

	webhookConsumer, err := rabbitmq.NewConsumer(conn, "imports.exchange", "webhooks.deliver", "webhooks.deliver.q",
		func(ctx context.Context, body []byte) error {
			var msg entity.WebhookDeliveryMessage
			if err := json.Unmarshal(body, &msg); err != nil {
				log.Printf("failed to unmarshal webhook delivery: %v", err)
				return nil
			}
			return senderUC.Deliver(ctx, msg)
		})
	if err != nil {
		log.Fatalf("failed to init webhook consumer: %v", err)
	}

	go func() {
		if err := importConsumer.Start(ctx); err != nil {
			log.Fatalf("import consumer stopped with error: %v", err)
		}
	}()
	go func() {
		if err := webhookConsumer.Start(ctx); err != nil {
			log.Fatalf("webhook consumer stopped with error: %v", err)
		}
	}()

	log.Println("Import worker started")
	<-sigCh
	log.Println("Shutting down import worker...")
	cancel()
	time.Sleep(time.Second)
}

func loadConfig() Config {
	if err := godotenv.Load("./.env.local"); err != nil {
		log.Println("No .env file found. Falling back to OS environment variables.")
	}
	mustGetEnv := func(key string) string {
		val := os.Getenv(key)
		if val == "" {
			log.Fatalf("Environment variable %s is not set", key)
		}
		return val
	}
	getEnv := func(key, fallback string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		return fallback
	}

	// REDIS
	redisHost := mustGetEnv("REDIS_HOST")
	redisPort := mustGetEnv("REDIS_PORT")
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		log.Fatalf("Invalid REDIS_DB value: %v", err)
	}

	// PSQL
	psqlPort, err := strconv.Atoi(mustGetEnv("PSQL_PORT"))
	if err != nil {
		log.Fatalf("Invalid PSQL_PORT value: %v", err)
	}

	// RABBITMQ
	rmqUser := mustGetEnv("RABBITMQ_USER")
	rmqPassword := mustGetEnv("RABBITMQ_PASSWORD")
	rmqHost := mustGetEnv("RABBITMQ_HOST")
	rmqPort := mustGetEnv("RABBITMQ_PORT")
	rabbitMQURL := "amqp://" + rmqUser + ":" + rmqPassword + "@" + rmqHost + ":" + rmqPort + "/"

	chunkSize, err := strconv.Atoi(getEnv("IMPORT_CHUNK_SIZE", "10000"))
	if err != nil || chunkSize <= 0 {
		log.Fatalf("Invalid IMPORT_CHUNK_SIZE value: %v", err)
	}

	webhookTimeout, err := strconv.Atoi(getEnv("WEBHOOK_TIMEOUT_SECONDS", "10"))
	if err != nil {
		log.Fatalf("Invalid WEBHOOK_TIMEOUT_SECONDS value: %v", err)
	}

	return Config{
		RedisAddr: redisHost + ":" + redisPort,
		RedisDB:   redisDB,

		PSQLHost:     mustGetEnv("PSQL_HOST"),
		PSQLPort:     psqlPort,
		PSQLUser:     mustGetEnv("PSQL_USER"),
		PSQLPassword: mustGetEnv("PSQL_PASSWORD"),
		PSQLDBName:   mustGetEnv("PSQL_DB"),
		PSQLSSLMode:  mustGetEnv("PSQL_SSLMODE"),

		RabbitMQURL:    rabbitMQURL,
		ChunkSize:      chunkSize,
		WebhookTimeout: time.Duration(webhookTimeout) * time.Second,
	}
}
