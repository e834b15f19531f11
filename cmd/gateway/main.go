package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	v1 "productimporter/internal/controller/http/v1"
	"productimporter/internal/domain/entity"
	"productimporter/internal/domain/usecase"
	psqlRepo "productimporter/internal/repository/psql"
	"productimporter/internal/repository/rabbitmq"
	redisRepo "productimporter/internal/repository/redis"
	"productimporter/pkg/client/psql"
	redisGo "productimporter/pkg/client/redis"
	"productimporter/pkg/middleware"
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

	RabbitMQURL string

	HTTPAddr      string
	TempUploadDir string
	MaxRows       int
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	r := gin.Default()

	redisClient, err := redisGo.NewRedisClient(ctx, redisGo.Config{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RedisClient: redisClient,
		Limit:       10,
		Window:      time.Second,
		KeyPrefix:   "rl:",
	})
	r.Use(rl)

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

	if err := db.AutoMigrate(&entity.Product{}, &entity.Webhook{}, &entity.ImportJob{}); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	jobRepo := psqlRepo.NewGormJobRepo(db)
	productRepo := psqlRepo.NewGormProductRepo(db)
	webhookRepo := psqlRepo.NewGormWebhookRepo(db)
	tracker := redisRepo.NewProgressRepo(redisClient, 24*time.Hour)

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()

	importPublisher, err := rabbitmq.NewPublisher(conn, "imports.exchange", "imports.created")
	if err != nil {
		log.Fatalf("failed to init import publisher: %v", err)
	}
	webhookPublisher, err := rabbitmq.NewPublisher(conn, "imports.exchange", "webhooks.deliver")
	if err != nil {
		log.Fatalf("failed to init webhook publisher: %v", err)
	}

	uploadUC := usecase.NewUploadUseCase(jobRepo, importPublisher, tracker, cfg.TempUploadDir, cfg.MaxRows)
	productUC := usecase.NewProductUseCase(productRepo)
	webhookUC := usecase.NewWebhookUseCase(webhookRepo, webhookPublisher)

	uploadHandler := v1.NewUploadHandler(uploadUC)
	productHandler := v1.NewProductHandler(productUC)
	webhookHandler := v1.NewWebhookHandler(webhookUC)

	v1Group := r.Group("/api/v1")
	{
		v1Group.POST("/upload", uploadHandler.CreateJob)
		v1Group.GET("/upload/status/:job_id", uploadHandler.GetStatus)

		v1Group.GET("/products", productHandler.List)
		v1Group.POST("/products", productHandler.Create)
		v1Group.PUT("/products/:id", productHandler.Update)
		v1Group.DELETE("/products/:id", productHandler.Delete)
		v1Group.DELETE("/products", productHandler.DeleteAll)

		v1Group.GET("/webhooks", webhookHandler.List)
		v1Group.POST("/webhooks", webhookHandler.Create)
		v1Group.PUT("/webhooks/:id", webhookHandler.Update)
		v1Group.DELETE("/webhooks/:id", webhookHandler.Delete)
		v1Group.POST("/webhooks/test/:id", webhookHandler.TestFire)
	}

	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
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

	maxRows, err := strconv.Atoi(getEnv("IMPORT_MAX_ROWS", "500000"))
	if err != nil {
		log.Fatalf("Invalid IMPORT_MAX_ROWS value: %v", err)
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

		RabbitMQURL: rabbitMQURL,

		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		TempUploadDir: getEnv("TEMP_UPLOAD_DIR", "./tmp/uploads"),
		MaxRows:       maxRows,
	}
}
