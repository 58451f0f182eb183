package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/tsubakurame/team-todo-api/internal/config"
	"github.com/tsubakurame/team-todo-api/internal/database"
	"github.com/tsubakurame/team-todo-api/internal/mailer"
	"github.com/tsubakurame/team-todo-api/internal/repository"
	"github.com/tsubakurame/team-todo-api/internal/services"
	"github.com/tsubakurame/team-todo-api/internal/tasks"
)

// digestInterval is how often the worker enqueues a digest pass. The batch
// itself only picks up notifications older than the minimum age, so a tight
// interval never causes early sends.
const digestInterval = 15 * time.Minute

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
	}

	// Asynq server and handlers
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
	})

	notificationRepo := repository.NewNotificationRepository(db)
	mail := mailer.NewSMTPSender(cfg)
	notificationService := services.NewNotificationService(notificationRepo, mail)

	handler := tasks.NewHandler(notificationService)
	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	// Periodic digest enqueue
	client := asynq.NewClient(redisOpt)
	defer client.Close()

	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(digestInterval)
		defer ticker.Stop()
		enqueue := func() {
			task, err := tasks.NewNotifyDigestTask(tasks.NotifyDigestPayload{})
			if err != nil {
				log.Printf("failed to build digest task: %v", err)
				return
			}
			if _, err := client.Enqueue(task); err != nil {
				log.Printf("failed to enqueue digest task: %v", err)
			}
		}
		enqueue()
		for {
			select {
			case <-ticker.C:
				enqueue()
			case <-stop:
				return
			}
		}
	}()

	// Handle shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down worker...")
		close(stop)
		srv.Shutdown()
	}()

	log.Println("Worker started, waiting for tasks...")
	if err := srv.Run(mux); err != nil {
		log.Fatalf("Worker error: %v", err)
	}
	log.Println("Worker stopped")
}
