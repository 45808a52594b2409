package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"servify/config"
	"servify/models"
	"servify/services/tasks"
	"servify/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitAlertWorker runs the async worker in background. It drains the
// reconciliation alert queue and surfaces each divergence between the
// payment gateway and local booking state on the operational log channel.
func InitAlertWorker() {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisAlertQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeReconciliationAlert, handleReconciliationAlert)

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[AlertWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[AlertWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[AlertWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleReconciliationAlert(ctx context.Context, task *asynq.Task) error {
	var p models.ReconciliationAlertPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		log.Printf("[AlertHandler] Invalid payload: %v", err)
		return err
	}

	logger := utils.GetLogger()
	logger.Error("reconciliation alert",
		zap.String("alertId", p.AlertID),
		zap.String("bookingId", p.BookingID),
		zap.String("paymentIntentId", p.PaymentIntentID),
		zap.String("refundId", p.RefundID),
		zap.String("reason", p.Reason),
		zap.Time("occurredAt", p.OccurredAt),
	)
	return nil
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisAlertQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[AlertWorker] Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
