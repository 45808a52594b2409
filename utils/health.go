package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus represents the current status of external services.
type HealthStatus struct {
	Mongo     bool      `json:"mongo"`
	Redis     bool      `json:"redis"`
	CheckedAt time.Time `json:"checkedAt"`
}

var (
	currentHealth healthState
)

type healthState struct {
	mu     sync.RWMutex
	status HealthStatus
}

// GetHealthStatus returns the latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	currentHealth.mu.RLock()
	defer currentHealth.mu.RUnlock()
	return currentHealth.status
}

// StartHealthMonitor performs periodic health checks and updates in-memory
// state. The first check runs before the ticker loop starts, so the endpoint
// never serves the zero snapshot while the first interval elapses.
func StartHealthMonitor(redisClient *redis.Client, mongoClient *mongo.Client) {
	ctx := context.Background()
	runHealthCheck(ctx, redisClient, mongoClient)

	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			runHealthCheck(ctx, redisClient, mongoClient)
		}
	}()
}

func runHealthCheck(ctx context.Context, redisClient *redis.Client, mongoClient *mongo.Client) {
	redisHealthy := redisClient.Ping(ctx).Err() == nil
	mongoHealthy := mongoClient.Ping(ctx, nil) == nil

	currentHealth.mu.Lock()
	currentHealth.status = HealthStatus{
		Mongo:     mongoHealthy,
		Redis:     redisHealthy,
		CheckedAt: time.Now(),
	}
	currentHealth.mu.Unlock()
}
