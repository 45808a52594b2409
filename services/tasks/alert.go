package tasks

import (
	"context"
	"encoding/json"

	"servify/models"

	"github.com/hibiken/asynq"
)

const TypeReconciliationAlert = "reconciliation:alert"

func NewReconciliationAlertTask(payload models.ReconciliationAlertPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeReconciliationAlert, b)
	opts := []asynq.Option{asynq.MaxRetry(10)}

	return task, opts, nil
}

// AsynqAlertNotifier enqueues reconciliation alerts onto the Redis-backed
// task queue so divergences survive a process crash.
type AsynqAlertNotifier struct {
	client *asynq.Client
}

func NewAsynqAlertNotifier(redisOpts asynq.RedisClientOpt) *AsynqAlertNotifier {
	return &AsynqAlertNotifier{client: asynq.NewClient(redisOpts)}
}

func (n *AsynqAlertNotifier) NotifyReconciliationAlert(ctx context.Context, payload models.ReconciliationAlertPayload) error {
	task, opts, err := NewReconciliationAlertTask(payload)
	if err != nil {
		return err
	}
	_, err = n.client.EnqueueContext(ctx, task, opts...)
	return err
}

func (n *AsynqAlertNotifier) Close() error {
	return n.client.Close()
}
