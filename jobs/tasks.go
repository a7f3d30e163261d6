// Package jobs contains the asynq task definitions and the background worker.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskBalancesWarmup pre-computes balance reports so the exchange-rate
	// cache is hot before the first interactive request of the day.
	TaskBalancesWarmup = "balances:warmup"
)

// BalancesWarmupPayload selects the subtrees to warm. Empty Roots means the
// worker's configured defaults.
type BalancesWarmupPayload struct {
	Roots []string `json:"roots,omitempty"`
}

// NewBalancesWarmupTask constructs an Asynq task.
func NewBalancesWarmupTask(payload BalancesWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBalancesWarmup, data), nil
}
