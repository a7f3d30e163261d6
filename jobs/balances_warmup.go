package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/cashbook-dev/cashbook/internal/balances"
	"github.com/cashbook-dev/cashbook/internal/observability"
)

// BalancesWarmupJob builds the balance report for each configured root. The
// report itself is discarded; the point is the side effect of filling the
// exchange-rate cache for every commodity the book touches.
type BalancesWarmupJob struct {
	Balances *balances.Service
	Logger   *slog.Logger
	Metrics  *observability.Metrics
	Roots    []string
	clock    func() time.Time
}

// NewBalancesWarmupJob wires dependencies for the warmup handler.
func NewBalancesWarmupJob(balancesSvc *balances.Service, logger *slog.Logger, metrics *observability.Metrics, roots []string) *BalancesWarmupJob {
	return &BalancesWarmupJob{
		Balances: balancesSvc,
		Logger:   logger,
		Metrics:  metrics,
		Roots:    roots,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes balance warmup tasks.
func (j *BalancesWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Balances == nil {
		return errors.New("balances warmup: handler not configured")
	}
	var payload BalancesWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	roots := payload.Roots
	if len(roots) == 0 {
		roots = j.Roots
	}
	if len(roots) == 0 {
		// Warm the whole book when nothing narrower is configured.
		roots = []string{""}
	}

	logger := j.logger()
	start := j.now()
	logger.Info("starting balances warmup", slog.Int("roots", len(roots)))

	for _, root := range roots {
		if err := j.warmRoot(ctx, root); err != nil {
			j.Metrics.ObserveJob(TaskBalancesWarmup, "error")
			logger.Error("warm root", slog.String("root", root), slog.Any("error", err))
			return err
		}
	}

	j.Metrics.ObserveJob(TaskBalancesWarmup, "ok")
	logger.Info("completed balances warmup", slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *BalancesWarmupJob) warmRoot(ctx context.Context, root string) error {
	rootCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	_, err := j.Balances.Report(rootCtx, balances.Request{Root: root})
	return err
}

func (j *BalancesWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskBalancesWarmup))
	}
	return slog.Default().With(slog.String("job", TaskBalancesWarmup))
}

func (j *BalancesWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
