package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ledgerdesk/ledgerdesk/internal/billing"
	"github.com/ledgerdesk/ledgerdesk/internal/ledger"
)

// ReportWarmupJob prebuilds the unfiltered financial statements so the first
// dashboard request after an idle period hits a warm cache.
type ReportWarmupJob struct {
	service *billing.Service
	logger  *slog.Logger
}

// NewReportWarmupJob constructs the job.
func NewReportWarmupJob(service *billing.Service, logger *slog.Logger) *ReportWarmupJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportWarmupJob{service: service, logger: logger}
}

// Run builds and caches the statements for the unfiltered view.
func (j *ReportWarmupJob) Run(ctx context.Context) error {
	stmts, err := j.service.BuildStatements(ctx, ledger.Filter{})
	if err != nil {
		return err
	}
	j.logger.Info("report warmup complete",
		slog.Float64("revenue", stmts.ProfitAndLoss.Revenue),
		slog.Float64("balanceGap", stmts.BalanceSheet.BalanceGap),
		slog.Bool("multiCurrency", stmts.MultiCurrency))
	return nil
}

// Handler adapts the job to an Asynq task handler.
func (j *ReportWarmupJob) Handler() asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		return j.Run(ctx)
	}
}
