package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ledgerdesk/ledgerdesk/internal/billing"
	"github.com/ledgerdesk/ledgerdesk/internal/ledger"
)

// LedgerIntegrityJob re-derives the full ledger and checks the double-entry
// invariants: every document balances per currency and the balance sheet
// closes with a zero gap. Violations are logged, never raised — a broken
// invariant is a data finding, not a job failure.
type LedgerIntegrityJob struct {
	service *billing.Service
	logger  *slog.Logger
}

// NewLedgerIntegrityJob constructs the job.
func NewLedgerIntegrityJob(service *billing.Service, logger *slog.Logger) *LedgerIntegrityJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerIntegrityJob{service: service, logger: logger}
}

// Run executes one scan over the current document snapshot.
func (j *LedgerIntegrityJob) Run(ctx context.Context) error {
	docs, lookup, err := j.service.Snapshot(ctx)
	if err != nil {
		return err
	}

	violations := 0
	for _, doc := range docs {
		entries := ledger.Generate([]ledger.Document{doc}, lookup)
		perCurrency := make(map[string]float64)
		for _, e := range entries {
			perCurrency[e.Currency] += e.Debit - e.Credit
		}
		for currency, sum := range perCurrency {
			if ledger.Round2(sum) != 0 {
				violations++
				j.logger.Error("document does not balance",
					slog.String("document", doc.ID),
					slog.String("currency", currency),
					slog.Float64("residual", ledger.Round2(sum)))
			}
		}
	}

	entries := ledger.Generate(docs, lookup)
	pl := ledger.ComputeProfitAndLoss(entries)
	bs := ledger.ComputeBalanceSheet(entries, pl)
	if bs.BalanceGap != 0 {
		violations++
		j.logger.Error("balance sheet does not close", slog.Float64("gap", bs.BalanceGap))
	}

	stale, err := j.service.Reconcile(ctx)
	if err != nil {
		return err
	}
	for _, row := range stale {
		j.logger.Warn("stored totals diverge from line detail",
			slog.String("document", row.DocumentID),
			slog.Float64("storedGross", row.StoredGross),
			slog.Float64("computedGross", row.ComputedGross))
	}

	j.logger.Info("ledger integrity scan complete",
		slog.Int("documents", len(docs)),
		slog.Int("violations", violations),
		slog.Int("staleTotals", len(stale)))
	return nil
}

// Handler adapts the job to an Asynq task handler.
func (j *LedgerIntegrityJob) Handler() asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload LedgerIntegrityPayload
		if len(t.Payload()) > 0 {
			if err := json.Unmarshal(t.Payload(), &payload); err != nil {
				return asynq.SkipRetry
			}
		}
		if payload.ScanID != "" {
			j.logger.Info("ledger integrity scan started", slog.String("scanId", payload.ScanID))
		}
		return j.Run(ctx)
	}
}
