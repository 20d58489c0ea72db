package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeLedgerIntegrity verifies the double-entry invariants of the
	// generated ledger.
	TaskTypeLedgerIntegrity = "ledger:integrity"
	// TaskTypeReportWarmup prebuilds the unfiltered financial statements
	// into the report cache.
	TaskTypeReportWarmup = "reports:warmup"
)

// LedgerIntegrityPayload identifies one integrity scan run.
type LedgerIntegrityPayload struct {
	ScanID string `json:"scanId"`
}

// NewLedgerIntegrityTask constructs an integrity scan task.
func NewLedgerIntegrityTask() (*asynq.Task, error) {
	data, err := json.Marshal(LedgerIntegrityPayload{ScanID: uuid.NewString()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeLedgerIntegrity, data), nil
}

// NewReportWarmupTask constructs a report warmup task.
func NewReportWarmupTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskTypeReportWarmup, nil), nil
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueLedgerIntegrity enqueues an integrity scan.
func (c *Client) EnqueueLedgerIntegrity(task *asynq.Task) (*asynq.TaskInfo, error) {
	return c.client.Enqueue(task, asynq.Queue(QueueDefault))
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
