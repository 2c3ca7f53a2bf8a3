package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// InvoiceSyncJobName is the name of the ERP invoice sync job
const InvoiceSyncJobName = "invoice_sync"

// InvoiceSyncer defines the interface for syncing invoices from the
// accounting ERP. The job depends on this interface so it does not import
// the service package directly.
type InvoiceSyncer interface {
	// SyncInvoicesFromERP pulls unsettled invoices from the ERP into the
	// main database. Returns counts for synced, skipped and failed rows.
	SyncInvoicesFromERP(ctx context.Context) (synced int, skipped int, failed int, err error)

	// MarkOverdueInvoices flips pending invoices past their due date to
	// overdue. Returns the number of invoices updated.
	MarkOverdueInvoices(ctx context.Context) (int64, error)
}

// InvoiceSyncJob runs the periodic ERP invoice sync followed by the overdue
// sweep, so debt evaluations see fresh figures.
type InvoiceSyncJob struct {
	syncer  InvoiceSyncer
	logger  *zap.Logger
	timeout time.Duration
}

// NewInvoiceSyncJob creates a new invoice sync job.
// The timeout controls how long one sync run is allowed to take.
func NewInvoiceSyncJob(syncer InvoiceSyncer, logger *zap.Logger, timeout time.Duration) *InvoiceSyncJob {
	return &InvoiceSyncJob{
		syncer:  syncer,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes the invoice sync job.
// This is called by the scheduler according to the cron expression.
func (j *InvoiceSyncJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting ERP invoice sync job")

	synced, skipped, failed, err := j.syncer.SyncInvoicesFromERP(ctx)
	if err != nil {
		j.logger.Error("ERP invoice sync failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		// Still run the overdue sweep on whatever data we have
	}

	overdue, err := j.syncer.MarkOverdueInvoices(ctx)
	if err != nil {
		j.logger.Error("overdue invoice sweep failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
	}

	j.logger.Info("ERP invoice sync job completed",
		zap.Int("invoices_synced", synced),
		zap.Int("invoices_skipped", skipped),
		zap.Int("invoices_failed", failed),
		zap.Int64("invoices_marked_overdue", overdue),
		zap.Duration("duration", time.Since(start)))
}

// RegisterInvoiceSyncJob registers the ERP invoice sync job with the
// scheduler. If runStartupSync is true, one sync runs immediately in a
// background goroutine so it does not block API startup.
func RegisterInvoiceSyncJob(scheduler *Scheduler, syncer InvoiceSyncer, logger *zap.Logger, cronExpr string, timeout time.Duration, runStartupSync bool) error {
	job := NewInvoiceSyncJob(syncer, logger, timeout)

	if runStartupSync {
		go job.Run()
	}

	return scheduler.AddJob(InvoiceSyncJobName, cronExpr, job.Run)
}
