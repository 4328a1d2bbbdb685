package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/storesense/notify-core/internal/domain"
	"github.com/storesense/notify-core/internal/observability"
	"github.com/storesense/notify-core/internal/repository"
	"go.uber.org/zap"
)

const defaultWriteTimeout = 3 * time.Second

// Sink records dispatch attempts. Implementations append; nothing updates
// or deletes an audit record.
type Sink interface {
	Record(ctx context.Context, record domain.MessageLog) error
}

// RepoSink writes audit records to the message log repository.
type RepoSink struct {
	logs repository.MessageLogRepository
	now  func() time.Time
}

func NewRepoSink(logs repository.MessageLogRepository) (*RepoSink, error) {
	if logs == nil {
		return nil, fmt.Errorf("message log repository is required")
	}
	return &RepoSink{logs: logs, now: time.Now}, nil
}

func (s *RepoSink) Record(ctx context.Context, record domain.MessageLog) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now().UTC()
	}
	if err := record.Validate(); err != nil {
		return err
	}
	return s.logs.Create(ctx, &record)
}

// BoundedRecorder wraps a sink with the best-effort policy: every write is
// bounded by a timeout and failures are logged then discarded. A slow or
// unreachable store must never change a dispatch outcome that has already
// been determined.
type BoundedRecorder struct {
	sink    Sink
	timeout time.Duration
	logger  *zap.Logger
	metrics *observability.Metrics
}

func NewBoundedRecorder(sink Sink, timeout time.Duration, logger *zap.Logger, metrics *observability.Metrics) (*BoundedRecorder, error) {
	if sink == nil {
		return nil, fmt.Errorf("audit sink is required")
	}
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BoundedRecorder{
		sink:    sink,
		timeout: timeout,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Record attempts the audit write and swallows any failure. The caller's
// cancellation still propagates, so an aborted request also aborts its
// audit write.
func (r *BoundedRecorder) Record(ctx context.Context, record domain.MessageLog) {
	if ctx == nil {
		ctx = context.Background()
	}

	writeCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.sink.Record(writeCtx, record); err != nil {
		r.logger.Warn("audit write discarded",
			zap.String("tenantId", record.TenantID),
			zap.String("channel", record.Channel.String()),
			zap.String("status", record.Status.String()),
			zap.Error(err),
		)
		if r.metrics != nil {
			r.metrics.IncAuditDiscarded()
		}
	}
}
