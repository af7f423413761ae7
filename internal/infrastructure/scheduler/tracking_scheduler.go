package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appshipping "github.com/erp/shipping/internal/application/shipping"
	"github.com/erp/shipping/internal/domain/shared"
	"github.com/erp/shipping/internal/domain/shipping"
)

// TrackingRefresher pulls the current carrier tracking state for one
// shipment and writes it back onto the document.
type TrackingRefresher interface {
	RefreshTracking(ctx context.Context, shipmentID uuid.UUID) (*appshipping.TrackingUpdate, error)
}

// TrackingSchedulerConfig holds configuration for the tracking refresh scheduler
type TrackingSchedulerConfig struct {
	// Enabled indicates if the scheduler is enabled
	Enabled bool
	// Interval is how often in-progress shipments are refreshed
	Interval time.Duration
	// MaxConcurrent is the maximum number of concurrent refresh calls
	MaxConcurrent int
	// JobTimeout is the maximum time one refresh call can run
	JobTimeout time.Duration
	// PageSize is how many shipments are loaded per repository page
	PageSize int
}

// DefaultTrackingSchedulerConfig returns default configuration
func DefaultTrackingSchedulerConfig() TrackingSchedulerConfig {
	return TrackingSchedulerConfig{
		Enabled:       true,
		Interval:      30 * time.Minute,
		MaxConcurrent: 4,
		JobTimeout:    time.Minute,
		PageSize:      50,
	}
}

// Validate validates the configuration
func (c *TrackingSchedulerConfig) Validate() error {
	if c.Interval <= 0 {
		return ErrInvalidConfig
	}
	if c.MaxConcurrent <= 0 {
		return ErrInvalidConfig
	}
	if c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.PageSize <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// TrackingScheduler periodically refreshes the tracking state of every
// shipment still in transit, so documents move to Delivered without
// anyone pressing the refresh button.
type TrackingScheduler struct {
	config    TrackingSchedulerConfig
	shipments shipping.ShipmentRepository
	refresher TrackingRefresher
	logger    *zap.Logger

	trigger   chan struct{}
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewTrackingScheduler creates a new tracking refresh scheduler
func NewTrackingScheduler(
	config TrackingSchedulerConfig,
	shipments shipping.ShipmentRepository,
	refresher TrackingRefresher,
	logger *zap.Logger,
) (*TrackingScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &TrackingScheduler{
		config:    config,
		shipments: shipments,
		refresher: refresher,
		logger:    logger,
		trigger:   make(chan struct{}, 1),
	}, nil
}

// Start starts the scheduler loop
func (s *TrackingScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Tracking refresh scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Int("max_concurrent", s.config.MaxConcurrent),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *TrackingScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Tracking refresh scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Tracking refresh scheduler stop timed out")
		return ctx.Err()
	}
}

// TriggerNow runs a refresh sweep outside the regular interval
func (s *TrackingScheduler) TriggerNow() error {
	s.mu.Lock()
	running := s.isRunning
	s.mu.Unlock()
	if !running {
		return ErrSchedulerNotRunning
	}
	select {
	case s.trigger <- struct{}{}:
	default:
		// A sweep is already queued
	}
	return nil
}

func (s *TrackingScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runSweep(ctx)
		case <-s.trigger:
			s.runSweep(ctx)
		}
	}
}

// runSweep refreshes every shipment currently in transit. Failures are
// logged and skipped; the next sweep retries them.
func (s *TrackingScheduler) runSweep(ctx context.Context) {
	start := time.Now()
	ids, err := s.collectInProgress(ctx)
	if err != nil {
		s.logger.Error("Tracking sweep failed to list shipments", zap.Error(err))
		return
	}
	if len(ids) == 0 {
		return
	}

	jobs := make(chan uuid.UUID)
	var workers sync.WaitGroup
	var refreshed, failed int
	var countMu sync.Mutex

	for i := 0; i < s.config.MaxConcurrent; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for id := range jobs {
				jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
				_, err := s.refresher.RefreshTracking(jobCtx, id)
				cancel()

				countMu.Lock()
				if err != nil {
					failed++
				} else {
					refreshed++
				}
				countMu.Unlock()

				if err != nil {
					s.logger.Warn("Tracking refresh failed",
						zap.String("shipment_id", id.String()),
						zap.Error(err))
				}
			}
		}()
	}

	for _, id := range ids {
		select {
		case <-ctx.Done():
			close(jobs)
			workers.Wait()
			return
		case jobs <- id:
		}
	}
	close(jobs)
	workers.Wait()

	s.logger.Info("Tracking sweep completed",
		zap.Int("refreshed", refreshed),
		zap.Int("failed", failed),
		zap.Duration("took", time.Since(start)))
}

// collectInProgress pages through the repository and returns the IDs of
// every shipment whose tracking is still in progress.
func (s *TrackingScheduler) collectInProgress(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for page := 1; ; page++ {
		filter := shared.Filter{
			Page:     page,
			PageSize: s.config.PageSize,
			OrderBy:  "created_at",
			OrderDir: "asc",
			Filters: map[string]interface{}{
				"tracking_status": string(shipping.TrackingStatusInProgress),
			},
		}
		batch, err := s.shipments.FindAll(ctx, filter)
		if err != nil {
			return nil, err
		}
		for i := range batch {
			ids = append(ids, batch[i].ID)
		}
		if len(batch) < s.config.PageSize {
			return ids, nil
		}
	}
}
