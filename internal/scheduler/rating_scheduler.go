package scheduler

import (
	"github.com/robfig/cron/v3"

	"github.com/storely/storely-backend/internal/app/service"
	"github.com/storely/storely-backend/pkg/logger"
)

// RatingScheduler reconciles stored product ratings nightly. Ratings are
// updated on every review mutation; this pass catches any drift.
type RatingScheduler struct {
	cron          *cron.Cron
	reviewService service.ReviewService
}

func NewRatingScheduler(reviewService service.ReviewService) *RatingScheduler {
	return &RatingScheduler{
		cron:          cron.New(),
		reviewService: reviewService,
	}
}

// Start schedules the nightly reconciliation at 03:00.
func (s *RatingScheduler) Start() error {
	_, err := s.cron.AddFunc("0 3 * * *", func() {
		logger.Info("Starting scheduled rating reconciliation", nil)

		processed, err := s.reviewService.ReconcileAllRatings()
		if err != nil {
			logger.Error("Rating reconciliation failed", err)
			return
		}

		logger.Info("Rating reconciliation completed", map[string]interface{}{
			"products_processed": processed,
		})
	})
	if err != nil {
		logger.Error("Failed to schedule rating reconciliation", err)
		return err
	}

	s.cron.Start()
	logger.Info("Rating scheduler started (daily at 03:00)", nil)

	return nil
}

// Stop halts the scheduler.
func (s *RatingScheduler) Stop() {
	s.cron.Stop()
	logger.Info("Rating scheduler stopped", nil)
}
