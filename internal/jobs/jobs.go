// Package jobs runs the periodic maintenance tasks on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"motohub-api-server/config"
	"motohub-api-server/internal/models"
	"motohub-api-server/internal/notify"
	"motohub-api-server/internal/service"
)

const jobTimeout = time.Minute

type PromotionExpirer interface {
	ExpireBefore(ctx context.Context, now time.Time) (int64, error)
}

type PartLister interface {
	List(ctx context.Context, f models.PartFilter) ([]models.Part, error)
}

type Notifier interface {
	ToRole(role models.Role, eventType string, data any)
}

// LowStockDigest is the payload of the daily low-stock notification.
type LowStockDigest struct {
	Count int                     `json:"count"`
	Parts []service.LowStockAlert `json:"parts"`
}

type Scheduler struct {
	cron       *cron.Cron
	promotions PromotionExpirer
	parts      PartLister
	notifier   Notifier
	logger     *log.Logger
	now        func() time.Time
}

func NewScheduler(promotions PromotionExpirer, parts PartLister, notifier Notifier, logger *log.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		promotions: promotions,
		parts:      parts,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// Start registers both jobs and starts the cron runner. An empty schedule disables that job.
func (s *Scheduler) Start(cfg config.JobsConfig) error {
	jobs := []struct {
		name string
		spec string
		run  func(context.Context) error
	}{
		{"promotionExpiry", cfg.PromotionExpiry, s.ExpirePromotions},
		{"lowStockDigest", cfg.LowStockDigest, s.SendLowStockDigest},
	}
	for _, job := range jobs {
		if job.spec == "" {
			continue
		}
		if err := s.cron.AddFunc(job.spec, s.wrap(job.name, job.run)); err != nil {
			return fmt.Errorf("schedule %s %q: %w", job.name, job.spec, err)
		}
	}
	s.cron.Start()
	s.logger.WithFields(log.Fields{
		"promotionExpiry": cfg.PromotionExpiry,
		"lowStockDigest":  cfg.LowStockDigest,
	}).Info("Cron jobs started")
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) wrap(name string, job func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := job(ctx); err != nil {
			s.logger.WithError(err).WithField("job", name).Error("Scheduled job failed")
		}
	}
}

// ExpirePromotions deactivates active promotions whose validUntil has passed.
func (s *Scheduler) ExpirePromotions(ctx context.Context) error {
	n, err := s.promotions.ExpireBefore(ctx, s.now().UTC())
	if err != nil {
		return fmt.Errorf("jobs.ExpirePromotions: %w", err)
	}
	if n == 0 {
		return nil
	}

	s.logger.WithField("count", n).Info("Expired promotions deactivated")
	s.notifier.ToRole(models.RoleAdmin, notify.EventPromotionsEnded, map[string]int64{"count": n})
	return nil
}

// SendLowStockDigest tells admins which parts are at or below their minimum.
func (s *Scheduler) SendLowStockDigest(ctx context.Context) error {
	parts, err := s.parts.List(ctx, models.PartFilter{LowStock: true})
	if err != nil {
		return fmt.Errorf("jobs.SendLowStockDigest: %w", err)
	}
	if len(parts) == 0 {
		return nil
	}

	digest := LowStockDigest{
		Count: len(parts),
		Parts: lo.Map(parts, func(p models.Part, _ int) service.LowStockAlert {
			return service.LowStockAlert{PartID: p.ID, Name: p.Name, Quantity: p.Quantity, MinStock: p.MinStock}
		}),
	}
	s.notifier.ToRole(models.RoleAdmin, notify.EventLowStockDigest, digest)
	return nil
}
