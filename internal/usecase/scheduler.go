package usecase

import (
	"context"
	"sync"
	"time"

	applogger "FuelPilot/pkg/logger"
	"FuelPilot/pkg/util"
)

// DailyScheduler triggers one pricing batch per day at a configured wall
// time.
type DailyScheduler struct {
	pricing  *PricingUsecase
	runAt    string
	loc      *time.Location
	logger   *applogger.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewDailyScheduler(pricing *PricingUsecase, runAt string, loc *time.Location, logger *applogger.Logger) *DailyScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &DailyScheduler{
		pricing: pricing,
		runAt:   runAt,
		loc:     loc,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
}

// Start launches the scheduling loop. Each tick prices the day it fires on.
func (s *DailyScheduler) Start(ctx context.Context) error {
	if _, err := util.NextRunAt(time.Now(), s.runAt, s.loc); err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			next, err := util.NextRunAt(time.Now(), s.runAt, s.loc)
			if err != nil {
				s.logger.Error("scheduler misconfigured", applogger.Error(err))
				return
			}
			s.logger.Info("next pricing run scheduled",
				applogger.String("at", next.Format(time.RFC3339)),
			)

			timer := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-s.stopCh:
				timer.Stop()
				return
			case <-timer.C:
			}

			runStart := time.Now()
			if err := s.pricing.RunDaily(ctx, next.In(s.loc)); err != nil {
				s.logger.Error("daily pricing batch finished with errors", applogger.Error(err))
			} else {
				s.logger.Info("daily pricing batch finished",
					applogger.Duration("duration_ms", time.Since(runStart)),
				)
			}
		}
	}()
	return nil
}

// Stop terminates the loop and waits for an in-flight batch trigger.
func (s *DailyScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}
