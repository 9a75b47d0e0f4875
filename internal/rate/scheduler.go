package rate

import (
	"context"
	"fxconvert/internal/domain"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultWarmupInterval = 4 * time.Minute

type refresher interface {
	Refresh(ctx context.Context) (domain.Rates, error)
}

// Scheduler keeps the rate cache warm by refreshing it before the cached set expires.
type Scheduler struct {
	provider       refresher
	warmupInterval time.Duration
	// -----
	mu    sync.Mutex
	sched gocron.Scheduler
}

func (s *Scheduler) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	job := func(jobCtx context.Context) {
		execID := uuid.NewString()
		rates, refreshErr := s.provider.Refresh(jobCtx)
		if refreshErr != nil {
			logrus.Errorf("Rate warm-up job %s failed: %v", execID, refreshErr)
			return
		}
		logrus.Infof("%d rates were refreshed; execID: %s", len(rates), execID)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(s.warmupInterval),
		gocron.NewTask(job),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)

	if err != nil {
		_ = scheduler.Shutdown()
		return err
	}

	s.mu.Lock()
	s.sched = scheduler
	s.mu.Unlock()
	scheduler.Start()

	// Stop scheduler when the provided context is canceled.
	go func() {
		<-ctx.Done()
		if sdErr := s.Shutdown(); sdErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", sdErr)
		}
	}()
	return nil
}

// Shutdown stops the job. Safe to call more than once and concurrently with the ctx watcher.
func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	sched := s.sched
	s.sched = nil
	s.mu.Unlock()

	if sched == nil {
		return nil
	}
	return sched.Shutdown()
}

func (s *Scheduler) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched != nil
}

func NewScheduler(provider refresher, warmupInterval time.Duration) *Scheduler {
	if warmupInterval <= 0 {
		warmupInterval = defaultWarmupInterval
	}
	return &Scheduler{provider: provider, warmupInterval: warmupInterval}
}
