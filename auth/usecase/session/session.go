package session

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/superj80820/session-auth/domain"
	loggerKit "github.com/superj80820/session-auth/kit/logger"
)

type sessionPurgeUseCase struct {
	refreshSessionRepo domain.RefreshSessionRepo
	logger             *loggerKit.Logger
	now                func() time.Time
}

func CreateSessionPurgeUseCase(refreshSessionRepo domain.RefreshSessionRepo, logger *loggerKit.Logger) domain.SessionPurgeUseCase {
	return &sessionPurgeUseCase{
		refreshSessionRepo: refreshSessionRepo,
		logger:             logger,
		now:                time.Now,
	}
}

func (s *sessionPurgeUseCase) PurgeExpired(ctx context.Context) (int64, error) {
	count, err := s.refreshSessionRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, errors.Wrap(err, "delete expired refresh sessions failed")
	}
	return count, nil
}

// Scheduler runs PurgeExpired on a cron spec until Stop is called.
type Scheduler struct {
	cron     *cron.Cron
	stop     chan struct{}
	stopOnce sync.Once
}

func CreateScheduler(spec string, purgeUseCase domain.SessionPurgeUseCase, logger *loggerKit.Logger) (*Scheduler, error) {
	c := cron.New(cron.WithLogger(logger.Cron()), cron.WithChain(cron.Recover(logger.Cron())))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		count, err := purgeUseCase.PurgeExpired(ctx)
		if err != nil {
			logger.Error("purge expired refresh sessions failed", loggerKit.Error(err))
			return
		}
		logger.Debug("purged expired refresh sessions", loggerKit.Int64("count", count))
	})
	if err != nil {
		return nil, errors.Wrap(err, "add purge job failed")
	}
	return &Scheduler{
		cron: c,
		stop: make(chan struct{}),
	}, nil
}

// Run blocks until Stop. It fits an oklog/run actor.
func (s *Scheduler) Run() error {
	s.cron.Start()
	<-s.stop
	<-s.cron.Stop().Done()
	return nil
}

func (s *Scheduler) Stop(error) {
	s.stopOnce.Do(func() { close(s.stop) })
}
