package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Cleaner deletes stories that expired at or before now.
type Cleaner interface {
	CleanupExpired(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper removes expired stories from the collaborator store. Fetches
// already skip expired rows; sweeping only reclaims space.
type Sweeper struct {
	Cleaner Cleaner
	Clock   clockwork.Clock
	Logger  *zap.Logger
}

func (s Sweeper) clock() clockwork.Clock {
	if s.Clock == nil {
		return clockwork.NewRealClock()
	}
	return s.Clock
}

func (s Sweeper) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s Sweeper) RunOnce(ctx context.Context) (int64, error) {
	n, err := s.Cleaner.CleanupExpired(ctx, s.clock().Now())
	if err != nil {
		s.logger().Error("sweep failed", zap.Error(err))
		return 0, err
	}
	s.logger().Info("sweep done", zap.Int64("deleted", n))
	return n, nil
}

// Schedule sweeps right away and then every interval until ctx is done.
// The returned scheduler is already started; it shuts down with ctx.
func (s Sweeper) Schedule(ctx context.Context, every time.Duration) (gocron.Scheduler, error) {
	if every <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", every)
	}
	scheduler, err := gocron.NewScheduler(gocron.WithClock(s.clock()))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				return
			}
			taskCtx, cancel := context.WithTimeout(ctx, time.Minute)
			defer cancel()
			_, _ = s.RunOnce(taskCtx)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("failed to schedule sweep: %w", err)
	}

	scheduler.Start()

	go func() {
		<-ctx.Done()
		if err := scheduler.Shutdown(); err != nil {
			s.logger().Error("failed to shut down sweeper", zap.Error(err))
		}
	}()
	return scheduler, nil
}
