// Package sweeper runs the gallery orphan sweep on a cron schedule.
package sweeper

import (
	"context"
	"fmt"
	"time"

	"hatesaway-server/gallery"

	"github.com/adhocore/gronx"
	"github.com/sirupsen/logrus"
)

type Sweeper interface {
	SweepOrphans(ctx context.Context) (gallery.SweepReport, error)
}

// Start schedules s according to cronExpr. An empty expression disables
// sweeping and returns a no-op cancel func.
func Start(ctx context.Context, s Sweeper, cronExpr string) (context.CancelFunc, error) {
	if cronExpr == "" {
		logrus.Info("Orphan sweep disabled")
		return func() {}, nil
	}
	if !gronx.IsValid(cronExpr) {
		return nil, fmt.Errorf("invalid sweep cron expression: %s", cronExpr)
	}

	ctx, cancel := context.WithCancel(ctx)
	go run(ctx, s, cronExpr)

	logrus.WithField("cron", cronExpr).Info("Orphan sweep scheduled")
	return cancel, nil
}

func run(ctx context.Context, s Sweeper, cronExpr string) {
	for {
		next, err := gronx.NextTickAfter(cronExpr, time.Now().UTC(), false)
		if err != nil {
			logrus.WithError(err).WithField("cron", cronExpr).Error("Failed to compute next sweep")
			if !sleep(ctx, 30*time.Second) {
				return
			}
			continue
		}

		if !sleep(ctx, time.Until(next)) {
			logrus.Debug("Orphan sweep scheduler stopping")
			return
		}
		if _, err := s.SweepOrphans(ctx); err != nil {
			logrus.WithError(err).Error("Orphan sweep failed")
		}
	}
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = time.Second
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
