package stats

import (
	"context"
	"log/slog"
	"time"

	"github.com/driverly/driverly/internal/metrics"
	"github.com/driverly/driverly/internal/repo"
	"github.com/robfig/cron/v3"
)

// Run starts a cron job that refreshes the users-by-role gauge from the
// store on the given schedule (e.g. "@every 1m"). It refreshes once
// immediately so the gauge is populated before the first tick. The returned
// cron can be stopped at shutdown.
func Run(users *repo.UserRepo, cronExpr string) (*cron.Cron, error) {
	refresh := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		counts, err := users.CountByRole(ctx)
		if err != nil {
			slog.Warn("stats: count users by role", "err", err)
			return
		}
		metrics.SetUsersByRole(counts)
	}

	c := cron.New()
	if _, err := c.AddFunc(cronExpr, refresh); err != nil {
		return nil, err
	}

	refresh()
	c.Start()
	return c, nil
}
