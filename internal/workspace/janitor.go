package workspace

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// StartJanitor evicts workspaces idle for longer than ttl every interval.
// The returned function stops the scheduler.
func StartJanitor(r *Registry, ttl, interval time.Duration) (func(), error) {
	s := gocron.NewScheduler(time.UTC)
	_, err := s.Every(interval).Do(func() {
		if n := r.CleanupExpired(ttl); n > 0 {
			slog.Info("evicted idle workspaces", "count", n, "remaining", r.Len())
		}
	})
	if err != nil {
		return nil, err
	}
	s.StartAsync()
	return s.Stop, nil
}
