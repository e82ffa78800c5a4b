package voice

import (
	"context"
	"time"
)

// Watch refreshes the catalog every interval until ctx is cancelled. It is
// the voices-changed notification for platforms that cannot push one; a
// refresh that finds the same set is a no-op.
func (c *Catalog) Watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.Refresh(ctx)
		}
	}
}
