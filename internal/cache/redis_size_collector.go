package cache

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"airline_ops/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// StartRedisSizeCollector периодически снимает used_memory из INFO.
func StartRedisSizeCollector(ctx context.Context, client *redis.Client, interval time.Duration, logger *log.Logger) {
	if client == nil {
		return
	}
	if logger == nil {
		logger = log.Default()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		update := func() {
			info, err := client.Info(ctx, "memory").Result()
			if err != nil {
				metrics.IncRedisError("get")
				return
			}
			for _, line := range strings.Split(info, "\n") {
				line = strings.TrimSpace(line)
				if strings.HasPrefix(line, "used_memory:") {
					v := strings.TrimSpace(strings.TrimPrefix(line, "used_memory:"))
					if n, err := strconv.ParseInt(v, 10, 64); err == nil {
						metrics.SetRedisCacheSizeBytes(n)
					}
					return
				}
			}
		}

		update()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				update()
			}
		}
	}()
}
