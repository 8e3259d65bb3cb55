package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultHealthcheckTimeout bounds a readiness probe when Healthcheck is given no timeout.
const DefaultHealthcheckTimeout = 2 * time.Second

// Healthcheck returns a readiness probe for the monitor console. The probe pings the
// server that receives machine snapshots and fails with ErrHealthcheckFailed when the
// ping errors or does not answer within timeout, so a hung Redis cannot stall
// GET /health/ready.
func Healthcheck(client redis.UniversalClient, timeout time.Duration) func(context.Context) error {
	if timeout <= 0 {
		timeout = DefaultHealthcheckTimeout
	}
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
