// Package redis connects to the Redis server used by the monitoring bridge to
// publish state machine snapshots.
//
// Connect retries the initial ping according to Config, whose fields are filled
// from the environment (REDIS_URL, REDIS_RETRY_ATTEMPTS, REDIS_RETRY_INTERVAL,
// REDIS_CONNECT_TIMEOUT) by pkg/config:
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
// Healthcheck adapts a client into a time-bounded readiness probe for the monitor
// console, so GET /health/ready reports NOT_READY while snapshots cannot be exported.
package redis
