package redis

import "errors"

var (
	// ErrEmptyConnectionURL is returned by Connect when REDIS_URL resolves to "".
	ErrEmptyConnectionURL = errors.New("redis snapshot store: connection URL is empty")
	// ErrFailedToParseRedisConnString wraps a REDIS_URL that go-redis cannot parse.
	ErrFailedToParseRedisConnString = errors.New("redis snapshot store: invalid connection URL")
	// ErrRedisNotReady is returned when no ping succeeded within the retry budget.
	ErrRedisNotReady = errors.New("redis snapshot store: server did not answer ping")
	// ErrHealthcheckFailed marks a failed readiness probe; the console reports NOT_READY.
	ErrHealthcheckFailed = errors.New("redis snapshot store: unavailable, machine snapshots are not being exported")
)
