package monitor

import "time"

// Config configures the monitor console and the Redis exporter.
type Config struct {
	Enabled         bool          `env:"MONITOR_ENABLED" envDefault:"false"`
	Addr            string        `env:"MONITOR_ADDR" envDefault:":9090"`
	ReadTimeout     time.Duration `env:"MONITOR_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"MONITOR_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"MONITOR_SHUTDOWN_TIMEOUT" envDefault:"5s"`

	RedisEnabled bool   `env:"REDIS_ENABLED" envDefault:"false"`
	RedisPrefix  string `env:"MONITOR_REDIS_PREFIX" envDefault:"fsm:"`
}
