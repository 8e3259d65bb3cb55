// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv for `.env` files and github.com/caarlos0/env/v11
// for struct parsing. Each configuration type is parsed once and cached:
//
//	type MonitorConfig struct {
//	    Enabled bool   `env:"MONITOR_ENABLED" envDefault:"false"`
//	    Addr    string `env:"MONITOR_ADDR" envDefault:":9090"`
//	}
//
//	var cfg MonitorConfig
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// Use ResetCache or ForceReload in tests after changing the environment.
package config
