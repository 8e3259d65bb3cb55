// Command turnstile drives the classic coin/push turnstile from stdin.
//
//	c  insert a coin
//	p  push the arm
//	q  quit
//
// The machine is described by the embedded turnstile.yaml unless TURNSTILE_DEFINITION
// points at another document. Set MONITOR_ENABLED=true to expose the monitoring console
// and REDIS_ENABLED=true to mirror snapshots into Redis.
package main

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dmitrymomot/easystates/pkg/config"
	"github.com/dmitrymomot/easystates/pkg/fsmdef"
	"github.com/dmitrymomot/easystates/pkg/logger"
	"github.com/dmitrymomot/easystates/pkg/monitor"
	"github.com/dmitrymomot/easystates/pkg/redis"
	"github.com/dmitrymomot/easystates/pkg/statemachine"
)

//go:embed turnstile.yaml
var defaultDefinition []byte

const (
	coin statemachine.EventKind = "coin"
	push statemachine.EventKind = "push"
)

type appConfig struct {
	Env        string `env:"APP_ENV" envDefault:"development"`
	Service    string `env:"APP_NAME" envDefault:"turnstile"`
	Definition string `env:"TURNSTILE_DEFINITION"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := start(ctx, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "turnstile: %v\n", err)
		os.Exit(1)
	}
}

func start(ctx context.Context, in io.Reader, out io.Writer) error {
	var (
		appCfg   appConfig
		monCfg   monitor.Config
		redisCfg redis.Config
	)
	if err := config.Load(&appCfg); err != nil {
		return err
	}
	if err := config.Load(&monCfg); err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(appCfg.Env, appCfg.Service),
		logger.WithOutput(os.Stderr),
		logger.WithContextExtractors(monitor.RequestIDExtractor()),
	)
	logger.SetAsDefault(log)

	def, err := loadDefinition(appCfg.Definition, handlers(out))
	if err != nil {
		return err
	}

	opts := []statemachine.Option{statemachine.WithLogger(log)}
	var checks []monitor.ReadinessCheck

	if monCfg.RedisEnabled {
		if err := config.Load(&redisCfg); err != nil {
			return err
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer client.Close()

		opts = append(opts, statemachine.WithObserver(monitor.NewRedisExporter(client,
			monitor.WithRedisPrefix(monCfg.RedisPrefix),
			monitor.WithExporterLogger(log),
		)))
		checks = append(checks, redis.Healthcheck(client, monCfg.ReadTimeout/2))
	}

	m, err := statemachine.Build(def, opts...)
	if err != nil {
		return err
	}

	if monCfg.Enabled {
		reg := monitor.NewRegistry()
		if err := reg.Register(m); err != nil {
			return err
		}
		srv := monitor.NewServer(monCfg, monitor.WithServerLogger(log))
		go func() {
			h := monitor.Handler(reg, monitor.WithHandlerLogger(log), monitor.WithReadinessCheck(checks...))
			if err := srv.Run(ctx, h); err != nil {
				log.ErrorContext(ctx, "monitor console failed", logger.Error(err))
			}
		}()
		defer func() { _ = srv.Shutdown(context.Background()) }()
	}

	return run(ctx, in, out, m)
}

func loadDefinition(path string, h fsmdef.Handlers) (statemachine.Definition, error) {
	if path != "" {
		return fsmdef.Load(path, h)
	}
	return fsmdef.Parse(defaultDefinition, h)
}

func handlers(out io.Writer) fsmdef.Handlers {
	say := func(msg string) statemachine.Handler {
		return func(context.Context, statemachine.Event) error {
			_, err := fmt.Fprintln(out, msg)
			return err
		}
	}
	return fsmdef.Handlers{
		"unlock": say("Unlocking turnstile"),
		"lock":   say("Locking turnstile"),
		"thanks": say("Thank you for the coin, the turnstile is already unlocked"),
	}
}

// run fires one event per command line read from in until q, end of input or ctx
// cancellation.
func run(ctx context.Context, in io.Reader, out io.Writer, m *statemachine.Machine) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	fmt.Fprintf(out, "%s is %s. Commands: c (coin), p (push), q (quit)\n", m.Name(), m.Current())

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}

			var kind statemachine.EventKind
			switch strings.TrimSpace(line) {
			case "c":
				kind = coin
			case "p":
				kind = push
			case "q":
				return nil
			case "":
				continue
			default:
				fmt.Fprintf(out, "unknown command %q\n", line)
				continue
			}

			state, err := m.Fire(ctx, statemachine.NewEvent(kind, string(kind)))
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
			fmt.Fprintf(out, "state: %s\n", state)
		}
	}
}
