// Package monitor exposes state machines to external management tools.
//
// It provides three pieces that can be used independently:
//
//   - Registry keeps the machines to expose, keyed by name.
//   - Handler serves read-only JSON snapshots of the registered machines over HTTP
//     (built on github.com/go-chi/chi/v5), and Server runs it with graceful shutdown.
//   - RedisExporter is a statemachine.Observer that mirrors snapshots into Redis hashes
//     and publishes each Fire outcome on a channel.
//
// # Usage
//
//	reg := monitor.NewRegistry()
//	exporter := monitor.NewRedisExporter(client, monitor.WithRedisPrefix("fsm:"))
//
//	machine := statemachine.MustBuild(def, statemachine.WithObserver(exporter))
//	_ = reg.Register(machine)
//
//	srv := monitor.NewServer(cfg, monitor.WithServerLogger(log))
//	go srv.Run(ctx, monitor.Handler(reg, monitor.WithReadinessCheck(redis.Healthcheck(client))))
//
// Snapshots tolerate machines that never fired: LastEvent and LastTransition are then
// simply omitted from the JSON output.
package monitor
