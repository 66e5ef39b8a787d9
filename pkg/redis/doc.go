// Package redis provides connection helpers for redis-backed components:
// Connect with retry and a bounded connection phase, and a Healthcheck
// suitable for readiness probes.
//
// Configuration is env-based:
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//	client, err := redis.Connect(ctx, cfg)
package redis
