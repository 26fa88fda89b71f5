package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/jobgraph/component"
	"github.com/kbukum/jobgraph/redis"
)

func startStore(t *testing.T, cfg Config) *Component {
	t.Helper()
	c := NewComponent(cfg, nil, nil)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Stop(context.Background()) })
	return c
}

func TestComponent_Backends(t *testing.T) {
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mini.Close)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"default memory", Config{}},
		{"redis", Config{Type: TypeRedis, Redis: redis.Config{Addr: mini.Addr()}}},
		{"database", Config{Type: TypeDatabase, TTL: "1h"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cfg.Type == TypeDatabase {
				tt.cfg.Database.DSN = filepath.Join(t.TempDir(), "graphs.db")
				tt.cfg.Database.LogLevel = "silent"
			}
			c := startStore(t, tt.cfg)
			if h := c.Health(context.Background()); h.Status != component.StatusHealthy || h.Name != "graph-store" {
				t.Fatalf("unexpected health %+v", h)
			}
			exerciseStore(t, c.Store())
		})
	}
}

func TestComponent_InvalidConfig(t *testing.T) {
	c := NewComponent(Config{Type: "mongo"}, nil, nil)
	if err := c.Start(context.Background()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if h := c.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Fatalf("expected unhealthy before start, got %s", h.Status)
	}

	c = NewComponent(Config{TTL: "forever"}, nil, nil)
	if err := c.Start(context.Background()); err == nil {
		t.Fatal("expected error for bad ttl")
	}
}

func TestComponent_Describe(t *testing.T) {
	d := NewComponent(Config{Type: TypeRedis, Redis: redis.Config{Addr: "cache:6379"}, TTL: "24h"}, nil, nil).Describe()
	if d.Details != "redis cache:6379 prefix=pipeline:graph ttl=24h" {
		t.Fatalf("unexpected details %q", d.Details)
	}
}
