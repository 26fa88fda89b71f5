package redis

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	apperrors "github.com/kbukum/jobgraph/errors"
	"github.com/kbukum/jobgraph/logger"
)

type graphRecord struct {
	Nodes []string `json:"nodes"`
	Level int      `json:"level"`
}

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mini.Close)

	client, err := New(Config{Enabled: true, Addr: mini.Addr()}, logger.Nop())
	if err != nil {
		t.Fatalf("failed to create redis client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client, mini
}

func TestTypedStore_SaveAndLoad(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewTypedStore[graphRecord](client, "pipeline:graph")
	ctx := context.Background()

	rec := graphRecord{Nodes: []string{"green", "yellow"}, Level: 1}
	if err := store.Save(ctx, "job-1", &rec, 0); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Load(ctx, "job-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got == nil || len(got.Nodes) != 2 || got.Level != 1 {
		t.Fatalf("unexpected record %+v", got)
	}
}

func TestTypedStore_LoadMissing(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewTypedStore[graphRecord](client, "pipeline:graph")

	got, err := store.Load(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing key, got %+v", got)
	}
}

func TestTypedStore_LoadCorrupt(t *testing.T) {
	client, mini := newTestClient(t)
	store := NewTypedStore[graphRecord](client, "pipeline:graph")
	_ = mini.Set("pipeline:graph:job-1", "{not json")

	_, err := store.Load(context.Background(), "job-1")
	if !apperrors.HasCode(err, apperrors.ErrCodeStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestTypedStore_Delete(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewTypedStore[graphRecord](client, "pipeline:graph")
	ctx := context.Background()

	_ = store.Save(ctx, "job-1", &graphRecord{Level: 2}, 0)
	if err := store.Delete(ctx, "job-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, "job-1"); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if got, _ := store.Load(ctx, "job-1"); got != nil {
		t.Fatalf("expected nil after delete, got %+v", got)
	}
}

func TestTypedStore_TTL(t *testing.T) {
	client, mini := newTestClient(t)
	store := NewTypedStore[graphRecord](client, "pipeline:graph")
	ctx := context.Background()

	if err := store.Save(ctx, "job-1", &graphRecord{}, 2*time.Second); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if got, err := store.Load(ctx, "job-1"); err != nil || got == nil {
		t.Fatalf("expected value before TTL, got %v, err %v", got, err)
	}

	mini.FastForward(3 * time.Second)

	got, err := store.Load(ctx, "job-1")
	if err != nil {
		t.Fatalf("Load after TTL failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil after TTL expiration, got %+v", got)
	}
}

func TestTypedStore_KeyPrefix(t *testing.T) {
	client, mini := newTestClient(t)
	ctx := context.Background()

	_ = NewTypedStore[graphRecord](client, "pipeline:graph").Save(ctx, "job-1", &graphRecord{}, 0)
	_ = NewTypedStore[graphRecord](client, "").Save(ctx, "bare", &graphRecord{}, 0)

	if raw, err := mini.Get("pipeline:graph:job-1"); err != nil || raw == "" {
		t.Fatalf("expected prefixed key, err: %v", err)
	}
	if raw, err := mini.Get("bare"); err != nil || raw == "" {
		t.Fatalf("expected bare key, err: %v", err)
	}
}

func TestTypedStore_Keys(t *testing.T) {
	client, mini := newTestClient(t)
	store := NewTypedStore[graphRecord](client, "pipeline:graph")
	ctx := context.Background()

	for _, id := range []string{"job-b", "job-a"} {
		_ = store.Save(ctx, id, &graphRecord{}, 0)
	}
	_ = mini.Set("unrelated", "x")

	keys, err := store.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "job-a" || keys[1] != "job-b" {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestClient_PingAndIsNil(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	if err := client.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	_, err := client.Get(ctx, "missing")
	if !IsNil(err) {
		t.Fatalf("expected redis nil, got %v", err)
	}
}

func TestNew_Disabled(t *testing.T) {
	if _, err := New(Config{}, nil); err == nil {
		t.Fatal("expected error for disabled redis")
	}
	if _, err := New(Config{Enabled: true, DialTimeout: "soon"}, nil); err == nil {
		t.Fatal("expected error for bad dial timeout")
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mini.Close)

	c := NewComponent(Config{Enabled: true, Addr: mini.Addr()}, nil)
	ctx := context.Background()
	if h := c.Health(ctx); h.Status != "unhealthy" {
		t.Fatalf("expected unhealthy before start, got %s", h.Status)
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if h := c.Health(ctx); h.Status != "healthy" {
		t.Fatalf("expected healthy, got %+v", h)
	}
	if d := c.Describe(); d.Type != "redis" {
		t.Fatalf("unexpected description %+v", d)
	}
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}
