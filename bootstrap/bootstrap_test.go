package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/jobgraph/component"
	"github.com/kbukum/jobgraph/config"
	"github.com/kbukum/jobgraph/logger"
)

type testConfig struct {
	config.ServiceConfig
	Workers int
}

func (c *testConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.Workers == 0 {
		c.Workers = 2
	}
}

func (c *testConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	return nil
}

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	events   *[]string
}

func (m *mockComponent) Name() string { return m.name }

func (m *mockComponent) Start(context.Context) error {
	*m.events = append(*m.events, "start:"+m.name)
	return m.startErr
}

func (m *mockComponent) Stop(context.Context) error {
	*m.events = append(*m.events, "stop:"+m.name)
	return m.stopErr
}

func (m *mockComponent) Health(context.Context) component.Health {
	if m.health.Name == "" {
		return component.Health{Name: m.name, Status: component.StatusHealthy}
	}
	return m.health
}

func newTestApp(t *testing.T, opts ...Option) *App[*testConfig] {
	t.Helper()
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "jobgraph-test", Version: "1.0.0"}}
	opts = append([]Option{WithLogger(logger.Nop()), WithSummaryWriter(io.Discard)}, opts...)
	app, err := NewApp(cfg, opts...)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t, WithGracefulTimeout(time.Second))
	if app.Name != "jobgraph-test" || app.Version != "1.0.0" {
		t.Fatalf("unexpected identity %s %s", app.Name, app.Version)
	}
	if app.Cfg.Workers != 2 {
		t.Fatalf("expected typed config defaults applied, got %d", app.Cfg.Workers)
	}
	if app.gracefulTimeout != time.Second {
		t.Fatalf("expected 1s timeout, got %v", app.gracefulTimeout)
	}
}

func TestNewApp_Validation(t *testing.T) {
	cfg := &testConfig{Workers: -1}
	if _, err := NewApp(cfg, WithLogger(logger.Nop())); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestRunTask_Lifecycle(t *testing.T) {
	var events []string
	app := newTestApp(t)
	_ = app.RegisterComponent(&mockComponent{name: "store", events: &events})
	_ = app.RegisterComponent(&mockComponent{name: "kafka", events: &events})
	if err := app.RegisterComponent(&mockComponent{name: "kafka", events: &events}); err == nil {
		t.Fatal("expected duplicate registration error")
	}

	app.OnStart(func(context.Context) error { events = append(events, "onStart"); return nil })
	app.OnConfigure(func(_ context.Context, a *App[*testConfig]) error {
		events = append(events, fmt.Sprintf("configure:%d", a.Cfg.Workers))
		return nil
	})
	app.OnReady(func(context.Context) error { events = append(events, "onReady"); return nil })
	app.OnStop(func(context.Context) error { events = append(events, "onStop"); return nil })

	err := app.RunTask(context.Background(), func(context.Context) error {
		events = append(events, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}

	want := "start:store,start:kafka,onStart,configure:2,onReady,task,onStop,stop:kafka,stop:store"
	if got := strings.Join(events, ","); got != want {
		t.Fatalf("unexpected lifecycle\n got: %s\nwant: %s", got, want)
	}
}

func TestRunTask_TaskErrorWins(t *testing.T) {
	var events []string
	app := newTestApp(t)
	_ = app.RegisterComponent(&mockComponent{name: "store", stopErr: errors.New("stop failed"), events: &events})

	taskErr := errors.New("task failed")
	if err := app.RunTask(context.Background(), func(context.Context) error { return taskErr }); !errors.Is(err, taskErr) {
		t.Fatalf("expected task error, got %v", err)
	}
}

func TestRun_StartFailureCleansUp(t *testing.T) {
	var events []string
	app := newTestApp(t)
	_ = app.RegisterComponent(&mockComponent{name: "store", events: &events})
	_ = app.RegisterComponent(&mockComponent{name: "kafka", startErr: errors.New("no broker"), events: &events})

	if err := app.Run(context.Background()); err == nil {
		t.Fatal("expected start failure")
	}
	if got := strings.Join(events, ","); got != "start:store,start:kafka,stop:store" {
		t.Fatalf("unexpected events %s", got)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	var events []string
	app := newTestApp(t)
	_ = app.RegisterComponent(&mockComponent{name: "store", events: &events})

	ctx, cancel := context.WithCancel(context.Background())
	app.OnReady(func(context.Context) error { cancel(); return nil })

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if events[len(events)-1] != "stop:store" {
		t.Fatalf("expected store stopped, got %v", events)
	}
}

func TestReadyCheck(t *testing.T) {
	var events []string
	app := newTestApp(t)
	_ = app.RegisterComponent(&mockComponent{name: "ok", events: &events})
	if err := app.ReadyCheck(context.Background()); err != nil {
		t.Fatalf("expected ready, got %v", err)
	}
	_ = app.RegisterComponent(&mockComponent{
		name:   "redis",
		health: component.Health{Name: "redis", Status: component.StatusUnhealthy, Message: "refused"},
		events: &events,
	})
	err := app.ReadyCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "redis=unhealthy(refused)") {
		t.Fatalf("expected redis listed, got %v", err)
	}
}

func TestHookErrorAbortsStartup(t *testing.T) {
	var events []string
	app := newTestApp(t)
	_ = app.RegisterComponent(&mockComponent{name: "store", events: &events})
	app.OnStart(func(context.Context) error { return errors.New("boom") })

	err := app.RunTask(context.Background(), func(context.Context) error {
		t.Fatal("task must not run")
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "onStart hook failed") {
		t.Fatalf("expected onStart failure, got %v", err)
	}
}

func TestSummary_Write(t *testing.T) {
	var events []string
	reg := component.NewRegistry(nil)
	_ = reg.Register(&mockComponent{name: "graph-store", events: &events})

	var buf bytes.Buffer
	NewSummary("jobgraph", "1.2.3", 1500*time.Millisecond).Write(context.Background(), &buf, reg)
	out := buf.String()
	for _, want := range []string{"jobgraph 1.2.3 started in 1.50s", "Health (healthy)", "graph-store: healthy"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	NewSummary("jobgraph", "1", 0).Write(context.Background(), &buf, component.NewRegistry(nil))
	if !strings.Contains(buf.String(), "No components registered") {
		t.Fatalf("unexpected empty summary %s", buf.String())
	}
}
