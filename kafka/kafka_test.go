package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kbukum/jobgraph/component"
	apperrors "github.com/kbukum/jobgraph/errors"
)

type fakeRunner struct {
	topic  string
	mu     sync.Mutex
	ran    bool
	closed bool
}

func (f *fakeRunner) Consume(ctx context.Context) error {
	f.mu.Lock()
	f.ran = true
	f.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeRunner) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeRunner) Topic() string { return f.topic }

type fakeProducer struct{ closed bool }

func (f *fakeProducer) Close() error {
	f.closed = true
	return nil
}

func TestConfig_DefaultsAndValidate(t *testing.T) {
	cfg := Config{Enabled: true}
	cfg.ApplyDefaults()
	if cfg.TaskTopic != "jobgraph.tasks" || cfg.ReadyTopic != "jobgraph.ready" || cfg.GroupID != "jobgraph" {
		t.Fatalf("unexpected topic defaults %+v", cfg)
	}
	if cfg.RequiredAcks != -1 {
		t.Fatalf("expected acks=all, got %d", cfg.RequiredAcks)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	bad := cfg
	bad.DialTimeout = "later"
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for bad dial timeout")
	}

	sasl := cfg
	sasl.EnableSASL = true
	sasl.SASLMechanism = "GSSAPI"
	if err := sasl.Validate(); err == nil {
		t.Fatal("expected error for unsupported SASL mechanism")
	}
}

func TestCreateTransport_SASL(t *testing.T) {
	cfg := Config{EnableSASL: true, Username: "engine", Password: "secret"}
	cfg.ApplyDefaults()
	tr, err := CreateTransport(&cfg)
	if err != nil {
		t.Fatalf("CreateTransport failed: %v", err)
	}
	if tr.SASL == nil || tr.SASL.Name() != "PLAIN" {
		t.Fatalf("expected PLAIN mechanism, got %v", tr.SASL)
	}
	if tr.TLS != nil {
		t.Fatal("TLS should be off")
	}

	cfg.EnableTLS = true
	cfg.TLSCAFile = "/nonexistent/ca.pem"
	if _, err := CreateDialer(&cfg); err == nil {
		t.Fatal("expected error for missing CA file")
	}
}

func TestErrors(t *testing.T) {
	refused := errors.New("dial tcp 127.0.0.1:9092: connection refused")
	if !IsConnectionError(refused) || !IsRetryableError(refused) {
		t.Fatal("expected connection refused to be retryable")
	}
	if IsRetryableError(errors.New("message too large")) {
		t.Fatal("message too large must not be retryable")
	}
	if FromKafka(nil, "t") != nil {
		t.Fatal("expected nil for nil error")
	}
	if e := FromKafka(refused, "jobgraph.ready"); e.Code != apperrors.ErrCodeConnectionFailed || e.Details["topic"] != "jobgraph.ready" {
		t.Fatalf("unexpected translation %+v", e)
	}
	if e := FromKafka(errors.New("request timed out"), "t"); !e.Retryable {
		t.Fatal("expected timeout to be retryable")
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	c := NewComponent(Config{Enabled: true}, nil)
	r := &fakeRunner{topic: "jobgraph.tasks"}
	p := &fakeProducer{}
	c.AddConsumer(r)
	c.SetProducer(p)

	if h := c.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Fatalf("expected unhealthy before start, got %s", h.Status)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	cancel()

	if d := c.Describe(); d.Details != "brokers=[localhost:9092] consume=[jobgraph.tasks] produce=jobgraph.ready" {
		t.Fatalf("unexpected description %q", d.Details)
	}

	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if !r.closed || !p.closed {
		t.Fatal("expected consumer and producer to be closed")
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("second Stop failed: %v", err)
	}
}
