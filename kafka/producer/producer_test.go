package producer

import (
	"context"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	apperrors "github.com/kbukum/jobgraph/errors"
	"github.com/kbukum/jobgraph/kafka"
)

type fakeWriter struct {
	errs   []error
	calls  int
	msgs   []kafkago.Message
	closed int
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return err
		}
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed++
	return nil
}

func newTestProducer(w *fakeWriter, retries int) *Producer {
	p := NewWithWriter(w, retries, nil)
	p.backoff = time.Millisecond
	return p
}

func TestProducer_RetriesTransientErrors(t *testing.T) {
	w := &fakeWriter{errs: []error{errors.New("connection reset by peer"), nil}}
	p := newTestProducer(w, 3)

	msg := kafkago.Message{Topic: "jobgraph.ready", Key: []byte("job:green"), Value: []byte("{}")}
	if err := p.WriteMessages(context.Background(), msg); err != nil {
		t.Fatalf("WriteMessages failed: %v", err)
	}
	if w.calls != 2 || len(w.msgs) != 1 {
		t.Fatalf("expected one retry then success, calls=%d msgs=%d", w.calls, len(w.msgs))
	}
}

func TestProducer_StopsOnPermanentError(t *testing.T) {
	w := &fakeWriter{errs: []error{errors.New("message too large")}}
	p := newTestProducer(w, 5)

	err := p.WriteMessages(context.Background(), kafkago.Message{Topic: "jobgraph.ready"})
	if err == nil || w.calls != 1 {
		t.Fatalf("expected a single failed attempt, calls=%d err=%v", w.calls, err)
	}
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Details["topic"] != "jobgraph.ready" {
		t.Fatalf("expected AppError with topic, got %v", err)
	}
}

func TestProducer_GivesUpAfterRetries(t *testing.T) {
	refused := errors.New("dial tcp: connection refused")
	w := &fakeWriter{errs: []error{refused, refused, refused}}
	p := newTestProducer(w, 3)

	err := p.WriteMessages(context.Background(), kafkago.Message{Topic: "t"})
	if !apperrors.HasCode(err, apperrors.ErrCodeConnectionFailed) || w.calls != 3 {
		t.Fatalf("expected connection failure after 3 calls, calls=%d err=%v", w.calls, err)
	}
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w, 1)
	_ = p.Close()
	_ = p.Close()
	if w.closed != 1 {
		t.Fatalf("expected writer closed once, got %d", w.closed)
	}
	if err := p.WriteMessages(context.Background(), kafkago.Message{}); err == nil {
		t.Fatal("expected error after close")
	}
}

func TestNew_Disabled(t *testing.T) {
	if _, err := New(kafka.Config{}, nil); err == nil {
		t.Fatal("expected error for disabled kafka")
	}
}
