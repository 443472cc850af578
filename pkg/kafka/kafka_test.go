package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applogger "Astrolabe/pkg/logger"
)

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type funcHandler struct {
	topic string
	calls int
	fn    func(n int) error
}

func (h *funcHandler) Topic() string { return h.topic }

func (h *funcHandler) Handle(_ context.Context, _ []byte) error {
	h.calls++
	return h.fn(h.calls)
}

func newTestConsumer(t *testing.T, dlq *fakeWriter, reg prometheus.Registerer) *Consumer {
	t.Helper()
	c, err := NewConsumer(applogger.Nop(),
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(2, time.Millisecond, 2*time.Millisecond),
		WithConsumerMetrics(reg),
	)
	require.NoError(t, err)
	if dlq != nil {
		c.cfg.DLQTopic = "dlq"
		c.dlq = dlq
	}
	return c
}

func TestProcessRetriesTransientErrors(t *testing.T) {
	c := newTestConsumer(t, &fakeWriter{}, nil)
	h := &funcHandler{topic: "in", fn: func(n int) error {
		if n < 3 {
			return errors.New("flaky")
		}
		return nil
	}}
	c.RegisterHandler(h)

	assert.True(t, c.process(context.Background(), kafka.Message{Topic: "in"}))
	assert.Equal(t, 3, h.calls)
}

func TestProcessPermanentGoesToDLQ(t *testing.T) {
	dlq := &fakeWriter{}
	reg := prometheus.NewRegistry()
	c := newTestConsumer(t, dlq, reg)
	h := &funcHandler{topic: "in", fn: func(int) error { return Permanent(errors.New("bad payload")) }}
	c.RegisterHandler(h)

	commit := c.process(context.Background(), kafka.Message{Topic: "in", Key: []byte("k"), Value: []byte("v")})
	assert.True(t, commit)
	assert.Equal(t, 1, h.calls)
	require.Len(t, dlq.msgs, 1)
	assert.Equal(t, "dlq", dlq.msgs[0].Topic)
	assert.Equal(t, []byte("v"), dlq.msgs[0].Value)
	assert.Equal(t, "source_topic", dlq.msgs[0].Headers[0].Key)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.results.WithLabelValues("in", "dlq")))
}

func TestProcessExhaustedRetries(t *testing.T) {
	dlq := &fakeWriter{}
	c := newTestConsumer(t, dlq, nil)
	h := &funcHandler{topic: "in", fn: func(int) error { return errors.New("down") }}
	c.RegisterHandler(h)

	assert.True(t, c.process(context.Background(), kafka.Message{Topic: "in"}))
	assert.Equal(t, 3, h.calls)
	assert.Len(t, dlq.msgs, 1)
}

func TestProcessWithoutDLQKeepsOffset(t *testing.T) {
	c := newTestConsumer(t, nil, nil)
	c.RegisterHandler(&funcHandler{topic: "in", fn: func(int) error { return Permanent(errors.New("x")) }})
	assert.False(t, c.process(context.Background(), kafka.Message{Topic: "in"}))

	dlq := &fakeWriter{err: errors.New("broker gone")}
	c = newTestConsumer(t, dlq, nil)
	c.RegisterHandler(&funcHandler{topic: "in", fn: func(int) error { return Permanent(errors.New("x")) }})
	assert.False(t, c.process(context.Background(), kafka.Message{Topic: "in"}))
}

func TestProcessRecoversPanics(t *testing.T) {
	dlq := &fakeWriter{}
	c := newTestConsumer(t, dlq, nil)
	h := &funcHandler{topic: "in", fn: func(int) error { panic("boom") }}
	c.RegisterHandler(h)

	assert.True(t, c.process(context.Background(), kafka.Message{Topic: "in"}))
	assert.Equal(t, 1, h.calls)
}

func TestPermanent(t *testing.T) {
	base := errors.New("base")
	p := Permanent(base)
	assert.True(t, IsPermanent(p))
	assert.ErrorIs(t, p, base)
	assert.False(t, IsPermanent(base))
	assert.Nil(t, Permanent(nil))
}

func TestBackoffWithJitter(t *testing.T) {
	for attempt := 1; attempt < 70; attempt++ {
		d := backoffWithJitter(10*time.Millisecond, time.Second, attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, time.Second)
	}
	assert.LessOrEqual(t, backoffWithJitter(10*time.Millisecond, time.Second, 1), 10*time.Millisecond)
}

func TestProducerPublish(t *testing.T) {
	w := &fakeWriter{}
	reg := prometheus.NewRegistry()
	p := &Producer{writer: w, comp: "snappy", metrics: newProducerMetrics(reg)}

	require.NoError(t, p.Publish(context.Background(), "events", []byte("id"), map[string]int{"a": 1}))
	require.NoError(t, p.Publish(context.Background(), "events", nil, []byte("raw")))
	require.Len(t, w.msgs, 2)
	assert.JSONEq(t, `{"a":1}`, string(w.msgs[0].Value))
	assert.Equal(t, "raw", string(w.msgs[1].Value))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.metrics.msgs.WithLabelValues("events", "ok")))

	w.err = errors.New("nope")
	assert.Error(t, p.Publish(context.Background(), "events", nil, "x"))

	_, err := NewProducer()
	assert.Error(t, err)
}
