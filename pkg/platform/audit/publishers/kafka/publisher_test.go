package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	id "clinic/pkg/domain"
	audit "clinic/pkg/platform/audit"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
	closed  bool
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		if f.err == nil {
			f.records = append(f.records, r)
		}
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func (f *fakeProducer) Close() { f.closed = true }

func TestPublisher_Emit(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("keys by user and encodes payload", func(t *testing.T) {
		producer := &fakeProducer{}
		pub := NewWithProducer(producer, "clinic.audit")

		err := pub.Emit(context.Background(), audit.Event{
			Timestamp:  ts,
			UserID:     id.UserID(42),
			Action:     string(audit.EventReceiptEmitted),
			EntityKind: "receipt",
			EntityID:   7,
		})
		require.NoError(t, err)
		require.Len(t, producer.records, 1)

		rec := producer.records[0]
		assert.Equal(t, "clinic.audit", rec.Topic)
		assert.Equal(t, "42", string(rec.Key))
		assert.Equal(t, "receipt_emitted", string(rec.Headers[0].Value))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Value, &body))
		assert.Equal(t, "financial", body["category"])
		assert.Equal(t, "2026-03-01T12:00:00Z", body["timestamp"])
		assert.Equal(t, float64(7), body["entity_id"])
		assert.NotEmpty(t, body["id"])
	})

	t.Run("returns produce failure", func(t *testing.T) {
		producer := &fakeProducer{err: errors.New("broker unavailable")}
		pub := NewWithProducer(producer, "clinic.audit")

		err := pub.Emit(context.Background(), audit.Event{UserID: 1, Action: string(audit.EventUserActivated)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broker unavailable")
	})

	t.Run("close releases producer", func(t *testing.T) {
		producer := &fakeProducer{}
		NewWithProducer(producer, "t").Close()
		assert.True(t, producer.closed)
	})
}
