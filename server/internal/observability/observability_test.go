package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestContext_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	rc := NewRequestContext(logger, 7, "s-1")
	require.Len(t, rc.RequestID, 36)
	rc.Model = "llama3.2:3b"
	rc.Info("chat completed", slog.Int(LogFieldRecords, 3))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "chat completed", entry["msg"])
	assert.Equal(t, rc.RequestID, entry[LogFieldRequestID])
	assert.Equal(t, float64(7), entry[LogFieldUserID])
	assert.Equal(t, "s-1", entry[LogFieldSessionID])
	assert.Equal(t, "llama3.2:3b", entry[LogFieldModel])
	assert.Equal(t, float64(3), entry[LogFieldRecords])
}

func TestRequestContext_AnonymousOmitsSession(t *testing.T) {
	var buf bytes.Buffer
	rc := NewRequestContextWithID(slog.New(slog.NewJSONHandler(&buf, nil)), "req-1", 0, "")
	rc.Warn("retrieval failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-1", entry[LogFieldRequestID])
	assert.NotContains(t, entry, LogFieldSessionID)
	assert.NotContains(t, entry, LogFieldModel)
}

func TestRequestContext_InContext(t *testing.T) {
	rc := NewRequestContext(nil, 1, "")
	ctx := WithRequestContext(context.Background(), rc)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, rc, got)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}

func TestMetrics(t *testing.T) {
	m := NewMetrics(3)
	m.RecordRequest("llama3.2:3b", 100*time.Millisecond, false)
	m.RecordRequest("llama3.2:3b", 300*time.Millisecond, true)
	m.RecordRequest("gemini-2.5-flash", 50*time.Millisecond, false)
	m.RecordRequest("gemini-2.5-flash", 10*time.Millisecond, false)

	snap := m.Snapshot()
	assert.Equal(t, int64(4), snap.RequestTotal)
	assert.Equal(t, int64(1), snap.RequestFailed)
	assert.InDelta(t, 75.0, snap.SuccessRate(), 0.001)
	assert.Equal(t, int64(200), snap.Models["llama3.2:3b"].AvgLatencyMs)
	assert.Equal(t, int64(1), snap.Models["llama3.2:3b"].ErrorCount)
	// Only the last three durations are kept: 300, 50, 10.
	assert.Equal(t, int64(50), snap.P50LatencyMs)

	m.Reset()
	assert.Zero(t, m.Snapshot().RequestTotal)
	assert.Equal(t, 100.0, m.Snapshot().SuccessRate())
}

func TestMetrics_Concurrent(t *testing.T) {
	m := NewMetrics(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordRequest("qwen2.5:7b", time.Millisecond, i%5 == 0)
		}()
	}
	wg.Wait()
	snap := m.Snapshot()
	assert.Equal(t, int64(50), snap.RequestTotal)
	assert.Equal(t, int64(10), snap.RequestFailed)
}
