package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/wcprobe/internal/testutil"
)

func newTestLogger(buf *bytes.Buffer, opts ...Option) *Logger {
	base := []Option{
		WithSink(NewConsoleSink(buf)),
		WithSequence(testutil.NewDeterministicClock()),
		WithClock(testutil.NewStepClock(time.Millisecond).Now),
	}
	return New(append(base, opts...)...)
}

func TestLogger_PreservesEmissionOrder(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf)

	log.Info("Starting: a")
	log.Debug("detail")
	log.Error("FAIL: a")
	log.Warn("balances differ")

	entries := log.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, []string{"Starting: a", "detail", "FAIL: a", "balances differ"},
		[]string{entries[0].Message, entries[1].Message, entries[2].Message, entries[3].Message})
	for i, e := range entries {
		assert.Equal(t, int64(i+1), e.Seq)
	}
	assert.Equal(t, LevelDebug, entries[1].Level)
	assert.Equal(t, testutil.Epoch.UnixMilli()+1, entries[1].TimestampMS)
}

func TestLogger_EntriesReturnsCopy(t *testing.T) {
	log := Discard()
	log.Info("one")

	entries := log.Entries()
	entries[0].Message = "mutated"

	assert.Equal(t, "one", log.Entries()[0].Message)
}

func TestLogger_DataFromKeyValues(t *testing.T) {
	log := Discard()
	log.Info("with data", "topic_id", "0.0.42", "count", 3)
	log.Info("odd", "dangling")
	log.Info("plain")

	entries := log.Entries()
	assert.Equal(t, map[string]any{"topic_id": "0.0.42", "count": 3}, entries[0].Data)
	assert.Equal(t, map[string]any{"!BADKEY": "dangling"}, entries[1].Data)
	assert.Nil(t, entries[2].Data)
}

func TestLogger_ThresholdFiltersSinkOnly(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, WithThreshold(LevelWarn))

	log.Debug("quiet debug")
	log.Info("quiet info")
	log.Warn("loud warn")
	log.Error("loud error")

	out := buf.String()
	assert.NotContains(t, out, "quiet debug")
	assert.NotContains(t, out, "quiet info")
	assert.Contains(t, out, "loud warn")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "level=ERROR")

	// Every entry is stored regardless of threshold.
	assert.Equal(t, 4, log.Len())
}

func TestLogger_ClearKeepsThreshold(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, WithThreshold(LevelError))
	log.Error("before")

	log.Clear()

	assert.Equal(t, 0, log.Len())
	assert.Equal(t, LevelError, log.Threshold())

	log.Warn("after clear warn")
	assert.NotContains(t, buf.String(), "after clear warn")

	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].Seq)
}

func TestLogger_ExportAfterClearIsEmptyArray(t *testing.T) {
	log := Discard()
	log.Info("something")
	log.Clear()

	data, err := log.Export()
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestLogger_ExportShape(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf)
	log.Info(`PASS: <script>alert("x")</script>`, "duration_ms", 12)

	data, err := log.Export()
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, float64(1), raw[0]["seq"])
	assert.Equal(t, "info", raw[0]["level"])
	assert.Equal(t, `PASS: <script>alert("x")</script>`, raw[0]["message"])
	assert.Equal(t, float64(testutil.Epoch.UnixMilli()), raw[0]["timestamp_ms"])
	assert.Contains(t, string(data), "<script>", "HTML must not be escaped")
}

func TestParseExport_RoundTrip(t *testing.T) {
	log := Discard()
	log.Warn("first")
	log.Error("second")

	data, err := log.Export()
	require.NoError(t, err)

	entries, err := ParseExport(data)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, LevelWarn, entries[0].Level)
	assert.Equal(t, "second", entries[1].Message)
	assert.Equal(t, entries[1].TimestampMS, entries[1].Timestamp.UnixMilli())
}

func TestParseExport_Invalid(t *testing.T) {
	_, err := ParseExport([]byte(`{"not":"an array"}`))
	assert.Error(t, err)
}

func TestLogger_ConcurrentWrites(t *testing.T) {
	log := Discard()
	const writers = 20

	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(i int) {
			defer wg.Done()
			log.Info(fmt.Sprintf("writer %d", i))
		}(i)
	}
	wg.Wait()

	entries := log.Entries()
	require.Len(t, entries, writers)
	for i := 1; i < len(entries); i++ {
		assert.Greater(t, entries[i].Seq, entries[i-1].Seq)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
