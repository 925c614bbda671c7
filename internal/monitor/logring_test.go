package monitor

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/TLimoges33/Syn-OS-sub017/internal/model"
	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEntry(level model.LogLevel, message string) model.LogEntry {
	return model.LogEntry{
		Level:      level,
		Category:   model.CategorySystem,
		CallerName: "test",
		Message:    message,
	}
}

func TestNewLogRing(t *testing.T) {
	ring := NewLogRing(100, discardLogger())

	assert.Equal(t, 100, ring.Capacity())
	assert.Equal(t, 0, ring.Len())
	assert.Equal(t, model.LevelTrace, ring.Level())
}

func TestNewLogRingDefaultCapacity(t *testing.T) {
	ring := NewLogRing(0, discardLogger())
	assert.Equal(t, DefaultLogCapacity, ring.Capacity())
}

func TestLogRingAppendAndSnapshot(t *testing.T) {
	ring := NewLogRing(10, discardLogger())

	ring.Append(testEntry(model.LevelInfo, "first"))
	ring.Append(testEntry(model.LevelInfo, "second"))

	entries := ring.Snapshot(0)
	assert.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Message)
	assert.Equal(t, "second", entries[1].Message)
	assert.False(t, entries[0].Timestamp.IsZero())
	assert.Equal(t, uint64(2), ring.Appended())
}

func TestLogRingEviction(t *testing.T) {
	// Configure MAX_LOG_ENTRIES = 5000, append 5001 entries sequentially:
	// the ring holds exactly the last 5000 in original relative order.
	ring := NewLogRing(5000, discardLogger())

	for i := 0; i < 5001; i++ {
		ring.Append(testEntry(model.LevelInfo, fmt.Sprintf("entry-%d", i)))
	}

	assert.Equal(t, 5000, ring.Len())
	assert.Equal(t, uint64(5001), ring.Appended())

	entries := ring.Snapshot(0)
	assert.Len(t, entries, 5000)
	assert.Equal(t, "entry-1", entries[0].Message)
	assert.Equal(t, "entry-5000", entries[4999].Message)
}

func TestLogRingEvictionPreservesOrder(t *testing.T) {
	ring := NewLogRing(3, discardLogger())

	for i := 0; i < 7; i++ {
		ring.Append(testEntry(model.LevelInfo, fmt.Sprintf("entry-%d", i)))
	}

	entries := ring.Snapshot(0)
	assert.Len(t, entries, 3)
	assert.Equal(t, "entry-4", entries[0].Message)
	assert.Equal(t, "entry-5", entries[1].Message)
	assert.Equal(t, "entry-6", entries[2].Message)
}

func TestLogRingSnapshotLimit(t *testing.T) {
	ring := NewLogRing(10, discardLogger())

	for i := 0; i < 5; i++ {
		ring.Append(testEntry(model.LevelInfo, fmt.Sprintf("entry-%d", i)))
	}

	entries := ring.Snapshot(2)
	assert.Len(t, entries, 2)
	assert.Equal(t, "entry-3", entries[0].Message)
	assert.Equal(t, "entry-4", entries[1].Message)
}

func TestLogRingDropsMalformedEntries(t *testing.T) {
	ring := NewLogRing(10, discardLogger())

	ring.Append(model.LogEntry{Level: model.LogLevel(200), Category: model.CategorySystem, Message: "bad level"})
	ring.Append(model.LogEntry{Level: model.LevelInfo, Category: model.LogCategory(200), Message: "bad category"})

	assert.Equal(t, 0, ring.Len())
	assert.Equal(t, uint64(2), ring.Dropped())
	assert.Equal(t, uint64(0), ring.Appended())
}

func TestLogRingTruncatesLongFields(t *testing.T) {
	ring := NewLogRing(10, discardLogger())

	ring.Append(model.LogEntry{
		Level:      model.LevelInfo,
		Category:   model.CategorySystem,
		CallerName: strings.Repeat("n", 100),
		Message:    strings.Repeat("m", 1000),
	})

	entries := ring.Snapshot(0)
	assert.Len(t, entries, 1)
	assert.Len(t, entries[0].CallerName, model.MaxCallerName)
	assert.Len(t, entries[0].Message, model.MaxMessageLen)
}

func TestLogRingLevelFilter(t *testing.T) {
	ring := NewLogRing(10, discardLogger())

	assert.NoError(t, ring.SetLevel(model.LevelWarning))
	assert.Equal(t, model.LevelWarning, ring.Level())

	ring.Append(testEntry(model.LevelDebug, "filtered out"))
	ring.Append(testEntry(model.LevelError, "kept"))

	entries := ring.Snapshot(0)
	assert.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Message)

	t.Run("invalid level rejected", func(t *testing.T) {
		assert.ErrorIs(t, ring.SetLevel(model.LogLevel(42)), ErrInvalidLevel)
		assert.Equal(t, model.LevelWarning, ring.Level())
	})
}

func TestLogRingMirrorsWarnings(t *testing.T) {
	var sink strings.Builder
	mirror := slog.New(slog.NewTextHandler(&sink, nil))
	ring := NewLogRing(10, mirror)

	ring.Append(testEntry(model.LevelInfo, "quiet"))
	ring.Append(testEntry(model.LevelCritical, "loud failure"))

	assert.NotContains(t, sink.String(), "quiet")
	assert.Contains(t, sink.String(), "loud failure")
}
