package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		want string
		typ  Type
	}{
		{want: "RunStarted", typ: RunStarted},
		{want: "FileCopied", typ: FileCopied},
		{want: "FileSkipped", typ: FileSkipped},
		{want: "FileFailed", typ: FileFailed},
		{want: "FileFiltered", typ: FileFiltered},
		{want: "DirExhausted", typ: DirExhausted},
		{want: "LogLine", typ: LogLine},
		{want: "RunCompleted", typ: RunCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.String())
		})
	}
}

func TestTypeStringUnknown(t *testing.T) {
	assert.Equal(t, "Unknown", Type(999).String())
	assert.Equal(t, "Unknown", Type(0).String())
	assert.Equal(t, "Unknown", Type(-1).String())
}

func TestEventZeroValue(t *testing.T) {
	var e Event
	assert.Equal(t, Type(0), e.Type)
	assert.True(t, e.Timestamp.IsZero())
	assert.Empty(t, e.Path)
	assert.Empty(t, e.Line)
	assert.Zero(t, e.Count)
	assert.Nil(t, e.Result)
	require.NoError(t, e.Error)
}

func TestEventFields(t *testing.T) {
	now := time.Now()
	e := Event{
		Type:      FileCopied,
		Timestamp: now,
		Path:      "dir/file.txt",
		Size:      1024,
		Count:     3,
	}
	assert.Equal(t, FileCopied, e.Type)
	assert.Equal(t, now, e.Timestamp)
	assert.Equal(t, "dir/file.txt", e.Path)
	assert.Equal(t, int64(1024), e.Size)
	assert.Equal(t, 3, e.Count)
}
