package zerolog

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romaninsh/surreal.go/pkg/logger"
)

var _ logger.Logger = (*Handler)(nil)

func TestHandlerWritesStructuredFields(t *testing.T) {
	buffer := bytes.NewBuffer([]byte{})
	log := NewWriter(buffer)

	log.Info("connected", "host", "localhost", "attempt", 2)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &line))

	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "connected", line["message"])
	assert.Equal(t, "localhost", line["host"])
	assert.Equal(t, float64(2), line["attempt"])
	assert.Contains(t, line, "time")
}

func TestHandlerLevels(t *testing.T) {
	buffer := bytes.NewBuffer([]byte{})
	log := NewWriter(buffer)

	log.Error("boom")
	log.Warn("careful")
	log.Debug("details")

	out := buffer.String()
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"level":"debug"`)
}

func TestHandlerOddArgs(t *testing.T) {
	buffer := bytes.NewBuffer([]byte{})
	log := NewWriter(buffer)

	log.Info("msg", "dangling")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &line))
	assert.Equal(t, "dangling", line["!BADKEY"])
}
