package logs

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/example/ec-storefront/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, config.Log{Level: "warn"}, "storefront")
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", "user_id", "u1")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, "storefront", record["service"])
	assert.Equal(t, "u1", record["user_id"])
}

func TestNew_Pretty(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, config.Log{Level: "debug", Pretty: true}, "")
	require.NoError(t, err)

	logger.Debug("hello")

	assert.Contains(t, buf.String(), "msg=hello")
}

func TestNew_UnknownLevel(t *testing.T) {
	_, err := New(&bytes.Buffer{}, config.Log{Level: "loud"}, "")

	assert.ErrorContains(t, err, "unknown log level")
}
