package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harunote/harunote-go/pkg/logger"
)

func TestError(t *testing.T) {
	t.Parallel()
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	empty := logger.Error(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestElapsed(t *testing.T) {
	t.Parallel()
	start := time.Now().Add(-500 * time.Millisecond)
	attr := logger.Elapsed(start)
	require.Equal(t, "elapsed", attr.Key)
	assert.GreaterOrEqual(t, attr.Value.Duration(), 500*time.Millisecond)
}

func TestRequestID(t *testing.T) {
	t.Parallel()
	attr := logger.RequestID("req-1")
	require.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "req-1", attr.Value.String())

	empty := logger.RequestID("")
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestUserID(t *testing.T) {
	t.Parallel()
	attr := logger.UserID(7)
	require.Equal(t, "user_id", attr.Key)
	assert.Equal(t, int64(7), attr.Value.Int64())
}

func TestHTTPAttrs(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "method", logger.Method("GET").Key)
	assert.Equal(t, "path", logger.Path("/signin").Key)
	assert.Equal(t, "status_code", logger.StatusCode(401).Key)
	assert.Equal(t, 401, int(logger.StatusCode(401).Value.Int64()))
}

func TestMetadataAttrs(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "component", logger.Component("apiclient").Key)
	assert.Equal(t, "event", logger.Event("refresh").Key)
	assert.Equal(t, "retry_count", logger.RetryCount(1).Key)
}
