package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibakshay/nest.land/pkg/logger"
)

type ctxKey string

func TestNew(t *testing.T) {
	t.Run("json output by default", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf))
		log.Info("registry started")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "registry started", record["msg"])
	})

	t.Run("static attrs applied", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithAttr(slog.String("service", "registryd")),
		)
		log.Info("hello")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "registryd", record["service"])
	})

	t.Run("context value extracted", func(t *testing.T) {
		var buf bytes.Buffer
		key := ctxKey("upload_token")
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithContextValue("upload_token", key),
		)

		ctx := context.WithValue(context.Background(), key, "tok123")
		log.InfoContext(ctx, "piece stored")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "tok123", record["upload_token"])
	})

	t.Run("invalid format panics", func(t *testing.T) {
		assert.Panics(t, func() {
			logger.New(logger.WithFormat("xml"))
		})
	})
}

func TestErrorAttr(t *testing.T) {
	assert.Equal(t, slog.Attr{}, logger.Error(nil))
	attr := logger.Error(assert.AnError)
	assert.Equal(t, "error", attr.Key)
}
