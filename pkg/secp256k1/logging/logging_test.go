package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coinbase/cb-secp256k1-go/pkg/secp256k1/logging"
)

func TestRedactedAttr(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	logger.With("adapter", "pure").Debug(context.Background(), "imported key", logging.Redacted("scalar"))

	out := buf.String()
	require.Contains(t, out, "adapter=pure")
	require.Contains(t, out, "scalar="+logging.Placeholder())
}

func TestDiscard(t *testing.T) {
	logger := logging.Discard()
	logger.Error(context.Background(), "dropped")
	require.NotNil(t, logger.With("k", "v"))
}

func TestOrDefault(t *testing.T) {
	require.NotNil(t, logging.OrDefault(nil))

	l := logging.Discard()
	require.Same(t, l, logging.OrDefault(l))
}

func TestLevelsRouteThroughHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))
	ctx := context.Background()

	logger.Debug(ctx, "skipped")
	logger.Info(ctx, "skipped")
	logger.Warn(ctx, "leak", "live", 2)
	logger.Error(ctx, "engine")

	out := buf.String()
	require.NotContains(t, out, "skipped")
	require.Contains(t, out, "level=WARN msg=leak live=2")
	require.Contains(t, out, "level=ERROR msg=engine")
}
