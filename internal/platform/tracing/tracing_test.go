package tracing_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/Ketaiwk/10xcards/internal/config"
	"github.com/Ketaiwk/10xcards/internal/platform/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetup_Disabled(t *testing.T) {
	shutdown, err := tracing.Setup(context.Background(), config.TracingConfig{}, "test", nil, nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_StdoutExporter(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := tracing.Setup(context.Background(), config.TracingConfig{
		Enabled:     true,
		SampleRatio: 1,
		ServiceName: "10xcards-test",
	}, "test", &buf, nil)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "unit-span")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "unit-span")
	assert.Contains(t, buf.String(), "10xcards-test")
}
