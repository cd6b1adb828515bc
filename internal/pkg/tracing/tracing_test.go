package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_Stdout(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Enabled: true, ServiceName: "kidcalc-test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
