package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet_SharedInstance(t *testing.T) {
	first := Get()
	second := Get()
	assert.Same(t, first, second)
}

func TestGet_ChainsDirectly(t *testing.T) {
	// Level methods chain straight off Get without a local variable
	Get().Debug().Str("key", "value").Msg("chained")
	Get().Error().Err(nil).Msg("chained error event")
}
