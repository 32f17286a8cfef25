package matrix

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &Error{Kind: KindProfile, Status: 400})
	assert.Equal(t, KindProfile, KindOf(err))
	assert.True(t, Retryable(err))
	assert.Equal(t, KindOther, KindOf(errors.New("boom")))
	assert.False(t, Retryable(&Error{Kind: KindRateLimited}))
	assert.Contains(t, err.Error(), "unsupported_profile")
}

func TestMatrix_Validate(t *testing.T) {
	m := Matrix{Distances: [][]float64{{0, 1}, {1, 0}}, Times: [][]float64{{0, 1}, {1}}}
	assert.Error(t, m.Validate(2))
	m.Times[1] = []float64{1, 0}
	assert.NoError(t, m.Validate(2))
	assert.Error(t, m.Validate(3))
}
