package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUserFacing(t *testing.T) {
	assert.True(t, IsUserFacing(Validationf("You don't have enough coins.")))
	assert.True(t, IsUserFacing(ErrNotFound))
	assert.True(t, IsUserFacing(fmt.Errorf("%w: contract already drafted", ErrConflict)))
	assert.True(t, IsUserFacing(fmt.Errorf("outer: %w", Validationf("inner"))))

	assert.False(t, IsUserFacing(errors.New("pq: connection refused")))
	assert.False(t, IsUserFacing(fmt.Errorf("failed to insert draft: %w", errors.New("timeout"))))
}

func TestValidationfMessageVerbatim(t *testing.T) {
	err := Validationf("Need %d defeats, you have %d.", 5, 2)
	assert.Equal(t, "Need 5 defeats, you have 2.", err.Error())
}
