package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateScore(t *testing.T) {
	assert.Equal(t, ErrScoreOutOfRange, ValidateScore(0))
	assert.NoError(t, ValidateScore(1))
	assert.NoError(t, ValidateScore(10))
	assert.Equal(t, ErrScoreOutOfRange, ValidateScore(11))
	assert.Equal(t, ErrScoreOutOfRange, ValidateScore(-3))
}
