package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidationError_MatchesInvalidInput(t *testing.T) {
	err := fmt.Errorf("advance: %w", NewValidationError("%s is required", "tracking_number"))
	require.True(t, errors.Is(err, ErrInvalidInput))
	require.False(t, errors.Is(err, ErrPersistence))

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	require.Equal(t, "tracking_number is required", ve.Msg)
}
