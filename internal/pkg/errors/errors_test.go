package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRejectWrapsInputRejected(t *testing.T) {
	err := fmt.Errorf("upload: %w", Reject("Only PDF files are allowed."))
	require.True(t, errors.Is(err, ErrInputRejected))
	var inputErr *InputError
	require.True(t, errors.As(err, &inputErr))
	require.Equal(t, "Only PDF files are allowed.", inputErr.Message)
}

func TestIsUpstream(t *testing.T) {
	require.True(t, IsUpstream(fmt.Errorf("%w: query failed", ErrUpstream)))
	require.False(t, IsUpstream(ErrNotFound))
}
