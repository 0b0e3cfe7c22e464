package apierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "plain string body", body: `"farmer code already exists"`, want: "farmer code already exists"},
		{name: "raw text body", body: `backend exploded`, want: "backend exploded"},
		{name: "message field", body: `{"message":"invalid date range"}`, want: "invalid date range"},
		{name: "error field", body: `{"error":"center not found"}`, want: "center not found"},
		{name: "message wins over error", body: `{"message":"first","error":"second"}`, want: "first"},
		{name: "empty body", body: ``, want: "an error occurred"},
		{name: "object with neither field", body: `{"detail":"nope"}`, want: "an error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ExtractMessage([]byte(tt.body)))
		})
	}
}

func TestUserMessage(t *testing.T) {
	require.Equal(t, "Session expired. Please login again.", UserMessage(ErrSessionExpired))
	require.Equal(t, "Session expired. Please login again.",
		UserMessage(fmt.Errorf("wrapped: %w", ErrSessionExpired)))

	require.Equal(t, "Network error. Please check your internet connection.",
		UserMessage(&NetworkError{Err: errors.New("dial tcp: refused")}))

	require.Equal(t, "Invalid username or password.",
		UserMessage(&HTTPError{Status: 401, Message: "unauthorized"}))
	require.Equal(t, "farmer not found",
		UserMessage(&HTTPError{Status: 404, Message: "farmer not found"}))

	require.Equal(t, "validation: paymentDate is required",
		UserMessage(&ValidationError{Field: "paymentDate", Reason: "is required"}))

	require.Empty(t, UserMessage(nil))
}

func TestTypedErrorsUnwrap(t *testing.T) {
	netErr := &NetworkError{Err: errors.New("timeout")}
	wrapped := fmt.Errorf("list farmers: %w", netErr)

	var target *NetworkError
	require.True(t, errors.As(wrapped, &target))
	require.EqualError(t, target.Err, "timeout")

	var httpTarget *HTTPError
	require.False(t, errors.As(wrapped, &httpTarget))
}
