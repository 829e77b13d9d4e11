package errors_test

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/victornm/quli/internal/errors"
)

func TestError_HTTPStatusCode(t *testing.T) {
	tests := map[string]struct {
		err  *errors.Error
		want int
	}{
		"invalid argument":   {err: errors.InvalidArgument("bad"), want: http.StatusBadRequest},
		"not found":          {err: errors.NotFound("quiz %s", "q1"), want: http.StatusNotFound},
		"resource exhausted": {err: errors.New(errors.CodeResourceExhausted), want: http.StatusTooManyRequests},
		"unavailable":        {err: errors.New(errors.CodeUnavailable), want: http.StatusServiceUnavailable},
		"internal":           {err: errors.Internal(stderrors.New("boom")), want: http.StatusInternalServerError},
		"unknown code":       {err: errors.New(errors.Code(codes.DataLoss)), want: http.StatusInternalServerError},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.err.HTTPStatusCode())
		})
	}
}

func TestConvert(t *testing.T) {
	cause := stderrors.New("db down")

	e := errors.Convert(fmt.Errorf("wrapped: %w", errors.NotFound("quiz not found: id=%s", "q1")))
	assert.Equal(t, errors.CodeNotFound, e.Code)
	assert.Equal(t, "quiz not found: id=q1", e.Message)

	e = errors.Convert(cause)
	assert.Equal(t, errors.CodeInternal, e.Code)
	assert.ErrorIs(t, e, cause)

	assert.True(t, errors.HasCode(fmt.Errorf("x: %w", errors.InvalidArgument("y")), errors.CodeInvalidArgument))
	assert.False(t, errors.HasCode(cause, errors.CodeInternal))
}

func TestError_GRPCStatus(t *testing.T) {
	err := errors.NotFound("result not found")

	s, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.NotFound, s.Code())
	assert.Equal(t, "result not found", s.Message())
}

func TestError_JSON(t *testing.T) {
	b, err := json.Marshal(errors.InvalidArgument("topic is required"))
	require.NoError(t, err)

	assert.JSONEq(t, `{"code":"InvalidArgument","message":"topic is required"}`, string(b))
}
