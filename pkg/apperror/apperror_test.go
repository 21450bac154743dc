package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	require.Equal(t, KindValidation, KindOf(Validation("bad input")))
	require.Equal(t, KindAlreadyReviewed, KindOf(AlreadyReviewed("too late")))
	require.Equal(t, KindInternal, KindOf(errors.New("plain")))
	require.Equal(t, KindInternal, KindOf(nil))

	// Kind survives wrapping
	wrapped := fmt.Errorf("outer: %w", NotFound("gone"))
	require.Equal(t, KindNotFound, KindOf(wrapped))
	require.True(t, IsKind(wrapped, KindNotFound))
}

func TestHTTPStatus(t *testing.T) {
	require.Equal(t, http.StatusBadRequest, HTTPStatus(Validation("x")))
	require.Equal(t, http.StatusBadRequest, HTTPStatus(InvalidState("x")))
	require.Equal(t, http.StatusConflict, HTTPStatus(AlreadyReviewed("x")))
	require.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("x")))
	require.Equal(t, http.StatusForbidden, HTTPStatus(Forbidden("x")))
	require.Equal(t, http.StatusInternalServerError, HTTPStatus(PayoutCreation(nil, "x")))
	require.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}

func TestUserMessageHidesCause(t *testing.T) {
	cause := errors.New("pq: connection reset")
	err := PayoutCreation(cause, "failed to write payout ledger")
	require.Equal(t, "failed to write payout ledger", UserMessage(err))
	require.ErrorIs(t, err, cause)

	require.Equal(t, "internal server error", UserMessage(errors.New("raw sql detail")))
}
