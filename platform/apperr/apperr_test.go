package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStatusKinds(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
		http   int
	}{
		{http.StatusNotFound, KindNotFound, http.StatusNotFound},
		{http.StatusUnauthorized, KindUnauthorized, http.StatusUnauthorized},
		{http.StatusUnprocessableEntity, KindValidation, http.StatusBadRequest},
		{http.StatusConflict, KindConflict, http.StatusConflict},
		{http.StatusInternalServerError, KindUpstream, http.StatusBadGateway},
	}

	for _, tc := range tests {
		err := FromStatus(tc.status, "detail")
		assert.Equal(t, tc.want, err.Kind, "status %d", tc.status)
		assert.Equal(t, tc.http, err.HTTPStatus(), "status %d", tc.status)
		assert.Equal(t, tc.status, err.Status)
	}
}

func TestGetKindFollowsWrappedChain(t *testing.T) {
	base := Timeout(context.DeadlineExceeded)
	wrapped := fmt.Errorf("chatbot: %w", base)

	assert.True(t, Is(wrapped, KindTimeout))
	assert.True(t, errors.Is(wrapped, context.DeadlineExceeded))
	assert.Equal(t, KindUnknown, GetKind(errors.New("plain")))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Credenciales inválidas", UserMessage(FromStatus(401, "Credenciales inválidas"), "fallback"))
	assert.Equal(t, "fallback", UserMessage(errors.New("boom"), "fallback"))
	assert.Equal(t, "fallback", UserMessage(FromStatus(500, ""), "fallback"))
}

func TestErrorStringIncludesOp(t *testing.T) {
	err := Validation("email requerido").WithOp("leads.Preview")
	assert.Equal(t, "leads.Preview: email requerido", err.Error())
}
