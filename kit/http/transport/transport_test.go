package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/superj80820/session-auth/kit/code"
)

type loginRequest struct {
	Email string `json:"email"`
}

func TestDecodeJsonRequest(t *testing.T) {
	ctx := context.Background()

	req, err := DecodeJsonRequest[loginRequest](ctx, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@x.com"}`)))
	assert.Nil(t, err)
	assert.Equal(t, loginRequest{Email: "a@x.com"}, req)

	_, err = DecodeJsonRequest[loginRequest](ctx, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`)))
	assert.Equal(t, http.StatusBadRequest, code.ParseErrorCode(err).GeneralCode)
	assert.Equal(t, code.InvalidBody, code.ParseErrorCode(err).Code)

	_, err = DecodeJsonRequest[loginRequest](ctx, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("")))
	assert.Equal(t, http.StatusBadRequest, code.ParseErrorCode(err).GeneralCode)

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"`+strings.Repeat("a", 64)+`"}`))
	r.Body = http.MaxBytesReader(httptest.NewRecorder(), r.Body, 16)
	_, err = DecodeJsonRequest[loginRequest](ctx, r)
	assert.Equal(t, http.StatusRequestEntityTooLarge, code.ParseErrorCode(err).GeneralCode)
}

func TestDecodeOptionalJsonRequest(t *testing.T) {
	ctx := context.Background()

	req, err := DecodeOptionalJsonRequest[loginRequest](ctx, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("")))
	assert.Nil(t, err)
	assert.Equal(t, loginRequest{}, req)

	req, err = DecodeOptionalJsonRequest[loginRequest](ctx, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@x.com"}`)))
	assert.Nil(t, err)
	assert.Equal(t, loginRequest{Email: "a@x.com"}, req)

	_, err = DecodeOptionalJsonRequest[loginRequest](ctx, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`[`)))
	assert.NotNil(t, err)
}
