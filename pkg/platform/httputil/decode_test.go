package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "gatepass/pkg/domain-errors"
)

type recipientRequest struct {
	Recipient string `json:"recipient" validate:"required"`
	trimmed   bool
}

func (r *recipientRequest) Normalize() {
	r.Recipient = strings.TrimSpace(r.Recipient)
	r.trimmed = true
}

func (r *recipientRequest) Validate() error {
	if !strings.HasPrefix(r.Recipient, "0x") {
		return errors.New("recipient must be hex")
	}
	return nil
}

type durationRequest struct {
	Seconds uint64 `json:"pass_duration_seconds"`
}

func (r *durationRequest) Validate() error {
	if r.Seconds == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "pass_duration_seconds is required")
	}
	return nil
}

func decodeBody[T any](t *testing.T, body string) (*T, bool, *httptest.ResponseRecorder) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	out, ok := DecodeAndPrepare[T](w, req, logger, context.Background(), "req-1")
	return out, ok, w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestDecodeAndPrepare(t *testing.T) {
	t.Run("malformed JSON is a bad request", func(t *testing.T) {
		out, ok, w := decodeBody[recipientRequest](t, `{not json`)
		assert.False(t, ok)
		assert.Nil(t, out)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", errorBody(t, w)["error"])
	})

	t.Run("normalizes before validating", func(t *testing.T) {
		out, ok, _ := decodeBody[recipientRequest](t, `{"recipient":"  0xabc  "}`)
		require.True(t, ok)
		assert.True(t, out.trimmed)
		assert.Equal(t, "0xabc", out.Recipient)
	})

	t.Run("struct tag failure maps to validation_error", func(t *testing.T) {
		_, ok, w := decodeBody[recipientRequest](t, `{"recipient":""}`)
		assert.False(t, ok)
		resp := errorBody(t, w)
		assert.Equal(t, "validation_error", resp["error"])
		assert.Contains(t, resp["error_description"], "recipient failed required")
	})

	t.Run("plain Validate error maps to validation_error", func(t *testing.T) {
		_, ok, w := decodeBody[recipientRequest](t, `{"recipient":"abc"}`)
		assert.False(t, ok)
		assert.Equal(t, "validation_error", errorBody(t, w)["error"])
	})

	t.Run("domain error from Validate keeps its code", func(t *testing.T) {
		_, ok, w := decodeBody[durationRequest](t, `{}`)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := errorBody(t, w)
		assert.Equal(t, "bad_request", resp["error"])
		assert.Contains(t, resp["error_description"], "pass_duration_seconds")
	})
}

func TestWriteError(t *testing.T) {
	cases := []struct {
		code   dErrors.Code
		status int
		body   string
	}{
		{dErrors.CodeSupplyExhausted, http.StatusConflict, "supply_exhausted"},
		{dErrors.CodeInsufficientAllowance, http.StatusPaymentRequired, "insufficient_allowance"},
		{dErrors.CodeInsufficientBalance, http.StatusPaymentRequired, "insufficient_balance"},
		{dErrors.CodePaymentFailed, http.StatusBadGateway, "payment_transfer_failed"},
		{dErrors.CodeUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{dErrors.CodeNotFound, http.StatusNotFound, "not_found"},
		{dErrors.CodeLedgerUnavailable, http.StatusServiceUnavailable, "ledger_unavailable"},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, dErrors.New(tc.code, "x"))
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.body, errorBody(t, w)["error"])
		})
	}

	t.Run("non-domain errors are opaque 500s", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("pq: connection reset"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := errorBody(t, w)
		assert.Equal(t, "internal_error", resp["error"])
		assert.NotContains(t, resp, "error_description")
	})
}
