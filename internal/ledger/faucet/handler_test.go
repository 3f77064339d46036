package faucet

import (
	"context"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass/internal/ledger/memory"
	"gatepass/pkg/requestcontext"
)

var (
	custody = common.HexToAddress("0x000000000000000000000000000000000000c0de")
	alice   = common.HexToAddress("0x00000000000000000000000000000000000000a1")
)

func newRouter(token *memory.PaymentToken) http.Handler {
	h := New(token, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(requestcontext.WithCaller(r.Context(), alice)))
			})
		})
		h.RegisterAuthenticated(r)
	})
	return r
}

func post(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestFaucet(t *testing.T) {
	ctx := context.Background()
	token := memory.NewPaymentToken(custody)
	router := newRouter(token)

	t.Run("credit adds to the balance", func(t *testing.T) {
		rec := post(router, "/dev/faucet", `{"account":"`+alice.Hex()+`","amount":"5000000"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = post(router, "/dev/faucet", `{"account":"`+alice.Hex()+`","amount":"1"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		balance, err := token.BalanceOf(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(5_000_001), balance)
	})

	t.Run("approve is for the caller and custody", func(t *testing.T) {
		rec := post(router, "/dev/approve", `{"amount":"4990000"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		allowance, err := token.Allowance(ctx, alice, custody)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(4_990_000), allowance)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, post(router, "/dev/faucet", `{"account":"0x1234","amount":"1"}`).Code)
		assert.Equal(t, http.StatusBadRequest, post(router, "/dev/faucet", `{"account":"`+alice.Hex()+`","amount":"-5"}`).Code)
		assert.Equal(t, http.StatusBadRequest, post(router, "/dev/approve", `{"amount":"abc"}`).Code)
	})
}
