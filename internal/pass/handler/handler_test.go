package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"gatepass/internal/pass/handler/mocks"
	"gatepass/internal/pass/models"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/requestcontext"
)

var (
	admin = common.HexToAddress("0x00000000000000000000000000000000000000ad")
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	epoch = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
)

// callerHeader stands in for the JWT middleware.
const callerHeader = "X-Test-Caller"

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := New(s.service, logger)
	r := chi.NewRouter()
	h.Register(r)
	r.Group(func(r chi.Router) {
		r.Use(testCaller)
		h.RegisterAuthenticated(r)
	})
	s.router = r
}

func testCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if raw := r.Header.Get(callerHeader); raw != "" {
			ctx = requestcontext.WithCaller(ctx, common.HexToAddress(raw))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *HandlerSuite) do(method, path string, caller *common.Address, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			s.Require().NoError(json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if caller != nil {
		req.Header.Set(callerHeader, caller.Hex())
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) decode(rec *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}

func (s *HandlerSuite) errorCode(rec *httptest.ResponseRecorder) string {
	var body map[string]string
	s.decode(rec, &body)
	return body["error"]
}

func sampleConfig() *models.Configuration {
	cfg := models.DefaultConfiguration(admin, common.HexToAddress("0x05dc"), common.HexToAddress("0xc0de"), epoch)
	cfg.TotalIssued = 3
	return cfg
}

func samplePass(passID id.PassID, kind models.Kind) *models.Pass {
	payer := alice
	price := big.NewInt(models.DefaultPassCost)
	if kind == models.KindAdmin {
		payer = common.Address{}
		price = nil
	}
	return models.NewPass(passID, bob, payer, price, kind, epoch, models.DefaultPassDuration)
}

func (s *HandlerSuite) TestGetConfig() {
	s.service.EXPECT().Configuration(gomock.Any()).Return(sampleConfig(), nil)

	rec := s.do(http.MethodGet, "/config", nil, nil)

	s.Equal(http.StatusOK, rec.Code)
	var resp ConfigResponse
	s.decode(rec, &resp)
	s.Equal("4990000", resp.PassCost)
	s.Equal(uint64(2_592_000), resp.PassDurationSeconds)
	s.Equal(uint64(42), resp.MaxSupply)
	s.Equal(uint64(3), resp.TotalIssued)
	s.Equal(admin.Hex(), resp.Admin)
}

func (s *HandlerSuite) TestIssuePass() {
	s.Run("caller pays for the recipient", func() {
		s.service.EXPECT().IssuePass(gomock.Any(), alice, bob).Return(samplePass(4, models.KindPaid), nil)

		rec := s.do(http.MethodPost, "/passes", &alice, map[string]string{"recipient": bob.Hex()})

		s.Equal(http.StatusCreated, rec.Code)
		var resp PassResponse
		s.decode(rec, &resp)
		s.Equal(uint64(4), resp.ID)
		s.Equal(alice.Hex(), resp.Payer)
		s.Equal("4990000", resp.PricePaid)
		s.Equal(epoch.Unix()+2_592_000, resp.ExpiresAt)
	})

	s.Run("missing caller is unauthorized", func() {
		rec := s.do(http.MethodPost, "/passes", nil, map[string]string{"recipient": bob.Hex()})
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("zero recipient is rejected before the service", func() {
		rec := s.do(http.MethodPost, "/passes", &alice, map[string]string{"recipient": "0x0000000000000000000000000000000000000000"})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("malformed body", func() {
		rec := s.do(http.MethodPost, "/passes", &alice, `{"recipient":`)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("bad_request", s.errorCode(rec))
	})

	s.Run("domain errors map to statuses", func() {
		cases := []struct {
			code   dErrors.Code
			status int
		}{
			{dErrors.CodeSupplyExhausted, http.StatusConflict},
			{dErrors.CodeInsufficientAllowance, http.StatusPaymentRequired},
			{dErrors.CodeInsufficientBalance, http.StatusPaymentRequired},
			{dErrors.CodePaymentFailed, http.StatusBadGateway},
			{dErrors.CodeLedgerUnavailable, http.StatusServiceUnavailable},
		}
		for _, tc := range cases {
			s.service.EXPECT().IssuePass(gomock.Any(), alice, bob).Return(nil, dErrors.New(tc.code, "x"))
			rec := s.do(http.MethodPost, "/passes", &alice, map[string]string{"recipient": bob.Hex()})
			s.Equal(tc.status, rec.Code, string(tc.code))
		}
	})
}

func (s *HandlerSuite) TestAdminIssue() {
	s.service.EXPECT().AdminIssue(gomock.Any(), admin, bob).Return(samplePass(1, models.KindAdmin), nil)

	rec := s.do(http.MethodPost, "/admin/passes", &admin, map[string]string{"recipient": bob.Hex()})

	s.Equal(http.StatusCreated, rec.Code)
	var resp PassResponse
	s.decode(rec, &resp)
	s.Equal("admin", resp.Kind)
	s.Empty(resp.Payer)
	s.Equal("0", resp.PricePaid)
}

func (s *HandlerSuite) TestNonAdminGetsUnauthorized() {
	s.service.EXPECT().AdminIssue(gomock.Any(), alice, bob).
		Return(nil, dErrors.New(dErrors.CodeUnauthorized, "caller is not the admin"))

	rec := s.do(http.MethodPost, "/admin/passes", &alice, map[string]string{"recipient": bob.Hex()})

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("unauthorized", s.errorCode(rec))
}

func (s *HandlerSuite) TestGetPass() {
	s.Run("found", func() {
		s.service.EXPECT().GetPass(gomock.Any(), id.PassID(2)).Return(&models.PassView{
			Pass:     samplePass(2, models.KindPaid),
			Owner:    bob,
			Valid:    true,
			TokenURI: "https://passes.example/2",
		}, nil)

		rec := s.do(http.MethodGet, "/passes/2", nil, nil)

		s.Equal(http.StatusOK, rec.Code)
		var resp PassViewResponse
		s.decode(rec, &resp)
		s.Equal(uint64(2), resp.ID)
		s.Equal(bob.Hex(), resp.Owner)
		s.True(resp.Valid)
		s.Equal("https://passes.example/2", resp.TokenURI)
	})

	s.Run("unissued", func() {
		s.service.EXPECT().GetPass(gomock.Any(), id.PassID(9)).Return(nil, dErrors.New(dErrors.CodeNotFound, "pass not found"))
		rec := s.do(http.MethodGet, "/passes/9", nil, nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("non-numeric id", func() {
		rec := s.do(http.MethodGet, "/passes/abc", nil, nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestIsPassValid() {
	s.service.EXPECT().IsPassValid(gomock.Any(), id.PassID(7)).Return(false, nil)

	rec := s.do(http.MethodGet, "/passes/7/valid", nil, nil)

	s.Equal(http.StatusOK, rec.Code)
	var resp ValidityResponse
	s.decode(rec, &resp)
	s.Equal(uint64(7), resp.PassID)
	s.False(resp.Valid)
}

func (s *HandlerSuite) TestTokenURI() {
	s.service.EXPECT().TokenURI(gomock.Any(), id.PassID(1)).Return("ipfs://base/1", nil)

	rec := s.do(http.MethodGet, "/passes/1/uri", nil, nil)

	s.Equal(http.StatusOK, rec.Code)
	var resp TokenURIResponse
	s.decode(rec, &resp)
	s.Equal("ipfs://base/1", resp.TokenURI)
}

func (s *HandlerSuite) TestIsAddressActive() {
	s.Run("active", func() {
		s.service.EXPECT().IsAddressActive(gomock.Any(), bob).Return(true, nil)

		rec := s.do(http.MethodGet, "/addresses/"+bob.Hex()+"/active", nil, nil)

		s.Equal(http.StatusOK, rec.Code)
		var resp ActivityResponse
		s.decode(rec, &resp)
		s.Equal(bob.Hex(), resp.Address)
		s.True(resp.Active)
	})

	s.Run("malformed address", func() {
		rec := s.do(http.MethodGet, "/addresses/not-an-address/active", nil, nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestConfigSetters() {
	updated := sampleConfig()

	s.Run("pass cost", func() {
		s.service.EXPECT().SetPassCost(gomock.Any(), admin, big.NewInt(1_000_000)).Return(updated, nil)
		rec := s.do(http.MethodPut, "/admin/config/pass-cost", &admin, map[string]string{"pass_cost": "1000000"})
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("negative pass cost", func() {
		rec := s.do(http.MethodPut, "/admin/config/pass-cost", &admin, map[string]string{"pass_cost": "-1"})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("pass duration", func() {
		s.service.EXPECT().SetPassDuration(gomock.Any(), admin, 3600*time.Second).Return(updated, nil)
		rec := s.do(http.MethodPut, "/admin/config/pass-duration", &admin, `{"pass_duration_seconds":3600}`)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("zero duration is accepted", func() {
		s.service.EXPECT().SetPassDuration(gomock.Any(), admin, time.Duration(0)).Return(updated, nil)
		rec := s.do(http.MethodPut, "/admin/config/pass-duration", &admin, `{"pass_duration_seconds":0}`)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("missing duration", func() {
		rec := s.do(http.MethodPut, "/admin/config/pass-duration", &admin, `{}`)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("validation_error", s.errorCode(rec))
	})

	s.Run("max supply", func() {
		s.service.EXPECT().SetMaxSupply(gomock.Any(), admin, uint64(1)).Return(updated, nil)
		rec := s.do(http.MethodPut, "/admin/config/max-supply", &admin, `{"max_supply":1}`)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("max supply beyond a signed 64-bit column", func() {
		rec := s.do(http.MethodPut, "/admin/config/max-supply", &admin, `{"max_supply":9223372036854775808}`)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("validation_error", s.errorCode(rec))
	})

	s.Run("metadata base", func() {
		s.service.EXPECT().SetMetadataBase(gomock.Any(), admin, "https://passes.example/").Return(updated, nil)
		rec := s.do(http.MethodPut, "/admin/config/metadata-base", &admin, map[string]string{"metadata_base": " https://passes.example/ "})
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("metadata base must be a uri", func() {
		rec := s.do(http.MethodPut, "/admin/config/metadata-base", &admin, map[string]string{"metadata_base": "not a uri"})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("transfer admin", func() {
		s.service.EXPECT().TransferAdmin(gomock.Any(), admin, bob).Return(updated, nil)
		rec := s.do(http.MethodPost, "/admin/transfer", &admin, map[string]string{"new_admin": bob.Hex()})
		s.Equal(http.StatusOK, rec.Code)
	})
}

func (s *HandlerSuite) TestWithdraw() {
	s.service.EXPECT().Withdraw(gomock.Any(), admin, bob).Return(big.NewInt(9_980_000), nil)

	rec := s.do(http.MethodPost, "/admin/withdraw", &admin, map[string]string{"to": bob.Hex()})

	s.Equal(http.StatusOK, rec.Code)
	var resp WithdrawResponse
	s.decode(rec, &resp)
	s.Equal(bob.Hex(), resp.To)
	s.Equal("9980000", resp.Amount)
}
