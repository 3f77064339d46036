package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"gatepass/pkg/requestcontext"
)

const testCaller = "0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"

// MockJWTValidator is a testify mock for JWTValidator
type MockJWTValidator struct {
	mock.Mock
}

func (m *MockJWTValidator) ValidateToken(tokenString string) (*JWTClaims, error) {
	args := m.Called(tokenString)
	if claims := args.Get(0); claims != nil {
		return claims.(*JWTClaims), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockTokenRevocationChecker struct {
	mock.Mock
}

func (m *MockTokenRevocationChecker) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

type captureHandler struct {
	called  bool
	context context.Context
}

func (m *captureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.called = true
	m.context = r.Context()
	w.WriteHeader(http.StatusOK)
}

type AuthMiddlewareTestSuite struct {
	suite.Suite
	validator   *MockJWTValidator
	revoker     *MockTokenRevocationChecker
	logger      *slog.Logger
	nextHandler *captureHandler
}

func (s *AuthMiddlewareTestSuite) SetupTest() {
	s.validator = new(MockJWTValidator)
	s.revoker = new(MockTokenRevocationChecker)
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.nextHandler = &captureHandler{}
}

func (s *AuthMiddlewareTestSuite) TearDownTest() {
	s.validator.AssertExpectations(s.T())
	s.revoker.AssertExpectations(s.T())
}

func (s *AuthMiddlewareTestSuite) serve(checker TokenRevocationChecker, authHeader string) *httptest.ResponseRecorder {
	handler := RequireCaller(s.validator, checker, s.logger)(s.nextHandler)
	req := httptest.NewRequest(http.MethodPost, "/passes", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func (s *AuthMiddlewareTestSuite) TestValidTokenStoresCaller() {
	s.validator.On("ValidateToken", "valid-token").Return(&JWTClaims{Subject: testCaller, JTI: "jti-1"}, nil)

	w := s.serve(nil, "Bearer valid-token")

	require.True(s.T(), s.nextHandler.called)
	assert.Equal(s.T(), http.StatusOK, w.Code)
	caller, ok := requestcontext.Caller(s.nextHandler.context)
	require.True(s.T(), ok)
	assert.Equal(s.T(), common.HexToAddress(testCaller), caller)
}

func (s *AuthMiddlewareTestSuite) TestLowercaseSubjectAccepted() {
	s.validator.On("ValidateToken", "t").Return(&JWTClaims{Subject: "0x5b38da6a701c568545dcfcb03fcb875f56beddc4", JTI: "j"}, nil)

	s.serve(nil, "Bearer t")

	caller, ok := requestcontext.Caller(s.nextHandler.context)
	require.True(s.T(), ok)
	assert.Equal(s.T(), common.HexToAddress(testCaller), caller)
}

func (s *AuthMiddlewareTestSuite) TestRevokedToken() {
	s.validator.On("ValidateToken", "valid-token").Return(&JWTClaims{Subject: testCaller, JTI: "jti-123"}, nil)
	s.revoker.On("IsTokenRevoked", mock.Anything, "jti-123").Return(true, nil)

	w := s.serve(s.revoker, "Bearer valid-token")

	assert.False(s.T(), s.nextHandler.called)
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
	assert.JSONEq(s.T(), `{"error":"unauthorized","error_description":"Token has been revoked"}`, w.Body.String())
}

func (s *AuthMiddlewareTestSuite) TestRevocationCheckMissingJTI() {
	s.validator.On("ValidateToken", "valid-token").Return(&JWTClaims{Subject: testCaller}, nil)

	w := s.serve(s.revoker, "Bearer valid-token")

	assert.False(s.T(), s.nextHandler.called)
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *AuthMiddlewareTestSuite) TestRevocationCheckError() {
	s.validator.On("ValidateToken", "valid-token").Return(&JWTClaims{Subject: testCaller, JTI: "jti-123"}, nil)
	s.revoker.On("IsTokenRevoked", mock.Anything, "jti-123").Return(false, errors.New("redis down"))

	w := s.serve(s.revoker, "Bearer valid-token")

	assert.False(s.T(), s.nextHandler.called)
	assert.Equal(s.T(), http.StatusInternalServerError, w.Code)
	assert.JSONEq(s.T(), `{"error":"internal_error","error_description":"Failed to validate token"}`, w.Body.String())
}

func (s *AuthMiddlewareTestSuite) TestMalformedSubject() {
	for _, subject := range []string{"not-an-address", "", "0x0000000000000000000000000000000000000000"} {
		s.Run(subject, func() {
			s.nextHandler = &captureHandler{}
			s.validator.On("ValidateToken", "tok-"+subject).Return(&JWTClaims{Subject: subject, JTI: "j"}, nil)

			w := s.serve(nil, "Bearer tok-"+subject)

			assert.False(s.T(), s.nextHandler.called)
			assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
		})
	}
}

func (s *AuthMiddlewareTestSuite) TestInvalidToken() {
	s.validator.On("ValidateToken", "invalid-token").Return(nil, errors.New("token expired"))

	w := s.serve(nil, "Bearer invalid-token")

	assert.False(s.T(), s.nextHandler.called)
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
	assert.Equal(s.T(), "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(s.T(), `{"error":"unauthorized","error_description":"Invalid or expired token"}`, w.Body.String())
}

func (s *AuthMiddlewareTestSuite) TestInvalidAuthorizationFormats() {
	for _, header := range []string{"", "token-without-bearer", "Basic dXNlcjpwYXNz", "bearer token", "Bearertoken"} {
		s.Run(header, func() {
			s.nextHandler = &captureHandler{}
			w := s.serve(nil, header)

			assert.False(s.T(), s.nextHandler.called)
			assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
			assert.JSONEq(s.T(), `{"error":"unauthorized","error_description":"Missing or invalid Authorization header"}`, w.Body.String())
		})
	}
}

func TestAuthMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareTestSuite))
}
