package jwttoken

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/requestcontext"
)

var caller = common.HexToAddress("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4")

func newService() *JWTService {
	return NewJWTService("test-signing-key", "gatepass-test", "gatepass-api", time.Minute)
}

func Test_GenerateCallerToken(t *testing.T) {
	svc := newService()
	token, jti, err := svc.GenerateCallerToken(context.Background(), caller)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Len(t, jti, 32)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, caller.Hex(), claims.Subject)
	assert.Equal(t, jti, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func Test_GenerateCallerToken_RejectsZeroAddress(t *testing.T) {
	_, _, err := newService().GenerateCallerToken(context.Background(), common.Address{})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func Test_ValidateToken_Expired(t *testing.T) {
	svc := newService()
	past := requestcontext.WithTime(context.Background(), time.Now().Add(-time.Hour))
	token, _, err := svc.GenerateCallerToken(past, caller)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.ErrorContains(t, err, "token expired")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	claims, err := svc.ParseTokenSkipClaimsValidation(token)
	require.NoError(t, err)
	assert.Equal(t, caller.Hex(), claims.Subject)
}

func Test_ValidateToken_Garbage(t *testing.T) {
	_, err := newService().ValidateToken("invalid-token-string")
	require.ErrorContains(t, err, "invalid token")
}

func Test_ValidateToken_WrongIssuerOrAudience(t *testing.T) {
	token, _, err := NewJWTService("test-signing-key", "someone-else", "gatepass-api", time.Minute).
		GenerateCallerToken(context.Background(), caller)
	require.NoError(t, err)
	_, err = newService().ValidateToken(token)
	require.ErrorContains(t, err, "issuer")

	token, _, err = NewJWTService("test-signing-key", "gatepass-test", "other-api", time.Minute).
		GenerateCallerToken(context.Background(), caller)
	require.NoError(t, err)
	_, err = newService().ValidateToken(token)
	require.ErrorContains(t, err, "audience")
}

func Test_ValidateToken_RejectsAlgorithmConfusion(t *testing.T) {
	claims := CallerTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.Hex(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			Issuer:    "gatepass-test",
			Audience:  []string{"gatepass-api"},
			ID:        "jti",
		},
	}

	cases := []struct {
		name       string
		signMethod jwt.SigningMethod
		signKey    any
	}{
		{name: "hs512 header rejected", signMethod: jwt.SigningMethodHS512, signKey: []byte("test-signing-key")},
		{name: "alg none rejected", signMethod: jwt.SigningMethodNone, signKey: jwt.UnsafeAllowNoneSignatureType},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			tokenString, err := jwt.NewWithClaims(tt.signMethod, claims).SignedString(tt.signKey)
			require.NoError(t, err)

			_, err = newService().ValidateToken(tokenString)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func Test_ParseTokenSkipClaimsValidation_BadSignature(t *testing.T) {
	token, _, err := NewJWTService("other-key", "gatepass-test", "gatepass-api", time.Minute).
		GenerateCallerToken(context.Background(), caller)
	require.NoError(t, err)

	_, err = newService().ParseTokenSkipClaimsValidation(token)
	require.ErrorContains(t, err, "signature")

	_, err = newService().ParseTokenSkipClaimsValidation("")
	require.ErrorContains(t, err, "empty token")
}

func Test_Adapter(t *testing.T) {
	svc := newService()
	token, jti, err := svc.GenerateCallerToken(context.Background(), caller)
	require.NoError(t, err)

	claims, err := NewJWTServiceAdapter(svc).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, caller.Hex(), claims.Subject)
	assert.Equal(t, jti, claims.JTI)
}
