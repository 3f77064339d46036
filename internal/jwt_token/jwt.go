package jwttoken

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"

	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/requestcontext"
)

// CallerTokenClaims identify the account acting on a request. The standard
// subject claim carries the checksummed hex address.
type CallerTokenClaims struct {
	Env string `json:"env,omitempty"`
	jwt.RegisteredClaims
}

// JWTService handles caller token creation and validation
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
	tokenTTL   time.Duration
	env        string
}

func NewJWTService(signingKey string, issuer string, audience string, tokenTTL time.Duration) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		tokenTTL:   tokenTTL,
	}
}

// SetEnv annotates issued tokens with an environment string (e.g., "local").
func (s *JWTService) SetEnv(env string) {
	s.env = env
}

// TTL reports how long issued tokens stay valid.
func (s *JWTService) TTL() time.Duration {
	return s.tokenTTL
}

// GenerateCallerToken signs a token naming caller as its subject and returns
// it together with its JTI.
func (s *JWTService) GenerateCallerToken(ctx context.Context, caller common.Address) (string, string, error) {
	if id.IsZeroAddress(caller) {
		return "", "", dErrors.New(dErrors.CodeInvalidInput, "caller cannot be the zero address")
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	jti := hex.EncodeToString(b)
	now := requestcontext.Now(ctx)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, CallerTokenClaims{
		Env: s.env,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        jti,
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

func (s *JWTService) keyFunc(t *jwt.Token) (any, error) {
	if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, jwt.ErrTokenUnverifiable
	}
	return s.signingKey, nil
}

// ValidateToken checks signature, expiry, issuer, and audience.
func (s *JWTService) ValidateToken(tokenString string) (*CallerTokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &CallerTokenClaims{}, s.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid token")
	}

	claims, ok := parsed.Claims.(*CallerTokenClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid token claims")
	}

	if claims.Issuer != s.issuer {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid token issuer")
	}
	if !slices.Contains(claims.Audience, s.audience) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid token audience")
	}

	return claims, nil
}

// ParseTokenSkipClaimsValidation parses a token WITHOUT validating expiration
// or standard claims. Signature and algorithm are still enforced.
//
// Only revocation uses this, since an expired token may still need its JTI
// recorded until every replica has seen it expire.
func (s *JWTService) ParseTokenSkipClaimsValidation(tokenString string) (*CallerTokenClaims, error) {
	if tokenString == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "empty token")
	}

	claims := new(CallerTokenClaims)
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc, jwt.WithoutClaimsValidation())
	if err != nil {
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid jwt signature")
		}
		return nil, dErrors.New(dErrors.CodeInvalidInput, "jwt parse failed")
	}
	if !token.Valid {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid jwt signature")
	}
	return claims, nil
}
