package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/privacy"
	"gatepass/pkg/requestcontext"
)

// JWTValidator defines the interface for validating caller tokens
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// TokenRevocationChecker defines the interface for checking if tokens are revoked
type TokenRevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// JWTClaims represents the claims we expect from the JWT validator
type JWTClaims struct {
	Subject string // hex account address of the caller
	JTI     string // JWT ID for revocation tracking
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

type revocationResult int

const (
	revocationOK revocationResult = iota
	revocationMissingJTI
	revocationRevoked
	revocationError
)

func checkRevocation(ctx context.Context, checker TokenRevocationChecker, jti string, logger *slog.Logger) revocationResult {
	if checker == nil {
		return revocationOK
	}

	requestID := requestcontext.RequestID(ctx)
	if jti == "" {
		logger.WarnContext(ctx, "unauthorized access - missing token jti",
			"request_id", requestID,
		)
		return revocationMissingJTI
	}

	revoked, err := checker.IsTokenRevoked(ctx, jti)
	if err != nil {
		logger.ErrorContext(ctx, "failed to check token revocation",
			"error", err,
			"request_id", requestID,
		)
		return revocationError
	}

	if revoked {
		logger.WarnContext(ctx, "unauthorized access - token revoked",
			"jti", jti,
			"request_id", requestID,
		)
		return revocationRevoked
	}

	return revocationOK
}

// parseCaller converts the subject claim to an account address.
// The zero address can never act as a caller.
func parseCaller(claims *JWTClaims) (common.Address, error) {
	addr, err := id.RequireAddress(claims.Subject, "subject")
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid subject: %w", err)
	}
	return addr, nil
}

// RequireCaller returns middleware that validates bearer tokens and stores the
// caller's account address in the request context.
func RequireCaller(validator JWTValidator, revocationChecker TokenRevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			switch checkRevocation(ctx, revocationChecker, claims.JTI, logger) {
			case revocationMissingJTI, revocationRevoked:
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Token has been revoked")
				return
			case revocationError:
				writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to validate token")
				return
			}

			caller, err := parseCaller(claims)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed token claims",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			logger.DebugContext(ctx, "caller authenticated",
				"caller", privacy.ShortAddress(caller),
				"request_id", requestID,
			)
			next.ServeHTTP(w, r.WithContext(requestcontext.WithCaller(ctx, caller)))
		})
	}
}
