package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityService validates access tokens issued by the external identity
// provider. Tokens are HS256 JWTs whose subject is the user ID and which
// must carry an expiry.
type IdentityService struct {
	secret  []byte
	issuer  string
	revoker TokenRevoker
}

// NewIdentityService creates a new identity service. issuer may be empty.
func NewIdentityService(secret, issuer string, revoker TokenRevoker) *IdentityService {
	if revoker == nil {
		revoker = NewMemoryTokenRevoker()
	}
	return &IdentityService{
		secret:  []byte(secret),
		issuer:  issuer,
		revoker: revoker,
	}
}

// GenerateJWT issues a token the way the identity provider does. It is used
// by local tooling and tests.
func (s *IdentityService) GenerateJWT(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}
	if s.issuer != "" {
		claims["iss"] = s.issuer
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (s *IdentityService) parse(tokenString string) (jwt.MapClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", ErrUnauthenticated)
	}
	return claims, nil
}

func userIDFromClaims(claims jwt.MapClaims) string {
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub
	}
	if userID, ok := claims["user_id"].(string); ok {
		return userID
	}
	return ""
}

func tokenKey(tokenString string) string {
	sum := sha256.Sum256([]byte(tokenString))
	return hex.EncodeToString(sum[:])
}

// Authenticate validates a token and returns the user ID it was issued for
func (s *IdentityService) Authenticate(ctx context.Context, tokenString string) (string, error) {
	if tokenString == "" {
		return "", fmt.Errorf("%w: token required", ErrUnauthenticated)
	}
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", err
	}

	userID := userIDFromClaims(claims)
	if userID == "" {
		return "", fmt.Errorf("%w: subject not found in token", ErrUnauthenticated)
	}

	revoked, err := s.revoker.IsRevoked(ctx, tokenKey(tokenString))
	if err != nil {
		return "", err
	}
	if revoked {
		return "", fmt.Errorf("%w: token revoked", ErrUnauthenticated)
	}
	return userID, nil
}

// SignOut revokes the token until it would have expired
func (s *IdentityService) SignOut(ctx context.Context, tokenString string) error {
	claims, err := s.parse(tokenString)
	if err != nil {
		return err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return fmt.Errorf("%w: token has no expiry", ErrUnauthenticated)
	}
	return s.revoker.Revoke(ctx, tokenKey(tokenString), time.Until(exp.Time))
}
