package api

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"taskman-api/domain"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenIssuer mints and parses the HS256 bearer-token pairs used by the
// register/token/refresh/logout flows.
type TokenIssuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	parser     *jwt.Parser
	now        func() time.Time
}

// TokenPair is the payload returned by the token endpoint.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RefreshClaims is the validated content of a refresh token.
type RefreshClaims struct {
	Subject string
	JTI     string
	Expires time.Time
}

// NewTokenIssuer builds an issuer. Zero TTLs fall back to 30 minutes for
// access and 7 days for refresh tokens.
func NewTokenIssuer(secret []byte, issuer string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = 30 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenIssuer{
		secret:     secret,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		parser:     jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})),
		now:        time.Now,
	}
}

// IssuePair mints an access/refresh pair for the user. The refresh token
// carries a jti so it can be blacklisted on logout.
func (t *TokenIssuer) IssuePair(user *domain.User) (TokenPair, error) {
	now := t.now()
	sub := subjectForUser(user)

	access, err := t.sign(jwt.MapClaims{
		"sub": sub,
		"typ": tokenTypeAccess,
		"iss": t.issuer,
		"iat": now.Unix(),
		"exp": now.Add(t.accessTTL).Unix(),
	})
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := t.sign(jwt.MapClaims{
		"sub": sub,
		"typ": tokenTypeRefresh,
		"jti": uuid.NewString(),
		"iss": t.issuer,
		"iat": now.Unix(),
		"exp": now.Add(t.refreshTTL).Unix(),
	})
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{Access: access, Refresh: refresh}, nil
}

// IssueAccess mints a fresh access token for the subject of a valid refresh
// token.
func (t *TokenIssuer) IssueAccess(subject string) (string, error) {
	now := t.now()
	return t.sign(jwt.MapClaims{
		"sub": subject,
		"typ": tokenTypeAccess,
		"iss": t.issuer,
		"iat": now.Unix(),
		"exp": now.Add(t.accessTTL).Unix(),
	})
}

func (t *TokenIssuer) sign(claims jwt.MapClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// ParseRefresh validates a refresh token and returns its claims. Any parse or
// verification failure comes back as a TokenError with the client-facing
// reason.
func (t *TokenIssuer) ParseRefresh(token string) (RefreshClaims, error) {
	parsed, err := t.parser.Parse(token, func(tok *jwt.Token) (any, error) {
		return t.secret, nil
	})
	if err != nil {
		return RefreshClaims{}, &domain.TokenError{Reason: "token is invalid or expired"}
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return RefreshClaims{}, &domain.TokenError{Reason: "token is invalid or expired"}
	}
	if typ, _ := claims["typ"].(string); typ != tokenTypeRefresh {
		return RefreshClaims{}, &domain.TokenError{Reason: "token has wrong type"}
	}
	now := t.now().Unix()
	if !claims.VerifyExpiresAt(now, true) {
		return RefreshClaims{}, &domain.TokenError{Reason: "token is invalid or expired"}
	}

	sub, _ := claims["sub"].(string)
	jti, _ := claims["jti"].(string)
	if sub == "" || jti == "" {
		return RefreshClaims{}, &domain.TokenError{Reason: "token is invalid or expired"}
	}

	exp := time.Unix(now, 0)
	if expClaim, ok := claims["exp"].(float64); ok {
		exp = time.Unix(int64(expClaim), 0)
	}
	return RefreshClaims{Subject: sub, JTI: jti, Expires: exp}, nil
}
