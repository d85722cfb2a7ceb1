package talkjs

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tbourn/go-talkjs-bff/internal/domain"
)

// TokenTTL is the validity window of every minted token.
const TokenTTL = 30 * time.Second

// appTokenType marks a token as application-level (as opposed to a user token).
const appTokenType = "app"

// Credential is the identifier/secret pair of one TalkJS application.
type Credential struct {
	AppID  string
	Secret string
}

// Credentials holds one Credential per environment.
type Credentials struct {
	Dev  Credential
	Prod Credential
}

// For returns the credential for env; unknown environments get Dev.
func (c Credentials) For(env domain.Environment) Credential {
	if env == domain.EnvProd {
		return c.Prod
	}
	return c.Dev
}

// Token is a signed application token together with the app it was issued for.
type Token struct {
	Value     string
	AppID     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AppClaims are the claims TalkJS expects on an application token.
type AppClaims struct {
	TokenType string `json:"tokenType"`
	jwt.RegisteredClaims
}

// Minter signs short-lived HS256 application tokens.
type Minter struct {
	creds Credentials
	now   func() time.Time
}

// NewMinter returns a Minter bound to creds.
func NewMinter(creds Credentials) *Minter {
	return &Minter{creds: creds, now: time.Now}
}

// Mint signs a fresh token for env. Unknown environments fall back to dev.
// It fails with *ConfigurationError when the app id or secret is empty.
func (m *Minter) Mint(env domain.Environment) (Token, error) {
	env = domain.ParseEnvironment(string(env))
	cred := m.creds.For(env)

	var missing []string
	if cred.AppID == "" {
		missing = append(missing, "app_id")
	}
	if cred.Secret == "" {
		missing = append(missing, "secret")
	}
	if len(missing) > 0 {
		return Token{}, &ConfigurationError{Environment: env, Missing: missing}
	}

	// Whole seconds so exp-iat is exactly the TTL on the wire.
	now := m.now().Truncate(time.Second)
	exp := now.Add(TokenTTL)
	claims := AppClaims{
		TokenType: appTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cred.AppID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cred.Secret))
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, AppID: cred.AppID, IssuedAt: now, ExpiresAt: exp}, nil
}
