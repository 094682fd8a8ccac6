package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Signing secrets shorter than this are refused by NewManager.
const MinSecretLen = 32

// Verification failures are distinct so callers can report them precisely.
// The guard middleware folds all of them into a 401.
var (
	ErrWeakSecret     = errors.New("signing secret is too short")
	ErrTokenEmpty     = errors.New("token is empty")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrUnsupportedAlg = errors.New("token signed with an unsupported algorithm")
	ErrTokenExpired   = errors.New("token is outside its validity window")
	ErrBadSignature   = errors.New("token signature does not match")
)

// Manager signs and verifies bearer tokens. The claim set is deliberately
// small: subject, issued-at and expiry. Roles are never embedded in the
// token; the guard resolves them from the credential store per request.
type Manager struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
}

func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	if len(secret) < MinSecretLen {
		return nil, ErrWeakSecret
	}

	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		// WithIssuedAt enforces the iat <= now half of the validity window.
		parser: jwt.NewParser(jwt.WithIssuedAt()),
	}, nil
}

// Issue mints a token for subject valid from now until now+ttl.
func (m *Manager) Issue(subject string) (string, error) {
	return m.IssueAt(subject, time.Now().UTC())
}

// IssueAt is Issue with an explicit clock, used by tests and the token
// round-trip checks.
func (m *Manager) IssueAt(subject string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(m.secret)
}

// Verify parses and validates a token and returns its subject. A token is
// valid iff iat <= now < exp, with no leeway.
func (m *Manager) Verify(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", ErrTokenEmpty
	}

	token, err := m.parser.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrUnsupportedAlg
		}

		return m.secret, nil
	})

	if err != nil {
		return "", classifyParseError(err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)

	if !ok || !token.Valid {
		return "", ErrTokenMalformed
	}

	if claims.Subject == "" {
		return "", ErrTokenMalformed
	}

	return claims.Subject, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, ErrUnsupportedAlg):
		return ErrUnsupportedAlg
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenExpired),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued),
		errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrBadSignature
	default:
		return ErrTokenMalformed
	}
}
