package auth

import (
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/zeebo/blake3"
)

// TokenPayload holds the claims the client reads from a GSMS access token.
//
// The payload is decoded for display and for the initial user identity only.
// The backend re-verifies the signature on every request, so nothing here is
// an authorization decision of record.
type TokenPayload struct {
	// UserID is the numeric user identity. A token without a positive
	// UserID does not identify anyone.
	UserID int64 `json:"userId"`

	// Username is the optional login name claim.
	Username string `json:"username,omitempty"`

	// ExpiresAt is the "exp" claim in Unix seconds; 0 when absent.
	ExpiresAt int64 `json:"exp,omitempty"`

	// IssuedAt is the "iat" claim in Unix seconds; 0 when absent.
	IssuedAt int64 `json:"iat,omitempty"`

	// Claims holds every claim in the payload, including the ones above.
	Claims map[string]interface{} `json:"-"`
}

// Valid reports whether the payload identifies a user.
func (p *TokenPayload) Valid() bool {
	return p != nil && p.UserID > 0
}

// HasExpiry reports whether the token carries an "exp" claim.
func (p *TokenPayload) HasExpiry() bool {
	return p.ExpiresAt != 0
}

// Expired reports whether the "exp" claim lies strictly before now.
// Tokens without "exp" never expire on the client.
func (p *TokenPayload) Expired(now time.Time) bool {
	return p.HasExpiry() && p.ExpiresAt < now.Unix()
}

// Expiry returns the "exp" claim as a time, or the zero time when absent.
func (p *TokenPayload) Expiry() time.Time {
	if !p.HasExpiry() {
		return time.Time{}
	}
	return time.Unix(p.ExpiresAt, 0)
}

// tokenParser decodes Base64URL segments with or without padding.
var tokenParser = jwt.NewParser(jwt.WithPaddingAllowed())

var stdToURLAlphabet = strings.NewReplacer("+", "-", "/", "_")

type tokenClaims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// DecodeToken extracts the payload of a JWT without verifying its signature.
//
// The token must have exactly three dot-separated segments and a UTF-8 JSON
// object as its payload, Base64-encoded in either the URL or the standard
// alphabet. Header and signature are not inspected. Any other input yields
// an *Error with code ErrTokenMalformed; DecodeToken never panics.
func DecodeToken(token string) (*TokenPayload, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, NewError(ErrTokenMalformed, "token must have three segments", Fields{
			"segments": len(parts),
		})
	}

	raw, err := tokenParser.DecodeSegment(stdToURLAlphabet.Replace(parts[1]))
	if err != nil {
		return nil, WrapError(ErrTokenMalformed, "could not base64 decode payload", err, nil)
	}
	if !utf8.Valid(raw) {
		return nil, NewError(ErrTokenMalformed, "payload is not valid UTF-8", nil)
	}

	claims := &tokenClaims{}
	if err := json.Unmarshal(raw, claims); err != nil {
		return nil, WrapError(ErrTokenMalformed, "could not JSON decode payload", err, nil)
	}

	payload := &TokenPayload{
		UserID:   claims.UserID,
		Username: claims.Username,
	}
	if claims.ExpiresAt != nil {
		payload.ExpiresAt = claims.ExpiresAt.Unix()
	}
	if claims.IssuedAt != nil {
		payload.IssuedAt = claims.IssuedAt.Unix()
	}
	if err := json.Unmarshal(raw, &payload.Claims); err != nil {
		return nil, WrapError(ErrTokenMalformed, "could not JSON decode payload", err, nil)
	}

	return payload, nil
}

// Fingerprint returns a short, stable digest of a token for logs and status
// output. It never reveals the token itself.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	sum := blake3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:6])
}
