package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var testSigningKey = []byte("test-signing-key")

// signToken mints an HS256 token for claims. The client never verifies the
// signature, so the key is irrelevant.
func signToken(t testing.TB, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSigningKey)
	require.NoError(t, err)
	return token
}

func rawToken(header, payload string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(header)) + "." + enc.EncodeToString([]byte(payload)) + ".sig"
}

func TestDecodeToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"userId":   int64(7),
		"username": "alice",
		"exp":      int64(1999999999),
		"iat":      int64(1700000000),
		"dept":     "qa",
	})

	payload, err := DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), payload.UserID)
	assert.Equal(t, "alice", payload.Username)
	assert.Equal(t, int64(1999999999), payload.ExpiresAt)
	assert.Equal(t, int64(1700000000), payload.IssuedAt)
	assert.Equal(t, "qa", payload.Claims["dept"])
	assert.True(t, payload.Valid())
}

func TestDecodeToken_OptionalClaims(t *testing.T) {
	payload, err := DecodeToken(signToken(t, jwt.MapClaims{"userId": int64(3)}))
	require.NoError(t, err)

	assert.Equal(t, int64(3), payload.UserID)
	assert.Empty(t, payload.Username)
	assert.False(t, payload.HasExpiry())
	assert.True(t, payload.Expiry().IsZero())
	assert.False(t, payload.Expired(time.Now()))
}

func TestDecodeToken_MissingAlgTolerated(t *testing.T) {
	payload, err := DecodeToken(rawToken(`{"typ":"JWT"}`, `{"userId":9}`))
	require.NoError(t, err)
	assert.Equal(t, int64(9), payload.UserID)

	payload, err = DecodeToken(rawToken(`{"alg":"none-such"}`, `{"userId":10}`))
	require.NoError(t, err)
	assert.Equal(t, int64(10), payload.UserID)
}

func TestDecodeToken_IgnoresHeader(t *testing.T) {
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"userId":7,"username":"bob"}`))

	for name, header := range map[string]string{
		"garbage":      "garbage!!",
		"empty":        "",
		"not json":     base64.RawURLEncoding.EncodeToString([]byte("nope")),
		"json array":   base64.RawURLEncoding.EncodeToString([]byte("[1,2]")),
		"not a header": "%%%",
	} {
		t.Run(name, func(t *testing.T) {
			p, err := DecodeToken(header + "." + payload + ".sig")
			require.NoError(t, err)
			assert.Equal(t, int64(7), p.UserID)
			assert.Equal(t, "bob", p.Username)
		})
	}
}

func TestDecodeToken_StandardAlphabetPayload(t *testing.T) {
	// "??>" encodes to "Pz8+" and "???" to "Pz8/" in the standard alphabet.
	claims := `{"userId":5,"username":"??>???"}`
	std := base64.StdEncoding.EncodeToString([]byte(claims))
	require.True(t, strings.ContainsAny(std, "+/"), std)

	for name, segment := range map[string]string{
		"padded":   std,
		"unpadded": strings.TrimRight(std, "="),
	} {
		t.Run(name, func(t *testing.T) {
			p, err := DecodeToken("e30." + segment + ".sig")
			require.NoError(t, err)
			assert.Equal(t, int64(5), p.UserID)
			assert.Equal(t, "??>???", p.Username)
		})
	}
}

func TestDecodeToken_PaddedSegments(t *testing.T) {
	enc := base64.URLEncoding
	token := enc.EncodeToString([]byte(`{"alg":"HS256"}`)) + "." +
		enc.EncodeToString([]byte(`{"userId":12}`)) + ".sig"

	payload, err := DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(12), payload.UserID)
}

func TestDecodeToken_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"one segment", "abc"},
		{"two segments", "abc.def"},
		{"four segments", "a.b.c.d"},
		{"payload not base64", "eyJhbGciOiJIUzI1NiJ9.a.sig"},
		{"payload not json", rawToken(`{"alg":"HS256"}`, "not json")},
		{"payload is array", rawToken(`{"alg":"HS256"}`, `[1,2]`)},
		{"userId wrong type", rawToken(`{"alg":"HS256"}`, `{"userId":"seven"}`)},
		{"payload invalid utf8", rawToken(`{"alg":"HS256"}`, "{\"username\":\"\xff\"}")},
		{"bad middle segment", "eyJhbGciOiJIUzI1NiJ9.%%%.sig"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := DecodeToken(tt.token)
			require.Error(t, err)
			assert.Nil(t, payload)
			assert.True(t, HasCode(err, ErrTokenMalformed), "got %v", err)
		})
	}
}

func TestDecodeToken_NoUserIDIsNotValid(t *testing.T) {
	payload, err := DecodeToken(rawToken(`{"alg":"HS256"}`, `{"username":"bob"}`))
	require.NoError(t, err)
	assert.False(t, payload.Valid())
	assert.Equal(t, "bob", payload.Username)
}

func TestTokenPayload_Expired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name string
		exp  int64
		want bool
	}{
		{"no exp", 0, false},
		{"one second ago", now.Unix() - 1, true},
		{"exactly now", now.Unix(), false},
		{"in an hour", now.Unix() + 3600, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &TokenPayload{UserID: 1, ExpiresAt: tt.exp}
			assert.Equal(t, tt.want, p.Expired(now))
		})
	}
}

func TestDecodeToken_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		userID := rapid.Int64Range(1, 1<<62).Draw(rt, "userId")
		username := rapid.String().Draw(rt, "username")
		exp := rapid.Int64Range(1, 4102444800).Draw(rt, "exp")
		iat := rapid.Int64Range(1, 4102444800).Draw(rt, "iat")

		token := signToken(t, jwt.MapClaims{
			"userId":   userID,
			"username": username,
			"exp":      exp,
			"iat":      iat,
		})

		payload, err := DecodeToken(token)
		if err != nil {
			rt.Fatalf("decode failed: %v", err)
		}
		if payload.UserID != userID || payload.Username != username ||
			payload.ExpiresAt != exp || payload.IssuedAt != iat {
			rt.Fatalf("payload %+v does not match claims", payload)
		}
	})
}

func TestDecodeToken_ArbitraryInputNeverPanics(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		input := rapid.String().Draw(rt, "token")

		payload, err := DecodeToken(input)
		if strings.Count(input, ".") != 2 {
			if err == nil || payload != nil {
				rt.Fatalf("expected malformed error for %q", input)
			}
			return
		}
		if err != nil && !HasCode(err, ErrTokenMalformed) {
			rt.Fatalf("unexpected error type %T: %v", err, err)
		}
	})
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("token-a")
	b := Fingerprint("token-b")

	assert.Len(t, a, 12)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, Fingerprint("token-a"))
	assert.Empty(t, Fingerprint(""))
	assert.NotContains(t, a, "token")
}
