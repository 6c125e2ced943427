package services

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt"
	"github.com/lestrrat-go/jwx/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityToolkitProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "web-key", r.URL.Query().Get("key"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		switch body["password"] {
		case "right":
			_, _ = w.Write([]byte(`{"localId":"uid-1","email":"me@example.com","displayName":"Me","idToken":"x"}`))
		case "locked":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":400,"message":"TOO_MANY_ATTEMPTS_TRY_LATER : try later"}}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":400,"message":"INVALID_LOGIN_CREDENTIALS"}}`))
		}
	}))
	defer srv.Close()

	p := NewIdentityToolkitProvider("web-key")
	p.endpoint = srv.URL
	ctx := context.Background()

	identity, err := p.SignInWithPassword(ctx, "me@example.com", "right")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", identity.UID)
	assert.Equal(t, "Me", identity.DisplayName)

	_, err = p.SignInWithPassword(ctx, "me@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.SignInWithPassword(ctx, "me@example.com", "locked")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

type fakeVerifier struct {
	token *auth.Token
	err   error
}

func (f fakeVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	return f.token, f.err
}

func TestFirebaseTokenProvider(t *testing.T) {
	p := NewFirebaseTokenProvider(fakeVerifier{token: &auth.Token{
		UID:      "fb-1",
		Claims:   map[string]interface{}{"email": "me@example.com", "name": "Me"},
		Firebase: auth.FirebaseInfo{SignInProvider: "github.com"},
	}})

	identity, err := p.VerifyIDToken(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "fb-1", identity.UID)
	assert.Equal(t, "me@example.com", identity.Email)
	assert.Equal(t, "github.com", identity.Provider)

	p = NewFirebaseTokenProvider(fakeVerifier{err: errors.New("expired")})
	_, err = p.VerifyIDToken(context.Background(), "token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func googleKeyServer(t *testing.T, priv *rsa.PrivateKey) *httptest.Server {
	t.Helper()
	key, err := jwk.New(&priv.PublicKey)
	require.NoError(t, err)
	require.NoError(t, key.Set(jwk.KeyIDKey, "kid-1"))
	set := jwk.NewSet()
	set.Add(key)
	payload, err := json.Marshal(set)
	require.NoError(t, err)

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(payload)
	}))
}

func signGoogleToken(t *testing.T, priv *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(priv)
	require.NoError(t, err)
	return signed
}

func TestGoogleTokenProvider(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv := googleKeyServer(t, priv)
	defer srv.Close()

	p := NewGoogleTokenProvider("client-1")
	p.certsURL = srv.URL
	ctx := context.Background()

	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"iss":            "https://accounts.google.com",
			"aud":            "client-1",
			"sub":            "g-42",
			"email":          "me@example.com",
			"email_verified": true,
			"name":           "Me",
			"exp":            time.Now().Add(time.Hour).Unix(),
		}
	}

	identity, err := p.VerifyIDToken(ctx, signGoogleToken(t, priv, "kid-1", base()))
	require.NoError(t, err)
	assert.Equal(t, "g-42", identity.UID)
	assert.Equal(t, "google.com", identity.Provider)

	wrongAud := base()
	wrongAud["aud"] = "someone-else"
	_, err = p.VerifyIDToken(ctx, signGoogleToken(t, priv, "kid-1", wrongAud))
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	wrongIss := base()
	wrongIss["iss"] = "https://evil.example.com"
	_, err = p.VerifyIDToken(ctx, signGoogleToken(t, priv, "kid-1", wrongIss))
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	unverified := base()
	unverified["email_verified"] = false
	_, err = p.VerifyIDToken(ctx, signGoogleToken(t, priv, "kid-1", unverified))
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	expired := base()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()
	_, err = p.VerifyIDToken(ctx, signGoogleToken(t, priv, "kid-1", expired))
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.VerifyIDToken(ctx, signGoogleToken(t, priv, "unknown-kid", base()))
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	_, err = p.VerifyIDToken(ctx, signGoogleToken(t, other, "kid-1", base()))
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAudienceContains(t *testing.T) {
	assert.True(t, audienceContains("a", "a"))
	assert.True(t, audienceContains([]interface{}{"b", "a"}, "a"))
	assert.False(t, audienceContains("a", ""))
	assert.False(t, audienceContains(nil, "a"))
}
