package middleware

import (
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestJWTAuthSetsIdentityHeaders(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"user_id":      "user_1",
		"role":         "community_admin",
		"community_id": "comm_1",
	})

	var called bool
	handler := JWTAuth(testSecret, zap.NewNop())(func(ctx *fasthttp.RequestCtx) {
		called = true
		assert.Equal(t, "user_1", string(ctx.Request.Header.Peek(HeaderUserID)))
		assert.Equal(t, "community_admin", string(ctx.Request.Header.Peek(HeaderUserRole)))
		assert.Equal(t, "comm_1", string(ctx.Request.Header.Peek(HeaderCommunityID)))
	})

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.Set("Authorization", "Bearer "+token)
	handler(ctx)
	assert.True(t, called)
}

func TestJWTAuthStripsSpoofedHeaders(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"user_id": "user_1"})

	handler := JWTAuth(testSecret, zap.NewNop())(func(ctx *fasthttp.RequestCtx) {
		assert.Equal(t, "user_1", string(ctx.Request.Header.Peek(HeaderUserID)))
		// The forged role header must not survive past the middleware.
		assert.Empty(t, string(ctx.Request.Header.Peek(HeaderUserRole)))
	})

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.Set("Authorization", "Bearer "+token)
	ctx.Request.Header.Set(HeaderUserID, "someone_else")
	ctx.Request.Header.Set(HeaderUserRole, "super_admin")
	handler(ctx)
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	handler := JWTAuth(testSecret, zap.NewNop())(func(ctx *fasthttp.RequestCtx) {
		t.Fatal("handler must not run without a token")
	})

	ctx := &fasthttp.RequestCtx{}
	handler(ctx)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestJWTAuthRejectsBadSignature(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "user_1"})
	signed, err := token.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	handler := JWTAuth(testSecret, zap.NewNop())(func(ctx *fasthttp.RequestCtx) {
		t.Fatal("handler must not run with a forged token")
	})

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.Set("Authorization", "Bearer "+signed)
	handler(ctx)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}
