package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/reel/pkg/httpx"
	"github.com/aussiebroadwan/reel/pkg/jwtx/jwtxtest"
)

func TestAuthnAndScopes(t *testing.T) {
	iss, err := jwtxtest.NewIssuer()
	require.NoError(t, err)

	var seenUser string
	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser, _ = httpx.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}), httpx.AuthnMiddleware(iss.Verifier()), httpx.RequireAnyScope("video:play", "video:admin"))

	do := func(authz string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("missing token", func(t *testing.T) {
		rec := do("")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), `error="invalid_token"`)

		var body httpx.ErrorBody
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Equal(t, "invalid_token", body.Error)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := iss.Mint("user-1", -time.Minute, "video:play")
		require.NoError(t, err)
		rec := do("Bearer " + token)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), "token expired")
	})

	t.Run("insufficient scope", func(t *testing.T) {
		token, err := iss.Mint("user-1", time.Minute, "chat:read")
		require.NoError(t, err)
		rec := do("Bearer " + token)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.True(t, strings.HasPrefix(rec.Header().Get("WWW-Authenticate"), `Bearer error="insufficient_scope"`))
	})

	t.Run("authorised", func(t *testing.T) {
		token, err := iss.Mint("user-1", time.Minute, "video:play")
		require.NoError(t, err)
		rec := do("Bearer " + token)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "user-1", seenUser)
	})
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler, mark("outer"), mark("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner"}, order)
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		SessionID string `json:"sessionId"`
	}

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"sessionId":"s1"}`))
		var b body
		require.NoError(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &b))
		require.Equal(t, "s1", b.SessionID)
	})

	for name, raw := range map[string]string{
		"unknown field": `{"sessionId":"s1","extra":1}`,
		"trailing data": `{"sessionId":"s1"}{}`,
		"not json":      `nope`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw))
			var b body
			require.Error(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &b))
		})
	}
}
