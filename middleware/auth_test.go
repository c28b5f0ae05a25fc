package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
)

type staticParser struct{}

func (staticParser) ParseToken(token string) (jwt.MapClaims, error) {
	if token == "good" {
		return jwt.MapClaims{"role": "organizer"}, nil
	}
	return nil, errors.New("bad token")
}

func TestAuthenticate(t *testing.T) {
	var seen jwt.MapClaims
	h := Authenticate(staticParser{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", want: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer good", want: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodPost, "/tournament", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.want, rr.Code)
			if tt.want == http.StatusNoContent {
				assert.Equal(t, "organizer", seen["role"])
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	h := Authorize("organizer")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   int
	}{
		{name: "no claims", claims: nil, want: http.StatusUnauthorized},
		{name: "no role", claims: jwt.MapClaims{}, want: http.StatusForbidden},
		{name: "other role", claims: jwt.MapClaims{"role": "viewer"}, want: http.StatusForbidden},
		{name: "organizer", claims: jwt.MapClaims{"role": "organizer"}, want: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/tournament", nil)
			if tt.claims != nil {
				req = req.WithContext(context.WithValue(req.Context(), userContextKey, tt.claims))
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}
