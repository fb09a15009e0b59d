package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// echoEmail writes the context email so tests can see what the middleware stored.
var echoEmail = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	email, ok := EmailFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	_, _ = w.Write([]byte(email))
})

func TestRequireAuth(t *testing.T) {
	ts := newTestTokenService(t)
	good, _ := ts.Generate("ana@x.com")
	expired, _ := ts.GenerateWithDuration("ana@x.com", -time.Minute)

	tests := []struct {
		name       string
		headers    map[string]string
		wantStatus int
		wantBody   string
	}{
		{"bearer", map[string]string{"Authorization": "Bearer " + good}, http.StatusOK, "ana@x.com"},
		{"lowercase scheme", map[string]string{"Authorization": "bearer " + good}, http.StatusOK, "ana@x.com"},
		{"legacy header", map[string]string{TokenHeader: good}, http.StatusOK, "ana@x.com"},
		{"no token", nil, http.StatusUnauthorized, ""},
		{"basic scheme", map[string]string{"Authorization": "Basic " + good}, http.StatusUnauthorized, ""},
		{"expired", map[string]string{"Authorization": "Bearer " + expired}, http.StatusUnauthorized, ""},
		{"garbage", map[string]string{"Authorization": "Bearer nope"}, http.StatusUnauthorized, ""},
	}

	h := RequireAuth(ts)(echoEmail)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/cdc", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
			if tt.wantStatus == http.StatusUnauthorized && rec.Header().Get("Content-Type") != "application/json" {
				t.Errorf("401 Content-Type = %q", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestEmailFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := EmailFromContext(req.Context()); ok {
		t.Error("EmailFromContext() ok = true on a bare context")
	}
}
