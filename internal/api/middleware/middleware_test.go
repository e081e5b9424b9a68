package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestRequestIDGeneratedWhenAbsent(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/claims", nil))

	if seen == "" {
		t.Fatal("no request id in context")
	}
	if got := rec.Header().Get("X-Request-ID"); got != seen {
		t.Errorf("response header = %q, context = %q", got, seen)
	}
}

func TestRequestIDPassedThrough(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest("POST", "/api/v1/claims", nil)
	req.Header.Set("X-Request-ID", "req-trace-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "req-trace-42" {
		t.Errorf("request id = %q, want req-trace-42", seen)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	keys := map[string]string{"key-abc": "billing-sys"}

	tests := []struct {
		name       string
		header     string
		value      string
		wantStatus int
		wantClient string
	}{
		{"valid x-api-key", "X-API-Key", "key-abc", http.StatusOK, "billing-sys"},
		{"valid bearer", "Authorization", "Bearer key-abc", http.StatusOK, "billing-sys"},
		{"unknown key", "X-API-Key", "nope", http.StatusUnauthorized, ""},
		{"missing key", "", "", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var client string
			h := APIKeyAuth(keys)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				client = GetClientID(r.Context())
			}))

			req := httptest.NewRequest("POST", "/api/v1/claims", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if client != tt.wantClient {
				t.Errorf("client id = %q, want %q", client, tt.wantClient)
			}
		})
	}
}

func TestProviderContext(t *testing.T) {
	var license string
	h := ProviderContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		license = GetProviderLicense(r.Context())
	}))

	req := httptest.NewRequest("POST", "/api/v1/claims", nil)
	req.Header.Set("X-Provider-License", "  PR-FHIR ")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if license != "PR-FHIR" {
		t.Errorf("provider license = %q, want PR-FHIR", license)
	}

	license = "unset"
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/v1/claims", nil))
	if license != "" {
		t.Errorf("provider license without header = %q, want empty", license)
	}
}

func TestRecoverConvertsPanic(t *testing.T) {
	h := Recover(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/claims/x", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
