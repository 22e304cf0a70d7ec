package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/org/vaultguard/internal/breach"
	"github.com/org/vaultguard/internal/engine"
	"github.com/org/vaultguard/internal/storage"
	"github.com/org/vaultguard/pkg/models"
)

func newTestServer(t *testing.T) (*Server, *storage.MemoryBackend) {
	t.Helper()
	eng, err := engine.New(engine.Options{
		Checker: breach.NewFake(map[string]int{"password": 12}),
		DomainChecker: &breach.FakeDomains{
			Breaches: map[string][]models.DomainBreach{"adobe.com": {{Name: "Adobe", BreachDate: "2013-10-04"}}},
		},
		FingerprintSecret: "api-test",
	})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	store := storage.NewMemoryBackend()
	return NewServer(eng, store, Config{}), store
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func getJSON(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v (body: %s)", err, w.Body.String())
	}
	return result
}

func sampleEntries() []map[string]any {
	now := time.Now().UTC()
	return []map[string]any{
		{"id": "1", "site": "MyBank", "username": "a", "password": "password", "last_updated": now.AddDate(0, 0, -200)},
		{"id": "2", "site": "gmail", "username": "a", "password": "Tr7#kqWmZ4!p", "last_updated": now.AddDate(0, 0, -5)},
		{"id": "3", "site": "blog", "username": "a", "password": "Tr7#kqWmZ4!p", "last_updated": now.AddDate(0, 0, -5)},
		{"id": "4", "site": "forum", "username": "a", "password": "Xk#9mQp2!vLz", "last_updated": now.AddDate(0, 0, -5)},
	}
}

func createAudit(t *testing.T, handler http.Handler) string {
	t.Helper()
	w := postJSON(t, handler, "/v1/audits", map[string]any{"entries": sampleEntries()})
	if w.Code != http.StatusCreated {
		t.Fatalf("create audit failed: %d %s", w.Code, w.Body.String())
	}
	data := decodeBody(t, w)["data"].(map[string]any)
	return data["id"].(string)
}

// --- tests ---

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	w := getJSON(t, srv.BuildRouter(), "/v1/sys/health")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if ok, _ := body["storage_ok"].(bool); !ok {
		t.Error("expected storage_ok=true")
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestGenerateDefaults(t *testing.T) {
	srv, _ := newTestServer(t)
	w := postJSON(t, srv.BuildRouter(), "/v1/generate", map[string]any{})
	if w.Code != http.StatusOK {
		t.Fatalf("generate failed: %d %s", w.Code, w.Body.String())
	}
	data := decodeBody(t, w)["data"].(map[string]any)
	passwords := data["passwords"].([]any)
	if len(passwords) != 1 {
		t.Fatalf("expected 1 password, got %d", len(passwords))
	}
	if pw := passwords[0].(string); len(pw) != 16 {
		t.Errorf("expected 16 characters, got %q", pw)
	}
	if data["strength"] == nil {
		t.Error("expected strength analysis")
	}
}

func TestGenerateBatchAndPolicy(t *testing.T) {
	srv, _ := newTestServer(t)
	w := postJSON(t, srv.BuildRouter(), "/v1/generate", map[string]any{
		"length":          24,
		"include_symbols": false,
		"count":           5,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("generate failed: %d %s", w.Code, w.Body.String())
	}
	data := decodeBody(t, w)["data"].(map[string]any)
	passwords := data["passwords"].([]any)
	if len(passwords) != 5 {
		t.Fatalf("expected 5 passwords, got %d", len(passwords))
	}
	for _, p := range passwords {
		pw := p.(string)
		if len(pw) != 24 {
			t.Errorf("length %d, want 24", len(pw))
		}
		if strings.ContainsAny(pw, "!@#$%^&*()-_=+") {
			t.Errorf("symbols disabled but got %q", pw)
		}
	}
}

func TestGenerateInvalidPolicy(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.BuildRouter()

	cases := []map[string]any{
		{"length": 2},
		{"length": 500},
		{"include_uppercase": false, "include_lowercase": false, "include_numbers": false, "include_symbols": false},
		{"count": 5000},
	}
	for _, body := range cases {
		w := postJSON(t, handler, "/v1/generate", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%v: expected 400, got %d", body, w.Code)
		}
		if !strings.Contains(w.Body.String(), `"errors"`) {
			t.Errorf("%v: expected errors envelope, got %s", body, w.Body.String())
		}
	}
}

func TestStrength(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.BuildRouter()

	w := postJSON(t, handler, "/v1/strength", map[string]any{"password": "password", "breach_check": true})
	if w.Code != http.StatusOK {
		t.Fatalf("strength failed: %d %s", w.Code, w.Body.String())
	}
	data := decodeBody(t, w)["data"].(map[string]any)
	analysis := data["analysis"].(map[string]any)
	if analysis["score"].(float64) >= 60 || analysis["is_common"] != true {
		t.Errorf("analysis = %v", analysis)
	}
	b := data["breach"].(map[string]any)
	if b["breached"] != true || b["count"].(float64) != 12 {
		t.Errorf("breach = %v", b)
	}
	if len(data["recommendations"].([]any)) == 0 {
		t.Error("expected recommendations")
	}

	w = postJSON(t, handler, "/v1/strength", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing password, got %d", w.Code)
	}
}

func TestAuditLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.BuildRouter()
	id := createAudit(t, handler)

	w := getJSON(t, handler, "/v1/audits/"+id)
	if w.Code != http.StatusOK {
		t.Fatalf("get audit failed: %d %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "Xk#9mQp2!vLz") {
		t.Fatal("stored audit contains a plaintext password")
	}
	data := decodeBody(t, w)["data"].(map[string]any)
	va := data["assessment"].(map[string]any)
	if va["security_score"].(float64) != 55 || va["risk_label"] != "HIGH" {
		t.Errorf("assessment = %v", va)
	}
	if n := len(data["entries"].([]any)); n != 4 {
		t.Errorf("expected 4 entries, got %d", n)
	}

	w = getJSON(t, handler, "/v1/audits")
	if w.Code != http.StatusOK {
		t.Fatalf("list audits failed: %d", w.Code)
	}
	body := decodeBody(t, w)
	if n := len(body["data"].([]any)); n != 1 {
		t.Errorf("expected 1 audit, got %d", n)
	}
	if trend := body["trend"].(map[string]any); trend["trend"] != "insufficient_data" {
		t.Errorf("trend = %v", trend)
	}
}

func TestAuditValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.BuildRouter()

	w := postJSON(t, handler, "/v1/audits", map[string]any{"entries": []any{}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty vault: expected 400, got %d", w.Code)
	}

	w = getJSON(t, handler, "/v1/audits/not-a-uuid")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad id: expected 400, got %d", w.Code)
	}

	w = getJSON(t, handler, "/v1/audits/6f1c2a4e-8a57-4d2b-9c53-0d7f2f1b9a11")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown id: expected 404, got %d", w.Code)
	}
}

func TestAuditReports(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.BuildRouter()
	id := createAudit(t, handler)

	w := getJSON(t, handler, "/v1/audits/"+id+"/report")
	if w.Code != http.StatusOK {
		t.Fatalf("report failed: %d %s", w.Code, w.Body.String())
	}
	rep := decodeBody(t, w)["data"].(map[string]any)
	if rep["format"] != "executive" || rep["executive_summary"] == "" {
		t.Errorf("executive report = %v", rep)
	}

	w = getJSON(t, handler, "/v1/audits/"+id+"/report?format=technical")
	if w.Code != http.StatusOK {
		t.Fatalf("technical report failed: %d", w.Code)
	}
	rep = decodeBody(t, w)["data"].(map[string]any)
	if rep["vulnerabilities"] == nil {
		t.Error("technical report missing vulnerabilities")
	}

	w = getJSON(t, handler, "/v1/audits/"+id+"/report?format=user-friendly&render=text")
	if w.Code != http.StatusOK {
		t.Fatalf("text report failed: %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %s", ct)
	}
	if !strings.Contains(w.Body.String(), "QUICK WINS") {
		t.Errorf("text report = %s", w.Body.String())
	}

	w = getJSON(t, handler, "/v1/audits/"+id+"/report?format=poster")
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown format: expected 400, got %d", w.Code)
	}
}

func TestAuditDigest(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.BuildRouter()
	createAudit(t, handler)
	id := createAudit(t, handler)

	w := getJSON(t, handler, "/v1/audits/"+id+"/digest?period=weekly")
	if w.Code != http.StatusOK {
		t.Fatalf("digest failed: %d %s", w.Code, w.Body.String())
	}
	data := decodeBody(t, w)["data"].(map[string]any)
	plan := data["plan"].(map[string]any)
	if len(plan["immediate"].([]any)) == 0 {
		t.Error("expected an immediate task for the breached entry")
	}
	digest := data["digest"].(map[string]any)
	if digest["period"] != "weekly" {
		t.Errorf("period = %v", digest["period"])
	}
	if trends := digest["trends"].(map[string]any); trends["trend"] != "stable" {
		t.Errorf("trends = %v", trends)
	}

	w = getJSON(t, handler, "/v1/audits/"+id+"/digest?period=daily")
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown period: expected 400, got %d", w.Code)
	}
}

func TestAuditReportCharts(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.BuildRouter()
	createAudit(t, handler)
	id := createAudit(t, handler)

	w := getJSON(t, handler, "/v1/audits/"+id+"/report?format=user-friendly&charts=true")
	if w.Code != http.StatusOK {
		t.Fatalf("report failed: %d %s", w.Code, w.Body.String())
	}
	rep := decodeBody(t, w)["data"].(map[string]any)
	charts, ok := rep["chart_data"].(map[string]any)
	if !ok {
		t.Fatalf("chart data missing: %v", rep)
	}
	if series := charts["security_trend"].([]any); len(series) != 2 {
		t.Errorf("expected the earlier audit plus this one, got %v", series)
	}
	if breakdown := charts["password_strength"].(map[string]any); breakdown["breached"] != float64(1) {
		t.Errorf("password strength = %v", breakdown)
	}

	w = getJSON(t, handler, "/v1/audits/"+id+"/report")
	if rep := decodeBody(t, w)["data"].(map[string]any); rep["chart_data"] != nil {
		t.Error("charts should only be attached on request")
	}

	w = getJSON(t, handler, "/v1/audits/"+id+"/report?charts=maybe")
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid charts flag: expected 400, got %d", w.Code)
	}
}

func TestAuditDigestPersonalized(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.BuildRouter()
	id := createAudit(t, handler)

	w := getJSON(t, handler, "/v1/audits/"+id+"/digest?time_limited=true&advanced=true")
	if w.Code != http.StatusOK {
		t.Fatalf("digest failed: %d %s", w.Code, w.Body.String())
	}
	plan := decodeBody(t, w)["data"].(map[string]any)["plan"].(map[string]any)
	for _, bucket := range []string{"immediate", "this_week", "this_month", "ongoing"} {
		for _, raw := range plan[bucket].([]any) {
			task := raw.(map[string]any)
			if task["estimated_minutes"].(float64) > 15 {
				t.Errorf("%s task %v exceeds the time-limited cap", bucket, task["title"])
			}
			if task["description"] == "" {
				t.Errorf("%s task %v has no description", bucket, task["title"])
			}
		}
	}
	immediate := plan["immediate"].([]any)[0].(map[string]any)
	if !strings.Contains(immediate["description"].(string), "k-anonymity") {
		t.Errorf("advanced description = %v", immediate["description"])
	}

	w = getJSON(t, handler, "/v1/audits/"+id+"/digest?advanced=often")
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid advanced flag: expected 400, got %d", w.Code)
	}
}

func TestRequestLogOmitsPasswords(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.BuildRouter()
	postJSON(t, handler, "/v1/strength", map[string]any{"password": "Tr7#kqWmZ4!p"})
	createAudit(t, handler)

	w := getJSON(t, handler, "/v1/sys/request-log?path=/v1/")
	if w.Code != http.StatusOK {
		t.Fatalf("request log failed: %d", w.Code)
	}
	raw := w.Body.String()
	if strings.Contains(raw, "Tr7#kqWmZ4!p") {
		t.Fatal("request log contains a plaintext password")
	}
	entries := decodeBody(t, w)["data"].([]any)
	if len(entries) < 2 {
		t.Fatalf("expected at least 2 entries, got %d", len(entries))
	}
	newest := entries[0].(map[string]any)
	if newest["path"] != "/v1/audits" || newest["response_code"].(float64) != 201 {
		t.Errorf("newest entry = %v", newest)
	}
	meta := newest["metadata"].(map[string]any)
	if meta["entries"].(float64) != 4 || meta["audit_id"] == "" {
		t.Errorf("metadata = %v", meta)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(1, 3)
	for i := 0; i < 3; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Error("burst exhausted, request should be denied")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("other clients have their own bucket")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	if got := clientIP(req); got != "192.0.2.7" {
		t.Errorf("clientIP = %s", got)
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := clientIP(req); got != "203.0.113.9" {
		t.Errorf("clientIP with forwarding = %s", got)
	}
}

func TestDomainCheckEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.BuildRouter()

	w := postJSON(t, handler, "/v1/domains/check", map[string]any{
		"domains": []string{"https://www.adobe.com/account", "github.com", "MyBank"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := decodeBody(t, w)["data"].(map[string]any)
	if data["domains_checked"] != float64(2) || data["domains_with_breaches"] != float64(1) {
		t.Errorf("data = %v", data)
	}
	first := data["results"].([]any)[0].(map[string]any)
	if first["domain"] != "adobe.com" || first["has_breaches"] != true {
		t.Errorf("first result = %v", first)
	}

	w = postJSON(t, handler, "/v1/domains/check", map[string]any{"domains": []string{}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty domains, got %d", w.Code)
	}
}
