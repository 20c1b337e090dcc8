package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"kpiauditor/internal/domain"
)

func newTestClient(t *testing.T, handler http.Handler) (*EngineClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewEngineClient(&Config{BaseURL: srv.URL}), srv
}

func TestStartAudit(t *testing.T) {
	var gotBody struct {
		CollegeName string `json:"college_name"`
	}
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/audit/start" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"audit_id": "abc-123",
			"status":   "processing",
		})
	}))

	id, err := c.StartAudit(context.Background(), "Test College")
	if err != nil {
		t.Fatalf("StartAudit: %v", err)
	}
	if id != "abc-123" {
		t.Errorf("audit id = %q, want abc-123", id)
	}
	if gotBody.CollegeName != "Test College" {
		t.Errorf("sent college_name = %q", gotBody.CollegeName)
	}
}

func TestStartAuditEmptyNameSkipsNetwork(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))

	_, err := c.StartAudit(context.Background(), "   ")
	if !errors.Is(err, ErrEmptyCollegeName) {
		t.Fatalf("error = %v, want ErrEmptyCollegeName", err)
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("client made %d requests for an empty name", n)
	}
}

func TestStartAuditServerError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "database unavailable"})
	}))

	_, err := c.StartAudit(context.Background(), "Test College")
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("error = %T, want *TransportError", err)
	}
	if terr.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", terr.Status)
	}
	if terr.Op != "start" {
		t.Errorf("op = %q, want start", terr.Op)
	}
}

func TestGetAudit(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/audit/abc-123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "abc-123",
			"college_name": "Test College",
			"status": "processing",
			"progress": 40,
			"progress_message": "Searching official sources for NAAC Grade...",
			"results": [{"kpi_name": "NIRF Overall Rank", "category": "Rankings", "value": 42}]
		}`))
	}))

	job, err := c.GetAudit(context.Background(), "abc-123")
	if err != nil {
		t.Fatalf("GetAudit: %v", err)
	}
	if job.Status != domain.StatusProcessing || job.Progress != 40 {
		t.Errorf("snapshot = %+v", job)
	}
	if len(job.Results) != 1 || job.Results[0].Value.SentinelText() != "42" {
		t.Errorf("results decoded badly: %+v", job.Results)
	}
}

func TestCancelAuditAlreadyTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"structured reason", http.StatusConflict, `{"error": "audit already in a terminal state", "reason": "already_terminal"}`},
		{"reason on other status", http.StatusBadRequest, `{"error": "terminal", "reason": "already_terminal"}`},
		{"bare 409 fallback", http.StatusConflict, `{"error": "conflict"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			err := c.CancelAudit(context.Background(), "abc-123")
			if !errors.Is(err, ErrAlreadyTerminal) {
				t.Errorf("error = %v, want ErrAlreadyTerminal", err)
			}
		})
	}
}

func TestCancelAuditConflictWithOtherReason(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error": "audit is locked by another operator", "reason": "locked"}`))
	}))

	err := c.CancelAudit(context.Background(), "abc-123")
	if errors.Is(err, ErrAlreadyTerminal) {
		t.Fatal("409 with a foreign reason must not map to ErrAlreadyTerminal")
	}
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("error = %T, want *TransportError", err)
	}
	if terr.Status != http.StatusConflict {
		t.Errorf("status = %d, want 409", terr.Status)
	}
}

func TestCancelAuditOtherFailure(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "audit not found"}`))
	}))

	err := c.CancelAudit(context.Background(), "missing")
	if errors.Is(err, ErrAlreadyTerminal) {
		t.Fatal("404 must not be treated as already terminal")
	}
	if !IsTransport(err) {
		t.Errorf("error = %v, want transport error", err)
	}
}

func TestListAudits(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("limit = %q, want 5", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"audits": [{"id": "a1", "college_name": "C1", "status": "completed"}], "count": 1}`))
	}))

	entries, err := c.ListAudits(context.Background(), 5)
	if err != nil {
		t.Fatalf("ListAudits: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "a1" || entries[0].Status != domain.StatusCompleted {
		t.Errorf("entries = %+v", entries)
	}
}
