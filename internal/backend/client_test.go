package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/amlwatch/dashboard/internal/domain"
	"github.com/amlwatch/dashboard/internal/logger"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/v1", logger.NewWithWriter(nil))
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/customer/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "acme & co" {
			t.Errorf("q = %q", got)
		}
		json.NewEncoder(w).Encode([]domain.SearchResult{
			{BCN: "BCN-1", Name: "Acme & Co", TransactionCount: 12},
		})
	}))

	results, err := c.Search(context.Background(), "acme & co")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].BCN != "BCN-1" || results[0].TransactionCount != 12 {
		t.Errorf("results = %+v", results)
	}
}

func TestOverview(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/customer/BCN-9/overview" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(domain.CustomerOverview{
			BusinessContactNumber: "BCN-9",
			RiskAssessment:        domain.RiskAssessment{OverallScore: 72, RiskLevel: domain.RiskHigh},
			Transactions:          []domain.Transaction{{Index: 0, Date: "2024-01-01", Amount: 10}},
		})
	}))

	o, err := c.Overview(context.Background(), "BCN-9")
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if o.BusinessContactNumber != "BCN-9" || o.RiskAssessment.RiskLevel != domain.RiskHigh {
		t.Errorf("overview = %+v", o)
	}
	if len(o.Transactions) != 1 {
		t.Errorf("transactions = %+v", o.Transactions)
	}
}

func TestOverviewNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "customer not found", http.StatusNotFound)
	}))

	_, err := c.Overview(context.Background(), "MISSING")
	if err == nil {
		t.Fatal("expected error")
	}
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error %T, want *StatusError", err)
	}
	if se.Code != http.StatusNotFound || se.Body != "customer not found" {
		t.Errorf("StatusError = %+v", se)
	}
}

func TestUploadMultipart(t *testing.T) {
	content := []byte("col1,col2\n1,2\n")
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/upload/transactions" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer file.Close()
		if header.Filename != "txns.xlsx" {
			t.Errorf("filename = %s", header.Filename)
		}
		body, _ := io.ReadAll(file)
		if string(body) != string(content) {
			t.Errorf("body = %q", body)
		}
		json.NewEncoder(w).Encode(domain.UploadResult{Status: "ok", RecordCount: 2, Warnings: []string{}})
	}))

	result, err := c.Upload(context.Background(), "transactions", "txns.xlsx", content)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if result.RecordCount != 2 {
		t.Errorf("record count = %d", result.RecordCount)
	}
}

func TestUploadErrorBodyBecomesMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing required column: amount", http.StatusUnprocessableEntity)
	}))

	_, err := c.Upload(context.Background(), "transactions", "t.xlsx", []byte("x"))
	if err == nil {
		t.Fatal("expected error")
	}
	want := "backend 422: missing required column: amount"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestStatusAndClear(t *testing.T) {
	var clears int
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/upload/status":
			json.NewEncoder(w).Encode(map[string]bool{
				"transactions": true, "watchlist": false,
				"high_risk_countries": false, "work_instructions": true,
			})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/v1/upload/clear":
			clears++
			json.NewEncoder(w).Encode(map[string]string{"status": "cleared"})
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))

	status, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status["transactions"] || status["watchlist"] || !status["work_instructions"] {
		t.Errorf("status = %v", status)
	}

	if err := c.Clear(context.Background()); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if clears != 1 {
		t.Errorf("clear calls = %d", clears)
	}
}

func TestStatusErrorEmptyBody(t *testing.T) {
	e := &StatusError{Code: 502}
	if e.Error() != "backend 502: unknown error" {
		t.Errorf("Error() = %q", e.Error())
	}
}
