package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestValidatorPeriod(t *testing.T) {
	v := NewValidator()
	year, month, ok := v.Period("2025", "1", 2020, 2030)
	if !ok || year != 2025 || month != 1 {
		t.Fatalf("expected 2025-01, got %d-%d ok=%v", year, month, ok)
	}
	if v.HasIssues() {
		t.Fatalf("unexpected issues: %+v", v.Issues())
	}

	v = NewValidator()
	if _, _, ok := v.Period("2019", "13", 2020, 2030); ok {
		t.Fatal("expected out-of-range period to fail")
	}
	issues := v.Issues()
	if len(issues) != 2 || issues[0].Field != "month" || issues[1].Field != "year" {
		t.Fatalf("expected sorted month/year issues, got %+v", issues)
	}
}

func TestValidatorEnumAndRequired(t *testing.T) {
	v := NewValidator()
	v.Required("userId", "  ", "is required")
	v.Enum("format", "PDF", []string{"json", "pdf"}, "unsupported format")
	v.Enum("status", "archived", []string{"draft", "paid"}, "unsupported status")
	issues := v.Issues()
	if len(issues) != 2 || issues[0].Field != "status" || issues[1].Field != "userId" {
		t.Fatalf("unexpected issues: %+v", issues)
	}
}

func TestRejectWritesValidationEnvelope(t *testing.T) {
	v := NewValidator()
	v.Add("year", "must be an integer")
	rec := httptest.NewRecorder()
	if !v.Reject(rec, "req-1") {
		t.Fatal("expected reject to write a response")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Details struct {
				Fields []ValidationIssue `json:"fields"`
			} `json:"details"`
		} `json:"error"`
		RequestID string `json:"requestId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || body.Error.Code != "validation_error" || body.RequestID != "req-1" {
		t.Fatalf("unexpected envelope: %+v", body)
	}
	if len(body.Error.Details.Fields) != 1 || body.Error.Details.Fields[0].Field != "year" {
		t.Fatalf("unexpected details: %+v", body.Error.Details)
	}
}

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500&offset=10", nil)
	page := ParsePagination(req, 20, 100)
	if page.Limit != 100 || page.Offset != 10 {
		t.Fatalf("expected clamped pagination, got %+v", page)
	}
	req = httptest.NewRequest(http.MethodGet, "/?limit=abc&offset=-1", nil)
	page = ParsePagination(req, 20, 100)
	if page.Limit != 20 || page.Offset != 0 {
		t.Fatalf("expected defaults, got %+v", page)
	}
}
