package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type samplePayload struct {
	EmployeeID string `json:"employeeId" validate:"required"`
	Month      int    `json:"month" validate:"required,min=1,max=12"`
}

func TestValidatorStructUsesJSONNames(t *testing.T) {
	v := NewValidator()
	v.Struct(samplePayload{Month: 13})

	issues := v.Issues()
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %+v", issues)
	}
	if issues[0].Field != "employeeId" || issues[0].Reason != "is required" {
		t.Fatalf("unexpected first issue: %+v", issues[0])
	}
	if issues[1].Field != "month" || issues[1].Reason != "must be at most 12" {
		t.Fatalf("unexpected second issue: %+v", issues[1])
	}
}

func TestValidatorOptionalInt(t *testing.T) {
	v := NewValidator()
	if got := v.OptionalInt("month", ""); got != nil {
		t.Fatalf("expected nil for empty value, got %v", *got)
	}
	if got := v.OptionalInt("month", " 7 "); got == nil || *got != 7 {
		t.Fatalf("expected 7, got %v", got)
	}
	if got := v.OptionalInt("year", "twenty"); got != nil || !v.HasIssues() {
		t.Fatal("expected an issue for a non-numeric value")
	}
}

func TestRejectWritesValidationEnvelope(t *testing.T) {
	v := NewValidator()
	v.Add("month", "must be at least 1")

	rec := httptest.NewRecorder()
	if !v.Reject(rec, "req-1") {
		t.Fatal("expected reject to report issues")
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
	if len(body.Error.Details.Fields) != 1 || body.Error.Details.Fields[0].Field != "month" {
		t.Fatalf("unexpected fields: %+v", body.Error.Details.Fields)
	}
}
