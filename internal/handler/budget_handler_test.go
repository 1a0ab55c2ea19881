package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/appdev/finance/finance-backend/internal/domain"
)

func TestGetBudget_DefaultsToZero(t *testing.T) {
	env := newTestEnv()

	c, rec := newContext(http.MethodGet, "/api/v1/budget", nil, 1)
	if err := env.budget.GetBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusOK)

	var budget domain.Budget
	if err := json.Unmarshal(rec.Body.Bytes(), &budget); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if !budget.Amount.IsZero() {
		t.Errorf("Expected zero budget, got %s", budget.Amount)
	}
}

func TestSaveBudget(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{"valid amount", `{"amount": "2500.50"}`, http.StatusOK, ""},
		{"zero amount", `{"amount": "0"}`, http.StatusOK, ""},
		{"negative amount", `{"amount": "-5"}`, http.StatusBadRequest, "amount"},
		{"not a number", `{"amount": "lots"}`, http.StatusBadRequest, "amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			c, rec := newContext(http.MethodPut, "/api/v1/budget", strings.NewReader(tt.body), 1)

			if err := env.budget.SaveBudget(c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			expectStatus(t, rec, tt.status)

			if tt.field != "" {
				problem := decodeProblem(t, rec)
				if len(problem.Errors) == 0 || problem.Errors[0].Field != tt.field {
					t.Errorf("Expected error on %s, got %+v", tt.field, problem.Errors)
				}
			}
		})
	}
}

func TestSaveBudget_PersistsForUser(t *testing.T) {
	env := newTestEnv()

	c, rec := newContext(http.MethodPut, "/api/v1/budget", strings.NewReader(`{"amount": "800"}`), 7)
	env.budget.SaveBudget(c)
	expectStatus(t, rec, http.StatusOK)

	c, rec = newContext(http.MethodGet, "/api/v1/budget", nil, 7)
	env.budget.GetBudget(c)

	var budget domain.Budget
	json.Unmarshal(rec.Body.Bytes(), &budget)
	if budget.Amount.StringFixed(2) != "800.00" {
		t.Errorf("Expected 800.00, got %s", budget.Amount)
	}
	if budget.UserID != 7 {
		t.Errorf("Expected user 7, got %d", budget.UserID)
	}
}
