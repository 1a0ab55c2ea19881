package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/appdev/finance/finance-backend/internal/domain"
)

func TestGetActivity_Paginates(t *testing.T) {
	env := newTestEnv()
	for i := 0; i < 5; i++ {
		env.activityStore.Record(1, domain.ActivityLoginSuccess, "Logged in", "10.0.0.1")
	}
	env.activityStore.Record(2, domain.ActivityLoginSuccess, "Logged in", "10.0.0.2")

	c, rec := newContext(http.MethodGet, "/api/v1/activity?page=2&pageSize=2", nil, 1)
	if err := env.activityLog.GetActivity(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusOK)

	var response domain.PaginatedActivityLogs
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Page != 2 || response.PageSize != 2 {
		t.Errorf("Expected page 2 size 2, got page %d size %d", response.Page, response.PageSize)
	}
	if response.TotalItems != 5 || response.TotalPages != 3 {
		t.Errorf("Expected 5 items over 3 pages, got %d over %d", response.TotalItems, response.TotalPages)
	}
	if len(response.Data) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(response.Data))
	}
}

func TestGetActivity_Defaults(t *testing.T) {
	env := newTestEnv()

	c, rec := newContext(http.MethodGet, "/api/v1/activity?page=abc", nil, 1)
	if err := env.activityLog.GetActivity(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusOK)

	var response domain.PaginatedActivityLogs
	json.Unmarshal(rec.Body.Bytes(), &response)
	if response.Page != 1 || response.PageSize != domain.DefaultPageSize {
		t.Errorf("Expected page 1 size %d, got page %d size %d", domain.DefaultPageSize, response.Page, response.PageSize)
	}
	if response.Data == nil {
		t.Error("Expected an empty list rather than null")
	}
}
