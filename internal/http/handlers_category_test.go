package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestCategoryCRUD(t *testing.T) {
	srv, _ := newTestServer(t, Options{Addr: ":0"})

	rr := doJSON(t, srv, http.MethodPost, "/api/categories",
		`{"name":"Pets","icon":"🐾","color":"#795548"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	var created categoryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.OwnerID == nil || *created.OwnerID != 1 {
		t.Fatalf("created owner = %v, want 1", created.OwnerID)
	}

	rr = doJSON(t, srv, http.MethodPut, fmt.Sprintf("/api/categories/%d", created.ID),
		`{"name":"Pets & Vet","icon":"🐾","color":"#795548"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/categories", `{"name":""}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("empty name status=%d, want 400", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/categories/%d", created.ID), "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rr.Code)
	}
}

func TestCategoryUpdateCannotClaimDefaults(t *testing.T) {
	srv, store := newTestServer(t, Options{Addr: ":0"})

	// Owner 1 has expenses grouped under seeded category 1.
	jan := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	seedExpense(t, store, 1, 1, "10.50", jan)

	// Another owner tries to rename and claim the system default.
	rr := doJSON(t, srv, http.MethodPut, "/api/categories/1?user=2",
		`{"name":"Hijacked","icon":"x","color":"#000000"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("hijack status=%d body=%s, want 404", rr.Code, rr.Body.String())
	}

	// Owner 1's strict-mode breakdown still resolves the category.
	rr = doJSON(t, srv, http.MethodGet, "/api/analytics/category-totals?user=1&startDate=2024-01-01&endDate=2024-01-31", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("category totals status=%d body=%s", rr.Code, rr.Body.String())
	}
	var totals []struct {
		CategoryName string `json:"categoryName"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &totals); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(totals) != 1 || totals[0].CategoryName != "Food & Drinks" {
		t.Fatalf("totals = %+v, want the untouched default name", totals)
	}
}
