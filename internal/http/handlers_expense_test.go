package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func doJSON(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestExpenseCRUD(t *testing.T) {
	srv, _ := newTestServer(t, Options{Addr: ":0"})

	rr := doJSON(t, srv, http.MethodPost, "/api/expenses",
		`{"amount":"12.34","description":"groceries","categoryId":1,"date":"2024-03-05","paymentMode":"Card","notes":"weekly run"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	var created expenseResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("created id is zero")
	}
	if !created.Amount.Equal(decimal.RequireFromString("12.34")) {
		t.Errorf("amount = %s", created.Amount)
	}
	if created.Date != "2024-03-05" {
		t.Errorf("date = %q", created.Date)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/expenses", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status=%d", rr.Code)
	}
	var listed []expenseResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("list len = %d, want 1", len(listed))
	}

	rr = doJSON(t, srv, http.MethodPut, fmt.Sprintf("/api/expenses/%d", created.ID),
		`{"amount":"20.00","description":"groceries, updated","categoryId":2,"date":"2024-03-06","paymentMode":"Cash"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body.String())
	}
	var updated expenseResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode update: %v", err)
	}
	if !updated.Amount.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("updated amount = %s", updated.Amount)
	}
	if updated.CategoryID != 2 {
		t.Errorf("updated categoryId = %d", updated.CategoryID)
	}

	rr = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/expenses/%d", created.ID), "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/expenses/%d", created.ID), "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second delete status=%d, want 404", rr.Code)
	}
}

func TestExpenseListJoinsCategory(t *testing.T) {
	srv, _ := newTestServer(t, Options{Addr: ":0"})

	rr := doJSON(t, srv, http.MethodPost, "/api/expenses",
		`{"amount":"9.99","description":"lunch","categoryId":1,"date":"2024-03-05","paymentMode":"Cash"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d", rr.Code)
	}

	for _, target := range []string{
		"/api/expenses",
		"/api/expenses/date-range?startDate=2024-03-01&endDate=2024-03-31",
	} {
		rr = doJSON(t, srv, http.MethodGet, target, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", target, rr.Code)
		}
		var listed []expenseWithCategory
		if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(listed) != 1 {
			t.Fatalf("%s len = %d, want 1", target, len(listed))
		}
		if listed[0].Category == nil || listed[0].Category.Name != "Food & Drinks" {
			t.Errorf("%s category = %+v, want seeded Food & Drinks", target, listed[0].Category)
		}
	}
}

func TestExpenseCreateValidation(t *testing.T) {
	srv, _ := newTestServer(t, Options{Addr: ":0"})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"amount":`},
		{"bad amount", `{"amount":"abc","description":"x","categoryId":1,"date":"2024-03-05","paymentMode":"Cash"}`},
		{"negative amount", `{"amount":"-5","description":"x","categoryId":1,"date":"2024-03-05","paymentMode":"Cash"}`},
		{"missing description", `{"amount":"5","description":"","categoryId":1,"date":"2024-03-05","paymentMode":"Cash"}`},
		{"bad date", `{"amount":"5","description":"x","categoryId":1,"date":"05/03/2024","paymentMode":"Cash"}`},
		{"missing category", `{"amount":"5","description":"x","date":"2024-03-05","paymentMode":"Cash"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, srv, http.MethodPost, "/api/expenses", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status=%d body=%s, want 400", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestExpenseDateRangeEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, Options{Addr: ":0"})

	for _, body := range []string{
		`{"amount":"10","description":"in range","categoryId":1,"date":"2024-02-10","paymentMode":"Cash"}`,
		`{"amount":"99","description":"out of range","categoryId":1,"date":"2024-03-10","paymentMode":"Cash"}`,
		`{"amount":"7","description":"boundary","categoryId":1,"date":"2024-02-29","paymentMode":"Cash"}`,
	} {
		if rr := doJSON(t, srv, http.MethodPost, "/api/expenses", body); rr.Code != http.StatusCreated {
			t.Fatalf("seed status=%d body=%s", rr.Code, rr.Body.String())
		}
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/expenses/date-range?startDate=2024-02-01&endDate=2024-02-29", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var listed []expenseResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("len = %d, want 2 (end date inclusive)", len(listed))
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/expenses/date-range?startDate=2024-03-01&endDate=2024-02-01", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("inverted range status=%d, want 400", rr.Code)
	}
}

func TestExpenseOwnerScoping(t *testing.T) {
	srv, _ := newTestServer(t, Options{Addr: ":0"})

	rr := doJSON(t, srv, http.MethodPost, "/api/expenses?user=2",
		`{"amount":"50","description":"owner two","categoryId":1,"date":"2024-03-05","paymentMode":"Cash"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d", rr.Code)
	}
	var created expenseResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Default owner sees nothing.
	rr = doJSON(t, srv, http.MethodGet, "/api/expenses", "")
	var listed []expenseResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("default owner sees %d records, want 0", len(listed))
	}

	// Nor can it delete the other owner's record.
	rr = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/expenses/%d", created.ID), "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("cross-owner delete status=%d, want 404", rr.Code)
	}
}

func TestBudgetAndGoalEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, Options{Addr: ":0"})

	rr := doJSON(t, srv, http.MethodPost, "/api/budgets",
		`{"amount":"3000","period":"monthly","isOverall":true}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create budget status=%d body=%s", rr.Code, rr.Body.String())
	}
	var budget budgetResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &budget); err != nil {
		t.Fatalf("decode budget: %v", err)
	}
	if !budget.IsOverall || budget.CategoryID != nil {
		t.Errorf("budget = %+v, want overall with nil category", budget)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/budgets",
		`{"amount":"100","period":"hourly"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad period status=%d, want 400", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/savings-goals",
		`{"name":"Emergency fund","targetAmount":"10000","currentAmount":"1500","targetDate":"2026-12-31"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create goal status=%d body=%s", rr.Code, rr.Body.String())
	}
	var goal savingsGoalResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &goal); err != nil {
		t.Fatalf("decode goal: %v", err)
	}
	if !goal.CurrentAmount.Valid || !goal.CurrentAmount.Decimal.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("currentAmount = %+v", goal.CurrentAmount)
	}
	if goal.TargetDate == nil || *goal.TargetDate != "2026-12-31" {
		t.Errorf("targetDate = %v", goal.TargetDate)
	}

	// currentAmount is optional.
	rr = doJSON(t, srv, http.MethodPost, "/api/savings-goals",
		`{"name":"Car","targetAmount":"8000"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("goal without current status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodPut, "/api/budgets/9999",
		`{"amount":"500","period":"monthly"}`)
	if rr.Code != http.StatusNotFound {
		t.Errorf("update missing budget status=%d, want 404", rr.Code)
	}
}
