package handlers_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hknclub/budgethq/internal/security/password"
	"github.com/hknclub/budgethq/internal/store/core"
	"github.com/hknclub/budgethq/internal/util/timeutil"
)

func createBudget(t *testing.T, base, token, name string) string {
	t.Helper()
	status, body := doJSON(t, http.MethodPost, base+"/api/budgets", token, map[string]any{
		"name":           name,
		"allocatedCents": 500000,
	})
	require.Equal(t, http.StatusCreated, status)
	return body["budget"].(map[string]any)["id"].(string)
}

func TestBudgetLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	token, _ := registerUser(t, srv.URL, "treasurer1", "secret123")

	id := createBudget(t, srv.URL, token, "2025/26 General")

	status, body := doJSON(t, http.MethodGet, srv.URL+"/api/budgets", token, nil)
	require.Equal(t, http.StatusOK, status)
	budgets := body["budgets"].([]any)
	require.Len(t, budgets, 1)

	// defaulted to the current academic year, so not archived
	status, body = doJSON(t, http.MethodGet, srv.URL+"/api/budgets/archived", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, body["budgets"])

	status, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/budgets/"+id, token, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = doJSON(t, http.MethodGet, srv.URL+"/api/budgets/"+id, token, nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestBudgetOwnershipIsolation(t *testing.T) {
	srv, _ := newTestServer(t)
	tokenA, _ := registerUser(t, srv.URL, "alice", "secret123")
	tokenB, _ := registerUser(t, srv.URL, "mallory", "secret123")

	id := createBudget(t, srv.URL, tokenA, "Private")

	status, _ := doJSON(t, http.MethodGet, srv.URL+"/api/budgets/"+id, tokenB, nil)
	require.Equal(t, http.StatusNotFound, status)
	status, _ = doJSON(t, http.MethodGet, srv.URL+"/api/transactions?budgetId="+id, tokenB, nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestTransactionsAndSummary(t *testing.T) {
	srv, _ := newTestServer(t)
	token, _ := registerUser(t, srv.URL, "treasurer1", "secret123")
	id := createBudget(t, srv.URL, token, "Ops")

	status, _ := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", token, map[string]any{
		"budgetId": id, "type": "income", "status": "actual",
		"amountCents": 10000, "category": "sponsorship",
	})
	require.Equal(t, http.StatusCreated, status)
	status, _ = doJSON(t, http.MethodPost, srv.URL+"/api/transactions", token, map[string]any{
		"budgetId": id, "type": "expense", "status": "planned",
		"amountCents": 2500, "category": "pizza",
	})
	require.Equal(t, http.StatusCreated, status)

	// invalid type
	status, body := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", token, map[string]any{
		"budgetId": id, "type": "donation", "amountCents": 100,
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "VALIDATION", body["code"])

	status, body = doJSON(t, http.MethodGet, srv.URL+"/api/budgets/"+id, token, nil)
	require.Equal(t, http.StatusOK, status)
	budget := body["budget"].(map[string]any)
	require.EqualValues(t, 10000, budget["actualIncomeCents"])
	require.EqualValues(t, 0, budget["actualExpenseCents"])
	require.EqualValues(t, 2500, budget["projectedExpenseCents"])

	status, body = doJSON(t, http.MethodGet, srv.URL+"/api/transactions?budgetId="+id, token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["transactions"], 2)
}

func TestBudgetUpdate(t *testing.T) {
	srv, _ := newTestServer(t)
	token, _ := registerUser(t, srv.URL, "treasurer1", "secret123")
	id := createBudget(t, srv.URL, token, "Ops")

	status, body := doJSON(t, http.MethodPut, srv.URL+"/api/budgets/"+id, token, map[string]any{
		"name": "Ops 2.0", "allocatedCents": 750000,
	})
	require.Equal(t, http.StatusOK, status)
	budget := body["budget"].(map[string]any)
	require.Equal(t, "Ops 2.0", budget["name"])
	require.EqualValues(t, 750000, budget["allocatedCents"])

	// omitted fields keep their value
	status, body = doJSON(t, http.MethodPut, srv.URL+"/api/budgets/"+id, token, map[string]any{
		"name": "Ops 3.0",
	})
	require.Equal(t, http.StatusOK, status)
	budget = body["budget"].(map[string]any)
	require.Equal(t, "Ops 3.0", budget["name"])
	require.EqualValues(t, 750000, budget["allocatedCents"])

	status, body = doJSON(t, http.MethodPut, srv.URL+"/api/budgets/"+uuid.NewString(), token, map[string]any{
		"name": "Ghost",
	})
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "NOT_FOUND", body["code"])
}

func TestTransactionUpdate(t *testing.T) {
	srv, _ := newTestServer(t)
	token, _ := registerUser(t, srv.URL, "treasurer1", "secret123")
	id := createBudget(t, srv.URL, token, "Ops")

	status, body := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", token, map[string]any{
		"budgetId": id, "type": "expense", "status": "planned",
		"amountCents": 2500, "category": "pizza",
	})
	require.Equal(t, http.StatusCreated, status)
	txID := body["transaction"].(map[string]any)["id"].(string)

	status, body = doJSON(t, http.MethodPut, srv.URL+"/api/transactions/"+txID, token, map[string]any{
		"budgetId": id, "type": "expense", "status": "actual",
		"amountCents": 3100, "category": "pizza", "notes": "two extra boxes",
	})
	require.Equal(t, http.StatusOK, status)
	tx := body["transaction"].(map[string]any)
	require.Equal(t, "actual", tx["status"])
	require.EqualValues(t, 3100, tx["amountCents"])

	// the planned expense now counts as spent
	status, body = doJSON(t, http.MethodGet, srv.URL+"/api/budgets/"+id, token, nil)
	require.Equal(t, http.StatusOK, status)
	budget := body["budget"].(map[string]any)
	require.EqualValues(t, 3100, budget["actualExpenseCents"])

	// invalid type never reaches the store
	status, body = doJSON(t, http.MethodPut, srv.URL+"/api/transactions/"+txID, token, map[string]any{
		"budgetId": id, "type": "donation", "amountCents": 100,
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "VALIDATION", body["code"])
}

func TestEventUpdate(t *testing.T) {
	srv, _ := newTestServer(t)
	token, _ := registerUser(t, srv.URL, "treasurer1", "secret123")
	id := createBudget(t, srv.URL, token, "Ops")

	status, body := doJSON(t, http.MethodPost, srv.URL+"/api/events", token, map[string]any{
		"budgetId": id, "name": "Hack Night", "allocatedCents": 20000,
	})
	require.Equal(t, http.StatusCreated, status)
	evID := body["event"].(map[string]any)["id"].(string)

	status, _ = doJSON(t, http.MethodPut, srv.URL+"/api/events/"+evID, token, map[string]any{
		"budgetId": id, "name": "Hack Weekend", "allocatedCents": 35000, "notes": "now two days",
	})
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, http.MethodGet, srv.URL+"/api/events?budgetId="+id, token, nil)
	require.Equal(t, http.StatusOK, status)
	got := body["events"].([]any)[0].(map[string]any)
	require.Equal(t, "Hack Weekend", got["name"])
	require.EqualValues(t, 35000, got["allocatedCents"])
	require.Equal(t, "now two days", got["notes"])
}

func TestDeadlineUpdate(t *testing.T) {
	srv, _ := newTestServer(t)
	token, _ := registerUser(t, srv.URL, "treasurer1", "secret123")
	id := createBudget(t, srv.URL, token, "Grants")
	due := time.Now().Add(720 * time.Hour).Unix()

	status, body := doJSON(t, http.MethodPost, srv.URL+"/api/deadlines", token, map[string]any{
		"budgetId": id, "title": "Faculty grant", "dueTs": due,
	})
	require.Equal(t, http.StatusCreated, status)
	dlID := body["deadline"].(map[string]any)["id"].(string)

	status, body = doJSON(t, http.MethodPut, srv.URL+"/api/deadlines/"+dlID, token, map[string]any{
		"budgetId": id, "title": "Faculty grant (spring)", "status": "submitted",
		"dueTs": due + 86400, "link": "https://grants.example.edu",
	})
	require.Equal(t, http.StatusOK, status)
	dl := body["deadline"].(map[string]any)
	require.Equal(t, "submitted", dl["status"])
	require.EqualValues(t, due+86400, dl["dueTs"])

	status, body = doJSON(t, http.MethodPut, srv.URL+"/api/deadlines/"+dlID, token, map[string]any{
		"budgetId": id, "title": "Faculty grant", "status": "maybe", "dueTs": due,
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "VALIDATION", body["code"])
}

func TestUpdateOwnershipIsolation(t *testing.T) {
	srv, _ := newTestServer(t)
	tokenA, _ := registerUser(t, srv.URL, "alice", "secret123")
	tokenB, _ := registerUser(t, srv.URL, "mallory", "secret123")

	id := createBudget(t, srv.URL, tokenA, "Private")
	status, body := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", tokenA, map[string]any{
		"budgetId": id, "type": "income", "amountCents": 1000, "category": "dues",
	})
	require.Equal(t, http.StatusCreated, status)
	txID := body["transaction"].(map[string]any)["id"].(string)

	status, _ = doJSON(t, http.MethodPut, srv.URL+"/api/budgets/"+id, tokenB, map[string]any{
		"name": "Hijacked",
	})
	require.Equal(t, http.StatusNotFound, status)
	status, _ = doJSON(t, http.MethodPut, srv.URL+"/api/transactions/"+txID, tokenB, map[string]any{
		"budgetId": id, "type": "expense", "amountCents": 999999, "category": "merch",
	})
	require.Equal(t, http.StatusNotFound, status)
}

func TestDeadlineStatusTransitions(t *testing.T) {
	srv, _ := newTestServer(t)
	token, _ := registerUser(t, srv.URL, "treasurer1", "secret123")
	id := createBudget(t, srv.URL, token, "Grants")

	status, body := doJSON(t, http.MethodPost, srv.URL+"/api/deadlines", token, map[string]any{
		"budgetId": id, "title": "Faculty grant", "dueTs": time.Now().Add(720 * time.Hour).Unix(),
	})
	require.Equal(t, http.StatusCreated, status)
	dl := body["deadline"].(map[string]any)
	require.Equal(t, "open", dl["status"])
	dlID := dl["id"].(string)

	status, body = doJSON(t, http.MethodPatch, srv.URL+"/api/deadlines/"+dlID+"/status", token, map[string]any{
		"budgetId": id, "status": "submitted",
	})
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, http.MethodPatch, srv.URL+"/api/deadlines/"+dlID+"/status", token, map[string]any{
		"budgetId": id, "status": "maybe",
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "VALIDATION", body["code"])

	status, body = doJSON(t, http.MethodGet, srv.URL+"/api/deadlines?budgetId="+id, token, nil)
	require.Equal(t, http.StatusOK, status)
	got := body["deadlines"].([]any)[0].(map[string]any)
	require.Equal(t, "submitted", got["status"])
}

func TestAnalyticsOverview(t *testing.T) {
	srv, _ := newTestServer(t)
	token, _ := registerUser(t, srv.URL, "treasurer1", "secret123")
	id := createBudget(t, srv.URL, token, "Ops")

	doJSON(t, http.MethodPost, srv.URL+"/api/transactions", token, map[string]any{
		"budgetId": id, "type": "income", "amountCents": 5000, "category": "dues",
	})
	doJSON(t, http.MethodPost, srv.URL+"/api/deadlines", token, map[string]any{
		"budgetId": id, "title": "IEEE grant", "dueTs": time.Now().Unix() + 3600,
	})

	status, body := doJSON(t, http.MethodGet, srv.URL+"/api/analytics/overview?budgetId="+id, token, nil)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, body["categories"])
	require.NotEmpty(t, body["monthly"])
	deadlines := body["deadlines"].(map[string]any)
	require.EqualValues(t, 1, deadlines["open"])
}

func TestExportTokenAndCSV(t *testing.T) {
	srv, _ := newTestServer(t)
	token, _ := registerUser(t, srv.URL, "treasurer1", "secret123")
	id := createBudget(t, srv.URL, token, "Ops")
	doJSON(t, http.MethodPost, srv.URL+"/api/transactions", token, map[string]any{
		"budgetId": id, "type": "expense", "amountCents": 1234, "category": "stickers",
	})

	status, body := doJSON(t, http.MethodGet, srv.URL+"/api/auth/export-token", token, nil)
	require.Equal(t, http.StatusOK, status)
	exportToken := body["token"].(string)

	// token travels in the query string; no cookie, no bearer
	resp, err := http.Get(srv.URL + "/api/exports/transactions.csv?token=" + exportToken + "&budgetId=" + id)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	csvBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(csvBody), "id,date,type,status,category,amount_cents,notes"))
	require.Contains(t, string(csvBody), "stickers")

	// a session token is not an export token
	resp, err = http.Get(srv.URL + "/api/exports/transactions.csv?token=" + token + "&budgetId=" + id)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminUserListing(t *testing.T) {
	srv, c := newTestServer(t)
	memberToken, _ := registerUser(t, srv.URL, "plainmember", "secret123")

	status, body := doJSON(t, http.MethodGet, srv.URL+"/api/admin/users", memberToken, nil)
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "FORBIDDEN", body["code"])

	// seed an admin directly; registration always grants member
	hash, err := password.Hash("secret123")
	require.NoError(t, err)
	require.NoError(t, c.Repo.CreateUser(context.Background(), &core.User{
		ID:           uuid.NewString(),
		Username:     "boss",
		PasswordHash: hash,
		DisplayName:  "Boss",
		Timezone:     "UTC",
		Role:         core.RoleAdmin,
	}))
	status, body = doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]any{
		"username": "boss", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, status)
	adminToken := body["session"].(map[string]any)["token"].(string)

	status, body = doJSON(t, http.MethodGet, srv.URL+"/api/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["users"], 2)
}

func TestBudgetDefaultAcademicYear(t *testing.T) {
	srv, _ := newTestServer(t)
	token, _ := registerUser(t, srv.URL, "treasurer1", "secret123")

	status, body := doJSON(t, http.MethodPost, srv.URL+"/api/budgets", token, map[string]any{
		"name": "Defaults",
	})
	require.Equal(t, http.StatusCreated, status)
	budget := body["budget"].(map[string]any)
	wantStart, wantEnd := timeutil.AcademicYearBounds(time.Now())
	require.EqualValues(t, wantStart, budget["academicYearStart"])
	require.EqualValues(t, wantEnd, budget["academicYearEnd"])
}
