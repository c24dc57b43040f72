package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ledger/internal/core"
	"ledger/internal/services"
)

// fakeStore is an in-memory services.TransactionStore for gateway tests.
type fakeStore struct {
	nextID int64
	rows   map[int64]core.Transaction
	order  []int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[int64]core.Transaction)}
}

func (f *fakeStore) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	f.nextID++
	t.ID = f.nextID
	f.rows[t.ID] = t
	f.order = append(f.order, t.ID)
	return t, nil
}

func (f *fakeStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.rows[id])
	}
	return out, nil
}

func (f *fakeStore) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	t, ok := f.rows[id]
	if !ok {
		return core.Transaction{}, &core.NotFoundError{ID: id}
	}
	return t, nil
}

func (f *fakeStore) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if _, ok := f.rows[t.ID]; !ok {
		return core.Transaction{}, &core.NotFoundError{ID: t.ID}
	}
	f.rows[t.ID] = t
	return t, nil
}

func (f *fakeStore) DeleteTransaction(ctx context.Context, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return &core.NotFoundError{ID: id}
	}
	delete(f.rows, id)
	for i, got := range f.order {
		if got == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeStore) Summarize(ctx context.Context) (core.Summary, error) {
	var s core.Summary
	for _, t := range f.rows {
		switch t.Type {
		case core.Income:
			s.TotalIncome += t.Amount
		case core.Expense:
			s.TotalExpense += t.Amount
		}
	}
	s.Balance = s.TotalIncome - s.TotalExpense
	return s, nil
}

// errStore fails every operation, for server-error paths.
type errStore struct{ err error }

func (e errStore) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	return core.Transaction{}, e.err
}
func (e errStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return nil, e.err
}
func (e errStore) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return core.Transaction{}, e.err
}
func (e errStore) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	return core.Transaction{}, e.err
}
func (e errStore) DeleteTransaction(ctx context.Context, id int64) error { return e.err }
func (e errStore) Summarize(ctx context.Context) (core.Summary, error) {
	return core.Summary{}, e.err
}

func newTestServer(store services.TransactionStore) *Server {
	ledger := services.NewLedgerService(store, nil)
	summary := services.NewSummaryService(store)
	srv := NewServer(":0", ledger, summary)
	srv.rateLimiter.stop()
	return srv
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

type txEnvelope struct {
	Message string           `json:"message"`
	Data    core.Transaction `json:"data"`
}

func decodeTx(t *testing.T, rr *httptest.ResponseRecorder) txEnvelope {
	t.Helper()
	var env txEnvelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
	return env
}

func TestCreateTransaction(t *testing.T) {
	srv := newTestServer(newFakeStore())

	rr := doRequest(t, srv, http.MethodPost, "/transactions",
		`{"type":"income","category":1,"amount":1000,"date":"2024-01-01","description":"salary"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	env := decodeTx(t, rr)
	if env.Message != msgCreated {
		t.Errorf("message = %q", env.Message)
	}
	if env.Data.ID != 1 {
		t.Errorf("id = %d, want 1", env.Data.ID)
	}
	if env.Data.Amount != 1000 || env.Data.Type != core.Income || env.Data.Category != 1 {
		t.Errorf("data = %+v", env.Data)
	}
	if env.Data.Date.String() != "2024-01-01" {
		t.Errorf("date = %s", env.Data.Date)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	bodies := map[string]string{
		"missing type":     `{"category":1,"amount":1000,"date":"2024-01-01"}`,
		"missing category": `{"type":"income","amount":1000,"date":"2024-01-01"}`,
		"missing amount":   `{"type":"income","category":1,"date":"2024-01-01"}`,
		"zero amount":      `{"type":"income","category":1,"amount":0,"date":"2024-01-01"}`,
		"missing date":     `{"type":"income","category":1,"amount":1000}`,
		"malformed date":   `{"type":"income","category":1,"amount":1000,"date":"soon"}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			store := newFakeStore()
			srv := newTestServer(store)

			rr := doRequest(t, srv, http.MethodPost, "/transactions", body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
			}

			var env struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Message != msgInvalidRequest {
				t.Errorf("message = %q, want %q", env.Message, msgInvalidRequest)
			}
			if len(store.rows) != 0 {
				t.Error("nothing may be persisted on validation failure")
			}
		})
	}
}

func TestCreateTransactionBadBody(t *testing.T) {
	srv := newTestServer(newFakeStore())

	rr := doRequest(t, srv, http.MethodPost, "/transactions", `{not json`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), msgInvalidBody) {
		t.Fatalf("body = %s", rr.Body.String())
	}
}

func TestListTransactionsEmpty(t *testing.T) {
	srv := newTestServer(newFakeStore())

	rr := doRequest(t, srv, http.MethodGet, "/transactions", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"data":[]`) {
		t.Fatalf("empty list must serialize as []: %s", rr.Body.String())
	}
}

func TestGetTransaction(t *testing.T) {
	srv := newTestServer(newFakeStore())

	created := decodeTx(t, doRequest(t, srv, http.MethodPost, "/transactions",
		`{"type":"expense","category":3,"amount":300,"date":"2024-01-02"}`))

	rr := doRequest(t, srv, http.MethodGet, "/transactions/1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	env := decodeTx(t, rr)
	if env.Message != msgSuccess {
		t.Errorf("message = %q", env.Message)
	}
	if env.Data != created.Data {
		t.Errorf("get = %+v, want %+v", env.Data, created.Data)
	}
}

func TestGetTransactionNotFound(t *testing.T) {
	srv := newTestServer(newFakeStore())

	for _, path := range []string{"/transactions/999999", "/transactions/abc"} {
		rr := doRequest(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusNotFound {
			t.Fatalf("%s status = %d", path, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "not found") {
			t.Fatalf("%s body = %s", path, rr.Body.String())
		}
	}
}

func TestUpdateTransaction(t *testing.T) {
	store := newFakeStore()
	srv := newTestServer(store)

	doRequest(t, srv, http.MethodPost, "/transactions",
		`{"type":"income","category":1,"amount":1000,"date":"2024-01-01"}`)

	rr := doRequest(t, srv, http.MethodPut, "/transactions/1",
		`{"type":"expense","category":3,"amount":250,"date":"2024-02-02","description":"groceries"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	env := decodeTx(t, rr)
	if env.Message != msgUpdated {
		t.Errorf("message = %q", env.Message)
	}
	if env.Data.ID != 1 || env.Data.Type != core.Expense || env.Data.Amount != 250 {
		t.Errorf("data = %+v", env.Data)
	}

	// Subsequent reads reflect exactly the new values
	got := decodeTx(t, doRequest(t, srv, http.MethodGet, "/transactions/1", ""))
	if got.Data != env.Data {
		t.Errorf("get after update = %+v, want %+v", got.Data, env.Data)
	}
}

func TestUpdateTransactionNotFound(t *testing.T) {
	srv := newTestServer(newFakeStore())

	rr := doRequest(t, srv, http.MethodPut, "/transactions/999999",
		`{"type":"expense","category":3,"amount":250,"date":"2024-02-02"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), msgUpdateNotFound) {
		t.Fatalf("body = %s", rr.Body.String())
	}
}

func TestUpdateTransactionValidation(t *testing.T) {
	store := newFakeStore()
	srv := newTestServer(store)

	doRequest(t, srv, http.MethodPost, "/transactions",
		`{"type":"income","category":1,"amount":1000,"date":"2024-01-01"}`)

	rr := doRequest(t, srv, http.MethodPut, "/transactions/1", `{"type":"income","category":1}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	// The stored record is untouched
	if got := store.rows[1]; got.Amount != 1000 {
		t.Fatalf("store mutated by rejected update: %+v", got)
	}
}

func TestDeleteTransaction(t *testing.T) {
	srv := newTestServer(newFakeStore())

	doRequest(t, srv, http.MethodPost, "/transactions",
		`{"type":"income","category":1,"amount":1000,"date":"2024-01-01"}`)

	rr := doRequest(t, srv, http.MethodDelete, "/transactions/1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), msgDeleted) || !strings.Contains(rr.Body.String(), `"id":1`) {
		t.Fatalf("body = %s", rr.Body.String())
	}

	if rr := doRequest(t, srv, http.MethodGet, "/transactions/1", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", rr.Code)
	}
	if rr := doRequest(t, srv, http.MethodDelete, "/transactions/1", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", rr.Code)
	}
}

func TestSummaryEndToEnd(t *testing.T) {
	srv := newTestServer(newFakeStore())

	doRequest(t, srv, http.MethodPost, "/transactions",
		`{"type":"income","category":1,"amount":1000,"date":"2024-01-01"}`)
	doRequest(t, srv, http.MethodPost, "/transactions",
		`{"type":"expense","category":3,"amount":300,"date":"2024-01-02"}`)

	rr := doRequest(t, srv, http.MethodGet, "/summary", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var env struct {
		Message string       `json:"message"`
		Data    core.Summary `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := core.Summary{TotalIncome: 1000, TotalExpense: 300, Balance: 700}
	if env.Data != want {
		t.Fatalf("summary = %+v, want %+v", env.Data, want)
	}
}

func TestSummaryEmpty(t *testing.T) {
	srv := newTestServer(newFakeStore())

	rr := doRequest(t, srv, http.MethodGet, "/summary", "")
	var env struct {
		Data core.Summary `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data != (core.Summary{}) {
		t.Fatalf("empty summary = %+v, want zeros", env.Data)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(newFakeStore())

	rr := doRequest(t, srv, http.MethodGet, "/nope", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), msgNotFoundRoute) {
		t.Fatalf("body = %s", rr.Body.String())
	}
}

func TestStoreErrorsSurfaceAsServerErrors(t *testing.T) {
	srv := newTestServer(errStore{err: errors.New("SQLITE_IOERR: disk I/O error")})

	cases := []struct {
		method, path, body string
	}{
		{http.MethodPost, "/transactions", `{"type":"income","category":1,"amount":1000,"date":"2024-01-01"}`},
		{http.MethodGet, "/transactions", ""},
		{http.MethodGet, "/transactions/1", ""},
		{http.MethodPut, "/transactions/1", `{"type":"income","category":1,"amount":1000,"date":"2024-01-01"}`},
		{http.MethodDelete, "/transactions/1", ""},
		{http.MethodGet, "/summary", ""},
	}
	for _, tc := range cases {
		rr := doRequest(t, srv, tc.method, tc.path, tc.body)
		if rr.Code != http.StatusInternalServerError {
			t.Fatalf("%s %s status = %d", tc.method, tc.path, rr.Code)
		}
		var env struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !strings.Contains(env.Error, "disk I/O error") {
			t.Fatalf("%s %s error = %q, raw store message expected", tc.method, tc.path, env.Error)
		}
	}
}

func TestHealthProbes(t *testing.T) {
	srv := newTestServer(newFakeStore())

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doRequest(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rr.Code)
		}
	}
}
