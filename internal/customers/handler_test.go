package customers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "svc-secret"

type fakeStore struct {
	createFn func(ctx context.Context, p CreateParams) (*Customer, error)
	getFn    func(ctx context.Context, id int64) (*Customer, error)
	searchFn func(ctx context.Context, search string, cursor int64, limit int) ([]Customer, error)
	updateFn func(ctx context.Context, id int64, p UpdateParams) (*Customer, error)
	deleteFn func(ctx context.Context, id int64) error
}

func (f *fakeStore) Create(ctx context.Context, p CreateParams) (*Customer, error) {
	return f.createFn(ctx, p)
}

func (f *fakeStore) GetByID(ctx context.Context, id int64) (*Customer, error) {
	return f.getFn(ctx, id)
}

func (f *fakeStore) Search(ctx context.Context, search string, cursor int64, limit int) ([]Customer, error) {
	return f.searchFn(ctx, search, cursor, limit)
}

func (f *fakeStore) Update(ctx context.Context, id int64, p UpdateParams) (*Customer, error) {
	return f.updateFn(ctx, id, p)
}

func (f *fakeStore) Delete(ctx context.Context, id int64) error {
	return f.deleteFn(ctx, id)
}

func newMux(store Store) *chi.Mux {
	log := logrus.New()
	log.SetOutput(io.Discard)
	mux := chi.NewMux()
	(&Handler{Store: store, Log: log}).Register(mux, testToken)
	return mux
}

func do(mux *chi.Mux, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func sampleCustomer() *Customer {
	phone := "+628123456789"
	return &Customer{
		ID:        7,
		Name:      "Budi Santoso",
		Email:     "budi@example.com",
		Phone:     &phone,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCreateCustomer(t *testing.T) {
	mux := newMux(&fakeStore{
		createFn: func(_ context.Context, p CreateParams) (*Customer, error) {
			assert.Equal(t, "Budi Santoso", p.Name)
			assert.Equal(t, "budi@example.com", p.Email)
			return sampleCustomer(), nil
		},
	})

	rec := do(mux, http.MethodPost, "/customers", `{"name":"Budi Santoso","email":"budi@example.com","phone":"+628123456789"}`, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"budi@example.com"`)
}

func TestCreateCustomerValidation(t *testing.T) {
	mux := newMux(&fakeStore{})

	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing name", `{"email":"budi@example.com"}`, "name"},
		{"missing email", `{"name":"Budi"}`, "email"},
		{"bad email", `{"name":"Budi","email":"not-an-email"}`, "must be a valid email"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := do(mux, http.MethodPost, "/customers", c.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), c.want)
		})
	}
}

func TestCreateCustomerDuplicateEmail(t *testing.T) {
	mux := newMux(&fakeStore{
		createFn: func(context.Context, CreateParams) (*Customer, error) { return nil, ErrEmailTaken },
	})

	rec := do(mux, http.MethodPost, "/customers", `{"name":"Budi","email":"budi@example.com"}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email already exists")
}

func TestGetCustomerNotFound(t *testing.T) {
	mux := newMux(&fakeStore{
		getFn: func(context.Context, int64) (*Customer, error) { return nil, ErrNotFound },
	})

	rec := do(mux, http.MethodGet, "/customers/7", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Customer not found")
}

func TestListCustomersPagination(t *testing.T) {
	mux := newMux(&fakeStore{
		searchFn: func(_ context.Context, _ string, _ int64, limit int) ([]Customer, error) {
			rows := make([]Customer, limit+1)
			for i := range rows {
				rows[i] = Customer{ID: int64(i + 1), Name: "Budi", Email: "budi@example.com"}
			}
			return rows, nil
		},
	})

	rec := do(mux, http.MethodGet, "/customers?limit=2", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hasMore":true`)
	assert.Contains(t, rec.Body.String(), `"nextCursor":"2"`)
}

func TestUpdateCustomer(t *testing.T) {
	mux := newMux(&fakeStore{
		updateFn: func(_ context.Context, id int64, p UpdateParams) (*Customer, error) {
			assert.Equal(t, int64(7), id)
			require.NotNil(t, p.Name)
			assert.Equal(t, "Budi S.", *p.Name)
			out := sampleCustomer()
			out.Name = "Budi S."
			return out, nil
		},
	})

	rec := do(mux, http.MethodPut, "/customers/7", `{"name":"Budi S."}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Budi S."`)
}

func TestDeleteCustomer(t *testing.T) {
	mux := newMux(&fakeStore{
		deleteFn: func(_ context.Context, id int64) error {
			assert.Equal(t, int64(7), id)
			return nil
		},
	})

	rec := do(mux, http.MethodDelete, "/customers/7", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Customer deleted")
}

func TestInternalLookupAuth(t *testing.T) {
	mux := newMux(&fakeStore{
		getFn: func(context.Context, int64) (*Customer, error) { return sampleCustomer(), nil },
	})

	t.Run("missing header", func(t *testing.T) {
		rec := do(mux, http.MethodGet, "/internal/customers/7", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Missing authorization header")
	})

	t.Run("wrong token", func(t *testing.T) {
		rec := do(mux, http.MethodGet, "/internal/customers/7", "", map[string]string{
			"Authorization": "Bearer wrong",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid service token")
	})

	t.Run("valid token", func(t *testing.T) {
		rec := do(mux, http.MethodGet, "/internal/customers/7", "", map[string]string{
			"Authorization": "Bearer " + testToken,
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"id":7`)
	})
}
