package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ctf_practice_hub/internal/app/service"
	"ctf_practice_hub/internal/common"
	"ctf_practice_hub/internal/common/security"
	"ctf_practice_hub/internal/domain/model"
	"ctf_practice_hub/internal/domain/repository"
	"ctf_practice_hub/internal/platform/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

type stubProblemRepo struct {
	problems []model.Problem
	err      error
}

func (r *stubProblemRepo) CreateProblem(ctx context.Context, tx repository.Tx, p *model.Problem) error {
	return r.err
}

func (r *stubProblemRepo) FindProblemByID(ctx context.Context, id int64) (*model.Problem, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, p := range r.problems {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *stubProblemRepo) ListProblems(ctx context.Context) ([]model.Problem, error) {
	return r.problems, r.err
}

func (r *stubProblemRepo) ListProblemsByCategory(ctx context.Context, categoryID string) ([]model.Problem, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := []model.Problem{}
	for _, p := range r.problems {
		if p.Category == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubProblemRepo) GetProblemFlag(ctx context.Context, id int64) (string, error) {
	return "", r.err
}

func (r *stubProblemRepo) IncrementSolveCount(ctx context.Context, tx repository.Tx, id int64) error {
	return r.err
}

func (r *stubProblemRepo) ProblemPoints(ctx context.Context) (map[int64]int, error) {
	return map[int64]int{}, r.err
}

type stubCategoryRepo struct {
	categories []model.Category
	err        error
}

func (r *stubCategoryRepo) CreateCategory(ctx context.Context, c *model.Category) error { return r.err }

func (r *stubCategoryRepo) FindCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	for _, c := range r.categories {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *stubCategoryRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	return r.categories, r.err
}

func problemRouter(problemRepo *stubProblemRepo, categoryRepo *stubCategoryRepo) http.Handler {
	r := chi.NewRouter()
	h := NewProblemHandler(service.NewProblemService(problemRepo, categoryRepo))
	r.Route("/problems", h.RegisterRoutes)
	return r
}

func TestListProblemsEndpoint(t *testing.T) {
	router := problemRouter(&stubProblemRepo{problems: []model.Problem{
		{ID: 1, Title: "XSS 101", Category: "web", Flag: "WOW{x}"},
		{ID: 2, Title: "Baby RSA", Category: "crypto", Flag: "WOW{y}"},
	}}, &stubCategoryRepo{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/problems", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var problems []model.Problem
	if err := json.Unmarshal(rec.Body.Bytes(), &problems); err != nil {
		t.Fatalf("response not a problem list: %v", err)
	}
	if len(problems) != 2 {
		t.Fatalf("got %d problems, want 2", len(problems))
	}
	for _, p := range problems {
		if p.Flag != "" {
			t.Errorf("unauthenticated listing leaked flag %q", p.Flag)
		}
	}
}

func TestListProblemsEndpointFiltersByCategory(t *testing.T) {
	router := problemRouter(&stubProblemRepo{problems: []model.Problem{
		{ID: 1, Category: "web"},
		{ID: 2, Category: "crypto"},
	}}, &stubCategoryRepo{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/problems?category=web", nil))

	var problems []model.Problem
	if err := json.Unmarshal(rec.Body.Bytes(), &problems); err != nil {
		t.Fatalf("response not a problem list: %v", err)
	}
	if len(problems) != 1 || problems[0].Category != "web" {
		t.Errorf("filtered listing = %+v, want only web", problems)
	}
}

func TestGetProblemEndpointStatuses(t *testing.T) {
	router := problemRouter(&stubProblemRepo{problems: []model.Problem{{ID: 1}}}, &stubCategoryRepo{})

	cases := []struct {
		path string
		want int
	}{
		{"/problems/1", http.StatusOK},
		{"/problems/99", http.StatusNotFound},
		{"/problems/0", http.StatusBadRequest},
		{"/problems/abc", http.StatusBadRequest},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, c.path, nil))
		if rec.Code != c.want {
			t.Errorf("GET %s status = %d, want %d", c.path, rec.Code, c.want)
		}
	}
}

// verifiedProblemRouter mirrors the production wiring for the public problem
// routes: the token verifier runs, the authenticator does not.
func verifiedProblemRouter(t *testing.T, problemRepo *stubProblemRepo) http.Handler {
	t.Helper()
	config.AppConfig = &config.Config{JWTKey: []byte("test-signing-key"), JWTExp: time.Hour}
	security.InitJWT()

	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(security.TokenAuth))
	h := NewProblemHandler(service.NewProblemService(problemRepo, &stubCategoryRepo{}))
	r.Route("/problems", h.RegisterRoutes)
	return r
}

func TestProblemRoutesHonorBearerRole(t *testing.T) {
	router := verifiedProblemRouter(t, &stubProblemRepo{problems: []model.Problem{
		{ID: 1, Title: "XSS 101", Flag: "WOW{x}"},
	}})

	fetch := func(path, role string) model.Problem {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if role != "" {
			token, err := security.GenerateToken("u1", role, "u1@example.com")
			if err != nil {
				t.Fatalf("GenerateToken error = %v", err)
			}
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d, want 200", path, rec.Code)
		}
		var problem model.Problem
		if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
			t.Fatalf("GET %s response not a problem: %v", path, err)
		}
		return problem
	}

	if p := fetch("/problems/1", model.RoleAdmin); p.Flag != "WOW{x}" {
		t.Errorf("admin fetch flag = %q, want the stored flag", p.Flag)
	}
	if p := fetch("/problems/1", model.RoleUser); p.Flag != "" {
		t.Errorf("user fetch leaked flag %q", p.Flag)
	}
	if p := fetch("/problems/1", ""); p.Flag != "" {
		t.Errorf("anonymous fetch leaked flag %q", p.Flag)
	}
}

func TestProblemListingHonorsBearerRole(t *testing.T) {
	router := verifiedProblemRouter(t, &stubProblemRepo{problems: []model.Problem{
		{ID: 1, Flag: "WOW{x}"},
	}})

	token, err := security.GenerateToken("u1", model.RoleAdmin, "u1@example.com")
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/problems", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var problems []model.Problem
	if err := json.Unmarshal(rec.Body.Bytes(), &problems); err != nil {
		t.Fatalf("response not a problem list: %v", err)
	}
	if len(problems) != 1 || problems[0].Flag != "WOW{x}" {
		t.Errorf("admin listing = %+v, want the stored flag visible", problems)
	}
}

func TestDBProbeReportsDetail(t *testing.T) {
	r := chi.NewRouter()
	probeErr := errors.New("connection refused")
	h := NewHealthHandler(&stubProblemRepo{}, &stubCategoryRepo{err: probeErr})
	r.Route("/health", h.RegisterRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/db", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp common.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response not an error payload: %v", err)
	}
	if resp.Details == "" {
		t.Error("diagnostic endpoint must surface error detail")
	}
}

func TestDBProbeHealthy(t *testing.T) {
	r := chi.NewRouter()
	h := NewHealthHandler(
		&stubProblemRepo{problems: []model.Problem{{ID: 1}}},
		&stubCategoryRepo{categories: []model.Category{{ID: "web"}}},
	)
	r.Route("/health", h.RegisterRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/db", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
