package service

// In-memory fakes for the repository interfaces. Tests exercise the service
// layer against these instead of a live database.

import (
	"context"
	"errors"
	"sort"

	"ctf_practice_hub/internal/common"
	"ctf_practice_hub/internal/domain/model"
	"ctf_practice_hub/internal/domain/repository"
)

var errBackend = errors.New("backend unavailable")

type fakeTx struct {
	commits   int
	rollbacks int
}

func (t *fakeTx) Commit() error   { t.commits++; return nil }
func (t *fakeTx) Rollback() error { t.rollbacks++; return nil }

type fakeTxManager struct {
	tx        fakeTx
	failBegin bool
}

func (m *fakeTxManager) Begin(ctx context.Context) (repository.Tx, error) {
	if m.failBegin {
		return nil, errBackend
	}
	return &m.tx, nil
}

type fakeProblemRepo struct {
	problems map[int64]model.Problem

	failList    bool
	failFind    bool
	failFlag    bool
	flagLookups int
	increments  []int64
	created     []model.Problem
}

func newFakeProblemRepo(problems ...model.Problem) *fakeProblemRepo {
	r := &fakeProblemRepo{problems: map[int64]model.Problem{}}
	for _, p := range problems {
		r.problems[p.ID] = p
	}
	return r
}

func (r *fakeProblemRepo) CreateProblem(ctx context.Context, tx repository.Tx, p *model.Problem) error {
	p.ID = int64(len(r.problems) + 1)
	r.problems[p.ID] = *p
	r.created = append(r.created, *p)
	return nil
}

func (r *fakeProblemRepo) FindProblemByID(ctx context.Context, id int64) (*model.Problem, error) {
	if r.failFind {
		return nil, errBackend
	}
	p, ok := r.problems[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (r *fakeProblemRepo) ListProblems(ctx context.Context) ([]model.Problem, error) {
	if r.failList {
		return nil, errBackend
	}
	out := []model.Problem{}
	for _, p := range r.problems {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeProblemRepo) ListProblemsByCategory(ctx context.Context, categoryID string) ([]model.Problem, error) {
	if r.failList {
		return nil, errBackend
	}
	out := []model.Problem{}
	for _, p := range r.problems {
		if p.Category == categoryID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Points < out[j].Points })
	return out, nil
}

func (r *fakeProblemRepo) GetProblemFlag(ctx context.Context, id int64) (string, error) {
	r.flagLookups++
	if r.failFlag {
		return "", errBackend
	}
	p, ok := r.problems[id]
	if !ok {
		return "", common.ErrNotFound
	}
	return p.Flag, nil
}

func (r *fakeProblemRepo) IncrementSolveCount(ctx context.Context, tx repository.Tx, id int64) error {
	r.increments = append(r.increments, id)
	p := r.problems[id]
	p.Solves++
	r.problems[id] = p
	return nil
}

func (r *fakeProblemRepo) ProblemPoints(ctx context.Context) (map[int64]int, error) {
	if r.failList {
		return nil, errBackend
	}
	points := map[int64]int{}
	for id, p := range r.problems {
		points[id] = p.Points
	}
	return points, nil
}

type fakeCategoryRepo struct {
	categories map[string]model.Category
	failList   bool
	created    []model.Category
}

func newFakeCategoryRepo(categories ...model.Category) *fakeCategoryRepo {
	r := &fakeCategoryRepo{categories: map[string]model.Category{}}
	for _, c := range categories {
		r.categories[c.ID] = c
	}
	return r
}

func (r *fakeCategoryRepo) CreateCategory(ctx context.Context, c *model.Category) error {
	if _, ok := r.categories[c.ID]; ok {
		return common.ErrConflict
	}
	r.categories[c.ID] = *c
	r.created = append(r.created, *c)
	return nil
}

func (r *fakeCategoryRepo) FindCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := c
	return &cp, nil
}

func (r *fakeCategoryRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	if r.failList {
		return nil, errBackend
	}
	out := []model.Category{}
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeUserRepo struct {
	users    map[string]model.User
	failFind bool
	failList bool
}

func newFakeUserRepo(users ...model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]model.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, u *model.User) error {
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if r.failFind {
		return nil, errBackend
	}
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := u
	return &cp, nil
}

func (r *fakeUserRepo) ListUsers(ctx context.Context) ([]model.User, error) {
	if r.failList {
		return nil, errBackend
	}
	out := []model.User{}
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type progressKey struct {
	userID    string
	problemID int64
}

type fakeProgressRepo struct {
	rows     map[progressKey]model.UserProgress
	failUser string   // ListByUser fails for this user id
	calls    []string // method order observed during a submit pipeline
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{rows: map[progressKey]model.UserProgress{}}
}

func (r *fakeProgressRepo) set(p model.UserProgress) {
	r.rows[progressKey{p.UserID, p.ProblemID}] = p
}

func (r *fakeProgressRepo) ListByUser(ctx context.Context, userID string) ([]model.UserProgress, error) {
	if userID == r.failUser && r.failUser != "" {
		return nil, errBackend
	}
	out := []model.UserProgress{}
	for k, p := range r.rows {
		if k.userID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProblemID < out[j].ProblemID })
	return out, nil
}

func (r *fakeProgressRepo) EnsureRow(ctx context.Context, tx repository.Tx, userID string, problemID int64) error {
	r.calls = append(r.calls, "ensure")
	key := progressKey{userID, problemID}
	if _, ok := r.rows[key]; !ok {
		r.rows[key] = model.UserProgress{UserID: userID, ProblemID: problemID}
	}
	return nil
}

func (r *fakeProgressRepo) GetForUpdate(ctx context.Context, tx repository.Tx, userID string, problemID int64) (*model.UserProgress, error) {
	r.calls = append(r.calls, "lock")
	p, ok := r.rows[progressKey{userID, problemID}]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (r *fakeProgressRepo) Upsert(ctx context.Context, tx repository.Tx, p *model.UserProgress) error {
	r.calls = append(r.calls, "upsert")
	key := progressKey{p.UserID, p.ProblemID}
	if existing, ok := r.rows[key]; ok {
		merged := *p
		merged.Solved = existing.Solved || p.Solved
		if existing.SolvedAt != nil {
			merged.SolvedAt = existing.SolvedAt
		}
		r.rows[key] = merged
		return nil
	}
	r.rows[key] = *p
	return nil
}

type fakeSubmissionRepo struct {
	submissions []model.Submission
}

func (r *fakeSubmissionRepo) CreateSubmission(ctx context.Context, tx repository.Tx, s *model.Submission) error {
	r.submissions = append(r.submissions, *s)
	return nil
}
