package user

import (
	"context"
	"testing"

	"github.com/taskpilot/backend/domain"
	"github.com/taskpilot/backend/repository"
)

type fakeUserRepo struct {
	users map[string]*domain.User
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Upsert(_ context.Context, u *domain.User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeCountingTasks struct {
	counts map[string]repository.UserTaskCounts
}

func (r *fakeCountingTasks) GetByID(context.Context, string) (*domain.Task, error) {
	return nil, domain.ErrTaskNotFound
}
func (r *fakeCountingTasks) List(context.Context, repository.TaskFilter) ([]domain.Task, error) {
	return nil, nil
}
func (r *fakeCountingTasks) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	return t, nil
}
func (r *fakeCountingTasks) Update(context.Context, *domain.Task) error { return nil }
func (r *fakeCountingTasks) Delete(context.Context, string) error       { return nil }
func (r *fakeCountingTasks) CountByStatus(context.Context, string) (repository.StatusCounts, error) {
	return repository.StatusCounts{}, nil
}
func (r *fakeCountingTasks) CountByPriority(context.Context, string) (map[domain.Priority]int, error) {
	return nil, nil
}
func (r *fakeCountingTasks) CountForUser(_ context.Context, userID string) (repository.UserTaskCounts, error) {
	return r.counts[userID], nil
}
func (r *fakeCountingTasks) Recent(context.Context, string, int) ([]domain.Task, error) {
	return nil, nil
}

var (
	admin  = domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}
	member = domain.Actor{ID: "member-1", Role: domain.RoleMember}
)

func newTestUseCase() (*UseCase, *fakeUserRepo) {
	users := &fakeUserRepo{users: map[string]*domain.User{
		"admin-1":  {ID: "admin-1", Name: "Ada", Role: domain.RoleAdmin},
		"member-1": {ID: "member-1", Name: "Mel", Role: domain.RoleMember},
		"member-2": {ID: "member-2", Name: "Max", Role: domain.RoleMember},
	}}
	tasks := &fakeCountingTasks{counts: map[string]repository.UserTaskCounts{
		"member-1": {Pending: 2, InProgress: 1},
		"member-2": {Completed: 3, VerifiedCompleted: 3},
	}}
	return New(users, tasks, nil), users
}

func TestListMembersAnnotatesCounts(t *testing.T) {
	uc, _ := newTestUseCase()

	summaries, err := uc.ListMembers(context.Background(), admin)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("member count = %d, want 2 (admins excluded)", len(summaries))
	}

	byID := make(map[string]MemberSummary, len(summaries))
	for _, s := range summaries {
		byID[s.ID] = s
	}
	if got := byID["member-1"]; got.Pending != 2 || got.InProgress != 1 {
		t.Fatalf("member-1 counts = %+v", got.UserTaskCounts)
	}
	if got := byID["member-2"]; got.Completed != 3 || got.VerifiedCompleted != 3 {
		t.Fatalf("member-2 counts = %+v", got.UserTaskCounts)
	}
}

func TestListMembersAdminOnly(t *testing.T) {
	uc, _ := newTestUseCase()

	_, err := uc.ListMembers(context.Background(), member)
	if !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("want forbidden, got %v", err)
	}
}

func TestDeleteAdminOnly(t *testing.T) {
	uc, users := newTestUseCase()
	ctx := context.Background()

	if err := uc.Delete(ctx, member, "member-2"); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("member delete: want forbidden, got %v", err)
	}
	if err := uc.Delete(ctx, admin, "member-2"); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, ok := users.users["member-2"]; ok {
		t.Fatal("user not removed")
	}
	if err := uc.Delete(ctx, admin, "missing"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("delete missing: want not found, got %v", err)
	}
}

func TestGetAndUpdate(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	u, err := uc.Get(ctx, "member-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	u.Name = "Melanie"
	updated, err := uc.Update(ctx, u)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Melanie" {
		t.Fatalf("name = %q", updated.Name)
	}

	reloaded, _ := uc.Get(ctx, "member-1")
	if reloaded.Name != "Melanie" {
		t.Fatalf("persisted name = %q", reloaded.Name)
	}
}
