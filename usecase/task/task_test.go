package task

import (
	"context"
	"fmt"
	"testing"

	"github.com/taskpilot/backend/domain"
	"github.com/taskpilot/backend/repository"
)

// fakeTaskRepo is an in-memory TaskRepository that enforces the same
// revision guard as the postgres implementation.
type fakeTaskRepo struct {
	tasks  map[string]*domain.Task
	nextID int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*domain.Task)}
}

func (r *fakeTaskRepo) clone(t *domain.Task) *domain.Task {
	cp := *t
	cp.AssignedTo = append([]string(nil), t.AssignedTo...)
	cp.Checklist = append([]domain.ChecklistItem(nil), t.Checklist...)
	cp.Attachments = append([]string(nil), t.Attachments...)
	return &cp
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return r.clone(t), nil
}

func (r *fakeTaskRepo) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	var out []domain.Task
	for _, t := range r.tasks {
		if filter.AssigneeID != "" && !t.IsAssignee(filter.AssigneeID) {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, *r.clone(t))
	}
	return out, nil
}

func (r *fakeTaskRepo) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	if t.ID == "" {
		r.nextID++
		t.ID = fmt.Sprintf("task-%d", r.nextID)
	}
	t.Revision = 0
	r.tasks[t.ID] = r.clone(t)
	return r.clone(t), nil
}

func (r *fakeTaskRepo) Update(_ context.Context, t *domain.Task) error {
	current, ok := r.tasks[t.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	if current.Revision != t.Revision {
		return domain.ErrTaskConflict
	}
	t.Revision++
	r.tasks[t.ID] = r.clone(t)
	return nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) CountByStatus(_ context.Context, assigneeID string) (repository.StatusCounts, error) {
	var counts repository.StatusCounts
	for _, t := range r.tasks {
		if assigneeID != "" && !t.IsAssignee(assigneeID) {
			continue
		}
		counts.All++
		switch t.Status {
		case domain.StatusPending:
			counts.Pending++
		case domain.StatusInProgress:
			counts.InProgress++
		case domain.StatusUnverified:
			counts.Unverified++
		case domain.StatusCompleted:
			counts.Completed++
		}
	}
	return counts, nil
}

func (r *fakeTaskRepo) CountByPriority(_ context.Context, assigneeID string) (map[domain.Priority]int, error) {
	out := map[domain.Priority]int{
		domain.PriorityLow:    0,
		domain.PriorityMedium: 0,
		domain.PriorityHigh:   0,
	}
	for _, t := range r.tasks {
		if assigneeID != "" && !t.IsAssignee(assigneeID) {
			continue
		}
		out[t.Priority]++
	}
	return out, nil
}

func (r *fakeTaskRepo) CountForUser(_ context.Context, userID string) (repository.UserTaskCounts, error) {
	var counts repository.UserTaskCounts
	for _, t := range r.tasks {
		if !t.IsAssignee(userID) {
			continue
		}
		switch t.Status {
		case domain.StatusPending:
			counts.Pending++
		case domain.StatusInProgress:
			counts.InProgress++
		case domain.StatusCompleted:
			counts.Completed++
		}
	}
	return counts, nil
}

func (r *fakeTaskRepo) Recent(_ context.Context, assigneeID string, limit int) ([]domain.Task, error) {
	tasks, err := r.List(context.Background(), repository.TaskFilter{AssigneeID: assigneeID})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

type fakeRecorder struct {
	actions []string
}

func (r *fakeRecorder) RecordTask(_ context.Context, action string, _ domain.Actor, _ *domain.Task) error {
	r.actions = append(r.actions, action)
	return nil
}

var (
	admin  = domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}
	member = domain.Actor{ID: "member-1", Role: domain.RoleMember}
)

func newTestUseCase() (*UseCase, *fakeTaskRepo, *fakeRecorder) {
	repo := newFakeTaskRepo()
	rec := &fakeRecorder{}
	return New(repo, rec, nil), repo, rec
}

func mustCreate(t *testing.T, uc *UseCase, in CreateInput) *domain.Task {
	t.Helper()
	created, err := uc.Create(context.Background(), admin, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return created
}

func TestCreateDerivesInitialState(t *testing.T) {
	uc, _, rec := newTestUseCase()

	created := mustCreate(t, uc, CreateInput{
		Title:      "Ship release",
		AssignedTo: []string{"member-1", "member-1", "member-2"},
		Checklist: []domain.ChecklistItem{
			{Text: "write changelog"},
			{Text: "tag build"},
		},
	})

	if created.Status != domain.StatusPending || created.Progress != 0 {
		t.Fatalf("new task state = (%s, %d), want (Pending, 0)", created.Status, created.Progress)
	}
	if created.Priority != domain.PriorityMedium {
		t.Fatalf("default priority = %s, want Medium", created.Priority)
	}
	if len(created.AssignedTo) != 2 {
		t.Fatalf("assignment not deduplicated: %v", created.AssignedTo)
	}
	if created.CreatedBy != admin.ID {
		t.Fatalf("created_by = %q, want %q", created.CreatedBy, admin.ID)
	}
	if len(rec.actions) != 1 || rec.actions[0] != "task.create" {
		t.Fatalf("recorded actions = %v", rec.actions)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	uc, _, _ := newTestUseCase()
	ctx := context.Background()

	if _, err := uc.Create(ctx, member, CreateInput{Title: "x"}); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("member create: want forbidden, got %v", err)
	}
	if _, err := uc.Create(ctx, admin, CreateInput{}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("missing title: want invalid, got %v", err)
	}
	if _, err := uc.Create(ctx, admin, CreateInput{Title: "x", AssignedTo: []string{""}}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("empty assignee: want invalid, got %v", err)
	}
	if _, err := uc.Create(ctx, admin, CreateInput{Title: "x", Priority: "Urgent"}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("unknown priority: want invalid, got %v", err)
	}
	if _, err := uc.Create(ctx, admin, CreateInput{Title: "x", Checklist: []domain.ChecklistItem{{Text: ""}}}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("blank checklist item: want invalid, got %v", err)
	}
}

func TestUpdateChecklistReDerivesProgress(t *testing.T) {
	uc, _, _ := newTestUseCase()
	ctx := context.Background()

	created := mustCreate(t, uc, CreateInput{
		Title:      "Audit logs",
		AssignedTo: []string{member.ID},
		Checklist: []domain.ChecklistItem{
			{Text: "pull export"},
			{Text: "review entries"},
		},
	})

	updated, err := uc.UpdateChecklist(ctx, member, created.ID, []domain.ChecklistItem{
		{Text: "pull export", Completed: true},
		{Text: "review entries"},
	})
	if err != nil {
		t.Fatalf("update checklist: %v", err)
	}
	if updated.Progress != 45 || updated.Status != domain.StatusInProgress {
		t.Fatalf("partial tick = (%d, %s), want (45, In Progress)", updated.Progress, updated.Status)
	}

	updated, err = uc.UpdateChecklist(ctx, member, created.ID, []domain.ChecklistItem{
		{Text: "pull export", Completed: true},
		{Text: "review entries", Completed: true},
	})
	if err != nil {
		t.Fatalf("update checklist: %v", err)
	}
	if updated.Progress != 100 || updated.Status != domain.StatusUnverified {
		t.Fatalf("all ticked = (%d, %s), want (100, Unverified)", updated.Progress, updated.Status)
	}
	if updated.VerifiedBy != "" || updated.VerifiedAt != nil {
		t.Fatal("reaching Unverified must not set verification fields")
	}
}

func TestUpdateChecklistDeniedForNonAssignee(t *testing.T) {
	uc, _, _ := newTestUseCase()

	created := mustCreate(t, uc, CreateInput{Title: "x", AssignedTo: []string{"member-2"}})

	_, err := uc.UpdateChecklist(context.Background(), member, created.ID, nil)
	if !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("want forbidden, got %v", err)
	}
}

func TestVerifyTransitionsUnverifiedToCompleted(t *testing.T) {
	uc, repo, _ := newTestUseCase()
	ctx := context.Background()

	created := mustCreate(t, uc, CreateInput{
		Title:      "Close sprint",
		AssignedTo: []string{member.ID},
		Checklist:  []domain.ChecklistItem{{Text: "demo"}},
	})
	if _, err := uc.UpdateChecklist(ctx, member, created.ID, []domain.ChecklistItem{{Text: "demo", Completed: true}}); err != nil {
		t.Fatalf("tick checklist: %v", err)
	}

	result, err := uc.Verify(ctx, admin, created.ID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if result.Status != domain.StatusCompleted || result.VerifiedBy != admin.ID || result.VerifiedAt == nil {
		t.Fatalf("verify result = %+v", result)
	}

	stored, _ := repo.GetByID(ctx, created.ID)
	if stored.Progress != 100 || stored.Status != domain.StatusCompleted {
		t.Fatalf("stored task = (%d, %s), want (100, Completed)", stored.Progress, stored.Status)
	}
	if len(stored.Checklist) != 1 || !stored.Checklist[0].Completed {
		t.Fatalf("verify must leave the checklist as the assignee left it: %+v", stored.Checklist)
	}

	// Re-verifying only refreshes the verifier fields.
	again, err := uc.Verify(ctx, admin, created.ID)
	if err != nil {
		t.Fatalf("re-verify: %v", err)
	}
	if again.Status != domain.StatusCompleted || again.VerifiedBy != admin.ID {
		t.Fatalf("re-verify result = %+v", again)
	}
}

func TestVerifyDeniedForMember(t *testing.T) {
	uc, _, _ := newTestUseCase()

	created := mustCreate(t, uc, CreateInput{Title: "x", AssignedTo: []string{member.ID}})

	_, err := uc.Verify(context.Background(), member, created.ID)
	if !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("want forbidden, got %v", err)
	}
}

func TestSetStatusCompletedForceTicksChecklist(t *testing.T) {
	uc, repo, _ := newTestUseCase()
	ctx := context.Background()

	created := mustCreate(t, uc, CreateInput{
		Title:      "Migrate data",
		AssignedTo: []string{member.ID},
		Checklist: []domain.ChecklistItem{
			{Text: "dump"},
			{Text: "restore"},
		},
	})

	updated, err := uc.SetStatus(ctx, admin, created.ID, domain.StatusCompleted)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if updated.Progress != 100 || updated.Status != domain.StatusCompleted {
		t.Fatalf("completed override = (%d, %s)", updated.Progress, updated.Status)
	}
	for i, item := range updated.Checklist {
		if !item.Completed {
			t.Fatalf("item %d not force-ticked", i)
		}
	}

	stored, _ := repo.GetByID(ctx, created.ID)
	if stored.Progress != 100 {
		t.Fatalf("stored progress = %d, want 100", stored.Progress)
	}
}

func TestSetStatusVerbatimSkipsRecompute(t *testing.T) {
	uc, _, _ := newTestUseCase()
	ctx := context.Background()

	created := mustCreate(t, uc, CreateInput{
		Title:      "Spike",
		AssignedTo: []string{member.ID},
		Checklist:  []domain.ChecklistItem{{Text: "read up"}},
	})

	// Nothing is ticked, yet the assignee may flag work as started; progress
	// is intentionally left where the checklist last put it.
	updated, err := uc.SetStatus(ctx, member, created.ID, domain.StatusInProgress)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if updated.Status != domain.StatusInProgress {
		t.Fatalf("status = %s, want In Progress", updated.Status)
	}
	if updated.Progress != 0 {
		t.Fatalf("progress recomputed to %d, want untouched 0", updated.Progress)
	}
}

func TestSetStatusCompletedDeniedForMember(t *testing.T) {
	uc, _, _ := newTestUseCase()

	created := mustCreate(t, uc, CreateInput{Title: "x", AssignedTo: []string{member.ID}})

	_, err := uc.SetStatus(context.Background(), member, created.ID, domain.StatusCompleted)
	if !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("want forbidden, got %v", err)
	}
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	uc, _, _ := newTestUseCase()

	created := mustCreate(t, uc, CreateInput{Title: "x"})

	_, err := uc.SetStatus(context.Background(), admin, created.ID, "Archived")
	if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("want invalid, got %v", err)
	}
}

func TestUpdateRejectsStaleRevision(t *testing.T) {
	uc, repo, _ := newTestUseCase()
	ctx := context.Background()

	created := mustCreate(t, uc, CreateInput{
		Title:      "Race",
		AssignedTo: []string{member.ID},
		Checklist:  []domain.ChecklistItem{{Text: "step"}},
	})

	// A concurrent writer bumps the revision between our load and write.
	concurrent, _ := repo.GetByID(ctx, created.ID)
	if err := repo.Update(ctx, concurrent); err != nil {
		t.Fatalf("concurrent update: %v", err)
	}

	stale, _ := repo.GetByID(ctx, created.ID)
	stale.Revision--
	err := repo.Update(ctx, stale)
	if !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Fatalf("want conflict, got %v", err)
	}
}

func TestEditFieldsPartialUpdate(t *testing.T) {
	uc, _, _ := newTestUseCase()
	ctx := context.Background()

	created := mustCreate(t, uc, CreateInput{
		Title:       "Original",
		Description: "before",
		AssignedTo:  []string{member.ID},
	})

	title := "Renamed"
	priority := domain.PriorityHigh
	updated, err := uc.EditFields(ctx, admin, created.ID, EditInput{Title: &title, Priority: &priority})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if updated.Title != "Renamed" || updated.Priority != domain.PriorityHigh {
		t.Fatalf("edit result = %+v", updated)
	}
	if updated.Description != "before" {
		t.Fatalf("untouched field changed: %q", updated.Description)
	}

	if _, err := uc.EditFields(ctx, member, created.ID, EditInput{Title: &title}); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("member edit: want forbidden, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	uc, repo, _ := newTestUseCase()
	ctx := context.Background()

	created := mustCreate(t, uc, CreateInput{Title: "Ephemeral"})

	if err := uc.Delete(ctx, member, created.ID); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("member delete: want forbidden, got %v", err)
	}
	if err := uc.Delete(ctx, admin, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, created.ID); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("want not found after delete, got %v", err)
	}
	if err := uc.Delete(ctx, admin, "missing"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("delete missing: want not found, got %v", err)
	}
}

func TestListScopesMembersToTheirTasks(t *testing.T) {
	uc, _, _ := newTestUseCase()
	ctx := context.Background()

	mustCreate(t, uc, CreateInput{Title: "mine", AssignedTo: []string{member.ID}})
	mustCreate(t, uc, CreateInput{Title: "theirs", AssignedTo: []string{"member-2"}})

	result, err := uc.List(ctx, member, "", 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Tasks) != 1 || result.Tasks[0].Title != "mine" {
		t.Fatalf("member list = %+v", result.Tasks)
	}
	if result.Summary.All != 1 {
		t.Fatalf("member summary all = %d, want 1", result.Summary.All)
	}

	adminResult, err := uc.List(ctx, admin, "", 0, 0)
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(adminResult.Tasks) != 2 {
		t.Fatalf("admin list size = %d, want 2", len(adminResult.Tasks))
	}

	if _, err := uc.List(ctx, admin, "Nope", 0, 0); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("invalid status filter: want invalid, got %v", err)
	}
}

func TestDashboardAdminOnly(t *testing.T) {
	uc, _, _ := newTestUseCase()
	ctx := context.Background()

	mustCreate(t, uc, CreateInput{Title: "a", AssignedTo: []string{member.ID}})
	mustCreate(t, uc, CreateInput{Title: "b"})

	if _, err := uc.Dashboard(ctx, member); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("member dashboard: want forbidden, got %v", err)
	}

	data, err := uc.Dashboard(ctx, admin)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if data.Statistics.All != 2 {
		t.Fatalf("dashboard all = %d, want 2", data.Statistics.All)
	}

	mine, err := uc.UserDashboard(ctx, member)
	if err != nil {
		t.Fatalf("user dashboard: %v", err)
	}
	if mine.Statistics.All != 1 {
		t.Fatalf("user dashboard all = %d, want 1", mine.Statistics.All)
	}
}
