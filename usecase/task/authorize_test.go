package task

import (
	"testing"

	"github.com/taskpilot/backend/domain"
)

func TestAuthorizeAdminAllowsEverything(t *testing.T) {
	admin := domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}
	target := &domain.Task{ID: "t1", AssignedTo: []string{"someone-else"}}

	actions := []Action{ActionEditFields, ActionUpdateChecklist, ActionSetStatus, ActionVerify, ActionDelete}
	for _, action := range actions {
		if err := Authorize(admin, target, action, domain.StatusCompleted); err != nil {
			t.Fatalf("admin denied %q: %v", action, err)
		}
	}
}

func TestAuthorizeMember(t *testing.T) {
	member := domain.Actor{ID: "member-1", Role: domain.RoleMember}
	assigned := &domain.Task{ID: "t1", AssignedTo: []string{"member-1", "member-2"}}
	unassigned := &domain.Task{ID: "t2", AssignedTo: []string{"member-2"}}

	cases := []struct {
		name      string
		task      *domain.Task
		action    Action
		requested domain.Status
		allowed   bool
	}{
		{"assignee updates checklist", assigned, ActionUpdateChecklist, "", true},
		{"non-assignee updates checklist", unassigned, ActionUpdateChecklist, "", false},
		{"assignee sets in progress", assigned, ActionSetStatus, domain.StatusInProgress, true},
		{"assignee sets pending", assigned, ActionSetStatus, domain.StatusPending, true},
		{"assignee requests completed", assigned, ActionSetStatus, domain.StatusCompleted, false},
		{"non-assignee sets status", unassigned, ActionSetStatus, domain.StatusInProgress, false},
		{"member edits fields", assigned, ActionEditFields, "", false},
		{"member verifies", assigned, ActionVerify, "", false},
		{"member deletes", assigned, ActionDelete, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(member, tc.task, tc.action, tc.requested)
			if tc.allowed && err != nil {
				t.Fatalf("expected allowed, got %v", err)
			}
			if !tc.allowed {
				if err == nil {
					t.Fatal("expected denial, got nil")
				}
				if !domain.IsDomainError(err, domain.ErrCodeForbidden) {
					t.Fatalf("expected forbidden error, got %v", err)
				}
			}
		})
	}
}

func TestAuthorizeDenialNamesOnlyTheAction(t *testing.T) {
	member := domain.Actor{ID: "member-1", Role: domain.RoleMember}
	target := &domain.Task{ID: "t1", AssignedTo: []string{"owner"}}

	err := Authorize(member, target, ActionUpdateChecklist, "")
	if err == nil {
		t.Fatal("expected denial")
	}
	if got, want := err.Error(), "not authorized: update checklist"; got != want {
		t.Fatalf("denial message = %q, want %q", got, want)
	}
}
