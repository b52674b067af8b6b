package user

import (
	"context"

	"go.uber.org/zap"

	"github.com/taskpilot/backend/domain"
	"github.com/taskpilot/backend/repository"
)

type UseCase struct {
	users  repository.UserRepository
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		tasks:  tasks,
		logger: logger,
	}
}

// MemberSummary is one member with their workload counts, as shown on the
// admin user listing.
type MemberSummary struct {
	domain.User
	repository.UserTaskCounts
}

// ListMembers returns every member annotated with task counts. Admin only.
func (uc *UseCase) ListMembers(ctx context.Context, actor domain.Actor) ([]MemberSummary, error) {
	if !actor.IsAdmin() {
		return nil, domain.NotAuthorized("list users")
	}

	members, err := uc.users.ListByRole(ctx, domain.RoleMember)
	if err != nil {
		return nil, err
	}

	summaries := make([]MemberSummary, 0, len(members))
	for _, member := range members {
		counts, err := uc.tasks.CountForUser(ctx, member.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, MemberSummary{User: member, UserTaskCounts: counts})
	}
	return summaries, nil
}

func (uc *UseCase) Get(ctx context.Context, id string) (*domain.User, error) {
	return uc.users.GetByID(ctx, id)
}

func (uc *UseCase) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := uc.users.Upsert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user account. Admin only; tasks assigned to the user keep
// the stale identifier in their assignment set.
func (uc *UseCase) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.NotAuthorized("delete user")
	}
	return uc.users.Delete(ctx, id)
}
