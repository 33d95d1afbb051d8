package service

import (
	"context"

	"github.com/xddprog/auth-backend/internal/db"
	"github.com/xddprog/auth-backend/internal/model"
)

// UserLookupRepository covers the bulk-resolution queries used outside the
// auth flows (team and collaboration consumers).
type UserLookupRepository interface {
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUsersByIDs(ctx context.Context, ids []int64) ([]model.User, error)
	GetUsersByEmails(ctx context.Context, emails []string) ([]model.User, error)
}

type UserService struct {
	repo UserLookupRepository
}

func NewUserService(repo UserLookupRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetUsersByIDs resolves a batch of ids. Missing ids are skipped, not
// errors; callers diff the result against their input if they care.
func (s *UserService) GetUsersByIDs(ctx context.Context, ids []int64) ([]model.User, error) {
	return s.repo.GetUsersByIDs(ctx, ids)
}

func (s *UserService) GetUsersByEmails(ctx context.Context, emails []string) ([]model.User, error) {
	return s.repo.GetUsersByEmails(ctx, emails)
}
