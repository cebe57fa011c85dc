package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shinyyama/petverse-backend/internal/authz"
	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/repository"
	"gorm.io/gorm"
)

type RegisterInput struct {
	FirebaseUID string
	Email       string
	Name        string
	Role        string
}

type Dashboard struct {
	UsersByRole  map[model.Role]int64
	Pets         int64
	RequestsBy   map[model.AdoptionStatus]int64
	PaidPayments int64
}

type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Get(ctx context.Context, id uint64) (*model.User, error)
	FindByFirebaseUID(ctx context.Context, uid string) (*model.User, error)
	List(ctx context.Context, actor *model.User, limit, offset int) ([]model.User, int64, error)
	Dashboard(ctx context.Context, actor *model.User) (*Dashboard, error)
}

type userService struct {
	store *repository.Store
}

func NewUserService(store *repository.Store) UserService {
	return &userService{store: store}
}

// Register creates an account. Registering the same Firebase uid again
// returns the existing user.
func (s *userService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	role, err := model.ParseRole(strings.TrimSpace(in.Role))
	if err != nil {
		return nil, invalid("%v", err)
	}
	if role == model.RoleAdmin {
		return nil, ErrForbidden
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	if in.FirebaseUID != "" {
		existing, err := s.store.Users.FindByFirebaseUID(ctx, in.FirebaseUID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	u := &model.User{
		Email: strings.TrimSpace(in.Email),
		Name:  name,
		Role:  role,
	}
	if in.FirebaseUID != "" {
		uid := in.FirebaseUID
		u.FirebaseUID = &uid
	}
	if err := s.store.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) Get(ctx context.Context, id uint64) (*model.User, error) {
	u, err := s.store.Users.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return u, nil
}

func (s *userService) FindByFirebaseUID(ctx context.Context, uid string) (*model.User, error) {
	if uid == "" {
		return nil, ErrNotFound
	}
	u, err := s.store.Users.FindByFirebaseUID(ctx, uid)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return u, nil
}

func (s *userService) List(ctx context.Context, actor *model.User, limit, offset int) ([]model.User, int64, error) {
	if !authz.Can(actor, authz.Administer) {
		return nil, 0, ErrForbidden
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.Users.List(ctx, limit, offset)
}

func (s *userService) Dashboard(ctx context.Context, actor *model.User) (*Dashboard, error) {
	if !authz.Can(actor, authz.Administer) {
		return nil, ErrForbidden
	}
	users, err := s.store.Users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	pets, err := s.store.Pets.Count(ctx)
	if err != nil {
		return nil, err
	}
	reqs, err := s.store.Adoptions.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	paid, err := s.store.Payments.CountPaid(ctx)
	if err != nil {
		return nil, err
	}
	return &Dashboard{UsersByRole: users, Pets: pets, RequestsBy: reqs, PaidPayments: paid}, nil
}
