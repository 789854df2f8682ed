package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"yamdb/internal/middleware/auth"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/permission"
	"yamdb/internal/microservices/http-api/repository"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const minPasswordLength = 8

var emailValidator = validator.New()

// UserService backs /users/. Admin-only routes are gated before the call;
// the /me methods take the caller so they can apply the field mask.
type UserService interface {
	List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedResponse[dto.UserResponse], error)
	Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	Get(ctx context.Context, username string) (*dto.UserResponse, error)
	Update(ctx context.Context, username string, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, username string) error
	Me(ctx context.Context, p permission.Principal) (*dto.UserResponse, error)
	UpdateMe(ctx context.Context, p permission.Principal, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	// CreateSuperuser bootstraps an admin account that logs in with a
	// password. It is reachable from the CLI only.
	CreateSuperuser(ctx context.Context, username, email, password string) (*dto.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedResponse[dto.UserResponse], error) {
	users, total, err := s.userRepo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.FromModelToUserResponse(&users[i]))
	}
	return dto.NewPaginatedResponse(out, int(total), page, pageSize), nil
}

func (s *userService) Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	verr := &ValidationError{}
	validateUsername(req.Username, verr)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      role,
		IsActive:  true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, constraintErr(err)
	}

	resp := dto.FromModelToUserResponse(user)
	return &resp, nil
}

func (s *userService) Get(ctx context.Context, username string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, lookupErr("user", err)
	}
	resp := dto.FromModelToUserResponse(user)
	return &resp, nil
}

func (s *userService) Update(ctx context.Context, username string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, lookupErr("user", err)
	}
	return s.apply(ctx, user, req)
}

func (s *userService) Delete(ctx context.Context, username string) error {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return lookupErr("user", err)
	}
	// cascades to the user's reviews and comments
	return lookupErr("user", s.userRepo.Delete(ctx, user.ID))
}

func (s *userService) Me(ctx context.Context, p permission.Principal) (*dto.UserResponse, error) {
	if err := permission.Evaluate(p, permission.ReadSelf, nil).Err(); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, lookupErr("user", err)
	}
	resp := dto.FromModelToUserResponse(user)
	return &resp, nil
}

// UpdateMe applies the patch to the caller's own profile. Fields locked by
// the permission decision keep their stored value.
func (s *userService) UpdateMe(ctx context.Context, p permission.Principal, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	decision := permission.Evaluate(p, permission.UpdateSelf, nil)
	if err := decision.Err(); err != nil {
		return nil, err
	}
	if decision.Locked("role") {
		req.Role = nil
	}

	user, err := s.userRepo.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, lookupErr("user", err)
	}
	return s.apply(ctx, user, req)
}

func (s *userService) apply(ctx context.Context, user *models.User, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if req.Username != nil {
		verr := &ValidationError{}
		validateUsername(*req.Username, verr)
		if err := verr.OrNil(); err != nil {
			return nil, err
		}
	}
	if req.Role != nil && !permission.Role(*req.Role).Valid() {
		return nil, NewValidationError("role", `"`+*req.Role+`" is not a valid choice.`)
	}

	req.ApplyTo(user)
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user")
		}
		return nil, constraintErr(err)
	}

	resp := dto.FromModelToUserResponse(user)
	return &resp, nil
}

func (s *userService) CreateSuperuser(ctx context.Context, username, email, password string) (*dto.UserResponse, error) {
	verr := &ValidationError{}
	validateUsername(username, verr)
	if emailValidator.Var(email, "required,email,max=254") != nil {
		verr.Add("email", "Enter a valid email address.")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		verr.Add("password", "This password is too short. It must contain at least 8 characters.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:    username,
		Email:       email,
		Role:        models.RoleAdmin,
		Password:    hash,
		IsActive:    true,
		IsStaff:     true,
		IsSuperuser: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, constraintErr(err)
	}

	resp := dto.FromModelToUserResponse(user)
	return &resp, nil
}
