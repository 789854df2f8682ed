package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"yamdb/internal/mailer"
	"yamdb/internal/metrics"
	"yamdb/internal/middleware/auth"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/permission"
	"yamdb/internal/microservices/http-api/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const reservedUsername = "me"

// Credentials is what a caller may present to Authenticate. Either the
// password or the confirmation code is expected.
type Credentials struct {
	Username         string
	Password         string
	ConfirmationCode string
}

type AuthService interface {
	// Signup issues a fresh confirmation code, creating the user if needed.
	Signup(ctx context.Context, username, email string) (*models.User, error)
	Authenticate(ctx context.Context, creds Credentials) (*models.User, error)
	// ObtainToken redeems a confirmation code for a bearer token.
	ObtainToken(ctx context.Context, username, confirmationCode string) (string, error)
	// Login exchanges a password for a bearer token. Only accounts created
	// with a password (createsuperuser) can use it.
	Login(ctx context.Context, username, password string) (string, error)
	// ResolveToken validates a bearer token and loads its user.
	ResolveToken(ctx context.Context, token string) (*models.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	mailer   mailer.Mailer
	tokens   *TokenIssuer
	logger   *zap.Logger
	now      func() time.Time
	newCode  func() (string, error)
}

func NewAuthService(
	userRepo repository.UserRepository,
	m mailer.Mailer,
	tokens *TokenIssuer,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo: userRepo,
		mailer:   m,
		tokens:   tokens,
		logger:   logger,
		now:      time.Now,
		newCode:  auth.NewConfirmationCode,
	}
}

// validateUsername applies the rules shared by signup and user management.
func validateUsername(username string, verr *ValidationError) {
	if strings.EqualFold(username, reservedUsername) {
		verr.Add("username", `Username "`+username+`" is reserved.`)
		return
	}
	if !dto.UsernamePattern.MatchString(username) {
		verr.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
}

func (s *authService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	verr := &ValidationError{}
	validateUsername(username, verr)
	if email == "" {
		verr.Add("email", "This field may not be blank.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	byName, err := s.optionalUser(s.userRepo.FindByUsername(ctx, username))
	if err != nil {
		return nil, err
	}
	byEmail, err := s.optionalUser(s.userRepo.FindByEmail(ctx, email))
	if err != nil {
		return nil, err
	}

	code, err := s.newCode()
	if err != nil {
		return nil, err
	}

	var user *models.User
	switch {
	case byName != nil && byEmail != nil && byName.ID == byEmail.ID:
		// repeated signup: same account, new code
		if err := s.userRepo.UpdateConfirmationCode(ctx, byName.ID, code); err != nil {
			return nil, err
		}
		user = byName
		user.ConfirmationCode = code
		metrics.SignupsTotal.WithLabelValues("reissue").Inc()

	case byName != nil || byEmail != nil:
		if byName != nil {
			verr.Add("username", "A user with that username already exists.")
		}
		if byEmail != nil {
			verr.Add("email", "A user with that email already exists.")
		}
		return nil, verr

	default:
		user = &models.User{
			Username:         username,
			Email:            email,
			Role:             models.RoleUser,
			ConfirmationCode: code,
			IsActive:         true,
		}
		// a concurrent signup for the same name/email loses here
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, constraintErr(err)
		}
		metrics.SignupsTotal.WithLabelValues("new").Inc()
	}

	s.deliverCode(ctx, user)
	return user, nil
}

// deliverCode is best effort: failures are logged, never returned.
func (s *authService) deliverCode(ctx context.Context, user *models.User) {
	if err := s.mailer.SendConfirmationCode(ctx, user.Email, user.ConfirmationCode); err != nil {
		metrics.MailFailures.Inc()
		s.logger.Warn("confirmation code delivery failed",
			zap.String("username", user.Username),
			zap.Error(err),
		)
	}
}

func (s *authService) optionalUser(u *models.User, err error) (*models.User, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return u, err
}

func (s *authService) Authenticate(ctx context.Context, creds Credentials) (*models.User, error) {
	// lookup first, unconditionally
	user, err := s.userRepo.FindByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if creds.Password != "" && user.HasUsablePassword() && auth.VerifyPassword(user.Password, creds.Password) == nil {
		if !user.IsActive {
			return nil, ErrInactiveAccount
		}
		return user, nil
	}

	if creds.ConfirmationCode == "" {
		return nil, ErrInvalidCredentials
	}
	if !auth.CodesMatch(user.ConfirmationCode, creds.ConfirmationCode) {
		return nil, ErrConfirmationCodeIncorrect
	}
	if !user.IsActive {
		return nil, ErrInactiveAccount
	}
	return user, nil
}

func (s *authService) ObtainToken(ctx context.Context, username, confirmationCode string) (string, error) {
	user, err := s.Authenticate(ctx, Credentials{Username: username, ConfirmationCode: confirmationCode})
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			// no code at all counts as a wrong code on this path
			return "", ErrConfirmationCodeIncorrect
		}
		return "", err
	}
	return s.issueToken(ctx, user)
}

func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	if password == "" {
		return "", ErrInvalidCredentials
	}
	user, err := s.Authenticate(ctx, Credentials{Username: username, Password: password})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// do not reveal which usernames exist to password guessers
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	return s.issueToken(ctx, user)
}

func (s *authService) issueToken(ctx context.Context, user *models.User) (string, error) {
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", err
	}
	metrics.TokensIssued.Inc()
	return token, nil
}

func (s *authService) ResolveToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactiveAccount
	}
	return user, nil
}

// PrincipalOf builds the permission principal for an authenticated user.
func PrincipalOf(u *models.User) permission.Principal {
	if u == nil {
		return permission.Anonymous
	}
	return permission.Principal{
		UserID:      u.ID,
		Username:    u.Username,
		Role:        permission.Role(u.Role),
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
	}
}
