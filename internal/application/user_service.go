package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/delcom/foodshare/internal/domain/entity"
	"github.com/delcom/foodshare/internal/domain/repository"
	"github.com/delcom/foodshare/pkg/helpers"
	"github.com/delcom/foodshare/pkg/mailer"
)

// UserService handles accounts and login tokens. A login issues a signed JWT
// and records it in the token store; the token authorizes requests only while
// its row exists, so deleting a user's rows signs that user out everywhere.
type UserService struct {
	Users  repository.UserRepository
	Tokens repository.AuthTokenRepository
	JWT    *helpers.JWTManager
	Pub    *helpers.RabbitPublisher
	Logger *logrus.Logger
}

func NewUserService(users repository.UserRepository, tokens repository.AuthTokenRepository, jwt *helpers.JWTManager, pub *helpers.RabbitPublisher, logger *logrus.Logger) *UserService {
	return &UserService{Users: users, Tokens: tokens, JWT: jwt, Pub: pub, Logger: logger}
}

// Register creates an account with a bcrypt-hashed password and enqueues a
// welcome email (best effort).
func (s *UserService) Register(ctx context.Context, name, email, password string) (*entity.User, error) {
	if existing, err := s.Users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Name: name, Email: email, Password: hash}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.enqueueEmail(ctx, u, mailer.TemplateWelcome)
	return u, nil
}

// Login verifies credentials, issues a signed token, and persists the token
// row. Multiple concurrent rows per user are allowed (multi-device).
func (s *UserService) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !helpers.CheckPassword(u.Password, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.JWT.Issue(u.ID)
	if err != nil {
		return nil, "", err
	}
	if err := s.Tokens.Save(ctx, &entity.AuthToken{UserID: u.ID, Token: token}); err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Logout invalidates every token the user holds.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	return s.Tokens.DeleteByUserID(ctx, userID)
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return s.Users.GetByID(ctx, userID)
}

// UpdateProfile changes name and email.
func (s *UserService) UpdateProfile(ctx context.Context, userID, name, email string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.Name = name
	u.Email = email
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdatePassword verifies the old password, stores the new hash, and
// bulk-invalidates the user's tokens so every device must log in again.
func (s *UserService) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !helpers.CheckPassword(u.Password, oldPassword) {
		return ErrWrongPassword
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	if err := s.Tokens.DeleteByUserID(ctx, userID); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("token invalidation failed after password change")
		}
		return err
	}

	s.enqueueEmail(ctx, u, mailer.TemplatePasswordChanged)
	return nil
}

func (s *UserService) enqueueEmail(ctx context.Context, u *entity.User, template string) {
	if s.Pub == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: template,
		Data:     map[string]any{"Name": u.Name, "Email": u.Email},
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("template", template).Warn("failed to enqueue email job")
	}
}
