package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/avelorn/storefront/internal/hash"
	"github.com/avelorn/storefront/internal/logging"
	"github.com/avelorn/storefront/internal/models"
	"github.com/avelorn/storefront/internal/service"
)

const (
	tokenTTL      = 7 * 24 * time.Hour
	resetTokenTTL = time.Hour
)

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type Mailer interface {
	Enqueue(to, subject, html string)
}

type AuthService struct {
	DB          *gorm.DB
	JWTSecret   []byte
	AdminEmail  string
	FrontendURL string
	Producer    EventPublisher
	Mailer      Mailer
}

func (s *AuthService) publish(ctx context.Context, topic, key string, event map[string]any) {
	if s.Producer == nil {
		return
	}
	if err := s.Producer.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka publish failed", "topic", topic, "error", err)
	}
}

// Register creates an account. The configured admin email seeds the first
// admin; everyone else starts as a plain user.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	var existing models.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, service.Conflict("Email already registered.")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	role := models.RoleUser
	if email == s.AdminEmail {
		role = models.RoleAdmin
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	l.Info("user registered", "user_id", user.ID, "role", user.Role)
	s.publish(ctx, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":    "user_registered",
		"user_id": user.ID,
		"email":   user.Email,
	})
	return &user, nil
}

// Login verifies credentials and signs a bearer token. Unknown email and wrong
// password produce the same message so accounts cannot be enumerated.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, service.Invalid("Invalid credentials.")
		}
		return "", nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		return "", nil, service.Invalid("Invalid credentials.")
	}

	token, err := s.signToken(&user)
	if err != nil {
		return "", nil, err
	}

	l.Info("user logged in", "user_id", user.ID)
	return token, &user, nil
}

func (s *AuthService) signToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"exp":   time.Now().Add(tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.JWTSecret)
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.NotFound("User not found")
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return service.NotFound("User not found")
		}
		return err
	}

	if !hash.CheckPassword(user.PasswordHash, oldPassword) {
		return service.Invalid("Current password is incorrect.")
	}

	pwHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Model(&user).Update("password_hash", pwHash).Error
}

// ForgotPassword issues a single-use reset token valid for one hour and mails
// the reset link. An unknown email is not an error: the handler answers with
// the same generic message either way.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "auth.forgot_password")

	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Info("reset requested for unknown email")
			return nil
		}
		return err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return err
	}
	token := hex.EncodeToString(raw)
	expiry := time.Now().Add(resetTokenTTL)

	err := s.DB.WithContext(ctx).Model(&user).Updates(map[string]any{
		"reset_token":        token,
		"reset_token_expiry": &expiry,
	}).Error
	if err != nil {
		return err
	}

	if s.Mailer != nil {
		resetURL := fmt.Sprintf("%s/reset-password/%s", s.FrontendURL, token)
		html := fmt.Sprintf(`<p>Click <a href="%s">here</a> to reset your password. This link is valid for 1 hour.</p>`, resetURL)
		s.Mailer.Enqueue(user.Email, "Password Reset", html)
	}

	l.Info("reset token issued", "user_id", user.ID)
	return nil
}

// ResetPassword redeems a still-valid token, replaces the password hash and
// clears the token so it cannot be used twice.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	var user models.User
	err := s.DB.WithContext(ctx).
		Where("reset_token = ? AND reset_token_expiry > ?", token, time.Now()).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return service.Invalid("Invalid or expired token.")
		}
		return err
	}

	pwHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Model(&user).Updates(map[string]any{
		"password_hash":      pwHash,
		"reset_token":        "",
		"reset_token_expiry": nil,
	}).Error
}

// Promote grants admin to an existing user. Promoting an admin again is a
// no-op success.
func (s *AuthService) Promote(ctx context.Context, userID uint) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.promote")

	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.NotFound("User not found")
		}
		return nil, err
	}

	if user.IsAdmin() {
		return &user, nil
	}

	if err := s.DB.WithContext(ctx).Model(&user).Update("role", models.RoleAdmin).Error; err != nil {
		return nil, err
	}
	user.Role = models.RoleAdmin

	l.Info("user promoted", "user_id", user.ID)
	s.publish(ctx, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":    "user_promoted",
		"user_id": user.ID,
	})
	return &user, nil
}
