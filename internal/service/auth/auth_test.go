package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avelorn/storefront/internal/models"
	"github.com/avelorn/storefront/internal/service"
)

type fakeMail struct {
	To      string
	Subject string
	HTML    string
}

type fakeMailer struct {
	sent []fakeMail
}

func (m *fakeMailer) Enqueue(to, subject, html string) {
	m.sent = append(m.sent, fakeMail{To: to, Subject: subject, HTML: html})
}

type nopPublisher struct{}

func (nopPublisher) PublishEvent(ctx context.Context, topic, key string, event any) error {
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.OrderItem{}))
	return db
}

func newTestService(t *testing.T) (*AuthService, *fakeMailer) {
	t.Helper()
	mailer := &fakeMailer{}
	svc := &AuthService{
		DB:          newTestDB(t),
		JWTSecret:   []byte("test-secret"),
		AdminEmail:  "admin@example.com",
		FrontendURL: "http://localhost:5173",
		Producer:    nopPublisher{},
		Mailer:      mailer,
	}
	return svc, mailer
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "password1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Alice Again", "alice@example.com", "password2")
	require.Error(t, err)
	require.True(t, errors.Is(err, service.ErrConflict))
	require.Equal(t, "Email already registered.", err.Error())
}

func TestRegister_AdminEmailSeedsAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	admin, err := svc.Register(ctx, "Boss", "admin@example.com", "password1")
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, admin.Role)

	user, err := svc.Register(ctx, "Bob", "bob@example.com", "password1")
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, user.Role)
}

func TestLogin_WrongPasswordDoesNotRevealAccount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "password1")
	require.NoError(t, err)

	_, _, errWrongPw := svc.Login(ctx, "alice@example.com", "nope")
	_, _, errNoUser := svc.Login(ctx, "ghost@example.com", "nope")

	require.Error(t, errWrongPw)
	require.Error(t, errNoUser)
	require.Equal(t, errWrongPw.Error(), errNoUser.Error())
}

func TestLogin_IssuesToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "password1")
	require.NoError(t, err)

	token, user, err := svc.Login(ctx, "alice@example.com", "password1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "alice@example.com", user.Email)
}

func TestForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	svc, mailer := newTestService(t)

	require.NoError(t, svc.ForgotPassword(context.Background(), "ghost@example.com"))
	require.Empty(t, mailer.sent)
}

func TestForgotPassword_IssuesTokenAndMailsLink(t *testing.T) {
	svc, mailer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "password1")
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))

	var user models.User
	require.NoError(t, svc.DB.Where("email = ?", "alice@example.com").First(&user).Error)
	require.Len(t, user.ResetToken, 64)
	require.NotNil(t, user.ResetTokenExpiry)
	require.WithinDuration(t, time.Now().Add(time.Hour), *user.ResetTokenExpiry, time.Minute)

	require.Len(t, mailer.sent, 1)
	require.Equal(t, "alice@example.com", mailer.sent[0].To)
	require.Equal(t, "Password Reset", mailer.sent[0].Subject)
	require.True(t, strings.Contains(mailer.sent[0].HTML, "/reset-password/"+user.ResetToken))
}

func TestResetPassword_ExpiredTokenRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "password1")
	require.NoError(t, err)
	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))

	var user models.User
	require.NoError(t, svc.DB.Where("email = ?", "alice@example.com").First(&user).Error)

	expired := time.Now().Add(-time.Minute)
	require.NoError(t, svc.DB.Model(&user).Update("reset_token_expiry", &expired).Error)

	err = svc.ResetPassword(ctx, user.ResetToken, "newpassword")
	require.Error(t, err)
	require.True(t, errors.Is(err, service.ErrValidation))
	require.Equal(t, "Invalid or expired token.", err.Error())
}

func TestResetPassword_TokenIsSingleUse(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "password1")
	require.NoError(t, err)
	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))

	var user models.User
	require.NoError(t, svc.DB.Where("email = ?", "alice@example.com").First(&user).Error)
	token := user.ResetToken

	require.NoError(t, svc.ResetPassword(ctx, token, "newpassword"))

	_, _, err = svc.Login(ctx, "alice@example.com", "newpassword")
	require.NoError(t, err)

	err = svc.ResetPassword(ctx, token, "anotherpassword")
	require.Error(t, err)
	require.True(t, errors.Is(err, service.ErrValidation))
}

func TestChangePassword_RequiresCurrentPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, "Alice", "alice@example.com", "password1")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, created.ID, "wrong", "newpassword")
	require.Error(t, err)
	require.Equal(t, "Current password is incorrect.", err.Error())

	require.NoError(t, svc.ChangePassword(ctx, created.ID, "password1", "newpassword"))

	_, _, err = svc.Login(ctx, "alice@example.com", "newpassword")
	require.NoError(t, err)
}

func TestPromote_IsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, "Bob", "bob@example.com", "password1")
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, created.Role)

	promoted, err := svc.Promote(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, promoted.Role)

	again, err := svc.Promote(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, again.Role)
}

func TestPromote_UnknownUser(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Promote(context.Background(), 999)
	require.Error(t, err)
	require.True(t, errors.Is(err, service.ErrNotFound))
}
