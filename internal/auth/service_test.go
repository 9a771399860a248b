package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDeptStore struct {
	departments map[string]*Department // keyed by email
}

func newFakeDeptStore() *fakeDeptStore {
	return &fakeDeptStore{departments: map[string]*Department{}}
}

func (f *fakeDeptStore) Create(ctx context.Context, dept *Department) error {
	for _, existing := range f.departments {
		if existing.Email == dept.Email || existing.DeptName == dept.DeptName {
			return ErrDeptExists
		}
	}
	clone := *dept
	f.departments[dept.Email] = &clone
	return nil
}

func (f *fakeDeptStore) FindByEmail(ctx context.Context, email string) (*Department, error) {
	return f.departments[email], nil
}

func (f *fakeDeptStore) FindByResetToken(ctx context.Context, token string) (*Department, error) {
	for _, dept := range f.departments {
		if dept.ResetToken == token && token != "" {
			return dept, nil
		}
	}
	return nil, nil
}

func (f *fakeDeptStore) SetResetToken(ctx context.Context, email, token string, expiry time.Time) error {
	dept, ok := f.departments[email]
	if !ok {
		return ErrNotFound
	}
	dept.ResetToken = token
	dept.ResetTokenExpiry = expiry
	return nil
}

func (f *fakeDeptStore) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	dept, ok := f.departments[email]
	if !ok {
		return ErrNotFound
	}
	dept.PasswordHash = passwordHash
	dept.ResetToken = ""
	dept.ResetTokenExpiry = time.Time{}
	return nil
}

type fakeEmailSender struct {
	sent []string // recipient addresses
}

func (f *fakeEmailSender) SendEmail(to, subject, body string) error {
	f.sent = append(f.sent, to)
	return nil
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	adminHash, err := HashPassword("district-admin-pass")
	require.NoError(t, err)
	return &Config{
		VerificationCode:  "TEHSIL-2026",
		AdminUser:         "district-admin",
		AdminPasswordHash: adminHash,
		ResetBaseURL:      "https://portal.test",
	}
}

func newTestService(t *testing.T) (*AuthService, *fakeDeptStore, *fakeEmailSender) {
	store := newFakeDeptStore()
	email := &fakeEmailSender{}
	svc := NewAuthService(store, email, testConfig(t), zap.NewNop())
	return svc, store, email
}

func signup(t *testing.T, svc *AuthService) SignupRequest {
	t.Helper()
	req := SignupRequest{
		DeptName:         "जल विभाग",
		Email:            "jal@district.gov.in",
		Password:         "secret123",
		VerificationCode: "TEHSIL-2026",
	}
	require.NoError(t, svc.SignupDepartment(context.Background(), req))
	return req
}

func TestSignupHashesPassword(t *testing.T) {
	svc, store, _ := newTestService(t)
	req := signup(t, svc)

	dept := store.departments[req.Email]
	require.NotNil(t, dept)
	assert.NotEqual(t, req.Password, dept.PasswordHash)
	assert.True(t, CheckPasswordHash(req.Password, dept.PasswordHash))
}

func TestSignupVerificationGate(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := SignupRequest{
		DeptName:         "जल विभाग",
		Email:            "jal@district.gov.in",
		Password:         "secret123",
		VerificationCode: "WRONG",
	}
	err := svc.SignupDepartment(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestSignupDuplicate(t *testing.T) {
	svc, _, _ := newTestService(t)
	req := signup(t, svc)

	err := svc.SignupDepartment(context.Background(), req)
	assert.ErrorIs(t, err, ErrDeptExists)
}

func TestLoginIssuesToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	req := signup(t, svc)

	result, err := svc.Login(context.Background(), Credential{Email: req.Email, Password: req.Password})
	require.NoError(t, err)
	assert.Equal(t, req.DeptName, result.DeptName)

	claims, err := ValidateJWT(result.Token)
	require.NoError(t, err)
	assert.Equal(t, req.DeptName, claims.DeptName)
	assert.Equal(t, RoleDepartment, claims.Role)
}

func TestLoginAntiEnumeration(t *testing.T) {
	svc, _, _ := newTestService(t)
	req := signup(t, svc)

	_, wrongPassword := errFromLogin(svc, req.Email, "not-the-password")
	_, unknownEmail := errFromLogin(svc, "nobody@district.gov.in", "whatever")

	// Wrong password and unknown email must be indistinguishable.
	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func errFromLogin(svc *AuthService, email, password string) (*LoginResult, error) {
	return svc.Login(context.Background(), Credential{Email: email, Password: password})
}

func TestAdminLogin(t *testing.T) {
	svc, _, _ := newTestService(t)

	token, err := svc.AdminLogin(context.Background(), AdminCredential{Username: "district-admin", Password: "district-admin-pass"})
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)

	_, err = svc.AdminLogin(context.Background(), AdminCredential{Username: "district-admin", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.AdminLogin(context.Background(), AdminCredential{Username: "someone", Password: "district-admin-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, store, email := newTestService(t)
	req := signup(t, svc)

	require.NoError(t, svc.ForgotPassword(context.Background(), req.Email))
	require.Len(t, email.sent, 1)
	assert.Equal(t, req.Email, email.sent[0])

	token := store.departments[req.Email].ResetToken
	require.NotEmpty(t, token)

	require.NoError(t, svc.ResetPassword(context.Background(), token, "newsecret456"))

	_, err := svc.Login(context.Background(), Credential{Email: req.Email, Password: req.Password})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	result, err := svc.Login(context.Background(), Credential{Email: req.Email, Password: "newsecret456"})
	require.NoError(t, err)
	assert.Equal(t, req.DeptName, result.DeptName)
}

func TestForgotPasswordUnknownEmailRevealsNothing(t *testing.T) {
	svc, store, email := newTestService(t)
	signup(t, svc)

	// An unregistered address must get the same outward result as a
	// registered one: no error, and no reset mail goes out.
	err := svc.ForgotPassword(context.Background(), "nobody@district.gov.in")
	require.NoError(t, err)
	assert.Empty(t, email.sent)
	assert.Len(t, store.departments, 1)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	svc, store, _ := newTestService(t)
	req := signup(t, svc)

	require.NoError(t, svc.ForgotPassword(context.Background(), req.Email))
	dept := store.departments[req.Email]
	dept.ResetTokenExpiry = time.Now().Add(-time.Minute)

	err := svc.ResetPassword(context.Background(), dept.ResetToken, "newsecret456")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResetPasswordUnknownToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.ResetPassword(context.Background(), "bogus", "newsecret456")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
