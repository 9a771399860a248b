package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrDeptExists = errors.New("department name or email already registered")
	ErrNotFound   = errors.New("department not found")
	// ErrInvalidCredentials deliberately does not distinguish an unknown
	// email from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidCode        = errors.New("invalid verification code")
	ErrInvalidToken       = errors.New("invalid or expired reset token")
)

const (
	sessionDuration  = 24 * time.Hour
	resetTokenExpiry = 15 * time.Minute
)

// DepartmentStore is the persistence surface the auth service needs.
type DepartmentStore interface {
	Create(ctx context.Context, dept *Department) error
	FindByEmail(ctx context.Context, email string) (*Department, error)
	FindByResetToken(ctx context.Context, token string) (*Department, error)
	SetResetToken(ctx context.Context, email, token string, expiry time.Time) error
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

type EmailSender interface {
	SendEmail(to, subject, body string) error
}

// Config carries the signup gate and the admin credential. The admin
// password is configured as a bcrypt hash, never in the clear.
type Config struct {
	VerificationCode  string
	AdminUser         string
	AdminPasswordHash string
	ResetBaseURL      string
}

func NewConfig(logger *zap.Logger) *Config {
	cfg := &Config{
		VerificationCode:  os.Getenv("SIGNUP_VERIFICATION_CODE"),
		AdminUser:         os.Getenv("ADMIN_USER"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		ResetBaseURL:      os.Getenv("RESET_BASE_URL"),
	}
	if cfg.VerificationCode == "" || cfg.AdminUser == "" || cfg.AdminPasswordHash == "" {
		logger.Fatal("Missing SIGNUP_VERIFICATION_CODE, ADMIN_USER or ADMIN_PASSWORD_HASH")
	}
	key := os.Getenv("JWT_KEY")
	if key == "" {
		logger.Fatal("Missing JWT_KEY")
	}
	jwtKey = []byte(key)
	return cfg
}

type AuthService struct {
	repo   DepartmentStore
	email  EmailSender
	config *Config
	logger *zap.Logger
}

func NewAuthService(repo DepartmentStore, email EmailSender, config *Config, logger *zap.Logger) *AuthService {
	return &AuthService{repo: repo, email: email, config: config, logger: logger}
}

// SignupDepartment registers a new department. New signups are gated by a
// verification code handed out by the district administration.
func (s *AuthService) SignupDepartment(ctx context.Context, req SignupRequest) error {
	if strings.TrimSpace(req.DeptName) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return errors.New("deptName, email and password are required")
	}
	if req.VerificationCode != s.config.VerificationCode {
		return ErrInvalidCode
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return err
	}

	dept := &Department{
		DeptName:     req.DeptName,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, dept); err != nil {
		return err
	}
	s.logger.Info("Department registered", zap.String("deptName", req.DeptName))
	return nil
}

type LoginResult struct {
	DeptName string `json:"deptName"`
	Token    string `json:"token"`
}

// Login authenticates a department by email and issues a session token
// carrying the department name.
func (s *AuthService) Login(ctx context.Context, cred Credential) (*LoginResult, error) {
	dept, err := s.repo.FindByEmail(ctx, cred.Email)
	if err != nil {
		return nil, err
	}
	if dept == nil || !CheckPasswordHash(cred.Password, dept.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := GenerateJWT(dept.DeptName, RoleDepartment, sessionDuration)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	return &LoginResult{DeptName: dept.DeptName, Token: token}, nil
}

// AdminLogin checks the configured admin credential and issues an admin
// session token.
func (s *AuthService) AdminLogin(ctx context.Context, cred AdminCredential) (string, error) {
	if cred.Username != s.config.AdminUser || !CheckPasswordHash(cred.Password, s.config.AdminPasswordHash) {
		return "", ErrInvalidCredentials
	}
	token, err := GenerateJWT("", RoleAdmin, sessionDuration)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// ForgotPassword stores a short-lived reset token and mails it to the
// department. An unknown email is a silent no-op so the endpoint cannot be
// used to enumerate registered addresses.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	dept, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if dept == nil {
		s.logger.Info("Password reset requested for unknown email")
		return nil
	}

	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := s.repo.SetResetToken(ctx, email, token, time.Now().Add(resetTokenExpiry)); err != nil {
		return err
	}

	body := fmt.Sprintf("Click the link to reset your password: %s/reset-password?token=%s", s.config.ResetBaseURL, token)
	if err := s.email.SendEmail(email, "Password Reset", body); err != nil {
		s.logger.Error("Failed to send reset email", zap.Error(err))
		return errors.New("failed to send reset password email")
	}
	return nil
}

// ResetPassword replaces the password for a valid, unexpired reset token.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return ErrInvalidToken
	}
	dept, err := s.repo.FindByResetToken(ctx, token)
	if err != nil {
		return err
	}
	if dept == nil || time.Now().After(dept.ResetTokenExpiry) {
		return ErrInvalidToken
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, dept.Email, hash)
}
