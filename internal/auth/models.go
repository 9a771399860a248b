package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Department is an administrative unit that acts on complaints and reports
// project progress. dept_name and email carry unique indexes.
type Department struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	DeptName         string             `bson:"dept_name"`
	Email            string             `bson:"email"`
	PasswordHash     string             `bson:"password_hash"`
	ResetToken       string             `bson:"reset_token,omitempty"`
	ResetTokenExpiry time.Time          `bson:"reset_token_expiry,omitempty"`
	CreatedAt        time.Time          `bson:"created_at"`
}

type SignupRequest struct {
	DeptName         string `json:"deptName"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	VerificationCode string `json:"verificationCode"`
}

type Credential struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AdminCredential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}
