package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// jwtKey is set by NewConfig once the environment is loaded. Reading it at
// package init would race bootstrap.LoadEnv and silently sign every session
// with an empty key.
var jwtKey []byte

// Roles carried in session tokens. Department-scoped mutations take the
// department name from the token, never from the request body.
const (
	RoleDepartment = "department"
	RoleAdmin      = "admin"
)

type JWTClaims struct {
	DeptName string `json:"deptName,omitempty"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

var errKeyUnset = errors.New("session signing key is not configured")

func GenerateJWT(deptName, role string, duration time.Duration) (string, error) {
	if len(jwtKey) == 0 {
		return "", errKeyUnset
	}
	claims := &JWTClaims{
		DeptName: deptName,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

func ValidateJWT(tokenString string) (*JWTClaims, error) {
	if len(jwtKey) == 0 {
		return nil, errKeyUnset
	}
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtKey, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func GetJWTKey() []byte {
	return jwtKey
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hashed), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
