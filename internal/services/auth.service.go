package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/realhub/condo-api/internal/model"
	"github.com/realhub/condo-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type AuthService struct {
	users  UserRepository
	audit  AuditRecorder
	secret []byte
	expiry time.Duration
}

func NewAuthService(users UserRepository, audit AuditRecorder, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		users:  users,
		audit:  audit,
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Login verifies credentials and issues a signed token. A wrong email and a
// wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (string, *model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"exp":     time.Now().Add(s.expiry).Unix(),
		"iat":     time.Now().Unix(),
	}
	if user.UnitID != nil {
		claims["unit_id"] = *user.UnitID
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	s.audit.Record(ctx, &user.ID, model.ActionLogin, "user", &user.ID, nil, ip)
	return token, user, nil
}

// Logout only leaves an audit trace; tokens stay valid until expiry.
func (s *AuthService) Logout(ctx context.Context, caller model.Caller) {
	s.audit.Record(ctx, &caller.ID, model.ActionLogout, "user", &caller.ID, nil, caller.IP)
}

// ParseToken validates a bearer token and rebuilds the caller identity.
func (s *AuthService) ParseToken(tokenString string) (model.Caller, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return model.Caller{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return model.Caller{}, errors.New("invalid token claims")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return model.Caller{}, errors.New("invalid token claims")
	}
	role, _ := claims["role"].(string)

	caller := model.Caller{ID: int64(userID), Role: model.Role(role)}
	if unitID, ok := claims["unit_id"].(float64); ok {
		id := int64(unitID)
		caller.UnitID = &id
	}
	return caller, nil
}

// HashPassword is the bcrypt wrapper used by user provisioning and tests.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
