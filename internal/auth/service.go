// Package auth signs and verifies staff access tokens and manages staff credentials
package auth

import (
	"context"
	"errors"
	"floorkeeper/internal/config"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidToken indicates the token is invalid
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates the token has expired
	ErrTokenExpired = errors.New("token expired")
)

// Claims are the fields carried by an access token
type Claims struct {
	UserID   uuid.UUID
	Username string
	Role     models.Role
}

// Service provides authentication functionality
type Service struct {
	config config.AuthConfig
	users  repository.UserRepository
}

// NewService creates a new authentication service
func NewService(config config.AuthConfig, users repository.UserRepository) *Service {
	return &Service{
		config: config,
		users:  users,
	}
}

func (s *Service) expiration() time.Duration {
	if s.config.JWTExpiration <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(s.config.JWTExpiration) * time.Hour
}

// GenerateToken generates a new JWT access token for user
func (s *Service) GenerateToken(user *models.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.expiration())

	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken validates a JWT token and returns its claims
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.config.JWTSecret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	rawID, _ := mc["user_id"].(string)
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	username, _ := mc["username"].(string)
	role, _ := mc["role"].(string)

	return &Claims{UserID: userID, Username: username, Role: models.Role(role)}, nil
}

// HashPassword hashes a password using bcrypt
func (s *Service) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// ComparePasswords compares a hashed password with a plain text password
func (s *Service) ComparePasswords(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// Login checks the credentials and issues an access token. Unknown users and wrong
// passwords both yield repository.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.ComparePasswords(user.Password, password); err != nil {
		return nil, repository.ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{AccessToken: token, ExpiresAt: expiresAt, Role: user.Role}, nil
}

// CreateUser stores a new staff account with a hashed password
func (s *Service) CreateUser(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Username: username, Password: hash, Role: role}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureAdmin creates the configured bootstrap admin when it does not exist yet
func (s *Service) EnsureAdmin(ctx context.Context) error {
	if s.config.AdminUsername == "" || s.config.AdminPassword == "" {
		return nil
	}

	_, err := s.users.GetByUsername(ctx, s.config.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if _, err := s.CreateUser(ctx, s.config.AdminUsername, s.config.AdminPassword, models.RoleAdmin); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil
		}
		return err
	}
	log.Printf("Created bootstrap admin %s", s.config.AdminUsername)
	return nil
}

// GetUserFromContext retrieves the authenticated user from the gin context
func GetUserFromContext(c *gin.Context) *models.User {
	user, exists := c.Get("user")
	if !exists {
		return nil
	}
	if u, ok := user.(*models.User); ok {
		return u
	}
	return nil
}

// ActorID returns the id of the authenticated user, if any
func ActorID(c *gin.Context) *uuid.UUID {
	if u := GetUserFromContext(c); u != nil {
		id := u.ID
		return &id
	}
	return nil
}
