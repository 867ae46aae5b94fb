package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gymtrack/internal/models"
	"gymtrack/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and JWT minting/validation.
type AuthService struct {
	userRepo     repositories.UserRepository
	jwtSecret    []byte
	tokenTTL     time.Duration
	autoRegister bool
}

// NewAuthService creates a new AuthService. When autoRegister is true, a login
// with an unseen email creates the account instead of failing; stricter
// deployments disable it.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, autoRegister bool) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		jwtSecret:    []byte(jwtSecret),
		tokenTTL:     7 * 24 * time.Hour,
		autoRegister: autoRegister,
	}
}

// Register creates an account and returns a signed token for it.
func (s *AuthService) Register(email, password string) (string, *models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	if len(password) < 6 {
		return "", nil, fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}

	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return "", nil, ErrEmailRegistered
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return "", nil, err
	}

	user, err := s.createUser(email, password)
	if err != nil {
		return "", nil, err
	}

	token, err := s.signToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Login authenticates a user and returns a signed token. With autoRegister
// enabled an unseen email creates the account on the spot.
func (s *AuthService) Login(email, password string) (string, *models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.userRepo.GetByEmail(email)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		if !s.autoRegister {
			return "", nil, ErrInvalidCredentials
		}
		user, err = s.createUser(email, password)
		if err != nil {
			return "", nil, err
		}
		log.Printf("Auto-registered user on login: %s", email)
	case err != nil:
		return "", nil, err
	default:
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
			return "", nil, ErrInvalidCredentials
		}
	}

	token, err := s.signToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) createUser(email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{Email: email, PasswordHash: string(hash)}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

func (s *AuthService) signToken(u *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    u.ID,
		"email": u.Email,
		"exp":   now.Add(s.tokenTTL).Unix(),
		"iat":   now.Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
