package services

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Rvd99/ali-baba/models"
	"github.com/Rvd99/ali-baba/repository"
)

const bcryptCost = 12

type RegisterRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	Name     string  `json:"name" binding:"required"`
	Role     string  `json:"role"`
	Phone    *string `json:"phone"`
	Company  *string `json:"company"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, tokenTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// Register creates an account. Self-service signup is limited to BUYER and
// SELLER; anything else falls back to BUYER.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, *ServiceError) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, &ServiceError{StatusCode: http.StatusConflict, Message: "An account with this email already exists"}
	} else if err != gorm.ErrRecordNotFound {
		s.logger.Error("Failed to check existing user", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Registration failed"}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		s.logger.Error("Password hashing failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Registration failed"}
	}

	role := models.RoleBuyer
	if req.Role == models.RoleSeller {
		role = models.RoleSeller
	}

	user := &models.User{
		Email:    email,
		Password: string(hashed),
		Name:     req.Name,
		Role:     role,
		Phone:    req.Phone,
		Company:  req.Company,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("User creation failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Registration failed"}
	}

	token, err := s.issueToken(user)
	if err != nil {
		s.logger.Error("Token issuance failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Registration failed"}
	}

	return &AuthResponse{Token: token, User: user}, nil
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, *ServiceError) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		// Same response for unknown email and bad password.
		return nil, &ServiceError{StatusCode: http.StatusUnauthorized, Message: "Invalid email or password"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, &ServiceError{StatusCode: http.StatusUnauthorized, Message: "Invalid email or password"}
	}

	token, err := s.issueToken(user)
	if err != nil {
		s.logger.Error("Token issuance failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Login failed"}
	}

	return &AuthResponse{Token: token, User: user}, nil
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// ChangePassword re-verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) *ServiceError {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &ServiceError{StatusCode: http.StatusNotFound, Message: "User not found"}
		}
		s.logger.Error("Failed to fetch user", zap.String("user_id", userID.String()), zap.Error(err))
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to change password"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return &ServiceError{StatusCode: http.StatusUnauthorized, Message: "Current password is incorrect"}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		s.logger.Error("Password hashing failed", zap.Error(err))
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to change password"}
	}

	user.Password = string(hashed)
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update password", zap.String("user_id", userID.String()), zap.Error(err))
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to change password"}
	}
	return nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    user.Role,
		"iat":     now.Unix(),
		"exp":     now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
