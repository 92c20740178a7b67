package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/storely/storely-backend/config"
	"github.com/storely/storely-backend/internal/app/model"
	"github.com/storely/storely-backend/internal/app/repository"
	"github.com/storely/storely-backend/pkg/logger"
	"github.com/storely/storely-backend/pkg/redis"
	"github.com/storely/storely-backend/pkg/util"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrAccountLocked      = errors.New("account is locked due to repeated failed logins")
	ErrAccountInactive    = errors.New("account is deactivated")
)

const minPasswordLength = 6

type AuthService interface {
	Register(email, password, name, phone string) (*model.User, *util.TokenPair, error)
	Login(email, password string) (*model.User, *util.TokenPair, error)
	Logout(ctx context.Context, token string) error
	GetUserByID(id uint) (*model.User, error)
	UpdateProfile(userID uint, name, phone, address string) (*model.User, error)
}

type authService struct {
	userRepo      repository.UserRepository
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	lockout       config.LockoutConfig
}

func NewAuthService(
	userRepo repository.UserRepository,
	jwtCfg config.JWTConfig,
	lockout config.LockoutConfig,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		jwtSecret:     jwtCfg.Secret,
		accessExpiry:  jwtCfg.AccessTokenExpiry,
		refreshExpiry: jwtCfg.RefreshTokenExpiry,
		lockout:       lockout,
	}
}

func (s *authService) Register(email, password, name, phone string) (*model.User, *util.TokenPair, error) {
	logger.Info("Attempting user registration", map[string]interface{}{
		"email": email,
		"name":  name,
	})

	if len(password) < minPasswordLength {
		logger.Warn("Registration failed: password too short", map[string]interface{}{
			"email": email,
		})
		return nil, nil, ErrPasswordTooShort
	}

	existingUser, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}
	if existingUser != nil {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         name,
		Phone:        phone,
		Role:         model.RoleUser,
		IsActive:     true,
	}

	if err := s.userRepo.Create(user); err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
		"role":    user.Role,
	})

	return user, tokens, nil
}

// Login verifies credentials and maintains the failed-attempt counter. While
// a lockout window is active even a correct password is rejected with
// ErrAccountLocked.
func (s *authService) Login(email, password string) (*model.User, *util.TokenPair, error) {
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	if !user.IsActive {
		logger.Warn("Login failed: account deactivated", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, ErrAccountInactive
	}

	if user.IsLocked() {
		logger.Warn("Login rejected: account locked", map[string]interface{}{
			"user_id":      user.ID,
			"locked_until": user.LockedUntil,
		})
		return nil, nil, ErrAccountLocked
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		return nil, nil, s.recordFailedAttempt(user)
	}

	// Successful login clears lockout state
	if user.FailedLoginAttempts > 0 || user.LockedUntil != nil {
		user.FailedLoginAttempts = 0
		user.LockedUntil = nil
		if err := s.userRepo.Update(user); err != nil {
			logger.Error("Failed to reset login attempts", err, map[string]interface{}{
				"user_id": user.ID,
			})
			return nil, nil, err
		}
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
		"role":    user.Role,
	})

	return user, tokens, nil
}

func (s *authService) recordFailedAttempt(user *model.User) error {
	user.FailedLoginAttempts++
	locked := false
	if user.FailedLoginAttempts >= s.lockout.MaxAttempts {
		until := time.Now().Add(s.lockout.LockDuration)
		user.LockedUntil = &until
		user.FailedLoginAttempts = 0
		locked = true
	}

	if err := s.userRepo.Update(user); err != nil {
		logger.Error("Failed to record failed login attempt", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	if locked {
		logger.Warn("Account locked after repeated failed logins", map[string]interface{}{
			"user_id":      user.ID,
			"locked_until": user.LockedUntil,
		})
		return ErrAccountLocked
	}

	logger.Warn("Login failed: invalid password", map[string]interface{}{
		"user_id":  user.ID,
		"attempts": user.FailedLoginAttempts,
	})
	return ErrInvalidCredentials
}

// Logout revokes the presented access token until its natural expiry.
func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := util.ValidateToken(token, s.jwtSecret)
	if err != nil {
		// Nothing to revoke for an invalid or expired token
		return nil
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if err := redis.BlacklistToken(ctx, token, remaining); err != nil {
		logger.Error("Failed to blacklist token on logout", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		return err
	}

	logger.Info("User logged out", map[string]interface{}{
		"user_id": claims.UserID,
	})
	return nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found", map[string]interface{}{
				"user_id": id,
			})
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes name, phone and address. Role and email stay as they
// are regardless of input.
func (s *authService) UpdateProfile(userID uint, name, phone, address string) (*model.User, error) {
	logger.Info("Updating user profile", map[string]interface{}{
		"user_id": userID,
	})

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user for profile update", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	updated := false
	if name != "" && name != user.Name {
		user.Name = name
		updated = true
	}
	if phone != "" && phone != user.Phone {
		user.Phone = phone
		updated = true
	}
	if address != "" && address != user.Address {
		user.Address = address
		updated = true
	}

	if !updated {
		return user, nil
	}

	if err := s.userRepo.Update(user); err != nil {
		logger.Error("Failed to update user profile", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("User profile updated successfully", map[string]interface{}{
		"user_id": user.ID,
		"name":    user.Name,
	})
	return user, nil
}

func (s *authService) issueTokens(user *model.User) (*util.TokenPair, error) {
	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Email,
		string(user.Role),
		s.jwtSecret,
		s.accessExpiry,
		s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}
	return tokens, nil
}
