package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"drawbit/internal/domain"
	"drawbit/internal/repository"
)

// minPasswordLength 注册时密码的最小长度
const minPasswordLength = 8

// AuthService 负责用户注册、登录以及身份 (user-email) 的记录。
type AuthService struct {
	userRepo  repository.UserRepository
	stores    repository.RecordStoreFactory
	validate  *validator.Validate
	jwtSecret []byte        // 存储密钥的字节形式
	jwtExpiry time.Duration // JWT 过期时间
}

// NewAuthService 创建 AuthService 实例。
// jwtSecretKey 应从安全配置中获取。
// jwtExpiryHours 定义 token 过期的小时数。
func NewAuthService(userRepo repository.UserRepository, stores repository.RecordStoreFactory, jwtSecretKey string, jwtExpiryHours int) (*AuthService, error) {
	if userRepo == nil {
		panic("UserRepository cannot be nil for AuthService")
	}
	if stores == nil {
		panic("RecordStoreFactory cannot be nil for AuthService")
	}
	if jwtSecretKey == "" {
		return nil, fmt.Errorf("JWT secret key cannot be empty")
	}
	if jwtExpiryHours <= 0 {
		jwtExpiryHours = 24 // 默认 24 小时
	}
	return &AuthService{
		userRepo:  userRepo,
		stores:    stores,
		validate:  validator.New(),
		jwtSecret: []byte(jwtSecretKey),
		jwtExpiry: time.Duration(jwtExpiryHours) * time.Hour,
	}, nil
}

// Register 处理用户注册。校验顺序：服务条款、姓名、邮箱、密码长度。
func (s *AuthService) Register(ctx context.Context, name, email, password string, agreeTerms bool) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	logCtx := logrus.WithField("email", email)

	// 1. 基本验证
	if !agreeTerms {
		return nil, ErrTermsNotAccepted
	}
	if name == "" {
		return nil, ErrNameRequired
	}
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, ErrInvalidEmail
	}
	if len([]rune(password)) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	// 2. 检查邮箱是否已被注册
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		logCtx.WithError(err).Error("Registration failed: error checking email")
		return nil, ErrInternalServer
	}
	if existing != nil {
		logCtx.Warn("Registration failed: email already exists")
		return nil, ErrRegistrationFailed
	}

	// 3. 哈希密码
	hashedPassword, err := hashPassword(password)
	if err != nil {
		logCtx.WithError(err).Error("Failed to hash password during registration")
		return nil, ErrInternalServer
	}

	// 4. 保存用户
	user := &domain.User{
		Name:     name,
		Email:    email,
		Password: hashedPassword,
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.WithError(err).Warn("Registration failed: email already exists (repo error)")
			return nil, ErrRegistrationFailed
		}
		logCtx.WithError(err).Error("Database error during user creation")
		return nil, ErrInternalServer
	}

	s.rememberIdentity(ctx, user)
	logCtx.WithField("user_id", user.ID).Info("User registered successfully")
	user.Password = "" // 清除密码哈希再返回
	return user, nil
}

// Login 处理用户登录，成功时返回 JWT 和用户信息。
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = normalizeEmail(email)
	logCtx := logrus.WithField("email", email)

	// 1. 查找用户
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			logCtx.Warn("Login attempt failed: User not found")
		} else {
			logCtx.WithError(err).Warn("Login attempt failed: Error finding user")
		}
		return "", nil, ErrAuthenticationFailed // 对客户端统一返回认证失败
	}
	if user == nil {
		logCtx.Warn("Login attempt failed: repo returned nil user without error")
		return "", nil, ErrAuthenticationFailed
	}

	// 2. 验证密码
	if !checkPassword(password, user.Password) {
		logCtx.Warn("Login attempt failed: Invalid password")
		return "", nil, ErrAuthenticationFailed
	}

	// 3. 生成 JWT Token
	token, err := s.generateJWT(user)
	if err != nil {
		logCtx.WithError(err).Error("Failed to generate JWT token during login")
		return "", nil, ErrInternalServer
	}

	s.rememberIdentity(ctx, user)
	logCtx.WithField("user_id", user.ID).Info("User logged in successfully")
	user.Password = ""
	return token, user, nil
}

// Logout 清除用户存储的身份；token 由客户端丢弃，服务端不维护会话。
// 清除失败只记录日志，登出总是成功。
func (s *AuthService) Logout(ctx context.Context, userID uint) {
	if err := s.stores(userID).ClearIdentity(ctx); err != nil {
		logrus.WithField("user_id", userID).WithError(err).Warn("Failed to clear user identity on logout")
		return
	}
	logrus.WithField("user_id", userID).Info("User logged out")
}

// --- 私有辅助函数 ---

// rememberIdentity 把邮箱写入用户的 user-email key，失败只记录日志
func (s *AuthService) rememberIdentity(ctx context.Context, user *domain.User) {
	if err := s.stores(user.ID).SaveIdentity(ctx, user.Email); err != nil {
		logrus.WithField("user_id", user.ID).WithError(err).Warn("Failed to store user identity")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// hashPassword 使用 bcrypt 对密码进行哈希处理
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to generate hash from password: %w", err)
	}
	return string(bytes), nil
}

// checkPassword 验证提供的密码是否与存储的哈希匹配
func checkPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// generateJWT 为指定用户生成 JWT Token
func (s *AuthService) generateJWT(user *domain.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     now.Add(s.jwtExpiry).Unix(),
		"iat":     now.Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}
