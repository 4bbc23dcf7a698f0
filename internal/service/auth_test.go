package service_test // 测试包

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"drawbit/internal/domain"
	memorystate "drawbit/internal/infra/state/memory"
	"drawbit/internal/repository"
	"drawbit/internal/repository/mocks"
	"drawbit/internal/service"
	"drawbit/internal/store"
)

func newAuthService(t *testing.T, repo repository.UserRepository) (*service.AuthService, repository.RecordStoreFactory) {
	t.Helper()
	factory := store.NewFactory(memorystate.NewKVStore())
	authService, err := service.NewAuthService(repo, factory, "very-secret-key", 1)
	require.NoError(t, err, "创建 AuthService 不应失败")
	return authService, factory
}

// --- 测试 Register 方法 ---

func TestAuthService_Register_Success(t *testing.T) {
	// Arrange: 准备 Mock 对象, Service 实例, 和测试数据
	mockUserRepo := new(mocks.UserRepository)
	authService, factory := newAuthService(t, mockUserRepo)

	ctx := context.Background()
	name := "Ada Lovelace"
	email := "ada@example.com"
	password := "StrongPass123"

	// 1. 当 FindByEmail 被调用时，模拟用户不存在
	mockUserRepo.On("FindByEmail", ctx, email).Return(nil, repository.ErrUserNotFound).Once()

	// 2. 当 Save 被调用时，模拟保存成功，并填充 ID/时间戳
	mockUserRepo.On("Save", ctx, mock.MatchedBy(func(user *domain.User) bool {
		return user.Email == email && user.Name == name &&
			bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil
	})).
		Run(func(args mock.Arguments) {
			userArg := args.Get(1).(*domain.User)
			userArg.ID = 5
			userArg.CreatedAt = time.Now().Add(-time.Second)
		}).
		Return(nil).
		Once()

	// Act
	registeredUser, err := authService.Register(ctx, name, "  ADA@example.com ", password, true)

	// Assert
	require.NoError(t, err, "成功注册时不应有错误")
	require.NotNil(t, registeredUser)
	assert.Equal(t, uint(5), registeredUser.ID)
	assert.Equal(t, email, registeredUser.Email, "邮箱应被规范化")
	assert.Empty(t, registeredUser.Password, "返回的用户密码应为空")

	// 注册成功后身份应写入 user-email
	identity, err := factory(5).LoadIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, email, identity)

	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Register_ValidationHappensBeforeRepository(t *testing.T) {
	cases := []struct {
		name     string
		userName string
		email    string
		password string
		terms    bool
		wantErr  error
	}{
		{"terms not accepted", "Ada", "ada@example.com", "longenough", false, service.ErrTermsNotAccepted},
		{"missing name", "  ", "ada@example.com", "longenough", true, service.ErrNameRequired},
		{"malformed email", "Ada", "not-an-email", "longenough", true, service.ErrInvalidEmail},
		{"short password", "Ada", "ada@example.com", "short", true, service.ErrPasswordTooShort},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockUserRepo := new(mocks.UserRepository)
			authService, _ := newAuthService(t, mockUserRepo)

			_, err := authService.Register(context.Background(), tc.userName, tc.email, tc.password, tc.terms)

			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantErr), "期望 %v, 实际 %v", tc.wantErr, err)
			mockUserRepo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
			mockUserRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	authService, _ := newAuthService(t, mockUserRepo)
	ctx := context.Background()

	existingUser := &domain.User{ID: 10, Email: "taken@example.com"}
	mockUserRepo.On("FindByEmail", ctx, "taken@example.com").Return(existingUser, nil).Once()

	_, err := authService.Register(ctx, "Taken", "taken@example.com", "password123", true)

	require.Error(t, err, "邮箱已存在时应返回错误")
	assert.True(t, errors.Is(err, service.ErrRegistrationFailed))
	mockUserRepo.AssertExpectations(t)
	mockUserRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAuthService_Register_SaveFails_DuplicateEntry(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	authService, _ := newAuthService(t, mockUserRepo)
	ctx := context.Background()

	mockUserRepo.On("FindByEmail", ctx, "race@example.com").Return(nil, repository.ErrUserNotFound).Once()
	mockUserRepo.On("Save", ctx, mock.AnythingOfType("*domain.User")).Return(repository.ErrDuplicateEntry).Once()

	_, err := authService.Register(ctx, "Race", "race@example.com", "password123", true)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrRegistrationFailed), "保存冲突时应返回 ErrRegistrationFailed")
	mockUserRepo.AssertExpectations(t)
}

// --- 测试 Login 方法 ---

func TestAuthService_Login_Success(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	authService, factory := newAuthService(t, mockUserRepo)
	ctx := context.Background()
	password := "password123"
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	userInDb := &domain.User{ID: 1, Email: "test@example.com", Password: string(hashedPassword)}

	mockUserRepo.On("FindByEmail", ctx, "test@example.com").Return(userInDb, nil).Once()

	token, user, err := authService.Login(ctx, "test@example.com", password)

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	require.NotNil(t, user)
	assert.Empty(t, user.Password)

	// Token 中应包含 user_id 和 email
	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("very-secret-key"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, float64(1), claims["user_id"])
	assert.Equal(t, "test@example.com", claims["email"])

	identity, err := factory(1).LoadIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", identity, "登录后应记录 user-email")

	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	authService, _ := newAuthService(t, mockUserRepo)
	ctx := context.Background()

	mockUserRepo.On("FindByEmail", ctx, "nobody@example.com").Return(nil, repository.ErrUserNotFound).Once()

	token, user, err := authService.Login(ctx, "nobody@example.com", "password")

	require.Error(t, err)
	assert.Empty(t, token)
	assert.Nil(t, user)
	assert.True(t, errors.Is(err, service.ErrAuthenticationFailed))
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Login_IncorrectPassword(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	authService, _ := newAuthService(t, mockUserRepo)
	ctx := context.Background()
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	userInDb := &domain.User{ID: 1, Email: "test@example.com", Password: string(hashedPassword)}

	mockUserRepo.On("FindByEmail", ctx, "test@example.com").Return(userInDb, nil).Once()

	token, _, err := authService.Login(ctx, "test@example.com", "wrongpassword")

	require.Error(t, err)
	assert.Empty(t, token)
	assert.True(t, errors.Is(err, service.ErrAuthenticationFailed))
	mockUserRepo.AssertExpectations(t)
}

func TestNewAuthService_EmptySecret(t *testing.T) {
	_, err := service.NewAuthService(new(mocks.UserRepository), store.NewFactory(memorystate.NewKVStore()), "", 1)
	assert.Error(t, err)
}

// --- 测试 Logout 方法 ---

func TestAuthService_Logout_ClearsIdentity(t *testing.T) {
	authService, factory := newAuthService(t, new(mocks.UserRepository))
	ctx := context.Background()
	require.NoError(t, factory(4).SaveIdentity(ctx, "zoe@example.com"))

	authService.Logout(ctx, 4)

	identity, err := factory(4).LoadIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultUserEmail, identity)
}

func TestAuthService_Logout_StoreFailureIsNotFatal(t *testing.T) {
	kv := new(mocks.KVStore)
	kv.On("Delete", mock.Anything, "user:4:user-email").Return(errors.New("redis down")).Once()
	authService, err := service.NewAuthService(new(mocks.UserRepository), store.NewFactory(kv), "very-secret-key", 1)
	require.NoError(t, err)

	assert.NotPanics(t, func() { authService.Logout(context.Background(), 4) })
	kv.AssertExpectations(t)
}
