package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"vetstudy-backend/internal/logger"
	"vetstudy-backend/internal/models"
)

const (
	resetTokenTTL     = time.Hour
	resetResendWindow = 60 * time.Second
	minPasswordLength = 6
)

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

type resetMailer interface {
	SendPasswordResetEmail(to, token string) error
}

// ResetTokenStore keeps one outstanding reset token per user.
type ResetTokenStore interface {
	Save(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error
	Get(ctx context.Context, userID uuid.UUID) (string, error)
	Delete(ctx context.Context, userID uuid.UUID) error
	// Throttle reports whether a new email may be sent now and, if so,
	// blocks further sends for window.
	Throttle(ctx context.Context, userID uuid.UUID, window time.Duration) (bool, error)
}

type PasswordService struct {
	users  userStore
	tokens ResetTokenStore
	email  resetMailer
	log    *logger.Logger
}

func NewPasswordService(users userStore, tokens ResetTokenStore, email resetMailer, log *logger.Logger) *PasswordService {
	return &PasswordService{users: users, tokens: tokens, email: email, log: log}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Forgot emails a reset token to a registered address.
func (s *PasswordService) Forgot(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !emailRegex.MatchString(email) {
		return &ValidationError{Fields: map[string]string{"email": "Informe um e-mail válido."}}
	}

	user, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}

	allowed, err := s.tokens.Throttle(ctx, user.ID, resetResendWindow)
	if err != nil {
		return fmt.Errorf("check reset throttle: %w", err)
	}
	if !allowed {
		return &RateLimitError{Message: "Aguarde 60 segundos antes de solicitar um novo e-mail."}
	}

	token, err := generateToken(32)
	if err != nil {
		return err
	}
	if err := s.tokens.Save(ctx, user.ID, token, resetTokenTTL); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	if err := s.email.SendPasswordResetEmail(user.Email, token); err != nil {
		s.log.Error("password reset email failed", "user_id", user.ID.String(), "error", err.Error())
		return fmt.Errorf("send reset email: %w", err)
	}

	s.log.Info("password reset requested", "user_id", user.ID.String())
	return nil
}

// Reset replaces the password when the token matches the stored one. The
// token is consumed on success.
func (s *PasswordService) Reset(ctx context.Context, req models.ResetPasswordRequest) error {
	fieldErrors := make(map[string]string)
	if !emailRegex.MatchString(strings.TrimSpace(req.Email)) {
		fieldErrors["email"] = "Informe um e-mail válido."
	}
	if strings.TrimSpace(req.Token) == "" {
		fieldErrors["token"] = "O token é obrigatório."
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		fieldErrors["password"] = fmt.Sprintf("A senha deve ter pelo menos %d caracteres.", minPasswordLength)
	} else if req.Password != req.PasswordConfirmation {
		fieldErrors["password_confirmation"] = "A confirmação de senha não confere."
	}
	if len(fieldErrors) > 0 {
		return &ValidationError{Fields: fieldErrors}
	}

	user, err := s.lookup(ctx, req.Email)
	if err != nil {
		return err
	}

	stored, err := s.tokens.Get(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("load reset token: %w", err)
	}
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(req.Token))) != 1 {
		return &UnauthorizedError{Message: "Token inválido ou expirado."}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := s.tokens.Delete(ctx, user.ID); err != nil {
		s.log.Warn("failed to delete reset token", "user_id", user.ID.String(), "error", err.Error())
	}

	s.log.Info("password reset completed", "user_id", user.ID.String())
	return nil
}

func (s *PasswordService) lookup(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Message: "Não encontramos um usuário com esse e-mail."}
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func generateToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// RedisResetStore keeps reset tokens under password_reset:{user} and the
// resend limit under reset_limit:{user}.
type RedisResetStore struct {
	redis *redis.Client
}

func NewRedisResetStore(client *redis.Client) *RedisResetStore {
	return &RedisResetStore{redis: client}
}

func (s *RedisResetStore) Save(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error {
	return s.redis.Set(ctx, "password_reset:"+userID.String(), token, ttl).Err()
}

func (s *RedisResetStore) Get(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := s.redis.Get(ctx, "password_reset:"+userID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return token, err
}

func (s *RedisResetStore) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.redis.Del(ctx, "password_reset:"+userID.String()).Err()
}

func (s *RedisResetStore) Throttle(ctx context.Context, userID uuid.UUID, window time.Duration) (bool, error) {
	return s.redis.SetNX(ctx, "reset_limit:"+userID.String(), "1", window).Result()
}
