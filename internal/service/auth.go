// auth.go — вход по одноразовому паролю и создание пользователей.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/bigkaa/goartstore/dms-admin/internal/dmsapi"
	"github.com/bigkaa/goartstore/dms-admin/internal/session"
)

// DefaultOTPMessage — сообщение после отправки OTP, если сервер не прислал своего.
const DefaultOTPMessage = "OTP отправлен"

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
	tenDigits       = regexp.MustCompile(`^[0-9]{10}$`)
)

// AuthService — OTP-вход.
type AuthService struct {
	api    AuthAPI
	logger *slog.Logger
}

// NewAuthService создаёт сервис.
func NewAuthService(api AuthAPI, logger *slog.Logger) *AuthService {
	return &AuthService{
		api:    api,
		logger: logger.With(slog.String("component", "auth_service")),
	}
}

// RequestOTP запрашивает OTP для номера mobile.
func (s *AuthService) RequestOTP(ctx context.Context, mobile string) (string, error) {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return "", newValidationError(map[string]string{"mobile_number": "Введите номер телефона"})
	}

	msg, err := s.api.GenerateOTP(ctx, mobile)
	if err != nil {
		return "", fmt.Errorf("запрос OTP: %w", err)
	}
	if msg == "" {
		msg = DefaultOTPMessage
	}
	return msg, nil
}

// VerifyOTP проверяет OTP и возвращает выданный токен.
func (s *AuthService) VerifyOTP(ctx context.Context, mobile, otp string) (string, error) {
	fields := map[string]string{}
	if strings.TrimSpace(mobile) == "" {
		fields["mobile_number"] = "Введите номер телефона"
	}
	if strings.TrimSpace(otp) == "" {
		fields["otp"] = "Введите OTP"
	}
	if err := newValidationError(fields); err != nil {
		return "", err
	}

	token, err := s.api.ValidateOTP(ctx, strings.TrimSpace(mobile), strings.TrimSpace(otp))
	if err != nil {
		return "", fmt.Errorf("проверка OTP: %w", err)
	}
	s.logger.Info("Вход выполнен", slog.String("user_id", session.UserID(token)))
	return token, nil
}

// NewUserForm — поля формы создания пользователя.
type NewUserForm struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"` //nolint:gosec // G117: поле формы
	Mobile      string `json:"mobile_number"`
}

// Validate проверяет форму создания пользователя.
func (f NewUserForm) Validate() error {
	fields := map[string]string{}

	username := strings.TrimSpace(f.Username)
	switch {
	case username == "":
		fields["username"] = "Введите имя пользователя"
	case len(username) < 3:
		fields["username"] = "Минимум 3 символа"
	case !usernamePattern.MatchString(username):
		fields["username"] = "Допускаются буквы, цифры, точка, дефис и подчёркивание"
	}

	name := strings.TrimSpace(f.DisplayName)
	switch {
	case name == "":
		fields["display_name"] = "Введите имя"
	case len([]rune(name)) < 2:
		fields["display_name"] = "Слишком короткое имя"
	}

	switch {
	case strings.TrimSpace(f.Password) == "":
		fields["password"] = "Введите пароль"
	case len(f.Password) < 6:
		fields["password"] = "Минимум 6 символов"
	}

	switch {
	case f.Mobile == "":
		fields["mobile_number"] = "Введите номер телефона"
	case !tenDigits.MatchString(f.Mobile):
		fields["mobile_number"] = "Номер должен состоять ровно из 10 цифр"
	}

	return newValidationError(fields)
}

// UserService — создание пользователей.
type UserService struct {
	api    AuthAPI
	logger *slog.Logger
}

// NewUserService создаёт сервис.
func NewUserService(api AuthAPI, logger *slog.Logger) *UserService {
	return &UserService{
		api:    api,
		logger: logger.With(slog.String("component", "user_service")),
	}
}

// Create проверяет форму и создаёт пользователя.
func (s *UserService) Create(ctx context.Context, cred session.Credential, f NewUserForm) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}

	msg, err := s.api.CreateUser(ctx, cred.Token, dmsapi.NewUser{
		Username: strings.TrimSpace(f.Username),
		Name:     strings.TrimSpace(f.DisplayName),
		Password: f.Password,
		Mobile:   f.Mobile,
	})
	if err != nil {
		return "", fmt.Errorf("создание пользователя: %w", err)
	}
	if msg == "" {
		msg = "Пользователь создан"
	}
	s.logger.Info("Пользователь создан", slog.String("username", strings.TrimSpace(f.Username)))
	return msg, nil
}
