package dmsapi

import (
	"context"
	"encoding/json"
)

// GenerateOTP запрашивает одноразовый пароль на номер mobile.
// POST /generateOTP {mobile_number}
// Возвращает текст сервера из data (может быть пустым).
func (c *Client) GenerateOTP(ctx context.Context, mobile string) (string, error) {
	const op = "generateOTP"
	resp, err := c.postJSON(ctx, op, "/generateOTP", "", false, map[string]string{
		"mobile_number": mobile,
	})
	if err != nil {
		return "", err
	}
	env, err := decodeEnvelope(op, resp)
	if err != nil {
		return "", err
	}
	return env.dataText(), nil
}

// otpResponse — поддерживаемые формы ответа validateOTP.
type otpResponse struct {
	Token string `json:"token"`
	Data  struct {
		Token     string `json:"token"`
		AuthToken string `json:"authToken"`
	} `json:"data"`
}

// ValidateOTP проверяет OTP и возвращает выданный токен.
// POST /validateOTP {mobile_number, otp}
// Токен берётся из token, data.token или data.authToken.
func (c *Client) ValidateOTP(ctx context.Context, mobile, otp string) (string, error) {
	const op = "validateOTP"
	resp, err := c.postJSON(ctx, op, "/validateOTP", "", false, map[string]string{
		"mobile_number": mobile,
		"otp":           otp,
	})
	if err != nil {
		return "", err
	}
	if _, err := decodeEnvelope(op, resp); err != nil {
		return "", err
	}

	var out otpResponse
	// data может оказаться строкой: тогда токена в нём нет
	_ = json.Unmarshal(resp.body, &out)

	for _, tok := range []string{out.Token, out.Data.Token, out.Data.AuthToken} {
		if tok != "" {
			return tok, nil
		}
	}
	return "", ErrTokenMissing
}

// NewUser — тело POST /createUser.
type NewUser struct {
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password"` //nolint:gosec // G117: поле запроса
	Mobile   string `json:"mobile_number,omitempty"`
}

// CreateUser создаёт пользователя. Авторизация — только Bearer.
func (c *Client) CreateUser(ctx context.Context, token string, u NewUser) (string, error) {
	const op = "createUser"
	resp, err := c.postJSON(ctx, op, "/createUser", token, false, u)
	if err != nil {
		return "", err
	}
	env, err := decodeEnvelope(op, resp)
	if err != nil {
		return "", err
	}
	return env.dataText(), nil
}
