package client

import (
	"context"
	"strconv"
	"strings"
	"time"

	"quickfirstaid/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const authService = "auth"

type credentialsRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type credentialsResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type accountUpdateRequest struct {
	IDToken           string `json:"idToken"`
	Email             string `json:"email,omitempty"`
	Password          string `json:"password,omitempty"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

// tokenResponse is the secure token endpoint's snake_case answer.
type tokenResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
	UserID       string `json:"user_id"`
}

type oobCodeRequest struct {
	RequestType string `json:"requestType"`
	Email       string `json:"email"`
}

// identityError is the error body of the identity toolkit API.
type identityError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// AuthClient talks to the Firebase Identity Toolkit REST API. Token refresh
// goes to the separate secure token endpoint.
type AuthClient struct {
	httpClient  *resty.Client
	tokenClient *resty.Client
	apiKey      string
	logger      *zap.Logger
	now         func() time.Time
}

func NewAuthClient(baseURL, tokenURL, apiKey string, timeout time.Duration, logger *zap.Logger) *AuthClient {
	return &AuthClient{
		httpClient:  newHTTPClient(baseURL, timeout).SetHeader("Content-Type", "application/json"),
		tokenClient: newHTTPClient(tokenURL, timeout),
		apiKey:      apiKey,
		logger:      logger,
		now:         time.Now,
	}
}

// SignIn exchanges email and password for a session.
func (c *AuthClient) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	return c.credentials(ctx, "sign-in", "/accounts:signInWithPassword", email, password)
}

// SignUp creates an account and returns its session.
func (c *AuthClient) SignUp(ctx context.Context, email, password string) (models.Session, error) {
	return c.credentials(ctx, "sign-up", "/accounts:signUp", email, password)
}

// SendPasswordReset asks the provider to email a reset link.
func (c *AuthClient) SendPasswordReset(ctx context.Context, email string) error {
	var apiErr identityError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(oobCodeRequest{RequestType: "PASSWORD_RESET", Email: email}).
		SetError(&apiErr).
		Post("/accounts:sendOobCode")
	if cerr := callError(authService, "password-reset", resp, err, func() string { return apiErr.Error.Message }); cerr != nil {
		c.logger.Warn("Password reset request failed", zap.Error(cerr))
		return cerr
	}
	return nil
}

// UpdateAccount changes the email, the password or both for the account
// behind idToken. Empty values are left unchanged. The provider rotates the
// tokens, so the returned session replaces the caller's.
func (c *AuthClient) UpdateAccount(ctx context.Context, idToken, email, password string) (models.Session, error) {
	var result credentialsResponse
	var apiErr identityError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(accountUpdateRequest{IDToken: idToken, Email: email, Password: password, ReturnSecureToken: true}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/accounts:update")
	if cerr := callError(authService, "update-account", resp, err, func() string { return apiErr.Error.Message }); cerr != nil {
		c.logger.Warn("Account update failed", zap.Error(cerr))
		return models.Session{}, cerr
	}
	return c.session(result.LocalID, result.Email, result.IDToken, result.RefreshToken, result.ExpiresIn), nil
}

// Refresh trades a refresh token for a new ID token.
func (c *AuthClient) Refresh(ctx context.Context, refreshToken string) (models.Session, error) {
	var result tokenResponse
	var apiErr identityError
	resp, err := c.tokenClient.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": refreshToken,
		}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/token")
	if cerr := callError(authService, "refresh", resp, err, func() string { return apiErr.Error.Message }); cerr != nil {
		c.logger.Warn("Token refresh failed", zap.Error(cerr))
		return models.Session{}, cerr
	}
	if result.IDToken == "" {
		return models.Session{}, &Error{Service: authService, Op: "refresh", StatusCode: resp.StatusCode(), Message: "response carried no token"}
	}
	return c.session(result.UserID, "", result.IDToken, result.RefreshToken, result.ExpiresIn), nil
}

func (c *AuthClient) credentials(ctx context.Context, op, path, email, password string) (models.Session, error) {
	var result credentialsResponse
	var apiErr identityError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(credentialsRequest{Email: email, Password: password, ReturnSecureToken: true}).
		SetResult(&result).
		SetError(&apiErr).
		Post(path)
	if cerr := callError(authService, op, resp, err, func() string { return apiErr.Error.Message }); cerr != nil {
		c.logger.Warn("Auth call failed", zap.String("op", op), zap.Error(cerr))
		return models.Session{}, cerr
	}
	if result.LocalID == "" || result.IDToken == "" {
		return models.Session{}, &Error{Service: authService, Op: op, StatusCode: resp.StatusCode(), Message: "response carried no session"}
	}

	return c.session(result.LocalID, result.Email, result.IDToken, result.RefreshToken, result.ExpiresIn), nil
}

func (c *AuthClient) session(userID, email, idToken, refreshToken, expiresIn string) models.Session {
	sess := models.Session{
		UserID:       userID,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		IDToken:      idToken,
		RefreshToken: refreshToken,
	}
	if secs, err := strconv.Atoi(expiresIn); err == nil && secs > 0 {
		sess.ExpiresAt = c.now().Add(time.Duration(secs) * time.Second)
	}
	return sess
}
