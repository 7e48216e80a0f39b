package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"quickfirstaid/internal/models"
	"quickfirstaid/internal/repository"
	"quickfirstaid/internal/session"

	"go.uber.org/zap"
)

const usersCollection = "users"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthService signs the device user in and out. The broker holds the live
// session; the stored email marker only prefills the login form.
type AuthService interface {
	SignIn(ctx context.Context, req SignInRequest) (*models.Session, error)
	SignUp(ctx context.Context, req SignUpRequest) (*models.Session, error)
	ResetPassword(ctx context.Context, email string) error
	SignOut(ctx context.Context) error
	Logout(ctx context.Context) error
	Current() (models.Session, bool)
	LastEmail(ctx context.Context) (string, error)
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type authService struct {
	auth    Authenticator
	docs    DocumentStore
	records *repository.RecordStore
	broker  *session.Broker
	logger  *zap.Logger
	now     func() time.Time
}

func NewAuthService(auth Authenticator, docs DocumentStore, records *repository.RecordStore, broker *session.Broker, logger *zap.Logger) AuthService {
	return &authService{
		auth:    auth,
		docs:    docs,
		records: records,
		broker:  broker,
		logger:  logger,
		now:     time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) SignIn(ctx context.Context, req SignInRequest) (*models.Session, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, invalid("", "email and password are required")
	}
	if !emailPattern.MatchString(email) {
		return nil, invalid("email", "enter a valid email address")
	}
	if len(req.Password) < 6 {
		return nil, invalid("password", "must be at least 6 characters")
	}

	sess, err := s.auth.SignIn(ctx, email, req.Password)
	if err != nil {
		return nil, err
	}
	sess = s.established(ctx, sess, email)
	return &sess, nil
}

// SignUp creates the account, then its users/<uid> profile document.
func (s *authService) SignUp(ctx context.Context, req SignUpRequest) (*models.Session, error) {
	first := strings.TrimSpace(req.FirstName)
	last := strings.TrimSpace(req.LastName)
	email := normalizeEmail(req.Email)

	switch {
	case first == "" || last == "":
		return nil, invalid("", "first and last name are required")
	case email == "" || !strings.Contains(email, "@"):
		return nil, invalid("email", "enter a valid email address")
	case len(req.Password) < 8:
		return nil, invalid("password", "must be at least 8 characters")
	case req.Password != req.ConfirmPassword:
		return nil, invalid("confirmPassword", "passwords do not match")
	}

	sess, err := s.auth.SignUp(ctx, email, req.Password)
	if err != nil {
		return nil, err
	}

	doc := map[string]string{
		"uid":       sess.UserID,
		"email":     email,
		"firstName": first,
		"lastName":  last,
		"createdAt": s.now().UTC().Format(time.RFC3339),
	}
	if err := s.docs.Set(ctx, sess.IDToken, usersCollection, sess.UserID, doc); err != nil {
		// The account exists at this point; a later profile update recreates
		// the document.
		s.logger.Warn("Profile document not created", zap.String("user_id", sess.UserID), zap.Error(err))
	}

	sess = s.established(ctx, sess, email)
	return &sess, nil
}

func (s *authService) established(ctx context.Context, sess models.Session, email string) models.Session {
	if sess.Email == "" {
		sess.Email = email
	}
	s.broker.SignedIn(ctx, sess, models.SessionEvent{
		Type:   models.SessionSignedIn,
		UserID: sess.UserID,
		Email:  sess.Email,
		At:     s.now(),
	})
	if err := s.records.SetSessionMarker(ctx, email); err != nil {
		s.logger.Warn("Session marker not written", zap.Error(err))
	}
	s.logger.Info("Signed in", zap.String("user_id", sess.UserID))
	return sess
}

func (s *authService) ResetPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !emailPattern.MatchString(email) {
		return invalid("email", "enter a valid email address")
	}
	return s.auth.SendPasswordReset(ctx, email)
}

// SignOut drops the live session and the email marker.
func (s *authService) SignOut(ctx context.Context) error {
	if sess, ok := s.broker.Current(); ok {
		s.broker.SignedOut(ctx, models.SessionEvent{
			Type:   models.SessionSignedOut,
			UserID: sess.UserID,
			Email:  sess.Email,
			At:     s.now(),
		})
		s.logger.Info("Signed out", zap.String("user_id", sess.UserID))
	}
	return s.records.ClearSession(ctx)
}

// Logout signs out and then wipes every slot on the device.
func (s *authService) Logout(ctx context.Context) error {
	if err := s.SignOut(ctx); err != nil {
		return err
	}
	if err := s.records.ClearAll(ctx); err != nil {
		return err
	}
	s.logger.Info("Device records cleared on logout")
	return nil
}

func (s *authService) Current() (models.Session, bool) {
	return s.broker.Current()
}

// LastEmail returns the remembered email, or "" when none is stored.
func (s *authService) LastEmail(ctx context.Context) (string, error) {
	email, _, err := s.records.GetSessionMarker(ctx)
	return email, err
}
