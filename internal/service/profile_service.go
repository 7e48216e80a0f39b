package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"quickfirstaid/internal/client"
	"quickfirstaid/internal/models"
	"quickfirstaid/internal/repository"
	"quickfirstaid/internal/session"

	"go.uber.org/zap"
)

// ProfileService reads and edits the signed-in user's profile document.
type ProfileService interface {
	Get(ctx context.Context) (*models.UserProfile, error)
	Update(ctx context.Context, req ProfileUpdate) (*models.UserProfile, error)
}

// ProfileUpdate carries only the fields to change; nil means unchanged. A new
// email or a new password needs CurrentPassword.
type ProfileUpdate struct {
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	ProfilePic  *string `json:"profilePic,omitempty"`
	Email       *string `json:"email,omitempty"`

	CurrentPassword string `json:"currentPassword,omitempty"`
	NewPassword     string `json:"newPassword,omitempty"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
}

type profileService struct {
	auth    Authenticator
	docs    DocumentStore
	records *repository.RecordStore
	broker  *session.Broker
	tokens  *tokenKeeper
	logger  *zap.Logger
	now     func() time.Time
}

func NewProfileService(auth Authenticator, docs DocumentStore, records *repository.RecordStore, broker *session.Broker, logger *zap.Logger) ProfileService {
	s := &profileService{
		auth:    auth,
		docs:    docs,
		records: records,
		broker:  broker,
		logger:  logger,
		now:     time.Now,
	}
	s.tokens = &tokenKeeper{auth: auth, broker: broker, logger: logger, now: func() time.Time { return s.now() }}
	return s
}

func (s *profileService) Get(ctx context.Context) (*models.UserProfile, error) {
	sess, err := s.tokens.session(ctx)
	if err != nil {
		return nil, err
	}
	fields, err := s.docs.Get(ctx, sess.IDToken, usersCollection, sess.UserID)
	if errors.Is(err, client.ErrDocumentNotFound) {
		return &models.UserProfile{UID: sess.UserID, Email: sess.Email}, nil
	}
	if err != nil {
		return nil, err
	}
	return profileFromFields(sess, fields), nil
}

func (s *profileService) Update(ctx context.Context, req ProfileUpdate) (*models.UserProfile, error) {
	sess, err := s.tokens.session(ctx)
	if err != nil {
		return nil, err
	}

	partial := map[string]string{}
	setIf := func(key string, v *string) {
		if v != nil {
			partial[key] = strings.TrimSpace(*v)
		}
	}
	setIf("firstName", req.FirstName)
	setIf("lastName", req.LastName)
	setIf("phoneNumber", req.PhoneNumber)
	setIf("profilePic", req.ProfilePic)
	if v, ok := partial["firstName"]; ok && v == "" {
		return nil, invalid("firstName", "must not be empty")
	}
	if v, ok := partial["lastName"]; ok && v == "" {
		return nil, invalid("lastName", "must not be empty")
	}

	newEmail := ""
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if !emailPattern.MatchString(email) {
			return nil, invalid("email", "enter a valid email address")
		}
		if email != sess.Email {
			newEmail = email
		}
	}
	if newEmail != "" || req.NewPassword != "" {
		if req.CurrentPassword == "" {
			return nil, invalid("currentPassword", "current password required for security changes")
		}
	}
	if req.NewPassword != "" {
		if len(req.NewPassword) < 8 {
			return nil, invalid("newPassword", "must be at least 8 characters")
		}
		if req.NewPassword != req.ConfirmPassword {
			return nil, invalid("confirmPassword", "passwords do not match")
		}
	}
	if len(partial) == 0 && newEmail == "" && req.NewPassword == "" {
		return nil, invalid("", "nothing to update")
	}

	if newEmail != "" || req.NewPassword != "" {
		sess, err = s.changeCredentials(ctx, sess, req.CurrentPassword, newEmail, req.NewPassword)
		if err != nil {
			return nil, err
		}
		if newEmail != "" {
			partial["email"] = newEmail
		}
	}

	if len(partial) > 0 {
		if err := s.writeProfile(ctx, sess, partial); err != nil {
			return nil, err
		}
	}
	s.logger.Info("Profile updated", zap.String("user_id", sess.UserID), zap.Int("fields", len(partial)))
	return s.Get(ctx)
}

// changeCredentials re-verifies the current password, then applies the new
// email and password. The live session and the email marker follow the change.
func (s *profileService) changeCredentials(ctx context.Context, sess models.Session, currentPassword, email, password string) (models.Session, error) {
	verified, err := s.auth.SignIn(ctx, sess.Email, currentPassword)
	if err != nil {
		return models.Session{}, err
	}
	if verified.UserID != "" && verified.UserID != sess.UserID {
		return models.Session{}, ErrNotSignedIn
	}
	updated, err := s.auth.UpdateAccount(ctx, verified.IDToken, email, password)
	if err != nil {
		return models.Session{}, err
	}

	sess = renewed(renewed(sess, verified), updated)
	if email != "" {
		sess.Email = email
	}
	if !s.broker.Replace(sess) {
		return models.Session{}, ErrNotSignedIn
	}
	if email != "" {
		if err := s.records.SetSessionMarker(ctx, email); err != nil {
			s.logger.Warn("Session marker not written", zap.Error(err))
		}
		s.logger.Info("Account email changed", zap.String("user_id", sess.UserID))
	}
	if password != "" {
		s.logger.Info("Account password changed", zap.String("user_id", sess.UserID))
	}
	return sess, nil
}

func (s *profileService) writeProfile(ctx context.Context, sess models.Session, partial map[string]string) error {
	err := s.docs.Update(ctx, sess.IDToken, usersCollection, sess.UserID, partial)
	if isMissingDocument(err) {
		// Sign-up may have failed to create the document; write it whole.
		doc := map[string]string{
			"uid":       sess.UserID,
			"email":     sess.Email,
			"createdAt": s.now().UTC().Format(time.RFC3339),
		}
		for k, v := range partial {
			doc[k] = v
		}
		err = s.docs.Set(ctx, sess.IDToken, usersCollection, sess.UserID, doc)
	}
	return err
}

func isMissingDocument(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, client.ErrDocumentNotFound) {
		return true
	}
	var ce *client.Error
	return errors.As(err, &ce) && ce.StatusCode == 404
}

func profileFromFields(sess models.Session, f map[string]string) *models.UserProfile {
	p := &models.UserProfile{
		UID:         f["uid"],
		Email:       f["email"],
		FirstName:   f["firstName"],
		LastName:    f["lastName"],
		PhoneNumber: f["phoneNumber"],
		ProfilePic:  f["profilePic"],
		CreatedAt:   f["createdAt"],
	}
	if p.UID == "" {
		p.UID = sess.UserID
	}
	if p.Email == "" {
		p.Email = sess.Email
	}
	return p
}
