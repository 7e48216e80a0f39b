package service

import (
	"context"
	"time"

	"quickfirstaid/internal/models"
	"quickfirstaid/internal/session"

	"go.uber.org/zap"
)

// refreshLeeway renews an ID token this long before it expires.
const refreshLeeway = 5 * time.Minute

// tokenKeeper hands out the live session with an ID token that is still good
// for the next document call.
type tokenKeeper struct {
	auth   Authenticator
	broker *session.Broker
	logger *zap.Logger
	now    func() time.Time
}

func (k *tokenKeeper) session(ctx context.Context) (models.Session, error) {
	sess, ok := k.broker.Current()
	if !ok {
		return models.Session{}, ErrNotSignedIn
	}
	if sess.ExpiresAt.IsZero() || sess.RefreshToken == "" || k.now().Add(refreshLeeway).Before(sess.ExpiresAt) {
		return sess, nil
	}

	fresh, err := k.auth.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		return models.Session{}, err
	}
	sess = renewed(sess, fresh)
	if !k.broker.Replace(sess) {
		return models.Session{}, ErrNotSignedIn
	}
	k.logger.Debug("ID token refreshed", zap.String("user_id", sess.UserID), zap.Time("expires_at", sess.ExpiresAt))
	return sess, nil
}

// renewed copies the credentials of fresh onto sess, keeping what fresh lacks.
func renewed(sess, fresh models.Session) models.Session {
	if fresh.IDToken != "" {
		sess.IDToken = fresh.IDToken
	}
	if fresh.RefreshToken != "" {
		sess.RefreshToken = fresh.RefreshToken
	}
	if !fresh.ExpiresAt.IsZero() {
		sess.ExpiresAt = fresh.ExpiresAt
	}
	return sess
}
