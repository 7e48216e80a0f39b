package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"quickfirstaid/internal/client"
	"quickfirstaid/internal/models"
	"quickfirstaid/internal/repository"
	"quickfirstaid/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

var profileClock = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type profileFixture struct {
	svc     *profileService
	auth    *fakeAuth
	docs    *fakeDocs
	records *repository.RecordStore
	broker  *session.Broker
}

func newProfileFixture(t *testing.T, sess models.Session) *profileFixture {
	t.Helper()
	f := &profileFixture{
		auth:    &fakeAuth{},
		docs:    newFakeDocs(),
		records: newTestRecords(t),
		broker:  session.NewBroker(zap.NewNop()),
	}
	if sess.UserID != "" {
		f.broker.SignedIn(context.Background(), sess,
			models.SessionEvent{Type: models.SessionSignedIn, UserID: sess.UserID, At: profileClock})
	}
	f.svc = NewProfileService(f.auth, f.docs, f.records, f.broker, zap.NewNop()).(*profileService)
	f.svc.now = func() time.Time { return profileClock }
	return f
}

func annSession() models.Session {
	return models.Session{UserID: "uid-1", Email: "ann@example.com", IDToken: "tok", RefreshToken: "ref"}
}

func TestProfileService_RequiresSession(t *testing.T) {
	f := newProfileFixture(t, models.Session{})

	_, err := f.svc.Get(context.Background())
	assert.ErrorIs(t, err, ErrNotSignedIn)
	_, err = f.svc.Update(context.Background(), ProfileUpdate{FirstName: strPtr("Ann")})
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestProfileService_GetMissingDocument(t *testing.T) {
	f := newProfileFixture(t, annSession())

	p, err := f.svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &models.UserProfile{UID: "uid-1", Email: "ann@example.com"}, p)
}

func TestProfileService_UpdateExisting(t *testing.T) {
	f := newProfileFixture(t, annSession())
	f.docs.docs["users/uid-1"] = map[string]string{"uid": "uid-1", "email": "ann@example.com", "firstName": "Ann", "lastName": "Lee"}

	p, err := f.svc.Update(context.Background(), ProfileUpdate{PhoneNumber: strPtr(" 555-0100 "), ProfilePic: strPtr("cGlj")})
	require.NoError(t, err)
	assert.Equal(t, "Ann", p.FirstName)
	assert.Equal(t, "555-0100", p.PhoneNumber)
	assert.Equal(t, "cGlj", p.ProfilePic)
	assert.Empty(t, f.auth.signedIn)
	assert.Empty(t, f.auth.updates)
}

func TestProfileService_UpdateCreatesMissingDocument(t *testing.T) {
	f := newProfileFixture(t, annSession())

	p, err := f.svc.Update(context.Background(), ProfileUpdate{FirstName: strPtr("Ann"), LastName: strPtr("Lee")})
	require.NoError(t, err)
	assert.Equal(t, "uid-1", p.UID)
	assert.Equal(t, "Lee", p.LastName)
	assert.Equal(t, "2026-05-01T12:00:00Z", f.docs.docs["users/uid-1"]["createdAt"])
}

func TestProfileService_UpdateValidation(t *testing.T) {
	tests := []struct {
		name  string
		req   ProfileUpdate
		field string
	}{
		{"nothing", ProfileUpdate{}, ""},
		{"blank first name", ProfileUpdate{FirstName: strPtr("  ")}, "firstName"},
		{"bad email", ProfileUpdate{Email: strPtr("not-an-email"), CurrentPassword: "secret12"}, "email"},
		{"email without current password", ProfileUpdate{Email: strPtr("new@example.com")}, "currentPassword"},
		{"password without current password", ProfileUpdate{NewPassword: "newsecret1", ConfirmPassword: "newsecret1"}, "currentPassword"},
		{"short password", ProfileUpdate{CurrentPassword: "secret12", NewPassword: "short", ConfirmPassword: "short"}, "newPassword"},
		{"mismatched password", ProfileUpdate{CurrentPassword: "secret12", NewPassword: "newsecret1", ConfirmPassword: "newsecret2"}, "confirmPassword"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProfileFixture(t, annSession())

			_, err := f.svc.Update(context.Background(), tt.req)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
			assert.Empty(t, f.auth.signedIn)
			assert.Empty(t, f.auth.updates)
			assert.Empty(t, f.docs.docs)
		})
	}
}

func TestProfileService_UnchangedEmailNeedsNoPassword(t *testing.T) {
	f := newProfileFixture(t, annSession())

	p, err := f.svc.Update(context.Background(), ProfileUpdate{Email: strPtr(" Ann@Example.com "), FirstName: strPtr("Ann")})
	require.NoError(t, err)
	assert.Equal(t, "Ann", p.FirstName)
	assert.Empty(t, f.auth.updates)
}

func TestProfileService_ChangeEmail(t *testing.T) {
	f := newProfileFixture(t, annSession())
	f.docs.docs["users/uid-1"] = map[string]string{"uid": "uid-1", "email": "ann@example.com", "firstName": "Ann"}
	f.auth.session = models.Session{UserID: "uid-1", Email: "ann@example.com", IDToken: "verified", RefreshToken: "ref-2"}
	f.auth.updated = models.Session{UserID: "uid-1", Email: "new@example.com", IDToken: "rotated", RefreshToken: "ref-3", ExpiresAt: profileClock.Add(time.Hour)}
	events, cancel := f.broker.Subscribe(1)
	defer cancel()

	p, err := f.svc.Update(context.Background(), ProfileUpdate{Email: strPtr("New@Example.com"), CurrentPassword: "secret12"})
	require.NoError(t, err)

	assert.Equal(t, []string{"ann@example.com"}, f.auth.signedIn)
	require.Len(t, f.auth.updates, 1)
	assert.Equal(t, accountUpdate{idToken: "verified", email: "new@example.com"}, f.auth.updates[0])

	sess, ok := f.broker.Current()
	require.True(t, ok)
	assert.Equal(t, "new@example.com", sess.Email)
	assert.Equal(t, "rotated", sess.IDToken)
	assert.Equal(t, "ref-3", sess.RefreshToken)

	email, ok, err := f.records.GetSessionMarker(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new@example.com", email)

	assert.Equal(t, "new@example.com", p.Email)
	assert.Equal(t, "new@example.com", f.docs.docs["users/uid-1"]["email"])
	assert.Equal(t, "rotated", f.docs.tokens[0])

	select {
	case ev := <-events:
		t.Fatalf("email change published %v", ev)
	default:
	}
}

func TestProfileService_ChangePassword(t *testing.T) {
	f := newProfileFixture(t, annSession())
	f.docs.docs["users/uid-1"] = map[string]string{"uid": "uid-1", "email": "ann@example.com"}
	f.auth.session = models.Session{UserID: "uid-1", IDToken: "verified"}
	f.auth.updated = models.Session{UserID: "uid-1", IDToken: "rotated"}
	require.NoError(t, f.records.SetSessionMarker(context.Background(), "ann@example.com"))

	_, err := f.svc.Update(context.Background(), ProfileUpdate{CurrentPassword: "secret12", NewPassword: "newsecret1", ConfirmPassword: "newsecret1"})
	require.NoError(t, err)

	require.Len(t, f.auth.updates, 1)
	assert.Equal(t, accountUpdate{idToken: "verified", password: "newsecret1"}, f.auth.updates[0])

	sess, _ := f.broker.Current()
	assert.Equal(t, "ann@example.com", sess.Email)
	assert.Equal(t, "rotated", sess.IDToken)
	assert.Equal(t, "ref", sess.RefreshToken)

	// a password-only change writes no profile fields
	assert.Equal(t, map[string]string{"uid": "uid-1", "email": "ann@example.com"}, f.docs.docs["users/uid-1"])
	assert.Equal(t, []string{"rotated"}, f.docs.tokens)
}

func TestProfileService_WrongCurrentPassword(t *testing.T) {
	f := newProfileFixture(t, annSession())
	f.auth.err = &client.Error{Service: "auth", Op: "sign-in", StatusCode: 400, Message: "INVALID_PASSWORD"}

	_, err := f.svc.Update(context.Background(), ProfileUpdate{Email: strPtr("new@example.com"), FirstName: strPtr("Ann"), CurrentPassword: "wrong"})
	assert.True(t, client.IsCollaboratorError(err))
	assert.Empty(t, f.auth.updates)
	assert.Empty(t, f.docs.docs)

	sess, _ := f.broker.Current()
	assert.Equal(t, "ann@example.com", sess.Email)
	assert.Equal(t, "tok", sess.IDToken)
}

func TestProfileService_AccountUpdateRejected(t *testing.T) {
	f := newProfileFixture(t, annSession())
	f.auth.session = models.Session{UserID: "uid-1", IDToken: "verified"}
	f.auth.updateErr = &client.Error{Service: "auth", Op: "update-account", StatusCode: 400, Message: "EMAIL_EXISTS"}

	_, err := f.svc.Update(context.Background(), ProfileUpdate{Email: strPtr("taken@example.com"), CurrentPassword: "secret12"})
	assert.True(t, client.IsCollaboratorError(err))

	sess, _ := f.broker.Current()
	assert.Equal(t, "ann@example.com", sess.Email)
	_, ok, err := f.records.GetSessionMarker(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProfileService_RefreshesExpiringToken(t *testing.T) {
	sess := annSession()
	sess.ExpiresAt = profileClock.Add(2 * time.Minute)
	f := newProfileFixture(t, sess)
	f.auth.refreshed = models.Session{UserID: "uid-1", IDToken: "fresh", RefreshToken: "ref-2", ExpiresAt: profileClock.Add(time.Hour)}

	_, err := f.svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ref"}, f.auth.refreshes)
	assert.Equal(t, []string{"fresh"}, f.docs.tokens)

	live, _ := f.broker.Current()
	assert.Equal(t, "fresh", live.IDToken)
	assert.Equal(t, "ref-2", live.RefreshToken)
	assert.Equal(t, profileClock.Add(time.Hour), live.ExpiresAt)

	// the renewed token is good for an hour, so the next call reuses it
	_, err = f.svc.Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, f.auth.refreshes, 1)
}

func TestProfileService_KeepsValidToken(t *testing.T) {
	sess := annSession()
	sess.ExpiresAt = profileClock.Add(30 * time.Minute)
	f := newProfileFixture(t, sess)

	_, err := f.svc.Get(context.Background())
	require.NoError(t, err)
	assert.Empty(t, f.auth.refreshes)
	assert.Equal(t, []string{"tok"}, f.docs.tokens)
}

func TestProfileService_RefreshFailure(t *testing.T) {
	sess := annSession()
	sess.ExpiresAt = profileClock.Add(-time.Minute)
	f := newProfileFixture(t, sess)
	f.auth.refreshErr = &client.Error{Service: "auth", Op: "refresh", StatusCode: 400, Message: "TOKEN_EXPIRED"}

	_, err := f.svc.Update(context.Background(), ProfileUpdate{FirstName: strPtr("Ann")})
	assert.True(t, client.IsCollaboratorError(err))
	assert.Empty(t, f.docs.tokens)
}
