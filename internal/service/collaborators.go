package service

import (
	"context"

	"quickfirstaid/internal/client"
	"quickfirstaid/internal/models"
)

// Authenticator is the auth collaborator.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (models.Session, error)
	SignUp(ctx context.Context, email, password string) (models.Session, error)
	SendPasswordReset(ctx context.Context, email string) error
	UpdateAccount(ctx context.Context, idToken, email, password string) (models.Session, error)
	Refresh(ctx context.Context, refreshToken string) (models.Session, error)
}

// DocumentStore is the remote document collaborator. Documents are flat
// string maps; Get returns client.ErrDocumentNotFound for a missing document.
type DocumentStore interface {
	Get(ctx context.Context, idToken, collection, id string) (map[string]string, error)
	Set(ctx context.Context, idToken, collection, id string, fields map[string]string) error
	Update(ctx context.Context, idToken, collection, id string, partial map[string]string) error
}

// Completer is a vision or chat inference collaborator.
type Completer interface {
	Complete(ctx context.Context, req client.CompletionRequest) (string, error)
}

// Speech converts audio to text and back.
type Speech interface {
	Transcribe(ctx context.Context, audio []byte, filename, language string) (string, error)
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

var (
	_ Authenticator = (*client.AuthClient)(nil)
	_ DocumentStore = (*client.DocumentClient)(nil)
	_ Completer     = (*client.InferenceClient)(nil)
	_ Speech        = (*client.SpeechClient)(nil)
)
