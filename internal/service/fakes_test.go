package service

import (
	"context"
	"sync"
	"testing"

	"quickfirstaid/internal/client"
	"quickfirstaid/internal/models"
	"quickfirstaid/internal/repository"
	"quickfirstaid/internal/store"

	"go.uber.org/zap"
)

func newTestRecords(t *testing.T) *repository.RecordStore {
	t.Helper()
	return repository.NewRecordStore(store.NewMemoryKV(), "test", "device-1", zap.NewNop())
}

type fakeCompleter struct {
	mu      sync.Mutex
	replies []string
	err     error
	reqs    []client.CompletionRequest
}

func (f *fakeCompleter) Complete(ctx context.Context, req client.CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "{}", nil
	}
	out := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return out, nil
}

type accountUpdate struct {
	idToken, email, password string
}

type fakeAuth struct {
	session  models.Session
	err      error
	resets   []string
	signedIn []string

	updated    models.Session
	updateErr  error
	updates    []accountUpdate
	refreshed  models.Session
	refreshErr error
	refreshes  []string
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	f.signedIn = append(f.signedIn, email)
	return f.session, f.err
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password string) (models.Session, error) {
	f.signedIn = append(f.signedIn, email)
	return f.session, f.err
}

func (f *fakeAuth) SendPasswordReset(ctx context.Context, email string) error {
	f.resets = append(f.resets, email)
	return f.err
}

func (f *fakeAuth) UpdateAccount(ctx context.Context, idToken, email, password string) (models.Session, error) {
	f.updates = append(f.updates, accountUpdate{idToken: idToken, email: email, password: password})
	return f.updated, f.updateErr
}

func (f *fakeAuth) Refresh(ctx context.Context, refreshToken string) (models.Session, error) {
	f.refreshes = append(f.refreshes, refreshToken)
	return f.refreshed, f.refreshErr
}

type fakeDocs struct {
	docs      map[string]map[string]string
	setErr    error
	updateErr error
	// tokens is every ID token presented, in call order.
	tokens []string
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{docs: map[string]map[string]string{}}
}

func (f *fakeDocs) Get(ctx context.Context, idToken, collection, id string) (map[string]string, error) {
	f.tokens = append(f.tokens, idToken)
	doc, ok := f.docs[collection+"/"+id]
	if !ok {
		return nil, client.ErrDocumentNotFound
	}
	out := map[string]string{}
	for k, v := range doc {
		out[k] = v
	}
	return out, nil
}

func (f *fakeDocs) Set(ctx context.Context, idToken, collection, id string, fields map[string]string) error {
	f.tokens = append(f.tokens, idToken)
	if f.setErr != nil {
		return f.setErr
	}
	doc := map[string]string{}
	for k, v := range fields {
		doc[k] = v
	}
	f.docs[collection+"/"+id] = doc
	return nil
}

func (f *fakeDocs) Update(ctx context.Context, idToken, collection, id string, partial map[string]string) error {
	f.tokens = append(f.tokens, idToken)
	if f.updateErr != nil {
		return f.updateErr
	}
	doc, ok := f.docs[collection+"/"+id]
	if !ok {
		return &client.Error{Service: "documents", Op: "update", StatusCode: 404, Message: "NOT_FOUND"}
	}
	for k, v := range partial {
		doc[k] = v
	}
	return nil
}

type fakeSpeech struct {
	transcript  string
	audio       []byte
	sttErr      error
	ttsErr      error
	languages   []string
	synthesized []string
}

func (f *fakeSpeech) Transcribe(ctx context.Context, audio []byte, filename, language string) (string, error) {
	f.languages = append(f.languages, language)
	return f.transcript, f.sttErr
}

func (f *fakeSpeech) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f.synthesized = append(f.synthesized, text)
	return f.audio, f.ttsErr
}
