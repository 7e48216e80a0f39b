package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"quickfirstaid/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePublisher struct {
	topic    string
	payloads [][]byte
	err      error
}

func (f *fakePublisher) Publish(ctx context.Context, topic string, qos byte, retained bool, payload []byte) error {
	f.topic = topic
	f.payloads = append(f.payloads, payload)
	return f.err
}

func signedIn(email string) models.SessionEvent {
	return models.SessionEvent{Type: models.SessionSignedIn, UserID: "uid-1", Email: email, At: time.Unix(1700000000, 0).UTC()}
}

func TestBroker_SignedInAndOut(t *testing.T) {
	b := NewBroker(zap.NewNop())
	events, cancel := b.Subscribe(4)
	defer cancel()

	_, ok := b.Current()
	assert.False(t, ok)

	ctx := context.Background()
	b.SignedIn(ctx, models.Session{UserID: "uid-1", Email: "a@b.com"}, signedIn("a@b.com"))

	sess, ok := b.Current()
	require.True(t, ok)
	assert.Equal(t, "uid-1", sess.UserID)
	assert.Equal(t, models.SessionSignedIn, (<-events).Type)

	b.SignedOut(ctx, models.SessionEvent{Type: models.SessionSignedOut})
	_, ok = b.Current()
	assert.False(t, ok)
	assert.Equal(t, models.SessionSignedOut, (<-events).Type)
}

func TestBroker_Replace(t *testing.T) {
	b := NewBroker(zap.NewNop())
	assert.False(t, b.Replace(models.Session{UserID: "uid-1", IDToken: "new"}))

	ctx := context.Background()
	b.SignedIn(ctx, models.Session{UserID: "uid-1", IDToken: "old"}, signedIn("a@b.com"))
	events, cancel := b.Subscribe(1)
	defer cancel()

	assert.False(t, b.Replace(models.Session{UserID: "uid-2", IDToken: "other"}))
	assert.True(t, b.Replace(models.Session{UserID: "uid-1", IDToken: "new"}))

	sess, ok := b.Current()
	require.True(t, ok)
	assert.Equal(t, "new", sess.IDToken)
	select {
	case ev := <-events:
		t.Fatalf("replace published %v", ev)
	default:
	}
}

func TestBroker_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroker(zap.NewNop())
	events, cancel := b.Subscribe(1)
	defer cancel()

	ctx := context.Background()
	b.SignedIn(ctx, models.Session{UserID: "u"}, signedIn("a@b.com"))
	b.SignedOut(ctx, models.SessionEvent{Type: models.SessionSignedOut})

	assert.Equal(t, models.SessionSignedIn, (<-events).Type)
	select {
	case ev := <-events:
		t.Fatalf("expected dropped event, got %v", ev)
	default:
	}
}

func TestBroker_CancelClosesChannel(t *testing.T) {
	b := NewBroker(zap.NewNop())
	events, cancel := b.Subscribe(1)
	cancel()
	cancel()

	_, open := <-events
	assert.False(t, open)

	// publishing after cancel must not panic on a closed channel
	b.SignedOut(context.Background(), models.SessionEvent{Type: models.SessionSignedOut})
}

func TestBroker_SinkFailureIsNotFatal(t *testing.T) {
	good := &fakePublisher{}
	bad := &fakePublisher{err: errors.New("broker down")}
	b := NewBroker(zap.NewNop(), NewMQTTSink(bad, "t/bad", 1), NewMQTTSink(good, "t/good", 1))

	b.SignedIn(context.Background(), models.Session{UserID: "u"}, signedIn("a@b.com"))

	require.Len(t, good.payloads, 1)
	assert.Equal(t, "t/good", good.topic)

	var ev models.SessionEvent
	require.NoError(t, json.Unmarshal(good.payloads[0], &ev))
	assert.Equal(t, "a@b.com", ev.Email)
}

func TestRedisStreamSink(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	sink := NewRedisStreamSink(client, "qfa:session:events", 0)
	assert.Equal(t, "redis-stream:qfa:session:events", sink.Name())

	ctx := context.Background()
	require.NoError(t, sink.Publish(ctx, signedIn("a@b.com")))

	msgs, err := client.XRange(ctx, "qfa:session:events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	var ev models.SessionEvent
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["data"].(string)), &ev))
	assert.Equal(t, models.SessionSignedIn, ev.Type)
	assert.Equal(t, "uid-1", ev.UserID)
}
