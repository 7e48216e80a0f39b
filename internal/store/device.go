package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrNoDeviceID is returned by LookupDeviceID when no id has been stored yet.
var ErrNoDeviceID = errors.New("no device id stored")

func deviceIDKey(prefix string) string {
	return prefix + ":device_id"
}

// LookupDeviceID resolves the device id without writing anything: override
// wins when set, otherwise the id stored at <prefix>:device_id is returned.
func LookupDeviceID(ctx context.Context, kv KV, prefix, override string) (string, error) {
	if id := strings.TrimSpace(override); id != "" {
		return id, nil
	}
	id, err := kv.Get(ctx, deviceIDKey(prefix))
	if errors.Is(err, ErrMiss) {
		return "", ErrNoDeviceID
	}
	if err != nil {
		return "", fmt.Errorf("read device id: %w", err)
	}
	if id = strings.TrimSpace(id); id == "" {
		return "", ErrNoDeviceID
	}
	return id, nil
}

// DeviceID resolves the id that scopes every slot of this installation like
// LookupDeviceID, generating and persisting a new UUID on first run.
func DeviceID(ctx context.Context, kv KV, prefix, override string) (string, error) {
	id, err := LookupDeviceID(ctx, kv, prefix, override)
	if !errors.Is(err, ErrNoDeviceID) {
		return id, err
	}

	id = uuid.NewString()
	if err := kv.Set(ctx, deviceIDKey(prefix), id); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	return id, nil
}
