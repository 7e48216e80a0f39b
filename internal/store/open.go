package store

import (
	"context"
	"fmt"

	commoncfg "quickfirstaid/common/config"
	"quickfirstaid/common/database"
	commonredis "quickfirstaid/common/redis"

	"github.com/go-redis/redis/v8"
)

// Backend is an opened KV plus whatever must be closed with it.
type Backend struct {
	KV    KV
	Name  string
	Redis *redis.Client
	close func() error
}

func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenOptions selects and configures a backend.
type OpenOptions struct {
	Backend  string
	Dir      string
	Redis    *commoncfg.RedisConfig
	Database *commoncfg.DatabaseConfig
}

// Open builds the KV named by opts.Backend: "file", "redis", "postgres" or "memory".
func Open(ctx context.Context, opts OpenOptions) (*Backend, error) {
	switch opts.Backend {
	case "", "file":
		kv, err := NewFileKV(opts.Dir)
		if err != nil {
			return nil, err
		}
		return &Backend{KV: kv, Name: "file"}, nil

	case "redis":
		client := commonredis.NewRedisClient(opts.Redis)
		if err := commonredis.Ping(ctx, client); err != nil {
			_ = client.Close()
			return nil, err
		}
		return &Backend{
			KV:    NewRedisKV(client),
			Name:  "redis",
			Redis: client,
			close: func() error { return commonredis.Close(client) },
		}, nil

	case "postgres":
		db, err := database.NewPostgresDB(ctx, opts.Database)
		if err != nil {
			return nil, err
		}
		kv := NewPostgresKV(db)
		if err := kv.EnsureSchema(ctx); err != nil {
			_ = database.Close(db)
			return nil, err
		}
		return &Backend{
			KV:    kv,
			Name:  "postgres",
			close: func() error { return database.Close(db) },
		}, nil

	case "memory":
		return &Backend{KV: NewMemoryKV(), Name: "memory"}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
