package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/marketbay/cartengine/internal/cart"
	"github.com/marketbay/cartengine/internal/config"
	"github.com/marketbay/cartengine/internal/notify"
	"github.com/marketbay/cartengine/internal/persist"
)

// session bundles a live store with the resources behind it.
type session struct {
	store *cart.Store
	msgs  *notify.Messages
	close func() error
}

// openSession loads config, opens the configured snapshot backend and
// constructs a store on top of it. The caller must invoke close when
// done (it shuts down sqlite/redis handles; a no-op for file backends).
func openSession(opts *RootOptions) (*session, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "load config", err)
		}
		cfg = loaded
	}

	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	persister, closeFn, err := openBackend(cfg.Storage)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open storage backend", err)
	}

	msgs := notify.NewMessages(cfg.LanguageTag(), cfg.CurrencyUnit())
	store := cart.New(persister,
		cart.WithSink(notify.NewSlogSink(logger)),
		cart.WithLogger(logger),
		cart.WithMessages(msgs),
	)

	return &session{store: store, msgs: msgs, close: closeFn}, nil
}

// openBackend builds the persister selected by the storage config.
func openBackend(storage config.Storage) (cart.Persister, func() error, error) {
	nop := func() error { return nil }

	switch storage.Backend {
	case config.BackendFile:
		return persist.NewFile(storage.Path), nop, nil

	case config.BackendSQLite:
		slot, err := persist.OpenSQLite(storage.Path, storage.Slot)
		if err != nil {
			return nil, nil, err
		}
		return slot, slot.Close, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr: storage.Redis.Addr,
			DB:   storage.Redis.DB,
		})
		return persist.NewRedis(client, storage.Redis.Key), client.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", storage.Backend)
	}
}
