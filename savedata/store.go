package savedata

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/milk9111/soundtrack/config"
)

var ErrSlotNotFound = errors.New("savedata: slot not found")

// Store persists Data under named slots.
type Store interface {
	Save(ctx context.Context, slot string, data *Data) error
	Load(ctx context.Context, slot string) (*Data, error)
	Delete(ctx context.Context, slot string) error
	Close() error
}

// Open builds the store selected by cfg.Save.Store.
func Open(cfg *config.Config, logger *zap.Logger) (Store, error) {
	if cfg == nil {
		return nil, errors.New("savedata: nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Save.Store {
	case config.StoreFile:
		return NewFileStore(cfg.Path(cfg.Save.Dir), logger), nil
	case config.StoreRedis:
		return NewRedisStore(cfg.Save.Redis, logger), nil
	default:
		return nil, fmt.Errorf("savedata: unknown store %q", cfg.Save.Store)
	}
}

func validSlot(slot string) error {
	if slot == "" {
		return errors.New("savedata: empty slot name")
	}
	for _, r := range slot {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("savedata: invalid slot name %q", slot)
		}
	}
	return nil
}
