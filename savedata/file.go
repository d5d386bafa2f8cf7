package savedata

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// FileStore keeps one yaml document per slot at <dir>/<slot>.yaml.
type FileStore struct {
	dir string
	log *zap.Logger
}

func NewFileStore(dir string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{dir: dir, log: logger.With(zap.String("store", "file"))}
}

func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(slot string) string {
	return filepath.Join(s.dir, slot+".yaml")
}

func (s *FileStore) Save(ctx context.Context, slot string, data *Data) error {
	if err := validSlot(slot); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	out, err := Marshal(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("savedata: create %q: %w", s.dir, err)
	}

	// A slot is replaced by renaming a fully written temp file over it.
	tmp, err := os.CreateTemp(s.dir, slot+".*.tmp")
	if err != nil {
		return fmt.Errorf("savedata: save slot %q: %w", slot, err)
	}
	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("savedata: save slot %q: %w", slot, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("savedata: save slot %q: %w", slot, err)
	}
	if err := os.Rename(tmp.Name(), s.path(slot)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("savedata: save slot %q: %w", slot, err)
	}

	s.log.Debug("savedata: saved slot", zap.String("slot", slot), zap.Int("keys", data.Len()))
	return nil
}

func (s *FileStore) Load(ctx context.Context, slot string) (*Data, error) {
	if err := validSlot(slot); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrSlotNotFound, slot)
	}
	if err != nil {
		return nil, fmt.Errorf("savedata: load slot %q: %w", slot, err)
	}

	data, err := Unmarshal(raw)
	if err != nil {
		return nil, fmt.Errorf("savedata: load slot %q: %w", slot, err)
	}
	return data, nil
}

func (s *FileStore) Delete(ctx context.Context, slot string) error {
	if err := validSlot(slot); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(s.path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %q", ErrSlotNotFound, slot)
	}
	if err != nil {
		return fmt.Errorf("savedata: delete slot %q: %w", slot, err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
