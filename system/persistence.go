package system

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/milk9111/soundtrack/savedata"
	"github.com/milk9111/soundtrack/soundtrack"
)

const storeTimeout = 5 * time.Second

// Persistable is a channel that can write itself into a save container and
// restore from one.
type Persistable interface {
	Save(data soundtrack.SaveData)
	Load(data soundtrack.SaveData)
}

type PersistenceMode int

const (
	PersistenceSave PersistenceMode = iota
	PersistenceLoad
)

func (m PersistenceMode) String() string {
	if m == PersistenceLoad {
		return "load"
	}
	return "save"
}

type persistenceRequest struct {
	mode PersistenceMode
	slot string
}

// Persistence saves and restores every registered channel through a slot
// store. Requests made with RequestSave and RequestLoad are applied on the
// next Update so they land between ticks.
type Persistence struct {
	store    savedata.Store
	channels []Persistable
	pending  []persistenceRequest
	log      *zap.Logger

	// OnError receives failures of queued requests. Errors are logged
	// either way.
	OnError func(mode PersistenceMode, slot string, err error)
}

func NewPersistence(store savedata.Store, logger *zap.Logger, channels ...Persistable) *Persistence {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Persistence{store: store, channels: channels, log: logger}
}

// Snapshot writes every channel into a fresh container.
func (p *Persistence) Snapshot() *savedata.Data {
	data := savedata.New()
	for _, ch := range p.channels {
		ch.Save(data)
	}
	return data
}

// Restore loads every channel from data.
func (p *Persistence) Restore(data *savedata.Data) {
	if data == nil {
		return
	}
	for _, ch := range p.channels {
		ch.Load(data)
	}
}

func (p *Persistence) Save(ctx context.Context, slot string) error {
	if p.store == nil {
		return fmt.Errorf("persistence: no store configured")
	}
	data := p.Snapshot()
	if err := p.store.Save(ctx, slot, data); err != nil {
		return err
	}
	p.log.Info("persistence: saved", zap.String("slot", slot), zap.Int("keys", data.Len()))
	return nil
}

func (p *Persistence) Load(ctx context.Context, slot string) error {
	if p.store == nil {
		return fmt.Errorf("persistence: no store configured")
	}
	data, err := p.store.Load(ctx, slot)
	if err != nil {
		return err
	}
	p.Restore(data)
	p.log.Info("persistence: loaded", zap.String("slot", slot), zap.Int("keys", data.Len()))
	return nil
}

// Export encodes a snapshot as text, suitable for the clipboard.
func (p *Persistence) Export() (string, error) {
	b, err := savedata.Marshal(p.Snapshot())
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Import restores every channel from an Export string.
func (p *Persistence) Import(s string) error {
	data, err := savedata.Unmarshal([]byte(s))
	if err != nil {
		return err
	}
	if data.Len() == 0 {
		return fmt.Errorf("persistence: import: no save fields")
	}
	p.Restore(data)
	return nil
}

func (p *Persistence) RequestSave(slot string) {
	p.pending = append(p.pending, persistenceRequest{mode: PersistenceSave, slot: slot})
}

func (p *Persistence) RequestLoad(slot string) {
	p.pending = append(p.pending, persistenceRequest{mode: PersistenceLoad, slot: slot})
}

func (p *Persistence) Pending() int {
	return len(p.pending)
}

func (p *Persistence) Update(float64) {
	if len(p.pending) == 0 {
		return
	}
	reqs := p.pending
	p.pending = nil
	for _, req := range reqs {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		var err error
		switch req.mode {
		case PersistenceSave:
			err = p.Save(ctx, req.slot)
		case PersistenceLoad:
			err = p.Load(ctx, req.slot)
		}
		cancel()
		if err == nil {
			continue
		}
		p.log.Warn("persistence: request failed", zap.String("slot", req.slot), zap.Stringer("mode", req.mode), zap.Error(err))
		if p.OnError != nil {
			p.OnError(req.mode, req.slot, err)
		}
	}
}
