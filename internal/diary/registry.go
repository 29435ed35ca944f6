package diary

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/fdg312/calorie-diary/internal/datekey"
	"github.com/fdg312/calorie-diary/internal/userctx"
)

// Backend persists one diary blob per owner.
type Backend interface {
	LoadDiary(ctx context.Context, ownerID string) ([]byte, error)
	SaveDiary(ctx context.Context, ownerID string, data []byte) error
}

type ownerSlot struct {
	backend Backend
	owner   string
}

func (o ownerSlot) Load(ctx context.Context) ([]byte, error) {
	return o.backend.LoadDiary(ctx, o.owner)
}

func (o ownerSlot) Save(ctx context.Context, data []byte) error {
	return o.backend.SaveDiary(ctx, o.owner, data)
}

// SlotFor adapts a backend to the slot of one owner.
func SlotFor(backend Backend, ownerID string) Slot {
	return ownerSlot{backend: backend, owner: ownerID}
}

const (
	defaultMaxOpen     = 1024
	defaultReloadAfter = time.Minute
)

type ownedStore struct {
	mu       sync.Mutex
	store    *Store
	lastUsed time.Time
	refs     int // guarded by Registry.mu
}

// Registry keeps open Stores per owner and runs every operation on a store
// under that owner's lock. A store idle for longer than reloadAfter is read
// again from the backend, so edits made by another writer become visible.
// Writers still race on a last-write-wins basis.
type Registry struct {
	backend Backend
	policy  Policy
	clock   datekey.Clock
	logger  Logger

	maxOpen     int
	reloadAfter time.Duration

	mu     sync.Mutex
	stores map[string]*ownedStore
}

func NewRegistry(backend Backend, policy Policy, clock datekey.Clock, logger Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{
		backend:     backend,
		policy:      policy,
		clock:       clock,
		logger:      logger,
		maxOpen:     defaultMaxOpen,
		reloadAfter: defaultReloadAfter,
		stores:      make(map[string]*ownedStore),
	}
}

func (r *Registry) Policy() Policy {
	return r.policy
}

// With runs fn with exclusive access to the owner's store, opening it on
// first use. When the backend cannot be read nothing is cached and the
// error (wrapping ErrDiaryUnavailable) is returned; the next call retries.
func (r *Registry) With(ctx context.Context, ownerID string, fn func(*Store) error) error {
	owned := r.acquire(ownerID)
	defer r.release(owned)

	owned.mu.Lock()
	defer owned.mu.Unlock()

	now := r.clock.Time()
	if owned.store == nil || now.Sub(owned.lastUsed) > r.reloadAfter {
		store, err := Load(ctx, SlotFor(r.backend, ownerID), r.policy,
			WithLogger(r.logger),
			WithNow(r.clock.Time),
		)
		if err != nil {
			owned.store = nil
			r.logger.Printf("WARN diary: owner=%s: %v", ownerID, err)
			return err
		}
		owned.store = store
	}
	owned.lastUsed = now
	return fn(owned.store)
}

// acquire returns the owner's slot, pinned until release. When the cache is
// full every unpinned store is dropped first; their state is already
// persisted.
func (r *Registry) acquire(ownerID string) *ownedStore {
	r.mu.Lock()
	defer r.mu.Unlock()

	owned, ok := r.stores[ownerID]
	if !ok {
		if len(r.stores) >= r.maxOpen {
			for id, o := range r.stores {
				if o.refs == 0 {
					delete(r.stores, id)
				}
			}
		}
		owned = &ownedStore{}
		r.stores[ownerID] = owned
	}
	owned.refs++
	return owned
}

func (r *Registry) release(owned *ownedStore) {
	r.mu.Lock()
	owned.refs--
	r.mu.Unlock()
}

// Now is the current time in the request's location.
func (r *Registry) Now(ctx context.Context) time.Time {
	return r.clock.In(userctx.Location(ctx)).Time()
}

// Today is the current day key in the request's location.
func (r *Registry) Today(ctx context.Context) string {
	return datekey.Today(r.Now(ctx))
}
