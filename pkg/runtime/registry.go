package runtime

import "sync"

// ChannelRegistry is the process-wide owner of channel state. Ids start at 1
// and are never reused; the registry lock covers only structural operations,
// so unrelated channels never contend with each other.
type ChannelRegistry struct {
	mu       sync.RWMutex
	channels map[uint64]*Channel
	nextID   uint64
}

// NewChannelRegistry returns an empty registry.
func NewChannelRegistry() *ChannelRegistry {
	return &ChannelRegistry{
		channels: make(map[uint64]*Channel),
		nextID:   1,
	}
}

// Create constructs a channel and registers it, returning the new id.
// A nil capacity means unbuffered.
func (r *ChannelRegistry) Create(elementType string, capacity *int) uint64 {
	var ch *Channel
	if capacity == nil || *capacity == 0 {
		ch = NewUnbuffered(elementType)
	} else {
		ch = NewBuffered(elementType, *capacity)
	}
	return r.Register(ch)
}

// Register inserts an existing channel and returns its id.
func (r *ChannelRegistry) Register(ch *Channel) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.channels[id] = ch
	return id
}

// Get looks up a channel by id.
func (r *ChannelRegistry) Get(id uint64) (*Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[id]
	return ch, ok
}

// Remove deletes a channel from the registry. The id is not reissued.
func (r *ChannelRegistry) Remove(id uint64) (*Channel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.channels[id]
	if ok {
		delete(r.channels, id)
	}
	return ch, ok
}

// Len returns the number of registered channels.
func (r *ChannelRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}

// IDs returns the ids of every registered channel, in no particular order.
func (r *ChannelRegistry) IDs() []uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]uint64, 0, len(r.channels))
	for id := range r.channels {
		ids = append(ids, id)
	}
	return ids
}

// CloseAll closes every registered channel, ignoring channels that are
// already closed. Used at interpreter shutdown.
func (r *ChannelRegistry) CloseAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ch := range r.channels {
		_ = ch.Close()
	}
}

// LockRegistry is the process-wide owner of lock handles. Ids start at 1 and
// are never reused; locks persist for the registry's lifetime.
type LockRegistry struct {
	mu     sync.RWMutex
	locks  map[uint64]*Lock
	nextID uint64
}

// NewLockRegistry returns an empty registry.
func NewLockRegistry() *LockRegistry {
	return &LockRegistry{
		locks:  make(map[uint64]*Lock),
		nextID: 1,
	}
}

// CreateLock registers a fresh free lock and returns its id.
func (r *LockRegistry) CreateLock() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.locks[id] = NewLock()
	return id
}

// Get looks up a lock by id.
func (r *LockRegistry) Get(id uint64) (*Lock, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.locks[id]
	return l, ok
}

// Remove deletes a lock from the registry.
func (r *LockRegistry) Remove(id uint64) (*Lock, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[id]
	if ok {
		delete(r.locks, id)
	}
	return l, ok
}

// Len returns the number of registered locks.
func (r *LockRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.locks)
}

// Empty reports whether no locks are registered.
func (r *LockRegistry) Empty() bool { return r.Len() == 0 }
