package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

var (
	ErrChannelRange   = errors.New("state: channel index out of range")
	ErrUpdatePanicked = errors.New("state: update panicked")
)

// Store is the ordered, mutex guarded set of channel states. Records are
// replaced whole under the lock and handed out as deep copies, so a reader
// never sees half of an update.
type Store struct {
	mu       sync.Mutex
	channels []Channel

	// saveMu orders persistence without holding mu across file I/O.
	saveMu  sync.Mutex
	persist Persister
	log     zerolog.Logger

	subMu sync.Mutex
	subs  map[chan struct{}]struct{}
}

type Option func(*Store)

func WithPersister(p Persister) Option {
	return func(s *Store) { s.persist = p }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

func NewStore(initial []Channel, opts ...Option) *Store {
	s := &Store{
		channels: make([]Channel, len(initial)),
		log:      zerolog.Nop(),
		subs:     map[chan struct{}]struct{}{},
	}
	for i, c := range initial {
		s.channels[i] = c.clone()
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.channels)
}

func (s *Store) Get(i int) (Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.channels) {
		return Channel{}, ErrChannelRange
	}
	return s.channels[i].clone(), nil
}

// Snapshot copies every channel. The render loop calls it once per tick and
// does all of its work on the copy.
func (s *Store) Snapshot() []Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Channel, len(s.channels))
	for i, c := range s.channels {
		out[i] = c.clone()
	}
	return out
}

// Update merges a partial update into channel i and persists the result.
func (s *Store) Update(i int, update Channel) (Channel, error) {
	return s.Modify(i, func(c Channel) Channel { return c.Merge(update) })
}

// Modify replaces channel i with fn applied to a copy of it. If fn panics the
// lock is released, the stored record is left as it was and
// ErrUpdatePanicked is returned.
func (s *Store) Modify(i int, fn func(Channel) Channel) (Channel, error) {
	next, err := s.swap(i, fn)
	if err != nil {
		return Channel{}, err
	}
	s.save(i)
	s.notify()
	return next, nil
}

func (s *Store) swap(i int, fn func(Channel) Channel) (next Channel, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Int("channel", i).Interface("panic", r).Msg("state update panicked; keeping previous record")
			next, err = Channel{}, fmt.Errorf("%w: %v", ErrUpdatePanicked, r)
		}
	}()

	if i < 0 || i >= len(s.channels) {
		return Channel{}, ErrChannelRange
	}
	next = fn(s.channels[i].clone()).clone()
	s.channels[i] = next
	return next.clone(), nil
}

// save writes the latest record for channel i. Reading it again under saveMu
// means the last writer to persist always stores the newest state.
func (s *Store) save(i int) {
	if s.persist == nil {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Int("channel", i).Interface("panic", r).Msg("state persister panicked")
		}
	}()

	c, err := s.Get(i)
	if err != nil {
		return
	}
	if err := s.persist.Save(i, c); err != nil {
		s.log.Warn().Err(err).Int("channel", i).Msg("persist state")
	}
}

// Subscribe returns a channel that receives a tick after every successful
// update. Ticks coalesce; call cancel to stop receiving.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, ch)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
