package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-stripd/internal/color"
)

type memPersister struct {
	mu    sync.Mutex
	saved map[int]Channel
	panic bool
}

func (m *memPersister) Load(i int) (Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved[i], nil
}

func (m *memPersister) Save(i int, c Channel) error {
	if m.panic {
		panic("disk on fire")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = map[int]Channel{}
	}
	m.saved[i] = c
	return nil
}

func newStore(n int, opts ...Option) *Store {
	initial := make([]Channel, n)
	for i := range initial {
		initial[i] = Default()
	}
	return NewStore(initial, opts...)
}

func TestStoreGetRange(t *testing.T) {
	s := newStore(2)
	assert.Equal(t, 2, s.Len())

	_, err := s.Get(2)
	assert.ErrorIs(t, err, ErrChannelRange)
	_, err = s.Get(-1)
	assert.ErrorIs(t, err, ErrChannelRange)
	_, err = s.Update(5, Channel{})
	assert.ErrorIs(t, err, ErrChannelRange)
}

func TestStoreUpdateMergesAndPersists(t *testing.T) {
	p := &memPersister{}
	s := newStore(2, WithPersister(p))

	red := color.NewHSV(0, 1, 1)
	got, err := s.Update(1, Channel{Color1: &red})
	require.NoError(t, err)
	assert.Equal(t, red, got.Colors()[0])
	assert.Equal(t, PatternOff, got.Mode())

	got, err = s.Update(1, Channel{Pattern: PatternPtr(PatternSprites)})
	require.NoError(t, err)
	assert.Equal(t, red, got.Colors()[0], "earlier fields survive a partial update")
	assert.Equal(t, PatternSprites, got.Mode())

	assert.Equal(t, got, p.saved[1])
	_, touched := p.saved[0]
	assert.False(t, touched)
}

func TestStoreHandsOutCopies(t *testing.T) {
	s := newStore(1)
	c, err := s.Get(0)
	require.NoError(t, err)
	c.Color1.SetV(1)
	*c.Pattern = PatternSine

	again, _ := s.Get(0)
	assert.Equal(t, Default(), again)

	snap := s.Snapshot()
	snap[0].Color2.SetV(1)
	again, _ = s.Get(0)
	assert.Equal(t, Default(), again)
}

func TestStoreSurvivesPanickingUpdate(t *testing.T) {
	s := newStore(1)
	_, err := s.Modify(0, func(c Channel) Channel {
		c.Color1.SetV(1)
		panic("half way through")
	})
	assert.ErrorIs(t, err, ErrUpdatePanicked)

	done := make(chan struct{})
	go func() {
		defer close(done)
		got, err := s.Get(0)
		assert.NoError(t, err)
		assert.Equal(t, Default(), got, "previous record kept whole")
		_, err = s.Update(0, Channel{Pattern: PatternPtr(PatternSine)})
		assert.NoError(t, err)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("store stayed locked after a panic")
	}
}

func TestStoreSurvivesPanickingPersister(t *testing.T) {
	s := newStore(1, WithPersister(&memPersister{panic: true}))
	got, err := s.Update(0, Channel{Pattern: PatternPtr(PatternGradient)})
	require.NoError(t, err)
	assert.Equal(t, PatternGradient, got.Mode())

	again, err := s.Get(0)
	require.NoError(t, err)
	assert.Equal(t, PatternGradient, again.Mode())
}

func TestStoreConcurrentRecordsStayWhole(t *testing.T) {
	p := &memPersister{}
	s := newStore(3, WithPersister(p))

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				// every writer stores a self-consistent record: all three
				// colors carry the same hue, and the pattern encodes it
				h := float32(w) / 8
				c := color.NewHSV(h, 1, 1)
				_, err := s.Update(i%3, Channel{Color1: &c, Color2: &c, Color3: &c, Pattern: PatternPtr(Pattern(w))})
				assert.NoError(t, err)
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				for _, c := range s.Snapshot() {
					cols := c.Colors()
					if c.Mode() == PatternOff && cols[0].V() == 0 {
						continue // still default
					}
					assert.Equal(t, cols[0], cols[1])
					assert.Equal(t, cols[1], cols[2])
					assert.Equal(t, float32(c.Mode())/8, cols[0].H())
				}
			}
		}()
	}
	wg.Wait()

	// the persisted record is the latest stored one
	for i := 0; i < 3; i++ {
		got, _ := s.Get(i)
		assert.Equal(t, got, p.saved[i])
	}
}

func TestSubscribe(t *testing.T) {
	s := newStore(1)
	ch, cancel := s.Subscribe()
	defer cancel()

	_, err := s.Update(0, Channel{Pattern: PatternPtr(PatternSine)})
	require.NoError(t, err)
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no notification")
	}

	cancel()
	cancel()
	_, err = s.Update(0, Channel{Pattern: PatternPtr(PatternOff)})
	require.NoError(t, err)
	select {
	case <-ch:
		t.Fatal("notified after cancel")
	default:
	}
}
