package led

import "sync"

// Sim stands in for a channel without hardware. It keeps the last frame so
// the frame stream and tests can inspect it.
type Sim struct {
	mu    sync.Mutex
	count int
	last  []byte
}

func NewSim() *Sim { return &Sim{} }

func (d *Sim) Write(b []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.count++
	d.last = append(d.last[:0], b...)
	return nil
}

func (d *Sim) Close() error { return nil }

func (d *Sim) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

// Last returns a copy of the most recent frame.
func (d *Sim) Last() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.last...)
}
