package led

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
)

// DefaultSpeed is the SPI clock used when the configuration leaves it unset.
const DefaultSpeed = 8 * physic.MegaHertz

var ErrClosed = errors.New("led: driver closed")

// SPI writes buffers verbatim to a periph SPI port in mode 0, 8 bits per word.
type SPI struct {
	mu    sync.Mutex
	port  spi.PortCloser
	conn  spi.Conn
	chunk int
}

// OpenSPI opens a port by name, e.g. "/dev/spidev0.0" or "SPI0.0".
// host.Init must have run first.
func OpenSPI(dev string, speed physic.Frequency) (*SPI, error) {
	p, err := spireg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", dev, err)
	}
	s, err := NewSPI(p, speed)
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("spi %q: %w", dev, err)
	}
	return s, nil
}

// NewSPI connects an already opened port.
func NewSPI(p spi.PortCloser, speed physic.Frequency) (*SPI, error) {
	if speed <= 0 {
		speed = DefaultSpeed
	}
	c, err := p.Connect(speed, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	s := &SPI{port: p, conn: c}
	if l, ok := c.(conn.Limits); ok {
		s.chunk = l.MaxTxSize()
	}
	return s, nil
}

func (s *SPI) String() string {
	return "spi{" + s.port.String() + "}"
}

// Write sends b, split into transfers no larger than the port allows.
func (s *SPI) Write(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return ErrClosed
	}
	for len(b) > 0 {
		n := len(b)
		if s.chunk > 0 && n > s.chunk {
			n = s.chunk
		}
		if err := s.conn.Tx(b[:n], nil); err != nil {
			return fmt.Errorf("spi write: %w", err)
		}
		b = b[n:]
	}
	return nil
}

func (s *SPI) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	s.conn = nil
	return s.port.Close()
}
