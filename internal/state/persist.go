package state

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
)

// Persister loads and saves channel records.
type Persister interface {
	Load(i int) (Channel, error)
	Save(i int, c Channel) error
}

// FilePersister keeps one state.<index> file per channel in Dir.
type FilePersister struct {
	Dir string
}

func (p FilePersister) path(i int) string {
	return filepath.Join(p.Dir, "state."+strconv.Itoa(i))
}

func (p FilePersister) Load(i int) (Channel, error) {
	f, err := os.Open(p.path(i))
	if err != nil {
		return Channel{}, err
	}
	defer f.Close()

	buf := make([]byte, RecordSize)
	if _, err := io.ReadFull(f, buf); err != nil {
		return Channel{}, fmt.Errorf("%s: %w", p.path(i), ErrRecordSize)
	}
	var c Channel
	if err := c.UnmarshalBinary(buf); err != nil {
		return Channel{}, err
	}
	return c, nil
}

// Save writes through a temp file and renames it into place, so a crash
// never leaves a half written record behind.
func (p FilePersister) Save(i int, c Channel) error {
	b, err := c.MarshalBinary()
	if err != nil {
		return err
	}
	dst := p.path(i)
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".state-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// LoadAll loads n channels. Missing or corrupt records come back as Default.
func LoadAll(p Persister, n int, log zerolog.Logger) []Channel {
	out := make([]Channel, n)
	for i := range out {
		c, err := p.Load(i)
		switch {
		case err == nil:
			out[i] = Default().Merge(c)
		case errors.Is(err, fs.ErrNotExist):
			out[i] = Default()
		default:
			log.Warn().Err(err).Int("channel", i).Msg("state record unreadable; using default")
			out[i] = Default()
		}
	}
	return out
}
