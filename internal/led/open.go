package led

import (
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/physic"
)

// Target describes where one channel's frames should go.
type Target struct {
	Name    string
	Device  string
	Speed   physic.Frequency
	SimOnly bool
	Preview bool
	Source  Imager
}

// Open picks the driver for a channel: SPI when a device is configured and
// opens, otherwise a console preview or a plain simulation sink.
func Open(t Target, log zerolog.Logger) Driver {
	lg := log.With().Str("channel", t.Name).Logger()
	if t.Device != "" && !t.SimOnly {
		d, err := OpenSPI(t.Device, t.Speed)
		if err == nil {
			lg.Info().Str("dev", t.Device).Str("speed", t.Speed.String()).Msg("spi driver ready")
			return d
		}
		lg.Warn().Err(err).Str("dev", t.Device).Msg("SPI init failed; falling back to SIM")
	}
	if t.Preview && t.Source != nil {
		lg.Info().Msg("console preview driver")
		return NewPreview(t.Source, 100, 100*time.Millisecond)
	}
	lg.Info().Msg("simulation driver")
	return NewSim()
}

// OpenAll opens a driver per target. The terminal has room for one preview,
// so only the first channel that ends up without hardware gets it; the rest
// run as plain simulation.
func OpenAll(targets []Target, log zerolog.Logger) []Driver {
	out := make([]Driver, len(targets))
	previewing := false
	for i, t := range targets {
		if previewing && t.Preview {
			t.Preview = false
			log.Info().Str("channel", t.Name).Msg("preview already shown for another channel")
		}
		out[i] = Open(t, log)
		if _, ok := out[i].(*Preview); ok {
			previewing = true
		}
	}
	return out
}
