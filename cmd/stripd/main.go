package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-stripd/internal/api"
	"github.com/coreman2200/funtimes-stripd/internal/config"
	"github.com/coreman2200/funtimes-stripd/internal/led"
	"github.com/coreman2200/funtimes-stripd/internal/render"
	"github.com/coreman2200/funtimes-stripd/internal/sprite"
	"github.com/coreman2200/funtimes-stripd/internal/state"
	"github.com/coreman2200/funtimes-stripd/internal/strip"
)

func main() {
	// ---- Flags (explicitly set flags win over config.yaml) ----
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		addr       = flag.String("listen", "", "HTTP listen address (overrides config)")
		simOnly    = flag.Bool("sim-only", false, "force simulation (no hardware output)")
		preview    = flag.Bool("preview", false, "draw simulated channels on the terminal")
		logLevel   = flag.String("log-level", "info", "debug | info | warn | error")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	if lvl, err := zerolog.ParseLevel(*logLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("level", *logLevel).Msg("unknown log level; using info")
	}

	// ---- Config ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; using defaults")
		cfg = config.Default()
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			cfg.Listen = *addr
		case "preview":
			cfg.Preview = *preview
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("invalid config")
	}

	// ---- Host drivers (SPI ports register here) ----
	if !*simOnly {
		if _, err := host.Init(); err != nil {
			log.Warn().Err(err).Msg("periph host init failed; SPI channels will fall back to SIM")
		}
	}

	// ---- State ----
	persist := state.FilePersister{Dir: cfg.StateDir}
	store := state.NewStore(
		state.LoadAll(persist, len(cfg.Channels), log.Logger),
		state.WithPersister(persist),
		state.WithLogger(log.Logger),
	)

	// ---- Strips and drivers ----
	names := cfg.Names()
	strips := make([]*strip.Strip, len(cfg.Channels))
	targets := make([]led.Target, len(cfg.Channels))
	for i, ch := range cfg.Channels {
		strips[i] = strip.New(ch.LedCount, ch.LedType)
		targets[i] = led.Target{
			Name:    names[i],
			Device:  ch.SPIDevice,
			Speed:   physic.Frequency(cfg.SPISpeedHz) * physic.Hertz,
			SimOnly: *simOnly,
			Preview: cfg.Preview,
			Source:  strips[i],
		}
	}
	channels := make([]render.Channel, len(cfg.Channels))
	for i, d := range led.OpenAll(targets, log.Logger) {
		channels[i] = render.Channel{Strip: strips[i], Driver: d}
	}

	field := sprite.NewField(cfg.Rand.Count, cfg.Rand.Falloff, cfg.Rand.MaxSpeed, sprite.DefaultRand)
	loop := render.NewLoop(store, channels, field, render.Options{
		Brightness:  cfg.Brightness,
		Tick:        cfg.Tick(),
		ScrollSpeed: cfg.Patterns.ScrollSpeed,
		Log:         log.Logger,
	})

	// ---- HTTP routes ----
	srv := &http.Server{
		Addr: cfg.Listen,
		Handler: api.New(store, api.Options{
			Patterns:  cfg.Patterns.Names,
			Devices:   names,
			Frames:    loop.Frames,
			StaticDir: cfg.StaticDir,
			Log:       log.Logger,
		}).Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ---- Run render loop & server ----
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		loop.Run(ctx)
	}()
	go func() {
		log.Info().Str("addr", cfg.Listen).Int("channels", len(channels)).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	// ---- Graceful shutdown ----
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	// drivers belong to the loop; close them only once it has stopped
	wg.Wait()
	for i, ch := range channels {
		if err := ch.Driver.Close(); err != nil {
			log.Debug().Err(err).Str("channel", names[i]).Msg("close driver")
		}
	}
}
