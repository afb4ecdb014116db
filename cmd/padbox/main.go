// Package main provides the padbox entry point.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/osa030/padbox/internal/app/filter"
	"github.com/osa030/padbox/internal/app/keymap"
	"github.com/osa030/padbox/internal/app/library"
	"github.com/osa030/padbox/internal/app/notification"
	"github.com/osa030/padbox/internal/app/playback"
	"github.com/osa030/padbox/internal/app/session"
	"github.com/osa030/padbox/internal/infra/audio"
	"github.com/osa030/padbox/internal/infra/config"
	"github.com/osa030/padbox/internal/infra/keypad"
	"github.com/osa030/padbox/internal/infra/lcd"
	"github.com/osa030/padbox/internal/infra/logger"
	"github.com/osa030/padbox/internal/infra/terminal"
)

const defaultConfigPath = "config/padbox.yaml"

var (
	app        = kingpin.New("padbox", "Keypad and LCD controlled audio player")
	configPath = app.Flag("config", "Path to config file").Default(defaultConfigPath).String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// list-filters command
	listFiltersCmd = app.Command("list-filters", "List available filters and exit")

	// probe-display command
	probeDisplayCmd = app.Command("probe-display", "Probe the I2C bus for the display and exit")
)

func init() {
	// start command (default) - no need to store the command
	app.Command("start", "Start the player (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Handle list-filters command
	if command == listFiltersCmd.FullCommand() {
		printFilters()
		return
	}

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
		File:   "",
	}
	// Override with command-line flags if specified
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
		loggerConfig.File = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Load config
	cfg, err := loadConfig(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if command == probeDisplayCmd.FullCommand() {
		if err := probeDisplay(cfg); err != nil {
			printDisplayDiagnostic(err)
			os.Exit(1)
		}
		return
	}

	// Run player (defer ensures shutdown hook is called)
	if err := run(cfg, loggerConfig); err != nil {
		printDisplayDiagnostic(err)
		zlog.Error().Msgf("Player error: %v", err)
		os.Exit(1)
	}
}

// loadConfig loads the config file. A missing file at the default path
// falls back to built-in defaults so the player runs without arguments.
func loadConfig(path string) (*config.Config, error) {
	zlog.Info().Msgf("Loading config from %s", path)
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if path == defaultConfigPath && errors.Is(err, fs.ErrNotExist) {
		zlog.Info().Msgf("Config file %s not found, using built-in defaults", path)
		return config.Default()
	}
	return nil, err
}

// run executes the main player logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config, loggerConfig logger.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bindings, err := cfg.Bindings()
	if err != nil {
		return fmt.Errorf("invalid key bindings: %w", err)
	}

	// Build playlist
	chain, err := filter.NewChainFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("invalid filter config: %w", err)
	}
	pl, err := library.Scan(ctx, library.Options{
		Dir:      cfg.Playlist.Dir,
		Sort:     cfg.Playlist.Sort,
		ReadTags: cfg.ReadTags(),
	}, chain)
	if err != nil {
		return fmt.Errorf("failed to build playlist: %w", err)
	}
	if pl.IsEmpty() {
		zlog.Warn().Msgf("No playable tracks in %s", cfg.Playlist.Dir)
	}

	// Open display
	display, closeDisplay, err := openDisplay(cfg)
	if err != nil {
		return err
	}
	defer closeDisplay()

	// Open audio
	engine := audio.NewEngine(cfg.Audio.SampleRate, cfg.Audio.ResampleQuality)
	defer engine.Close()
	output, err := audio.NewOutput(engine, engine.SampleRate(), time.Duration(cfg.Audio.BufferMs)*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to initialize audio output: %w", err)
	}
	defer output.Close()

	// Notifications
	notifications := notification.NewManager()
	defer notifications.Close()
	notifications.Subscribe(notification.LogSubscriber())
	if len(cfg.Hooks.OnTrackStarted) > 0 {
		notifications.Subscribe(notification.NewHookSubscriber(cfg.Hooks.OnTrackStarted))
	}

	controller := playback.NewController(pl, engine, display, playback.Config{
		Messages: playback.Messages{
			Paused:   cfg.GetMessage("paused"),
			Stopped:  cfg.GetMessage("stopped"),
			NoTracks: cfg.GetMessage("no_tracks"),
		},
		Notifier: notifications,
	})

	// Open input
	input, closeInput, err := openInput(cfg, bindings, loggerConfig)
	if err != nil {
		return err
	}
	defer closeInput()

	sessionMgr := session.NewManager(input, controller, display, session.Config{
		Bindings: bindings,
		SeekStep: cfg.SeekStep(),
		Splash:   cfg.GetMessage("splash"),
	})

	// Execute startup hook if configured
	executeHooks(cfg.Hooks.OnStarted, "on_started")

	exitKey, _ := bindings.KeyFor(keymap.ActionExit)
	zlog.Info().Msgf("Player started: tracks=%d input=%s display=%s exit_key=%s", pl.Len(), cfg.Input.Type, cfg.Display.Type, exitKey)

	err = sessionMgr.Run(ctx)
	switch {
	case err == nil:
		zlog.Info().Msg("Exit key pressed, shutting down...")
	case errors.Is(err, context.Canceled):
		zlog.Info().Msg("Received shutdown signal...")
	default:
		return fmt.Errorf("session error: %w", err)
	}

	zlog.Info().Msg("Player stopped")

	// Execute shutdown hook if configured
	executeHooks(cfg.Hooks.OnStopped, "on_stopped")

	return nil
}

// openDisplay opens the configured display. The returned func releases it.
func openDisplay(cfg *config.Config) (*lcd.Display, func(), error) {
	rows, cols := cfg.Display.Rows, cfg.Display.Cols

	if cfg.Display.Type == "console" {
		d := lcd.NewDisplay(lcd.NewConsole(os.Stdout, rows, cols), rows, cols)
		return d, func() {}, nil
	}

	bus, addr, err := openBus(cfg)
	if err != nil {
		return nil, nil, err
	}

	driver := lcd.NewHD44780(&i2c.Dev{Bus: bus, Addr: addr}, rows, cols, cfg.BacklightOn())
	if err := driver.Init(); err != nil {
		bus.Close()
		return nil, nil, err
	}

	d := lcd.NewDisplay(driver, rows, cols)
	return d, func() {
		if err := d.Clear(); err != nil {
			zlog.Warn().Msgf("Failed to clear display: %v", err)
		}
		bus.Close()
	}, nil
}

// openBus opens the I2C bus and finds the display controller on it.
func openBus(cfg *config.Config) (i2c.BusCloser, uint16, error) {
	if _, err := host.Init(); err != nil {
		return nil, 0, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(cfg.Display.Bus)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open I2C bus %q: %w", cfg.Display.Bus, err)
	}

	addr, err := lcd.Probe(bus, cfg.Display.Addresses)
	if err != nil {
		bus.Close()
		return nil, 0, err
	}
	return bus, addr, nil
}

// openInput opens the configured key input source. The returned func
// releases it.
func openInput(cfg *config.Config, bindings keymap.Bindings, loggerConfig logger.Config) (session.Input, func(), error) {
	if cfg.Input.Type == "terminal" {
		exitKey, _ := bindings.KeyFor(keymap.ActionExit)
		t := terminal.New(os.Stdin, int(os.Stdin.Fd()), exitKey, cfg.PollInterval())
		if err := t.Start(); err != nil {
			return nil, nil, fmt.Errorf("failed to open terminal input: %w", err)
		}
		if t.Raw() {
			// Raw mode disables output post-processing.
			loggerConfig.CRLF = true
			if err := logger.Init(loggerConfig); err != nil {
				zlog.Warn().Msgf("Failed to switch logger to CRLF output: %v", err)
			}
		}
		return t, t.Stop, nil
	}

	settings, err := keypad.DecodeSettings(cfg.Input.Settings)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid keypad settings: %w", err)
	}
	matrix, err := keypad.Open(settings)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open keypad: %w", err)
	}
	return keypad.New(matrix, cfg.Debounce(), cfg.PollInterval()), func() {}, nil
}

// probeDisplay reports the display address without initializing it.
func probeDisplay(cfg *config.Config) error {
	bus, addr, err := openBus(cfg)
	if err != nil {
		return err
	}
	defer bus.Close()

	fmt.Printf("Found display controller on %s at address 0x%02x\n", bus, addr)
	return nil
}

// printDisplayDiagnostic tells the operator how to find the display
// address when probing failed.
func printDisplayDiagnostic(err error) {
	if !errors.Is(err, lcd.ErrDeviceNotFound) {
		return
	}
	fmt.Fprintln(os.Stderr, "No correct I2C address found,")
	fmt.Fprintln(os.Stderr, "Please use command 'i2cdetect -y 1' to check the I2C address!")
	fmt.Fprintln(os.Stderr, "Program Exit.")
}

// printFilters prints available filters.
func printFilters() {
	fmt.Println("Available Filters:")
	for _, name := range filter.RegisteredNames() {
		f := filter.GetRegistered()[name]()
		codes := strings.Join(f.ReturnCodes(), ", ")
		fmt.Printf("  %-30s - %s [codes: %s]\n", f.Name(), f.Description(), codes)
	}
}

// executeHooks runs a list of shell commands.
func executeHooks(hooks []string, stage string) {
	if len(hooks) == 0 {
		return
	}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))

	for _, hook := range hooks {
		zlog.Info().Msgf("Executing hook: %s", hook)
		// Use sh -c to allow shell features like redirection or pipes
		cmd := exec.Command("sh", "-c", hook)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			zlog.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}
