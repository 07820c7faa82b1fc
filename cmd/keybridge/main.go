// Command keybridge feeds a terminal or websocket input stream through the
// legacy input translator into a live edit field.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/lixenwraith/keybridge/config"
	"github.com/lixenwraith/keybridge/host"
	"github.com/lixenwraith/keybridge/host/tcellhost"
	"github.com/lixenwraith/keybridge/host/termboxhost"
	"github.com/lixenwraith/keybridge/host/wshost"
	"github.com/lixenwraith/keybridge/logging"
	"github.com/lixenwraith/keybridge/service"
	"github.com/lixenwraith/keybridge/sound"
	"github.com/lixenwraith/keybridge/status"
	"github.com/lixenwraith/keybridge/translator"
	"github.com/lixenwraith/keybridge/widget"
)

// tickRate is the run loop period
const tickRate = 16 * time.Millisecond

var (
	configFlag      = flag.String("config", "keybridge.toml", "Path to the TOML config file")
	backendFlag     = flag.String("backend", "", "Override [input] backend: tcell, termbox, websocket")
	logFlag         = flag.String("log", "", "Log file, overrides [log] file; terminal backends discard logs when neither is set")
	writeConfigFlag = flag.Bool("write-config", false, "Write the effective config to -config and exit")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "keybridge: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	loader := config.NewLoader(*configFlag, nil)
	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	if *backendFlag != "" {
		cfg.Input.Backend = *backendFlag
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if *writeConfigFlag {
		return config.Save(cfg, *configFlag)
	}

	logPath := *logFlag
	if logPath == "" {
		logPath = cfg.Log.File
	}
	logOut, closeLog, err := openLog(logPath, cfg.Input.Backend)
	if err != nil {
		return err
	}
	defer closeLog()

	log, err := logging.New(logOut, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	ring := host.NewRing(cfg.Input.RingSize)
	hub := service.NewHub(log)

	var (
		input  service.InputService
		tcellB *tcellhost.Backend
	)
	switch cfg.Input.Backend {
	case config.BackendTcell:
		tcellB = tcellhost.New(nil, ring, log)
		input = tcellB
	case config.BackendTermbox:
		input = termboxhost.New(ring, log)
	case config.BackendWebSocket:
		input = wshost.NewServer(cfg.WebSocket.Listen, ring, log)
	}
	if err := hub.Register(input); err != nil {
		return err
	}

	bell := sound.NewBell(log)
	if err := hub.Register(bell); err != nil {
		return err
	}

	if err := hub.InitAll(cfg.WebSocket.Listen, !cfg.Sound.Enabled); err != nil {
		return err
	}
	if err := hub.StartAll(); err != nil {
		return err
	}
	defer hub.StopAll()

	// Panic recovery: restore the terminal before printing the trace
	defer func() {
		if r := recover(); r != nil {
			hub.StopAll()
			fmt.Fprintf(os.Stderr, "\r\nkeybridge crashed: %v\r\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
			os.Exit(1)
		}
	}()

	// Signals arrive as host quit events so every exit goes through the translator
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		if _, ok := <-sigs; ok {
			ring.Push(host.Event{Type: host.EventQuit})
		}
	}()

	reg := status.NewRegistry()
	opts := []translator.Option{
		translator.WithRegistry(reg),
		translator.WithLogger(log),
	}
	if warper, ok := input.(host.MouseWarper); ok {
		opts = append(opts, translator.WithWarper(warper))
	}
	tr := translator.New(input, opts...)

	var view *screenView
	if tcellB != nil {
		view = newScreenView(tcellB.Screen(), widget.NewCellMetrics(), reg)
	}

	a := newApp(log, tr, reg, bell, view, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loader.OnChange(a.onConfigChange)
	if err := loader.Watch(ctx); err != nil {
		log.Warn("config hot reload unavailable", "error", err)
	}

	log.Info("keybridge running", "backend", cfg.Input.Backend, "services", hub.Order())
	a.run(tickRate)

	log.Info("keybridge exiting",
		"submitted", len(a.submitted),
		"check_dynamic_resources", tr.Exit().CheckDynamicResources(),
		"metrics", reg.Snapshot())
	return nil
}

// openLog picks the log destination
// Terminal backends own stdout and stderr, so they log only to an explicit file
func openLog(path, backend string) (io.Writer, func(), error) {
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log: %w", err)
		}
		return f, func() { f.Close() }, nil
	}
	if backend == config.BackendWebSocket {
		return os.Stderr, func() {}, nil
	}
	return io.Discard, func() {}, nil
}
