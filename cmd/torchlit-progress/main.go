// Command torchlit-progress is a live training dashboard. It reads
// NDJSON events from stdin (or streams them from a torchlit broker
// with --url) and renders progress on the controlling terminal.
// Because stdin carries data, keyboard input comes from /dev/tty.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ChanLumerico/torchlit/internal/app"
	"github.com/ChanLumerico/torchlit/internal/config"
	"github.com/ChanLumerico/torchlit/internal/ingest"
	"github.com/ChanLumerico/torchlit/internal/session"
	"github.com/ChanLumerico/torchlit/internal/sysstats"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	brokerURL := flag.String("url", "", "WebSocket URL of a torchlit broker stream; when set, stdin is ignored")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("torchlit-progress", Version)
		return
	}

	cfg, err := config.LoadOrDefault(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: config %s: %v\n", *cfgPath, err)
		os.Exit(1)
	}
	if *brokerURL != "" {
		cfg.Source.BrokerURL = *brokerURL
	}

	// stdin is the data channel, so keys must come from the terminal
	// directly. Without a terminal there is nothing to draw on.
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot open /dev/tty: %v\n", err)
		os.Exit(1)
	}
	defer tty.Close()

	store := session.NewStore(cfg.UI.HistoryWindow)
	m := app.New(store, cfg.UI.Refresh, cfg.UI.GracePeriod)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithInput(tty),
		tea.WithOutput(tty),
	)

	logf := func(kind, message string) {
		p.Send(app.LogMsg{Kind: kind, Message: message})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Source.BrokerURL != "" {
		go ingest.NewBroker(cfg.Source.BrokerURL, store, logf).Run(ctx)
	} else {
		go ingest.Run(os.Stdin, store, logf)
	}
	go sysstats.Run(ctx, cfg.Source.SysInterval, store)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
