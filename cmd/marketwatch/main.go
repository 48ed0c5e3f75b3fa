// Command marketwatch prints the top coins on an interval without the full
// dashboard. Output is styled on a terminal and plain when piped.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"marketdash/api"
	"marketdash/config"
	"marketdash/feed"
	"marketdash/format"
	"marketdash/logger"
	"marketdash/theme"
	"marketdash/ui"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to a YAML config file")
		limit      = flag.Int("limit", 0, "Number of coins to show (default: dashboard ticker limit)")
		interval   = flag.Duration("interval", 0, "Refresh interval (default: dashboard refresh interval)")
		once       = flag.Bool("once", false, "Print one snapshot and exit")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		fmt.Println("marketwatch: top cryptocurrencies in your terminal")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  marketwatch")
		fmt.Println("  marketwatch -limit=10 -interval=1m")
		fmt.Println("  marketwatch -once | grep BTC")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		return
	}

	if err := run(*configPath, *limit, *interval, *once); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, limit int, interval time.Duration, once bool) error {
	cfg, err := config.Load(config.Options{Path: configPath})
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if limit <= 0 {
		limit = cfg.Dashboard.TickerLimit
	}
	if interval <= 0 {
		interval = cfg.Dashboard.RefreshInterval
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer logger.Sync(log)

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, log)
	out := newPrinter(os.Stdout, term.IsTerminal(int(os.Stdout.Fd())))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if once {
		coins, err := client.Crypto.Top(ctx, limit)
		if err != nil {
			return fmt.Errorf("fetching prices: %w", err)
		}
		out.print(feed.Snapshot{Coins: coins, At: time.Now()})
		return nil
	}

	poller := feed.NewPoller(client.Crypto, limit, interval, log)
	snapshots := make(chan feed.Snapshot, 1)
	poller.Subscribe(snapshots)
	defer poller.Unsubscribe(snapshots)

	go poller.Start(ctx)
	defer poller.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap := <-snapshots:
			out.print(snap)
		}
	}
}

// printer writes snapshots as a table, with colour when styled.
type printer struct {
	w      io.Writer
	styled bool
	styles ui.Styles
}

func newPrinter(w io.Writer, styled bool) *printer {
	p := &printer{w: w, styled: styled}
	if styled {
		p.styles = ui.NewStyles(theme.For(theme.DetectTerminal()))
	}
	return p
}

func (p *printer) print(snap feed.Snapshot) {
	stamp := snap.At.Format("15:04:05")
	if snap.Err != nil {
		fmt.Fprintf(p.w, "%s  error: %v\n", stamp, snap.Err)
		return
	}

	if p.styled {
		// Clear the screen and home the cursor so the table redraws in place.
		fmt.Fprint(p.w, "\033[H\033[2J")
		fmt.Fprintln(p.w, p.styles.Title.Render("Top Cryptocurrencies")+"  "+p.styles.Muted.Render("updated "+stamp))
	} else {
		fmt.Fprintf(p.w, "# %s\n", snap.At.UTC().Format(time.RFC3339))
	}

	for i, c := range snap.Coins {
		pct := c.PriceChangePercent24h.Float64()
		change := format.Percent(pct)
		if p.styled {
			change = p.styles.Percent(pct)
		}
		fmt.Fprintf(p.w, "%3d  %-6s %-18s %16s  %s\n",
			i+1, strings.ToUpper(c.Symbol), c.Name, format.Price(c.CurrentPrice.Float64()), change)
	}
}
