// Command dashtable browses a paginated, filterable orders table in the
// terminal.
//
// Local mode (default): reads orders from a SQLite database in the data
// directory, seeding demo rows on first run.
//
// Remote mode (--remote URL): reads from another dashtable running with
// --serve, over its JSON list endpoint.
//
// Server mode (--serve): exposes the local database as /api/orders.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/abelbrown/dashtable/internal/api"
	"github.com/abelbrown/dashtable/internal/config"
	"github.com/abelbrown/dashtable/internal/debounce"
	"github.com/abelbrown/dashtable/internal/fetch"
	"github.com/abelbrown/dashtable/internal/logging"
	"github.com/abelbrown/dashtable/internal/params"
	"github.com/abelbrown/dashtable/internal/store"
	"github.com/abelbrown/dashtable/internal/ui"
	"github.com/abelbrown/dashtable/internal/ui/table"
)

const fetchTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dashtable: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		dbPath   string
		seed     int
		serve    bool
		remote   string
		pageSize int
		debug    bool
	)
	flagSet := pflag.NewFlagSet("dashtable", pflag.ContinueOnError)
	flagSet.StringVar(&dbPath, "db", "", "SQLite database path (default: <data dir>/dashtable.db)")
	flagSet.IntVar(&seed, "seed", 120, "demo orders to insert into an empty database")
	flagSet.BoolVar(&serve, "serve", false, "serve the database over HTTP instead of starting the TUI")
	flagSet.StringVar(&remote, "remote", "", "base URL of a dashtable --serve instance")
	flagSet.IntVar(&pageSize, "page-size", 0, "initial rows per page (10, 25 or 50)")
	flagSet.BoolVar(&debug, "debug", false, "log at debug level")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	dataDir := config.DataDir()
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	cfg, err := config.Load(dataDir)
	if err != nil {
		return err
	}
	if flagSet.Changed("remote") {
		cfg.Remote = remote
	}
	if flagSet.Changed("page-size") {
		cfg.Table.PageSize = pageSize
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logging.Init(dataDir, debug); err != nil {
		return err
	}
	defer logging.Close()

	if serve && cfg.Remote != "" {
		return errors.New("--serve and --remote are mutually exclusive")
	}

	var src fetch.Source
	if cfg.Remote != "" {
		src = fetch.NewHTTPSource(cfg.Remote, "orders", fetchTimeout)
		logging.Info("using remote source", "url", cfg.Remote)
	} else {
		if dbPath == "" {
			dbPath = filepath.Join(dataDir, "dashtable.db")
		}
		st, err := openStore(dbPath, seed)
		if err != nil {
			return err
		}
		defer st.Close()
		src = st

		if serve {
			return serveHTTP(cfg.Server.Addr, st)
		}
	}

	return runTUI(cfg, src)
}

func openStore(path string, seed int) (*store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	n, err := st.Count()
	if err != nil {
		st.Close()
		return nil, err
	}
	if n == 0 && seed > 0 {
		inserted, err := st.SaveOrders(store.SeedOrders(seed, time.Now().Add(-time.Duration(seed)*time.Hour)))
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("seed database: %w", err)
		}
		logging.Info("seeded database", "path", path, "orders", inserted)
	}
	return st, nil
}

func serveHTTP(addr string, st *store.Store) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(map[string]fetch.Source{"orders": st}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logging.Info("serving", "addr", addr)
	fmt.Fprintf(os.Stderr, "dashtable: serving on http://%s/api/orders\n", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logging.Info("server stopped")
	return nil
}

func runTUI(cfg *config.Config, src fetch.Source) error {
	loop := debounce.NewLoop()
	initial := params.Default()
	initial.PageSize = cfg.Table.PageSize

	pages := ui.OrderPages(src, table.Options{
		Initial:    initial,
		Scheduler:  loop,
		Debounce:   cfg.Table.Debounce(),
		StaleAfter: cfg.Table.StaleAfter(),
		Timeout:    fetchTimeout,
	})
	program := tea.NewProgram(ui.NewApp(pages, cfg.UI.SidebarCollapsed), tea.WithAltScreen())
	loop.Bind(program.Send)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}
