package cli

import (
	"bufio"
	"context"
	"log"
	"log/slog"
	"os"
	"sync"
	"time"

	"storeadmin/internal/client"
	"storeadmin/internal/config"
	"storeadmin/internal/logging"
	"storeadmin/internal/services"
	"storeadmin/internal/session"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config          *config.Config
	repos           *client.Repositories
	session         *session.Store
	authService     services.AuthService
	productService  services.ProductService
	categoryService services.CategoryService
	reader          *bufio.Reader

	// Mode is written by the connectivity watcher goroutine and read by
	// the REPL prompt; both go through modeMu.
	modeMu sync.RWMutex
	Mode   Mode

	// pendingRoute remembers where a guarded navigation wanted to go
	// before it was bounced to login.
	pendingRoute string
	page         int
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	repos, err := client.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient, err := client.NewHTTPClient(c.ServerBaseURL, c.RequestTimeout, repos.Credentials, logger)
	if err != nil {
		return nil, err
	}

	store := session.NewStore()
	as := services.NewAuthService(apiClient, store, repos.Credentials, logger)
	ps := services.NewProductService(apiClient, as, logger)
	cs := services.NewCategoryService(apiClient, as, logger)

	return &App{
		config:          c,
		repos:           repos,
		session:         store,
		authService:     as,
		productService:  ps,
		categoryService: cs,
		reader:          bufio.NewReader(os.Stdin),
		page:            1,
	}, nil
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.Mode != mode
	if changed {
		a.Mode = mode
	}
	a.modeMu.Unlock()

	if changed {
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) currentMode() Mode {
	a.modeMu.RLock()
	defer a.modeMu.RUnlock()
	return a.Mode
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

// Run restores a previous session silently, starts the connectivity
// watcher, and hands control to the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.authService.Close(ctx)
	defer a.repos.DB.Close()

	a.authService.RestoreSession(ctx)
	if u := a.session.Identity(); u != nil {
		printlnFn("Welcome back,", u.Username)
	}

	go func() {
		a.StartOnlineStatusWatcher(ctx, a.config.HealthCheckInterval)
	}()

	printlnFn("Store admin CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

func (a *App) getStatus() string {
	s := ""
	if u := a.session.Identity(); u != nil {
		s = u.Username + " "
	}
	if mode := a.currentMode(); mode != "" {
		s = s + string(mode)
	}
	if s != "" {
		s = "(" + s + ")"
	}
	return s
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.authService.Ping(ctx)
			cancel()

			if err != nil {
				if a.currentMode() == ModeOnline {
					a.setMode(ModeOffline)
				}
			} else {
				if a.currentMode() != ModeOnline {
					a.setMode(ModeOnline)
				}
			}

		case <-ctx.Done():
			return
		}
	}
}
