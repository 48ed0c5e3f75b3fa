package models

import (
	"context"
	"errors"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"marketdash/api"
	"marketdash/config"
	"marketdash/favorites"
	"marketdash/theme"
	"marketdash/ui"
)

// Env is what every page shares: the API client, settings, the theme and
// the current styles. Pages keep a pointer so a theme toggle reaches all of
// them.
type Env struct {
	Client    *api.Client
	Config    *config.Config
	Theme     *theme.Store
	Styles    ui.Styles
	Logger    *zap.Logger
	Favorites favorites.Store // nil keeps favorites in memory only

	Clipboard func(string) error
	Now       func() time.Time
}

// NewEnv wires an Env and keeps Styles in step with the theme store.
func NewEnv(client *api.Client, cfg *config.Config, store *theme.Store, logger *zap.Logger) *Env {
	if logger == nil {
		logger = zap.NewNop()
	}
	env := &Env{
		Client:    client,
		Config:    cfg,
		Theme:     store,
		Styles:    ui.NewStyles(store.Tokens()),
		Logger:    logger,
		Clipboard: clipboard.WriteAll,
		Now:       time.Now,
	}
	store.Subscribe(func(dark bool) {
		env.Styles = ui.NewStyles(theme.For(dark))
	})
	return env
}

// loadedMsg carries the result of one fetch back to the page that asked.
type loadedMsg[T any] struct {
	key   string
	token uint64
	data  T
	err   error
}

// load runs fn off the event loop and reports back as a loadedMsg.
func load[T any](ctx context.Context, key string, token uint64, fn func(context.Context) (T, error)) tea.Cmd {
	return func() tea.Msg {
		data, err := fn(ctx)
		return loadedMsg[T]{key: key, token: token, data: data, err: err}
	}
}

// savedMsg reports a background favorites write.
type savedMsg struct {
	scope string
	err   error
}

func (e *Env) logFailure(key string, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	e.Logger.Warn("fetch failed", zap.String("key", key), zap.Error(err))
}

// loadFavorites reads a favorites scope from the store, if one is wired.
func (e *Env) loadFavorites(ctx context.Context, scope string, token uint64) tea.Cmd {
	if e.Favorites == nil {
		return nil
	}
	store := e.Favorites
	return load(ctx, "favorites."+scope, token, func(ctx context.Context) ([]string, error) {
		return store.Load(ctx, scope)
	})
}

// saveFavorite persists one toggle in the background.
func (e *Env) saveFavorite(scope, id string, on bool) tea.Cmd {
	if e.Favorites == nil {
		return nil
	}
	store := e.Favorites
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return savedMsg{scope: scope, err: store.Save(ctx, scope, id, on)}
	}
}

func (e *Env) handleSaved(msg savedMsg) {
	if msg.err != nil {
		e.Logger.Warn("failed to save favorite", zap.String("scope", msg.scope), zap.Error(msg.err))
	}
}
