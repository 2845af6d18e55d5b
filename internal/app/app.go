package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/noterbot/core/bootstrap"
	corecmd "github.com/m3rciful/noterbot/core/cmd"
	coretelegram "github.com/m3rciful/noterbot/core/telegram"
	"github.com/m3rciful/noterbot/core/telegram/router"
	"github.com/m3rciful/noterbot/core/telegram/state"
	"github.com/m3rciful/noterbot/internal/bot"
	"github.com/m3rciful/noterbot/internal/dialog"
	"github.com/m3rciful/noterbot/internal/notes"
)

// App holds the wired application.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	store    *notes.Service
	engine   *dialog.Engine
	sessions state.Manager
	handlers *bot.Handlers
}

// Bootstrap initializes infrastructure and wires the domain services.
func Bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	store := notes.NewService(res.DB)
	sessions := state.NewMemoryManager()
	engine := dialog.NewEngine(store, sessions)
	handlers := bot.NewHandlers(engine, store)
	bot.RegisterStateHandlers(handlers)

	return &App{
		cfg:      cfg,
		db:       res.DB,
		store:    store,
		engine:   engine,
		sessions: sessions,
		handlers: handlers,
	}, nil
}

// TelegramRunOptions assembles the bot runtime: registry, middlewares, routes.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	bot.Register(reg, a.handlers)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})
	routes = append(routes, router.TextRoutes(a.sessions, reg, router.TextOptions{})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	opts := coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      routes,
		OnStop: func(_ context.Context, _ coretelegram.Runtime) error {
			return a.db.Close()
		},
	}
	return opts, nil
}
