package bot

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"evernotebot/cache"
	"evernotebot/core/bootstrap"
	coretelegram "evernotebot/core/telegram"
	"evernotebot/core/telegram/router"
	"evernotebot/evernote"
	"evernotebot/service"
	"evernotebot/storage"

	tele "gopkg.in/telebot.v4"
)

// App holds the wired application: repositories, services, and the
// Telegram surface.
type App struct {
	cfg *Config
	db  *sqlx.DB

	users   *storage.Users
	updates *storage.Updates
	tasks   *storage.Tasks

	notebooks *service.Notebooks
	session   *service.Session
	ingest    *service.Ingest
	locks     *service.UserLocks

	messenger *telegramMessenger
	registry  *coretelegram.Registry
}

// NewApp runs the bootstrap pipeline and wires the application graph.
func NewApp(cfg *Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	store, err := cache.NewLRUStore(cfg.Cache.Size)
	if err != nil {
		_ = res.DB.Close()
		return nil, fmt.Errorf("bot: cache init failed: %w", err)
	}

	notes := evernote.NewHTTPClient(cfg.Evernote)
	msg := &telegramMessenger{}

	app := &App{
		cfg:       cfg,
		db:        res.DB,
		users:     storage.NewUsers(res.DB),
		updates:   storage.NewUpdates(res.DB),
		tasks:     storage.NewTasks(res.DB),
		messenger: msg,
		locks:     service.NewUserLocks(),
	}
	app.notebooks = service.NewNotebooks(store, notes)
	app.session = service.NewSession(app.users, app.notebooks, notes, msg)
	app.ingest = service.NewIngest(msg, app.updates, app.tasks)
	app.registry = app.buildRegistry()

	return app, nil
}

// Close releases application resources.
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// TelegramRunOptions builds the runtime options consumed by the core runner.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	core := a.cfg.CoreConfig()

	a.registry.SetTextFallback(a.handleText)

	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminID: core.Telegram.AdminID,
	})
	routes = append(routes, router.TextRoutes(a.registry, router.TextOptions{})...)
	routes = append(routes, router.MediaRoutes([]router.MediaRoute{
		{Endpoint: tele.OnPhoto, Name: "photo", Handler: a.handlePhoto},
		{Endpoint: tele.OnVideo, Name: "video", Handler: a.handleVideo},
		{Endpoint: tele.OnDocument, Name: "document", Handler: a.handleDocument},
		{Endpoint: tele.OnVoice, Name: "voice", Handler: a.handleVoice},
		{Endpoint: tele.OnLocation, Name: "location", Handler: a.handleLocation},
	})...)

	return coretelegram.RunOptions{
		Config:      core,
		Registry:    a.registry,
		Middlewares: coretelegram.DefaultMiddlewares(core, a.locks, nil),
		Routes:      routes,
		OnStart: func(_ context.Context, rt coretelegram.Runtime) error {
			a.messenger.attach(rt.Bot, rt.Dispatcher)
			return nil
		},
		OnStop: func(_ context.Context, _ coretelegram.Runtime) error {
			a.messenger.detach()
			return nil
		},
	}, nil
}
