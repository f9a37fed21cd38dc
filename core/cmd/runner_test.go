package cmd

import (
	"context"
	"testing"

	coreconfig "evernotebot/core/config"
	coretelegram "evernotebot/core/telegram"
)

type stubCarrier struct {
	cfg *coreconfig.Config
}

func (s *stubCarrier) CoreConfig() *coreconfig.Config { return s.cfg }

type stubApp struct {
	closed bool
}

func (s *stubApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{}, nil
}

func (s *stubApp) Close() error {
	s.closed = true
	return nil
}

func TestRunClosesApp(t *testing.T) {
	app := &stubApp{}

	err := Run(Options{
		DefaultConfigPath: "unused",
		LoadConfig: func(string) (ConfigCarrier, error) {
			return &stubCarrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(ConfigCarrier) (TelegramApp, error) {
			return app, nil
		},
		ShutdownLogger: func() error { return nil },
		RunTelegram: func(context.Context, coretelegram.RunOptions) error {
			return nil
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !app.closed {
		t.Fatal("app was not closed on shutdown")
	}
}
