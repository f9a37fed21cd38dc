package telegram

import (
	"testing"

	"evernotebot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func noopHandler(tele.Context) error { return nil }

func TestRegistryRegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/notebook", commands.Command{
		Handler:     noopHandler,
		Description: "Select the current notebook",
		Aliases:     []string{"nb"},
	})

	if _, _, ok := reg.LookupCommand("/notebook"); !ok {
		t.Fatal("expected /notebook to resolve")
	}
	key, _, ok := reg.LookupCommand("nb")
	if !ok || key != "/notebook" {
		t.Fatalf("alias lookup: got %q ok=%v", key, ok)
	}
	key, _, ok = reg.LookupCommand("/nb")
	if !ok || key != "/notebook" {
		t.Fatalf("slashed alias lookup: got %q ok=%v", key, ok)
	}
	if _, _, ok := reg.LookupCommand("/unknown"); ok {
		t.Fatal("unexpected match for unknown command")
	}
}

func TestRegistryRejectsInvalidRegistration(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("", commands.Command{Handler: noopHandler, Description: "x"})
	reg.RegisterCommand("start", commands.Command{Handler: noopHandler, Description: "no slash"})
	reg.RegisterCommand("/nodesc", commands.Command{Handler: noopHandler})
	reg.RegisterCommand("/nohandler", commands.Command{Description: "x"})
	if n := len(reg.Commands()); n != 0 {
		t.Fatalf("expected no commands registered, got %d", n)
	}
}

func TestRegistryFirstRegistrationWins(t *testing.T) {
	reg := NewRegistry()
	first := commands.Command{Handler: noopHandler, Description: "first"}
	second := commands.Command{Handler: noopHandler, Description: "second"}
	reg.RegisterCommand("/help", first)
	reg.RegisterCommand("/help", second)

	_, cmd, ok := reg.LookupCommand("/help")
	if !ok {
		t.Fatal("expected /help to resolve")
	}
	if cmd.Description != "first" {
		t.Fatalf("expected first registration kept, got %q", cmd.Description)
	}
}

func TestRegistryListCommandsFiltersHidden(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Handler: noopHandler, Description: "Start"})
	reg.RegisterCommand("/stats", commands.Command{Handler: noopHandler, Description: "Stats", AdminOnly: true})
	reg.RegisterCommand("/debug", commands.Command{Handler: noopHandler, Description: "Debug", Hidden: true})

	visible := reg.ListCommands(true)
	if len(visible) != 1 || visible[0].Text != "/start" {
		t.Fatalf("visible = %+v", visible)
	}
	all := reg.ListCommands(false)
	if len(all) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(all))
	}
	// sorted by name
	if all[0].Text != "/debug" || all[1].Text != "/start" || all[2].Text != "/stats" {
		t.Fatalf("unexpected order: %+v", all)
	}
}
