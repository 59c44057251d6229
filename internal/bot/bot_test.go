package bot

import (
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func noopHandler(*discordgo.Session, *discordgo.InteractionCreate, Responder) error {
	return nil
}

func TestNewBot(t *testing.T) {
	cfg := &Config{DiscordToken: "test-token"}

	b := NewBot(cfg)

	if b.config != cfg {
		t.Error("expected config to be stored")
	}
	if b.handlers == nil || b.autocompletes == nil {
		t.Error("expected handler maps to be initialized")
	}
}

func TestBot_InitModules(t *testing.T) {
	initErr := errors.New("init failed")

	tests := []struct {
		name    string
		modules []*stubModule
		wantErr error
	}{
		{
			name:    "all succeed",
			modules: []*stubModule{{name: "a"}, {name: "b"}},
		},
		{
			name:    "init error stops startup",
			modules: []*stubModule{{name: "a", initErr: initErr}, {name: "b"}},
			wantErr: initErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBot(&Config{DiscordToken: "test-token"})
			for _, m := range tt.modules {
				b.modules = append(b.modules, m)
			}

			err := b.initModules()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil {
				for _, m := range tt.modules {
					if !m.initCalled {
						t.Errorf("expected Init to be called on %s", m.name)
					}
				}
			}
			if tt.wantErr != nil && tt.modules[1].initCalled {
				t.Error("expected later modules not to be initialized")
			}
		})
	}
}

func TestBot_BuildHandlerMap(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})

	b.modules = []Module{
		&stubModule{name: "mod1", handlers: map[string]InteractionHandler{"cmd1": noopHandler}},
		&autocompleteStubModule{
			stubModule: stubModule{
				name:     "mod2",
				handlers: map[string]InteractionHandler{"cmd2": noopHandler},
			},
			autocompletes: map[string]AutocompleteHandler{
				"cmd2": func(*discordgo.InteractionCreate) []*discordgo.ApplicationCommandOptionChoice {
					return nil
				},
			},
		},
	}

	if err := b.buildHandlerMap(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(b.handlers) != 2 {
		t.Errorf("expected 2 handlers, got %d", len(b.handlers))
	}
	if _, ok := b.autocompletes["cmd2"]; !ok {
		t.Error("expected cmd2 autocomplete handler to be registered")
	}
}

func TestBot_BuildHandlerMap_DuplicateCommand(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})
	b.modules = []Module{
		&stubModule{name: "mod1", handlers: map[string]InteractionHandler{"play": noopHandler}},
		&stubModule{name: "mod2", handlers: map[string]InteractionHandler{"play": noopHandler}},
	}

	err := b.buildHandlerMap()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "play") {
		t.Errorf("expected error to name the command, got %v", err)
	}
}

func TestBot_CollectCommands(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})
	b.modules = []Module{
		&stubModule{name: "mod1", commands: []*discordgo.ApplicationCommand{{Name: "join"}}},
		&stubModule{name: "mod2", commands: []*discordgo.ApplicationCommand{{Name: "play"}, {Name: "skip"}}},
	}

	commands := b.collectCommands()

	var names []string
	for _, cmd := range commands {
		names = append(names, cmd.Name)
	}
	if got := strings.Join(names, ","); got != "join,play,skip" {
		t.Errorf("expected commands in module order, got %s", got)
	}
}

func TestBot_Stop_ShutsDownInReverseOrder(t *testing.T) {
	var order []string
	b := NewBot(&Config{DiscordToken: "test-token"})
	b.modules = []Module{
		&stubModule{name: "first", onShutdown: func() { order = append(order, "first") }},
		&stubModule{
			name:       "second",
			shutErr:    errors.New("ignored"),
			onShutdown: func() { order = append(order, "second") },
		},
	}

	if err := b.Stop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Join(order, ","); got != "second,first" {
		t.Errorf("expected reverse shutdown order, got %s", got)
	}
}

// configurableStubModule is a stub that records LoadConfig calls
type configurableStubModule struct {
	stubModule
	loadErr    error
	loadCalled bool
}

func (m *configurableStubModule) LoadConfig() error {
	m.loadCalled = true
	return m.loadErr
}

// autocompleteStubModule is a stub with autocomplete handlers
type autocompleteStubModule struct {
	stubModule
	autocompletes map[string]AutocompleteHandler
}

func (m *autocompleteStubModule) AutocompleteHandlers() map[string]AutocompleteHandler {
	return m.autocompletes
}

func TestBot_LoadModules_LoadsConfig(t *testing.T) {
	configErr := errors.New("missing LAVALINK_ADDRESS")

	tests := []struct {
		name    string
		loadErr error
	}{
		{name: "success"},
		{name: "config error", loadErr: configErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetGlobalRegistry()
			t.Cleanup(ResetGlobalRegistry)

			plain := &stubModule{name: "plain"}
			configurable := &configurableStubModule{
				stubModule: stubModule{name: "configurable"},
				loadErr:    tt.loadErr,
			}
			Register(plain)
			Register(configurable)

			b := NewBot(&Config{DiscordToken: "test-token"})
			err := b.LoadModules()

			if !configurable.loadCalled {
				t.Error("expected LoadConfig to be called")
			}
			if len(b.modules) != 2 {
				t.Errorf("expected 2 modules, got %d", len(b.modules))
			}
			if tt.loadErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.loadErr != nil && !errors.Is(err, tt.loadErr) {
				t.Errorf("expected error %v, got %v", tt.loadErr, err)
			}
		})
	}
}
