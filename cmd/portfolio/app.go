package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/hansgunawan/portfolio/internal/adapters/filewatcher"
	"github.com/hansgunawan/portfolio/internal/adapters/llm"
	"github.com/hansgunawan/portfolio/internal/adapters/loader"
	"github.com/hansgunawan/portfolio/internal/adapters/mailer"
	"github.com/hansgunawan/portfolio/internal/adapters/store"
	"github.com/hansgunawan/portfolio/internal/config"
	"github.com/hansgunawan/portfolio/internal/domain/ports"
	"github.com/hansgunawan/portfolio/internal/domain/usecases"
	"github.com/hansgunawan/portfolio/internal/infrastructure/transport"
)

// contactStore is a ports.ContactStore the CLI can also count and close.
type contactStore interface {
	ports.ContactStore
	Count(ctx context.Context) (int, error)
	Close() error
}

// app holds the wired services for one serve run.
type app struct {
	services transport.Services
	cached   *usecases.CachedContext // nil unless context mode is cached
	store    contactStore            // nil when no store is configured
}

// Close releases the store.
func (a *app) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

func newAssembler(cfg *config.Config) *usecases.ContextAssembler {
	return usecases.NewContextAssembler(
		loader.NewTextLoader(""),
		usecases.ContextSources{
			ProjectsDir:     cfg.Context.ProjectsDir,
			AchievementsDir: cfg.Context.AchievementsDir,
			PublicationsDir: cfg.Context.PublicationsDir,
			ExtrasDir:       cfg.Context.ExtrasDir,
		},
		usecases.Profile{Name: cfg.Profile.Name, Facts: cfg.Profile.Facts},
	)
}

func newProvider(ctx context.Context, cfg *config.Config) (ports.ChatProvider, error) {
	if cfg.Provider.APIKey == "" {
		log.Printf("[WARN] %s not set, chat requests will fail", llm.KeyEnv(cfg.Provider.Type))
	}
	return llm.New(ctx, llm.Config{
		Type:        cfg.Provider.Type,
		APIKey:      cfg.Provider.APIKey,
		BaseURL:     cfg.Provider.BaseURL,
		Model:       cfg.Provider.Model,
		Temperature: cfg.Provider.Temperature,
		MaxTokens:   cfg.Provider.MaxTokens,
	})
}

func openStore(cfg *config.Config) (contactStore, error) {
	switch cfg.Contact.Store {
	case config.StoreMemory:
		return store.NewInMemoryStore(), nil
	case config.StoreSQLite:
		return store.NewSQLStore(store.DriverSQLite, cfg.Contact.DSN)
	case config.StorePostgres:
		return store.NewSQLStore(store.DriverPostgres, cfg.Contact.DSN)
	default:
		return nil, nil
	}
}

func newMailer(cfg *config.Config) (ports.Mailer, error) {
	if !cfg.MailEnabled() {
		log.Printf("[WARN] EMAIL_USER/EMAIL_PASS not set, contact submissions will only be logged")
		return nil, nil
	}
	return mailer.NewSMTPMailer(mailer.Config{
		Host:     cfg.Contact.SMTP.Host,
		Port:     cfg.Contact.SMTP.Port,
		Username: cfg.Contact.SMTP.Username,
		Password: cfg.Contact.SMTP.Password,
		To:       cfg.Contact.SMTP.To,
	})
}

// contextSource picks the document source for the configured mode.
func contextSource(cfg *config.Config, assembler *usecases.ContextAssembler) (ports.ContextSource, *usecases.CachedContext, error) {
	switch cfg.Context.Mode {
	case config.ContextStatic:
		return loader.NewStaticSource(cfg.Context.CacheFile), nil, nil
	case config.ContextCached:
		watcher, err := filewatcher.NewFSNotifyWatcher(loader.NewTextLoader("").SupportedExtensions())
		if err != nil {
			return nil, nil, fmt.Errorf("create watcher: %w", err)
		}
		cached := usecases.NewCachedContext(assembler, watcher)
		cached.OnBuild(func(doc string) error {
			return loader.WriteCache(cfg.Context.CacheFile, doc)
		})
		return cached, cached, nil
	default:
		return assembler, nil, nil
	}
}

// buildApp wires adapters into the services both transports serve.
func buildApp(ctx context.Context, cfg *config.Config, provider ports.ChatProvider) (*app, error) {
	if provider == nil {
		var err error
		if provider, err = newProvider(ctx, cfg); err != nil {
			return nil, err
		}
	}

	assembler := newAssembler(cfg)
	source, cached, err := contextSource(cfg, assembler)
	if err != nil {
		return nil, err
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open contact store: %w", err)
	}
	m, err := newMailer(cfg)
	if err != nil {
		if st != nil {
			st.Close()
		}
		return nil, fmt.Errorf("create mailer: %w", err)
	}

	relay := usecases.NewChatRelay(
		source,
		usecases.NewSessionPrimer(cfg.Chat.Persona, cfg.Chat.Acknowledgment),
		provider,
		cfg.Chat.IdleTimeout,
	)

	return &app{
		services: transport.Services{
			Relay:   relay,
			Context: source,
			Contact: usecases.NewContactService(st, m),
		},
		cached: cached,
		store:  st,
	}, nil
}

// absPath is used for display only.
func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
