package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hansgunawan/portfolio/internal/adapters/loader"
	"github.com/hansgunawan/portfolio/internal/client"
	"github.com/hansgunawan/portfolio/internal/config"
	"github.com/hansgunawan/portfolio/internal/infrastructure/http"
	"github.com/hansgunawan/portfolio/internal/infrastructure/router"
)

// ChatOptions for running the terminal client with custom IO.
type ChatOptions struct {
	URL     string
	Message string
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "portfolio - chat assistant and contact API for the portfolio site",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

var buildContextCmd = &cobra.Command{
	Use:   "build-context",
	Short: "Assemble the context document and write the cache file",
	RunE:  runBuildContext,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a running server in single message or REPL mode",
	RunE:  runChat,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show resolved configuration",
	RunE:  runStatus,
}

var (
	configFlag  string
	urlFlag     string
	messageFlag string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default $PORTFOLIO_CONFIG or portfolio.yaml)")
	chatCmd.Flags().StringVar(&urlFlag, "url", "http://localhost:5000", "Server base URL")
	chatCmd.Flags().StringVarP(&messageFlag, "message", "m", "", "Single message to send")
	rootCmd.AddCommand(serveCmd, buildContextCmd, chatCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	g, ctx := errgroup.WithContext(ctx)
	if a.cached != nil {
		g.Go(func() error { return a.cached.Run(ctx) })
	}
	g.Go(func() error {
		switch cfg.Server.Mode {
		case "gin":
			return router.Start(ctx, a.services, router.Options{
				Addr:         cfg.Addr(),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
				StaticDir:    cfg.Server.StaticDir,
			})
		default:
			return http.NewServer(a.services, http.Options{
				Addr:         cfg.Addr(),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
				StaticDir:    cfg.Server.StaticDir,
			}).Start(ctx)
		}
	})
	return g.Wait()
}

func runBuildContext(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return buildContext(cmd.Context(), cfg, cmd.OutOrStdout())
}

func buildContext(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	doc, err := newAssembler(cfg).Context(ctx)
	if err != nil {
		return err
	}
	if err := loader.WriteCache(cfg.Context.CacheFile, doc); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	fmt.Fprintf(out, "Context written to %s (%d bytes)\n", absPath(cfg.Context.CacheFile), len(doc))
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	return runChatWithOptions(cmd.Context(), ChatOptions{URL: urlFlag, Message: messageFlag})
}

// runChatWithOptions runs the client with injectable IO for testing.
func runChatWithOptions(ctx context.Context, opts ChatOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	session := client.NewSession(client.New(opts.URL, nil))
	printChunk := func(s string) { fmt.Fprint(stdout, s) }

	if opts.Message != "" {
		if _, err := session.Send(ctx, opts.Message, printChunk); err != nil {
			return fmt.Errorf("chat error: %w", err)
		}
		fmt.Fprintln(stdout)
		return nil
	}

	you := color.New(color.FgGreen, color.Bold).SprintFunc()
	assistant := color.New(color.FgCyan, color.Bold).SprintFunc()
	warn := color.New(color.FgRed).SprintFunc()

	fmt.Fprintln(stdout, "portfolio chat (type 'exit' to quit, 'reset' to clear history)")
	scanner := bufio.NewScanner(stdin)
	for {
		fmt.Fprintf(stdout, "\n%s ", you("You:"))
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		switch input {
		case "exit", "quit":
			return nil
		case "reset":
			session.Reset()
			continue
		}

		fmt.Fprintf(stdout, "%s ", assistant("Assistant:"))
		if _, err := session.Send(ctx, input, printChunk); err != nil {
			fmt.Fprintf(stderr, "\n%s %v\n", warn("Error:"), err)
			continue
		}
		fmt.Fprintln(stdout)
	}
	return scanner.Err()
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return printStatus(cmd.Context(), cfg, cmd.OutOrStdout())
}

func printStatus(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	path := configFlag
	if path == "" {
		path = config.ConfigPath()
	}

	fmt.Fprintf(out, "Config:    %s\n", absPath(path))
	fmt.Fprintf(out, "Server:    %s (%s)\n", cfg.Addr(), cfg.Server.Mode)
	fmt.Fprintf(out, "Provider:  %s\n", cfg.Provider.Type)
	if cfg.Provider.Model != "" {
		fmt.Fprintf(out, "Model:     %s\n", cfg.Provider.Model)
	}
	fmt.Fprintf(out, "API Key:   %s\n", maskKey(cfg.Provider.APIKey))
	fmt.Fprintf(out, "Context:   %s (data dir %s)\n", cfg.Context.Mode, cfg.Context.DataDir)
	if cfg.MailEnabled() {
		fmt.Fprintf(out, "Mail:      %s via %s:%d\n", cfg.Contact.SMTP.Username, cfg.Contact.SMTP.Host, cfg.Contact.SMTP.Port)
	} else {
		fmt.Fprintln(out, "Mail:      disabled")
	}

	st, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(out, "Store:     %s (error: %v)\n", cfg.Contact.Store, err)
		return nil
	}
	if st == nil {
		fmt.Fprintf(out, "Store:     %s\n", cfg.Contact.Store)
		return nil
	}
	defer st.Close()

	n, err := st.Count(ctx)
	if err != nil {
		fmt.Fprintf(out, "Store:     %s (error: %v)\n", cfg.Contact.Store, err)
		return nil
	}
	fmt.Fprintf(out, "Store:     %s (%d messages)\n", cfg.Contact.Store, n)
	return nil
}

func maskKey(key string) string {
	switch {
	case key == "":
		return "not set"
	case len(key) > 8:
		return key[:4] + "..." + key[len(key)-4:]
	default:
		return "***"
	}
}
