package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-generator/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quote-generator/internal/adapters/featureflags"
	"github.com/jsamuelsen/quote-generator/internal/adapters/notify"
	"github.com/jsamuelsen/quote-generator/internal/adapters/quotefile"
	"github.com/jsamuelsen/quote-generator/internal/adapters/storage/session"
	"github.com/jsamuelsen/quote-generator/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/quote-generator/internal/app"
	"github.com/jsamuelsen/quote-generator/internal/domain"
	"github.com/jsamuelsen/quote-generator/internal/platform/config"
	"github.com/jsamuelsen/quote-generator/internal/platform/logging"
)

// options are the persistent flags shared by every command.
type options struct {
	profile   string
	dbPath    string
	remoteURL string
	logLevel  string
}

// env is the wiring a command runs against. It is built once per invocation.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	repo    *sqlite.Store
	store   *domain.QuoteStore
	service *app.QuoteService
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	var e *env

	root := &cobra.Command{
		Use:   "quotectl",
		Short: "Manage the quote store",
		Long: `quotectl reads and edits the quote generator's persisted store.

Stop the service before editing: the service keeps its own in-memory copy
and overwrites the database on its next change.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			e, err = newEnv(cmd.Context(), opts, cmd.ErrOrStderr())
			return err
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if e == nil {
				return nil
			}
			return e.repo.Close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.profile, "profile", "local", "config profile (configs/<profile>.yaml)")
	flags.StringVar(&opts.dbPath, "db", "", "database path (overrides storage.path)")
	flags.StringVar(&opts.remoteURL, "remote-url", "", "remote base URL (overrides services.quote.base_url)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level: trace, debug, info, warn, error")

	current := func() *env { return e }

	root.AddCommand(
		newRandomCmd(current),
		newListCmd(current),
		newAddCmd(current),
		newImportCmd(current),
		newExportCmd(current),
		newCategoriesCmd(current),
		newSelectCmd(current),
		newSyncCmd(current),
	)

	return root
}

func newEnv(ctx context.Context, opts *options, logOut io.Writer) (*env, error) {
	cfg, err := config.Load(opts.profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if opts.dbPath != "" {
		cfg.Storage.Path = opts.dbPath
	}
	if opts.remoteURL != "" {
		cfg.Services.Quote.BaseURL = opts.remoteURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewWithWriter(&logging.Config{
		Level:   opts.logLevel,
		Format:  "pretty",
		Service: "quotectl",
		Version: cfg.App.Version,
	}, logOut)

	repo, err := sqlite.Open(cfg.Storage.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	store := domain.NewQuoteStore()
	service := app.NewQuoteService(app.QuoteServiceConfig{
		Store:      store,
		Repository: repo,
		Sessions:   session.New(cfg.Session.TTL),
		Logger:     logger,
	})
	service.Restore(ctx)

	return &env{cfg: cfg, logger: logger, repo: repo, store: store, service: service}, nil
}

func printQuote(w io.Writer, q domain.Quote) {
	fmt.Fprintf(w, "%q (%s)\n", q.Text, q.Category)
}

func newRandomCmd(current func() *env) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Print a random quote",
		Long:  "Print a random quote from the selected category, or from --category when given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pick, err := current().service.Random(cmd.Context(), app.RandomQuery{
				Category:         category,
				OverrideCategory: cmd.Flags().Changed("category"),
			})
			if err != nil {
				return err
			}

			printQuote(cmd.OutOrStdout(), pick.Quote)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "pick from this category (empty means all)")

	return cmd
}

func newListCmd(current func() *env) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List quotes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, q := range current().service.List(cmd.Context(), category) {
				printQuote(cmd.OutOrStdout(), q)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only quotes in this category")

	return cmd
}

func newAddCmd(current func() *env) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "add TEXT",
		Short: "Add a quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := current().service.Add(cmd.Context(), args[0], category)
			if err != nil {
				return err
			}

			printQuote(cmd.OutOrStdout(), q)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "category of the new quote (required)")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func newImportCmd(current func() *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Append quotes from a JSON file",
		Long: `Append quotes from FILE ("-" reads stdin). The file holds a JSON array of
{"text", "category"} objects or an object with a "quotes" array. Malformed
entries are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			candidates, err := quotefile.ParseImport(data)
			if err != nil {
				return err
			}

			e := current()
			n, err := e.service.Import(cmd.Context(), candidates)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d quotes (%d total)\n", n, e.store.Len())
			return nil
		},
	}
}

func newExportCmd(current func() *env) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every quote as pretty-printed JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := quotefile.MarshalPretty(current().service.Export(cmd.Context()))
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			return os.WriteFile(out, data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout, e.g. "+quotefile.FileName+")")

	return cmd
}

func newCategoriesCmd(current func() *env) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories; the selected one is marked with *",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cats := current().service.Categories(cmd.Context())
			for _, c := range cats.Categories {
				marker := " "
				if c == cats.Selected {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, c)
			}
			return nil
		},
	}
}

func newSelectCmd(current func() *env) *cobra.Command {
	return &cobra.Command{
		Use:   "select [CATEGORY]",
		Short: "Set the selected category; no argument clears it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category := ""
			if len(args) == 1 {
				category = args[0]
			}

			selected := current().service.SelectCategory(cmd.Context(), category)
			if selected == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "category filter cleared")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "selected %s\n", selected)
			return nil
		},
	}
}

func newSyncCmd(current func() *env) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one reconciliation cycle against the remote source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := current()

			remote, err := acl.FromConfig(e.cfg, e.logger, nil)
			if err != nil {
				return err
			}

			reconciler := app.NewReconciler(app.ReconcilerConfig{
				Store:        e.store,
				Remote:       remote,
				Repository:   e.repo,
				Notifier:     notify.NewBanner(e.cfg.Notify.DismissAfter, e.logger),
				Flags:        featureflags.NewStatic(e.cfg.Features),
				CycleTimeout: e.cfg.Sync.CycleTimeout,
				Logger:       e.logger,
			})

			outcome, err := reconciler.SyncNow(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(outcome); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(w, "%s (fetched %d, %d quotes)\n", outcome.Message, outcome.Fetched, outcome.StoreSize)
			}

			if !outcome.Succeeded() {
				return errors.New(strings.ToLower(outcome.Message))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the cycle outcome as JSON")

	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return data, nil
}
