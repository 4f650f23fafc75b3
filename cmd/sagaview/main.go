// Command sagaview is a live observer for a long-running saga: it renders
// the workflow's state-machine diagram, highlights the active state as
// updates stream in, shows the structured log scopes, and publishes
// control commands back to the host.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"gioui.org/app"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/widget/material"
	"github.com/spf13/cobra"

	"sagaview/cmd/sagaview/internal/theme"
	"sagaview/cmd/sagaview/internal/ui"
	"sagaview/internal/archive"
	"sagaview/internal/client"
	"sagaview/internal/config"
	"sagaview/internal/diagram"
	"sagaview/internal/interaction"
	"sagaview/internal/logging"
	"sagaview/internal/scopelog"
	"sagaview/internal/syncer"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath  string
	sagaURL     string
	diagramPath string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "sagaview",
		Short:         "Live observer for a running saga",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			return runObserver(cfg)
		},
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to sagaview.toml")
	root.Flags().StringVar(&flags.sagaURL, "saga-url", "", "saga base URL (overrides config)")
	root.Flags().StringVar(&flags.diagramPath, "diagram", "", "layout document path (overrides config)")

	root.AddCommand(newScopesCmd(flags))
	return root
}

func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.sagaURL != "" {
		cfg.Server.URL = flags.sagaURL
	}
	if flags.diagramPath != "" {
		cfg.Diagram.Path = flags.diagramPath
	}
	return cfg, nil
}

func runObserver(cfg *config.Config) error {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}

	sagaClient, err := client.New(cfg.Server.URL, logging.WithComponent(logger, "client"))
	if err != nil {
		return err
	}
	defer sagaClient.Close()

	var store *archive.Archive
	if cfg.Archive.Enabled {
		store, err = archive.Open(cfg.Archive.Path)
		if err != nil {
			// The observer is still useful without persistence.
			logger.Warn("scope archive unavailable", "path", cfg.Archive.Path, "error", err)
		} else {
			defer store.Close()
		}
	}

	// The layout may not exist yet; the watcher delivers it once the
	// external renderer writes it.
	initial, err := diagram.Load(cfg.Diagram.Path)
	if err != nil {
		logger.Warn("diagram not loaded yet", "path", cfg.Diagram.Path, "error", err)
	}

	var watcher *diagram.Watcher
	if cfg.Diagram.Watch {
		watcher, err = diagram.Watch(cfg.Diagram.Path, logging.WithComponent(logger, "diagram"))
		if err != nil {
			return fmt.Errorf("watch diagram: %w", err)
		}
		defer watcher.Stop()
	}

	go func() {
		w := new(app.Window)
		title := "Sagaview"
		if sagaClient.CompanyID() != "" {
			title += " — " + sagaClient.CompanyID()
		}
		w.Option(app.Title(title))
		w.Option(app.Size(unit.Dp(1280), unit.Dp(800)))

		if err := loop(w, cfg, logger, sagaClient, store, initial, watcher); err != nil {
			logger.Error("window loop failed", "error", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()
	app.Main()
	return nil
}

func loop(w *app.Window, cfg *config.Config, logger *slog.Logger,
	sagaClient *client.Client, store *archive.Archive,
	initial *diagram.Diagram, watcher *diagram.Watcher) error {

	t := theme.NewTheme(material.NewTheme())
	engine := interaction.New(cfg.View.ZoomInFactor, cfg.View.ZoomOutFactor)
	history := scopelog.NewHistory()

	opts := syncer.Options{
		PollInterval: cfg.PollInterval(),
		Logger:       logging.WithComponent(logger, "syncer"),
		OnUpdate:     func(string, string) { w.Invalidate() },
	}
	if store != nil {
		opts.Archive = store
	}
	controller := syncer.New(sagaClient, history, opts)

	view := ui.NewView(t, engine, history, controller, w.Invalidate)
	if initial != nil {
		view.SetDiagram(initial)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	controller.Start(ctx, view.Ready)
	defer controller.Stop()

	if watcher != nil {
		go func() {
			for d := range watcher.Updates() {
				view.SetDiagram(d)
			}
		}()
	}

	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			view.Layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

func newScopesCmd(flags *rootFlags) *cobra.Command {
	var limit int
	var dbPath string

	cmd := &cobra.Command{
		Use:   "scopes",
		Short: "List archived log scopes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			path := dbPath
			if path == "" {
				path = cfg.Archive.Path
			}

			store, err := archive.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()

			scopes, err := store.RecentScopes(limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STARTED\tTYPE\tMESSAGE ID\tENTRIES")
			for _, s := range scopes {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n",
					scopelog.FormatClock(s.Started), s.MessageType, s.MessageID, s.Entries)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum scopes to list")
	cmd.Flags().StringVar(&dbPath, "db", "", "archive database path (overrides config)")
	return cmd
}
