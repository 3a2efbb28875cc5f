package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stwalsh4118/cclive/internal/app"
	"github.com/stwalsh4118/cclive/internal/channel"
	"github.com/stwalsh4118/cclive/internal/cli"
	"github.com/stwalsh4118/cclive/internal/config"
	"github.com/stwalsh4118/cclive/internal/debug"
	"github.com/stwalsh4118/cclive/internal/tui"
	"github.com/stwalsh4118/cclive/internal/view"
)

// errReported marks failures that were already printed.
var errReported = errors.New("reported")

type globalFlags struct {
	config   string
	page     string
	endpoint string
	debug    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "cclive",
		Short:         "Mirror live Claude Code sessions from a usage dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, &flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.config, "config", "", "config file (default "+config.DefaultConfigPath+")")
	pf.StringVar(&flags.page, "page", "", "dashboard URL or local HTML file")
	pf.StringVar(&flags.endpoint, "endpoint", "", "push endpoint (default derived from --page)")
	pf.BoolVar(&flags.debug, "debug", false, "write a debug log")

	root.AddCommand(newWatchCmd(&flags))
	root.AddCommand(newStatusCmd(&flags))
	root.AddCommand(newRenderCmd(&flags))
	return root
}

func newWatchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Show the live dashboard in the terminal (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, flags)
		},
	}
}

func newStatusCmd(flags *globalFlags) *cobra.Command {
	var (
		format  string
		verbose bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print a one-line summary of the live sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			endpoint, err := resolveEndpoint(cfg)
			if err != nil {
				return err
			}
			code := cli.RunStatus(cmd.Context(), cli.StatusOptions{
				Endpoint: endpoint,
				Format:   format,
				Verbose:  verbose,
				Timeout:  timeout,
			})
			if code != 0 {
				return errReported
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&format, "format", "plain", "output format (plain|tmux)")
	f.BoolVar(&verbose, "verbose", false, "list every live session")
	f.DurationVar(&timeout, "timeout", cli.DefaultStatusTimeout, "how long to wait for the first snapshot")
	return cmd
}

func newRenderCmd(flags *globalFlags) *cobra.Command {
	var d time.Duration

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Reconcile the page headlessly and print the resulting HTML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return cli.RunRender(ctx, appOptions(cfg), d, cmd.OutOrStdout())
		},
	}

	cmd.Flags().DurationVar(&d, "for", cli.DefaultRenderDuration, "how long to listen before printing")
	return cmd
}

func runWatch(cmd *cobra.Command, flags *globalFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var p *tea.Program
	opts := appOptions(cfg)
	opts.OnFrame = func(f view.Frame) {
		p.Send(tui.FrameMsg(f))
	}

	rt, err := app.New(ctx, opts)
	if err != nil {
		return err
	}
	p = tea.NewProgram(tui.NewModel(rt.Endpoint()), tea.WithAltScreen())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return rt.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		return err
	})
	go func() {
		<-gctx.Done()
		p.Quit()
	}()

	return g.Wait()
}

func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.config)
	if err != nil {
		return nil, err
	}
	if flags.page != "" {
		cfg.Page = flags.page
	}
	if flags.endpoint != "" {
		cfg.Endpoint = flags.endpoint
	}
	if flags.debug {
		cfg.Debug = true
	}
	if cfg.Debug {
		if err := debug.Init(cfg.LogFile); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func resolveEndpoint(cfg *config.Config) (string, error) {
	if cfg.Endpoint != "" {
		return cfg.Endpoint, nil
	}
	return channel.EndpointURL(cfg.Page)
}

func appOptions(cfg *config.Config) app.Options {
	return app.Options{
		Page:           cfg.Page,
		Endpoint:       cfg.Endpoint,
		ReconnectDelay: cfg.ReconnectDelay.Duration,
		RevealTick:     cfg.Reveal.Tick.Duration,
		RevealSettle:   cfg.Reveal.Settle.Duration,
	}
}
