package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"yew-art/server/internal/app"
	"yew-art/server/internal/render"
)

type serveOptions struct {
	configPath string
	addr       string
	seed       string
	autoStart  bool
}

type renderOptions struct {
	configPath string
	seed       string
	circles    int
	ticks      int
	out        string
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()
	root := &cobra.Command{
		Use:           "yew-art",
		Short:         "Drifting-circles generative art server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.Flags().AddFlagSet(serve.Flags())
	root.AddCommand(serve, newRenderCmd(), newSchemaCmd())
	return root
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulation and its viewer over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = opts.addr
			}
			if cmd.Flags().Changed("seed") {
				cfg.Simulation.Seed = opts.seed
			}
			if cmd.Flags().Changed("play") {
				cfg.AutoStart = opts.autoStart
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.Run(ctx, cfg)
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVar(&opts.addr, "addr", app.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&opts.seed, "seed", "", "simulation seed")
	cmd.Flags().BoolVar(&opts.autoStart, "play", false, "start animating immediately")
	return cmd
}

func newRenderCmd() *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Run the simulation headless and write " + render.ExportFilename,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg.Simulation.Seed = opts.seed
			}

			out := opts.out
			if info, err := os.Stat(out); err == nil && info.IsDir() {
				out = filepath.Join(out, render.ExportFilename)
			}
			stats, err := app.RenderFile(app.RenderOptions{
				Simulation: cfg.Simulation,
				Circles:    opts.circles,
				Ticks:      opts.ticks,
			}, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d circles, %d history entries after %d ticks\n", out, stats.Circles, stats.History, stats.Ticks)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVar(&opts.seed, "seed", "", "simulation seed")
	cmd.Flags().IntVar(&opts.circles, "circles", 1, "number of live circles")
	cmd.Flags().IntVar(&opts.ticks, "ticks", 100, "ticks to advance before rendering")
	cmd.Flags().StringVarP(&opts.out, "out", "o", render.ExportFilename, "output file or directory")
	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := app.ConfigSchema()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
