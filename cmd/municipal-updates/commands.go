package main

import (
	"context"
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"municipal-updates/internal/app"
	"municipal-updates/internal/browser"
	"municipal-updates/internal/config"
	"municipal-updates/internal/fetcher"
	"municipal-updates/internal/normalize"
	"municipal-updates/internal/observability"
	"municipal-updates/internal/output"
	"municipal-updates/internal/scraper"
	"municipal-updates/internal/sources"
)

const (
	engineRod    = "rod"
	engineStatic = "static"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "municipal-updates",
		Short:         "Извличане на новини от институциите на Община Перник",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (defaults are used when empty)")

	root.AddCommand(newScrapeCmd(&configPath), newSourcesCmd(&configPath))
	return root
}

type scrapeFlags struct {
	sources    []string
	engine     string
	format     string
	outputPath string
	noProgress bool
}

func newScrapeCmd(configPath *string) *cobra.Command {
	var f scrapeFlags

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run extraction for the configured institutions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScrape(cmd.Context(), *configPath, f, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringSliceVar(&f.sources, "source", nil, fmt.Sprintf("institutions to run %v (default: sources.enabled or all)", sources.Kinds()))
	cmd.Flags().StringVar(&f.engine, "engine", "", "session engine: rod or static (default: rod when rod.enabled)")
	cmd.Flags().StringVar(&f.format, "format", "", fmt.Sprintf("output format %v", output.Formats()))
	cmd.Flags().StringVar(&f.outputPath, "output", "", "output file (stdout when empty)")
	cmd.Flags().BoolVar(&f.noProgress, "no-progress", false, "do not draw the progress bar")
	return cmd
}

func runScrape(parent context.Context, configPath string, f scrapeFlags, stdout, stderr io.Writer) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if f.format != "" {
		cfg.Output.Format = f.format
	}
	if f.outputPath != "" {
		cfg.Output.Path = f.outputPath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	engine, err := resolveEngine(cfg, f.engine)
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.Observability.LogPath, cfg.Observability.LogLevel)
	defer logger.Close()

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := app.GracefulShutdown(parent, logger, 0)
	defer cancel()

	logger.Info("Config loaded",
		"engine", engine,
		"format", cfg.Output.Format,
		"sources", f.sources,
	)

	progress := func(int) {}
	if !f.noProgress {
		bar := progressbar.NewOptions(100,
			progressbar.OptionSetWriter(stderr),
			progressbar.OptionSetDescription("Извличане"),
			progressbar.OptionClearOnFinish(),
		)
		progress = func(p int) { _ = bar.Set(p) }
	}

	sc := scraper.NewScraper(normalize.NewNormalizer(cfg.Normalize), logger)
	job := app.NewJob(cfg, logger, observability.NewMetrics(), sc, sessionFactory(cfg, engine, logger), progress)

	res := job.Scrape(ctx, f.sources...)
	if res.Failed {
		fmt.Fprintln(stderr, res.Notice)
		return res.Err()
	}

	if cfg.Output.Path == "" {
		return output.Write(stdout, cfg.Output.Format, res.Table)
	}
	if err := output.WriteFile(cfg.Output.Path, cfg.Output.Format, res.Table); err != nil {
		return err
	}
	logger.Info("Output written", "path", cfg.Output.Path, "records", res.Table.Len())
	return nil
}

func resolveEngine(cfg *config.Config, flag string) (string, error) {
	switch flag {
	case "":
		if cfg.Rod.Enabled {
			return engineRod, nil
		}
		return engineStatic, nil
	case engineRod, engineStatic:
		return flag, nil
	default:
		return "", fmt.Errorf("unknown engine %q (rod or static)", flag)
	}
}

func sessionFactory(cfg *config.Config, engine string, logger *observability.Logger) app.SessionFactory {
	if engine == engineStatic {
		return func(context.Context) (browser.Session, error) {
			return browser.NewStaticSession(fetcher.NewFetcher(cfg, logger), logger), nil
		}
	}
	return func(ctx context.Context) (browser.Session, error) {
		s, err := browser.NewRodSession(ctx, browser.RodOptions{
			ChromePath:      cfg.Rod.ChromePath,
			Headless:        cfg.Rod.Headless,
			UserAgent:       cfg.HTTP.UserAgent,
			PageTimeout:     cfg.GetRodPageTimeout(),
			WaitLoadTimeout: cfg.GetRodWaitLoadTimeout(),
			LazyLoadDelay:   cfg.GetRodLazyLoadDelay(),
		}, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

func newSourcesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List institutions and their listing pages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			srcs, err := sources.Resolve(cfg, sources.Kinds()...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, src := range srcs {
				d := src.Descriptor()
				fmt.Fprintf(out, "%s\t%s / %s\n", d.Kind(), d.Municipality(), d.Institution())
				for _, l := range d.Listings() {
					fmt.Fprintf(out, "\t%s\t%s\n", l.Label, l.URL)
				}
			}
			return nil
		},
	}
}
