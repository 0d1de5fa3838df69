package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	press "github.com/goliatone/go-press"
	"github.com/goliatone/go-press/internal/server"
	"github.com/goliatone/go-press/internal/watch"
)

func main() {
	cmd := &cli.Command{
		Name:  "press",
		Usage: "Static site generator for Markdown content with frontmatter headers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   "press.yml",
				Sources: cli.EnvVars("PRESS_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			buildCommand(),
			cleanCommand(),
			serveCommand(),
			historyCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "press:", err)
		os.Exit(1)
	}
}

func loadModule(cmd *cli.Command) (*press.Module, error) {
	cfg, err := press.LoadConfig(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	return press.New(cfg)
}

func buildCommand() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Render every document and listing into the output directory",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "slug",
				Usage: "Limit the build to the named documents",
			},
			&cli.BoolFlag{
				Name:  "drafts",
				Usage: "Include documents marked draft",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Rebuild documents even when they are up to date",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Render without writing artifacts",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			module, err := loadModule(cmd)
			if err != nil {
				return err
			}
			defer module.Close()

			result, err := module.Build(ctx, press.BuildOptions{
				Slugs:  cmd.StringSlice("slug"),
				Drafts: cmd.Bool("drafts"),
				Force:  cmd.Bool("force"),
				DryRun: cmd.Bool("dry-run"),
			})
			if err != nil {
				return err
			}

			printBuildResult(result)
			return nil
		},
	}
}

func cleanCommand() *cli.Command {
	return &cli.Command{
		Name:  "clean",
		Usage: "Remove every generated artifact",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			module, err := loadModule(cmd)
			if err != nil {
				return err
			}
			defer module.Close()

			if err := module.Clean(ctx); err != nil {
				return err
			}
			fmt.Println("cleaned", module.Config().Build.OutputDir)
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Build the site and serve it locally",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "Listen address",
				Sources: cli.EnvVars("PRESS_ADDR"),
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Rebuild when content or theme files change",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			module, err := loadModule(cmd)
			if err != nil {
				return err
			}
			defer module.Close()

			if _, err := module.Build(ctx, press.BuildOptions{}); err != nil {
				return err
			}

			cfg := module.Config()
			addr := cmd.String("addr")
			if addr == "" {
				addr = cfg.Server.Addr
			}

			srv, err := server.New(server.Config{
				Addr: addr,
				Root: cfg.Build.OutputDir,
			}, module.Logger())
			if err != nil {
				return err
			}

			group, groupCtx := errgroup.WithContext(ctx)
			group.Go(func() error {
				return srv.ListenAndServe(groupCtx)
			})

			if cmd.Bool("watch") || cfg.Server.Watch {
				group.Go(func() error {
					return watch.Watch(groupCtx, watch.Config{
						Dirs:       []string{cfg.Content.Dir, cfg.Theme.Path},
						Extensions: []string{".md", ".html", ".tmpl", ".css", ".js", ".json"},
					}, module.Logger(), func(rebuildCtx context.Context, _ []string) error {
						_, buildErr := module.Build(rebuildCtx, press.BuildOptions{})
						return buildErr
					})
				})
			}

			fmt.Printf("serving %s on %s\n", cfg.Build.OutputDir, addr)
			return group.Wait()
		},
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent build runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Number of runs to show",
				Value: 10,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			module, err := loadModule(cmd)
			if err != nil {
				return err
			}
			defer module.Close()

			records, err := module.History().List(ctx, int(cmd.Int("limit")))
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("no builds recorded")
				return nil
			}

			for _, record := range records {
				status := "ok"
				if !record.Succeeded {
					status = "failed"
				}
				if record.DryRun {
					status += " (dry-run)"
				}
				fmt.Printf("%s  %-16s built=%d skipped=%d tags=%d assets=%d in %s\n",
					record.StartedAt.Local().Format(time.DateTime),
					status,
					record.DocumentsBuilt,
					record.DocumentsSkipped,
					record.TagsBuilt,
					record.AssetsBuilt,
					record.Duration.Round(time.Millisecond),
				)
			}
			return nil
		},
	}
}

func printBuildResult(result *press.BuildResult) {
	if result == nil {
		return
	}
	fmt.Printf("built %d documents (%d skipped), %d tag pages, %d assets in %s\n",
		result.DocumentsBuilt,
		result.DocumentsSkipped,
		result.TagsBuilt,
		result.AssetsBuilt,
		result.Duration.Round(time.Millisecond),
	)
	for _, warning := range result.Warnings {
		fmt.Printf("warning: %s links to missing %s\n", warning.Source, warning.Target)
	}
	if result.DryRun {
		fmt.Println("dry run: nothing written")
	}
}
