package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bodgit/spriteslice"
	"github.com/bodgit/spriteslice/batch"
	"github.com/bodgit/spriteslice/config"
	"github.com/bodgit/spriteslice/metadata"
	"github.com/urfave/cli/v2"
)

const minRefresh = 100 * time.Millisecond

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func loadConfig(c *cli.Context) (config.Config, error) {
	// Only insist on the file existing if it was asked for
	return config.Load(c.String("config"), !c.IsSet("config"))
}

// Command line flags take precedence over the configuration file
func applyFlags(c *cli.Context, conf *config.Config) {
	if c.IsSet("mode") {
		conf.Slice.Mode = c.String("mode")
	}
	if c.IsSet("columns") {
		conf.Slice.Columns = c.Int("columns")
	}
	if c.IsSet("rows") {
		conf.Slice.Rows = c.Int("rows")
	}
	if c.IsSet("cell-width") {
		conf.Slice.CellWidth = c.Int("cell-width")
	}
	if c.IsSet("cell-height") {
		conf.Slice.CellHeight = c.Int("cell-height")
	}
	if c.IsSet("pivot") {
		conf.Pivot.Preset = c.String("pivot")
	}
	if c.IsSet("pivot-x") {
		conf.Pivot.X = c.Float64("pivot-x")
	}
	if c.IsSet("pivot-y") {
		conf.Pivot.Y = c.Float64("pivot-y")
	}
	if c.IsSet("pivot-unit") {
		conf.Pivot.Unit = c.String("pivot-unit")
	}
	if c.IsSet("workers") {
		conf.Batch.Workers = c.Int("workers")
	}
	if c.IsSet("cell-workers") {
		conf.Batch.CellWorkers = c.Int("cell-workers")
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancelFunc := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-ch:
			cancelFunc()
		case <-ctx.Done():
		}
		signal.Stop(ch)
	}()
	return ctx, cancelFunc
}

func printResults(w io.Writer, results []batch.Result, asJSON bool) error {
	if asJSON {
		type sheet struct {
			Path    string                         `json:"path"`
			Sprites []spriteslice.SpriteDescriptor `json:"sprites"`
			Error   string                         `json:"error,omitempty"`
		}
		sheets := make([]sheet, 0, len(results))
		for _, r := range results {
			s := sheet{Path: r.Path, Sprites: r.Sprites}
			if r.Err != nil {
				s.Error = r.Err.Error()
			}
			sheets = append(sheets, s)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sheets)
	}

	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(w, "%s\tfailed\t%v\n", r.Path, r.Err)
		case r.Empty():
			fmt.Fprintf(w, "%s\t%dx%d\tno sprites\n", r.Path, r.Width, r.Height)
		default:
			fmt.Fprintf(w, "%s\t%dx%d\t%d sprites\n", r.Path, r.Width, r.Height, len(r.Sprites))
		}
	}
	return nil
}

func sliceAction(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	logger := newLogger(c)

	conf, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	applyFlags(c, &conf)

	slice, err := conf.SliceSpec()
	if err != nil {
		return cli.Exit(err, 1)
	}
	pivot, err := conf.PivotSpec()
	if err != nil {
		return cli.Exit(err, 1)
	}

	var sink batch.Sink
	if !c.Bool("dry-run") {
		path := conf.Database.Path
		if c.IsSet("db") {
			path = c.String("db")
		}
		db, err := metadata.New(path)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer db.Close()
		sink = db
	}

	ctx, cancelFunc := signalContext()
	defer cancelFunc()

	b := batch.New(spriteslice.New(logger, spriteslice.WithWorkers(conf.Batch.CellWorkers)), sink, logger, conf.Batch.Workers)

	results, err := b.Run(ctx, c.Args().Slice(), slice, pivot)
	if err != nil {
		return cli.Exit(err, 1)
	}

	if err := printResults(c.App.Writer, results, c.Bool("json")); err != nil {
		return cli.Exit(err, 1)
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d sheets failed", failed, len(results)), 1)
	}

	return nil
}

func list(ctx context.Context, w io.Writer, logger *log.Logger, paths []string) error {
	files, err := batch.Select(ctx, paths)
	if err != nil {
		return err
	}
	for _, file := range files {
		info, err := batch.Stat(file)
		if err != nil {
			logger.Printf("%s: skipped: %v\n", file, err)
			continue
		}
		fmt.Fprintf(w, "%s\t%dx%d\n", info.Name, info.Width, info.Height)
	}
	return nil
}

func listAction(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	logger := newLogger(c)

	ctx, cancelFunc := signalContext()
	defer cancelFunc()

	if err := list(ctx, c.App.Writer, logger, c.Args().Slice()); err != nil {
		return cli.Exit(err, 1)
	}

	if !c.IsSet("refresh") {
		return nil
	}

	interval := c.Duration("refresh")
	if interval < minRefresh {
		interval = minRefresh
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fmt.Fprintln(c.App.Writer)
			if err := list(ctx, c.App.Writer, logger, c.Args().Slice()); err != nil {
				return cli.Exit(err, 1)
			}
		}
	}
}

func showAction(c *cli.Context) error {
	conf, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err, 1)
	}

	path := conf.Database.Path
	if c.IsSet("db") {
		path = c.String("db")
	}

	db, err := metadata.New(path)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer db.Close()

	if c.NArg() < 1 {
		sheets, err := db.Sheets()
		if err != nil {
			return cli.Exit(err, 1)
		}
		for _, s := range sheets {
			fmt.Fprintf(c.App.Writer, "%s\t%dx%d\t%d sprites\n", s.Path, s.Width, s.Height, s.Sprites)
		}
		return nil
	}

	sprites, err := db.Sprites(c.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}
	for _, s := range sprites {
		fmt.Fprintf(c.App.Writer, "%s\t%d,%d %dx%d\tpivot %g,%g %v\n", s.Name, s.Rect.X, s.Rect.Y, s.Rect.Width, s.Rect.Height, s.Pivot.X, s.Pivot.Y, s.Alignment)
	}
	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "spriteslice"
	app.Usage = "Sprite sheet slicing utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			EnvVars: []string{"SPRITESLICE_CONFIG"},
			Value:   filepath.Join(cwd, config.Filename),
			Usage:   "path to configuration file",
		},
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"SPRITESLICE_DB"},
			Value:   filepath.Join(cwd, metadata.Filename),
			Usage:   "path to database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "slice",
			Usage:       "Slice sprite sheets into a grid of sprites",
			Description: "Each PATH is an image or a directory searched for images. Fully transparent cells are skipped.",
			ArgsUsage:   "PATH...",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "mode",
					Usage: "grid from cell \"count\" or cell \"size\"",
				},
				&cli.IntFlag{
					Name:  "columns",
					Usage: "cells per row in count mode",
				},
				&cli.IntFlag{
					Name:  "rows",
					Usage: "cells per column in count mode",
				},
				&cli.IntFlag{
					Name:  "cell-width",
					Usage: "cell width in pixels in size mode",
				},
				&cli.IntFlag{
					Name:  "cell-height",
					Usage: "cell height in pixels in size mode",
				},
				&cli.StringFlag{
					Name:  "pivot",
					Usage: "pivot preset, center, top, top-left, top-right, left, right, bottom, bottom-left, bottom-right or custom",
				},
				&cli.Float64Flag{
					Name:  "pivot-x",
					Usage: "custom pivot x",
				},
				&cli.Float64Flag{
					Name:  "pivot-y",
					Usage: "custom pivot y",
				},
				&cli.StringFlag{
					Name:  "pivot-unit",
					Usage: "custom pivot unit, \"normalized\" or \"pixels\"",
				},
				&cli.IntFlag{
					Name:  "workers",
					Usage: "sheets processed concurrently",
				},
				&cli.IntFlag{
					Name:  "cell-workers",
					Usage: "cells inspected concurrently per sheet",
				},
				&cli.BoolFlag{
					Name:  "dry-run",
					Usage: "don't write to the database",
				},
				&cli.BoolFlag{
					Name:  "json",
					Usage: "print sprites as JSON",
				},
			},
			Action: sliceAction,
		},
		{
			Name:      "list",
			Usage:     "List the sprite sheets that would be sliced",
			ArgsUsage: "PATH...",
			Flags: []cli.Flag{
				&cli.DurationFlag{
					Name:  "refresh",
					Usage: "list again at this interval until interrupted",
				},
			},
			Action: listAction,
		},
		{
			Name:      "show",
			Usage:     "Show sheets and sprites stored in the database",
			ArgsUsage: "[SHEET]",
			Action:    showAction,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
