package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/arjunmahishi/scopeq/complete"
	"github.com/arjunmahishi/scopeq/config"
	"github.com/arjunmahishi/scopeq/fonts"
	"github.com/arjunmahishi/scopeq/lang"
	"github.com/arjunmahishi/scopeq/logger"
	"github.com/arjunmahishi/scopeq/lsp"
	"github.com/arjunmahishi/scopeq/output"
	"github.com/arjunmahishi/scopeq/workspace"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	app := &cli.Command{
		Name:    "scopeq",
		Usage:   "contextual completions for Typst documents",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to scopeq.toml (default: scopeq.toml in the root, if present)",
			},
			&cli.StringFlag{
				Name:  "root",
				Usage: "workspace root; overrides the config file",
			},
		},
		Commands: []*cli.Command{
			completeCommand(),
			bindingsCommand(),
			fontsCommand(),
			serveCommand(),
			exampleConfigCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		output.WriteError(err)
		os.Exit(1)
	}
}

// cursorFlags locate the cursor in --file.
func cursorFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "file",
			Aliases:  []string{"f"},
			Usage:    "document to complete (required)",
			Required: true,
		},
		&cli.IntFlag{
			Name:    "offset",
			Aliases: []string{"o"},
			Value:   -1,
			Usage:   "cursor as a byte offset",
		},
		&cli.IntFlag{
			Name:  "line",
			Usage: "cursor line, starting at 1",
		},
		&cli.IntFlag{
			Name:  "column",
			Usage: "cursor column in characters, starting at 1",
		},
		&cli.BoolFlag{
			Name:  "compact",
			Usage: "minimize output",
		},
	}
}

func completeCommand() *cli.Command {
	return &cli.Command{
		Name:  "complete",
		Usage: "list completions at a cursor position",
		Description: "Examples:\n" +
			"  scopeq complete -f main.typ --offset 42\n" +
			"  scopeq complete -f main.typ --line 3 --column 7 --compact",
		Flags: append(cursorFlags(),
			&cli.BoolFlag{
				Name:  "explicit",
				Value: true,
				Usage: "complete as if requested by the user rather than by typing",
			},
			&cli.BoolFlag{
				Name:  "fonts",
				Value: true,
				Usage: "scan fonts to complete font family names",
			},
		),
		Action: runComplete,
	}
}

type completeResult struct {
	File        string                `json:"file"`
	Cursor      int                   `json:"cursor"`
	From        int                   `json:"from"`
	Completions []complete.Completion `json:"completions"`
}

func runComplete(ctx context.Context, cmd *cli.Command) error {
	env, err := setup(cmd, cmd.Bool("fonts"))
	if err != nil {
		return err
	}
	defer env.log.Sync() //nolint:errcheck

	req, err := env.request(ctx, cmd)
	if err != nil {
		return err
	}
	from, items := complete.Complete(req.world, req.doc.Source, req.cursor, complete.Options{
		Explicit: cmd.Bool("explicit"),
		Logger:   env.log,
	})
	if items == nil {
		items = []complete.Completion{}
	}

	return output.New(output.Config{Compact: cmd.Bool("compact")}).Write(completeResult{
		File:        cmd.String("file"),
		Cursor:      req.cursor,
		From:        from,
		Completions: items,
	})
}

func bindingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "bindings",
		Usage: "list the names in scope at a cursor position",
		Description: "Examples:\n" +
			"  scopeq bindings -f main.typ --line 10 --column 1",
		Flags:  cursorFlags(),
		Action: runBindings,
	}
}

func runBindings(ctx context.Context, cmd *cli.Command) error {
	env, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer env.log.Sync() //nolint:errcheck

	req, err := env.request(ctx, cmd)
	if err != nil {
		return err
	}
	bindings := complete.Locals(req.world, req.doc.Source, req.cursor, complete.Options{Logger: env.log})
	if bindings == nil {
		bindings = []complete.Binding{}
	}
	return output.New(output.Config{Compact: cmd.Bool("compact")}).Write(bindings)
}

func fontsCommand() *cli.Command {
	return &cli.Command{
		Name:  "fonts",
		Usage: "list the font families documents can use",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "variants",
				Usage: "include the faces of each family",
			},
			&cli.BoolFlag{
				Name:  "compact",
				Usage: "minimize output",
			},
		},
		Action: runFonts,
	}
}

type fontVariant struct {
	Style string `json:"style,omitempty"`
	Path  string `json:"path"`
	Index int    `json:"index,omitempty"`
}

type fontFamily struct {
	Name     string        `json:"name"`
	Count    int           `json:"count"`
	Variants []fontVariant `json:"variants,omitempty"`
}

func runFonts(_ context.Context, cmd *cli.Command) error {
	env, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer env.log.Sync() //nolint:errcheck

	families := env.ws.Fonts().Families()
	out := make([]fontFamily, 0, len(families))
	for _, f := range families {
		fam := fontFamily{Name: f.Name, Count: len(f.Variants)}
		if cmd.Bool("variants") {
			for _, v := range f.Variants {
				fam.Variants = append(fam.Variants, fontVariant{Style: v.Style, Path: v.Path, Index: v.Index})
			}
		}
		out = append(out, fam)
	}
	return output.New(output.Config{Compact: cmd.Bool("compact")}).Write(out)
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the language server on stdin and stdout",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "watch",
				Value: true,
				Usage: "re-index files changed outside the editor",
			},
		},
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	env, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer env.log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	n, err := env.ws.Index(ctx)
	if err != nil {
		env.log.Warnw("failed to index workspace", "root", env.ws.Root(), "error", err)
	} else {
		env.log.Infow("indexed workspace", "root", env.ws.Root(), "files", n)
	}
	if cmd.Bool("watch") {
		go func() {
			if err := env.ws.Watch(ctx, workspace.DefaultDebounce, nil); err != nil {
				env.log.Warnw("file watcher stopped", "error", err)
			}
		}()
	}

	return lsp.New(env.ws, env.log, version).RunStdio()
}

// env is what every command runs against.
type env struct {
	cfg config.Config
	log *zap.SugaredLogger
	ws  *workspace.Workspace
}

// setup loads the configuration and builds the workspace. Fonts are only
// scanned when withFonts is set.
func setup(cmd *cli.Command, withFonts bool) (*env, error) {
	dir := cmd.String("root")
	if dir == "" {
		dir = "."
	}
	cfg, err := config.Load(cmd.String("config"), dir)
	if err != nil {
		return nil, err
	}
	if root := cmd.String("root"); root != "" {
		cfg.Root = root
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	var book *fonts.Book
	if withFonts {
		if book, err = fonts.Scan(fonts.Dirs(cfg.FontPaths, cfg.SystemFonts), log); err != nil {
			return nil, err
		}
	}

	ws, err := workspace.New(workspace.Options{
		Root:        cfg.Root,
		PackagePath: cfg.PackagePath,
		Exclude:     cfg.Exclude,
		MaxBytes:    cfg.MaxBytes,
		Jobs:        cfg.Jobs,
		Fonts:       book,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, ws: ws}, nil
}

type request struct {
	doc    *lang.Document
	world  complete.World
	cursor int
}

func (e *env) request(ctx context.Context, cmd *cli.Command) (*request, error) {
	path, err := filepath.Abs(cmd.String("file"))
	if err != nil {
		return nil, errors.Wrap(err, "resolve file")
	}
	doc, err := e.ws.Document(ctx, path)
	if err != nil {
		return nil, err
	}
	cursor, err := cursorOffset(doc.Source.Text(), cmd.Int("offset"), cmd.Int("line"), cmd.Int("column"))
	if err != nil {
		return nil, err
	}
	return &request{doc: doc, world: e.ws.World(doc, path), cursor: cursor}, nil
}
