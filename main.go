/*
hnflat fetches Hacker News discussions and flattens them into markdown.

Each discussion becomes a nested list, one item per comment, with a [+N] badge
counting every reply below it. Flagged, deleted and dead comments disappear
together with their replies. Long threads can be condensed to a target share
of their original size by pruning the least valuable leaf comments first.

Exit Codes:

	0 - Success
	2 - General failure (invalid input, network or I/O errors, etc.)
*/
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/fragmede/hnflat/internal/api"
	"github.com/fragmede/hnflat/internal/cache"
	"github.com/fragmede/hnflat/internal/condense"
	"github.com/fragmede/hnflat/internal/config"
	"github.com/fragmede/hnflat/internal/discussion"
	"github.com/fragmede/hnflat/internal/ui/pager"
)

const (
	exitTimeout     = 10 * time.Second
	exitCodeSuccess = 0
	exitCodeFailure = 2
)

// Version is populated by the build process.
var Version string

// Program is the primary structure of the application.
type Program struct {
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer
	cfg    config.Config
	log    *slog.Logger

	clientOpts []api.Option
	// viewer shows a result interactively; swapped out in tests.
	viewer func(*discussion.Result) error
}

// NewProgram returns a pointer to a new [Program].
func NewProgram(fs afero.Fs, stdout, stderr io.Writer, cfg config.Config, verbose bool, clientOpts ...api.Option) *Program {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	return &Program{
		fs:         fs,
		stdout:     stdout,
		stderr:     stderr,
		cfg:        cfg,
		log:        log,
		clientOpts: clientOpts,
		viewer:     viewResult,
	}
}

// client builds the HN client, backed by the cache when one is configured.
// The returned func releases the cache.
func (p *Program) client() (*api.Client, func(), error) {
	opts := append([]api.Option{api.WithLogger(p.log)}, p.clientOpts...)
	if !p.cfg.UseCache {
		return api.NewClient(p.cfg, opts...), func() {}, nil
	}

	// SQLite opens its file itself, so the cache lives on the OS filesystem
	// whatever p.fs is.
	if err := os.MkdirAll(p.cfg.CacheDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating cache dir: %w", err)
	}
	db, err := cache.Open(p.cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening cache: %w", err)
	}
	opts = append(opts, api.WithItemCache(db), api.WithPageCache(db))
	return api.NewClient(p.cfg, opts...), func() { db.Close() }, nil
}

// Flatten renders every referenced discussion and writes it to dest.
func (p *Program) Flatten(ctx context.Context, refs []string, opts discussion.Options, dest discussion.Destination) error {
	if dest.File != "" && !dest.Stdout && len(refs) > 1 {
		return discussion.ErrAmbiguousOutput
	}

	client, closeCache, err := p.client()
	if err != nil {
		return err
	}
	defer closeCache()

	runner := discussion.NewRunner(client, opts, p.log)
	results, err := runner.RunAll(ctx, refs)
	if err != nil {
		return err
	}

	writer := discussion.NewWriter(p.fs, p.stdout, dest, p.cfg.OutputPrefix, p.cfg.OutputExt, p.log)
	return writer.WriteAll(results)
}

// View flattens one discussion and opens it in the pager.
func (p *Program) View(ctx context.Context, ref string, opts discussion.Options) error {
	client, closeCache, err := p.client()
	if err != nil {
		return err
	}
	defer closeCache()

	res, err := discussion.NewRunner(client, opts, p.log).Run(ctx, ref)
	if err != nil {
		return err
	}
	return p.viewer(res)
}

func viewResult(res *discussion.Result) error {
	summary := fmt.Sprintf("%d comments, %d hidden", res.Forest.Count(), res.Stats.Excluded()+res.Stats.Orphaned)
	if cr := res.Condense; cr != nil {
		summary += fmt.Sprintf(" | condensed to %.0f%% (%d removed)", cr.Rate()*100, cr.Removed)
	}
	return pager.Run(res.Post, res.Forest, summary)
}

type commonFlags struct {
	condense      float64
	stepSize      int
	cacheDir      string
	maxAge        time.Duration
	source        string
	maxPages      int
	noFrontmatter bool
	verbose       bool
}

func (f *commonFlags) register(cmd *cobra.Command, cfg config.Config) {
	cmd.Flags().Float64Var(&f.condense, "condense", 0, "condense to this share of the original length, in (0, 1]")
	cmd.Flags().IntVar(&f.stepSize, "condense-step-size", cfg.CondenseStepSize, "leaf comments removed per condense iteration")
	cmd.Flags().StringVar(&f.cacheDir, "cache-dir", "", "directory to cache fetched pages and items in")
	cmd.Flags().DurationVar(&f.maxAge, "max-age", cfg.PageTTL, "refetch cached pages older than this; 0 keeps them forever")
	cmd.Flags().StringVar(&f.source, "source", string(discussion.SourceHTML), "read comments from the discussion page (html) or the JSON API (api)")
	cmd.Flags().IntVar(&f.maxPages, "max-pages", cfg.MaxPages, "follow at most this many pages of a long thread")
	cmd.Flags().BoolVar(&f.noFrontmatter, "no-frontmatter", false, "omit the YAML front matter")
	cmd.Flags().BoolVar(&f.verbose, "verbose", false, "show progress on standard error")
}

// resolve turns flags into configuration and pipeline options.
func (f *commonFlags) resolve(cmd *cobra.Command, cfg config.Config) (config.Config, discussion.Options, error) {
	source, err := discussion.ParseSource(f.source)
	if err != nil {
		return cfg, discussion.Options{}, err
	}

	opts := discussion.Options{
		Source:        source,
		StepSize:      f.stepSize,
		Frontmatter:   !f.noFrontmatter,
		MaxConcurrent: cfg.MaxConcurrent,
	}
	if cmd.Flags().Changed("condense") {
		if !(f.condense > 0 && f.condense <= 1) {
			return cfg, discussion.Options{}, fmt.Errorf("--condense %v: %w", f.condense, condense.ErrInvalidRatio)
		}
		ratio := f.condense
		opts.Condense = &ratio
	}

	if f.cacheDir != "" {
		cfg = cfg.WithCacheDir(f.cacheDir)
	}
	cfg.PageTTL = f.maxAge
	cfg.MaxPages = f.maxPages
	cfg.CondenseStepSize = f.stepSize
	return cfg, opts, nil
}

func newRootCmd(ctx context.Context, fs afero.Fs, stdout io.Writer, stderr io.Writer, clientOpts ...api.Option) *cobra.Command {
	cfg := config.Default()

	var (
		flags commonFlags
		dest  discussion.Destination
	)

	rootCmd := &cobra.Command{
		Use:               "hnflat <url|id>...",
		Short:             rootHelpShort,
		Long:              rootHelpLong,
		Example:           rootExample,
		Version:           Version,
		Args:              cobra.MinimumNArgs(1),
		SilenceErrors:     true,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			runCfg, opts, err := flags.resolve(cmd, cfg)
			if err != nil {
				return err
			}
			prog := NewProgram(fs, stdout, stderr, runCfg, flags.verbose, clientOpts...)

			return prog.Flatten(ctx, args, opts, dest)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	flags.register(rootCmd, cfg)
	rootCmd.Flags().StringVarP(&dest.File, "output", "o", "", "output file path")
	rootCmd.Flags().StringVar(&dest.Dir, "out-dir", "", "output directory (file names are generated)")
	rootCmd.Flags().BoolVar(&dest.Stdout, "stdout", false, "print to standard output instead of a file")
	rootCmd.MarkFlagsMutuallyExclusive("output", "out-dir", "stdout")

	var viewFlags commonFlags
	viewCmd := &cobra.Command{
		Use:     "view <url|id>",
		Short:   viewHelpShort,
		Long:    viewHelpLong,
		Example: viewExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runCfg, opts, err := viewFlags.resolve(cmd, cfg)
			if err != nil {
				return err
			}
			prog := NewProgram(fs, stdout, stderr, runCfg, viewFlags.verbose, clientOpts...)

			return prog.View(ctx, args[0], opts)
		},
	}
	viewFlags.register(viewCmd, cfg)

	rootCmd.AddCommand(viewCmd)

	return rootCmd
}

func main() {
	var exitCode int

	defer func() {
		os.Exit(exitCode)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		rootCmd := newRootCmd(ctx, afero.NewOsFs(), os.Stdout, os.Stderr)
		errChan <- rootCmd.Execute()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			exitCode = exitCodeFailure
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		} else {
			exitCode = exitCodeSuccess
		}

	case <-sigChan:
		fmt.Fprintln(os.Stderr, "interrupting...")
		cancel()

		select {
		case <-errChan:
			exitCode = exitCodeFailure
			fmt.Fprintln(os.Stderr, "interrupted (exited)")
		case <-time.After(exitTimeout):
			exitCode = exitCodeFailure
			fmt.Fprintln(os.Stderr, "interrupted (killed)")
		}
	}
}
