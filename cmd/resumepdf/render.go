package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-resumepdf"
	"github.com/alnah/go-resumepdf/internal/fileutil"
	"github.com/alnah/go-resumepdf/internal/metrics"
	"github.com/alnah/go-resumepdf/internal/pdfcheck"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// stdinArg is the input argument that reads HTML from standard input.
const stdinArg = "-"

// renderJob is one input to render.
type renderJob struct {
	Input    string // file path or stdinArg
	FileName string // published file name
	Output   string // local copy path, empty when not requested
}

// renderOutcome holds the outcome of a single render.
type renderOutcome struct {
	Job      renderJob
	Publish  resumepdf.PublishResult
	Pages    int // 0 when not counted
	Err      error
	Duration time.Duration
}

// batchOptions controls what happens after each render.
type batchOptions struct {
	publish    bool
	countPages bool
}

// runRender executes the render command and returns an exit code.
func runRender(ctx context.Context, args []string, env *Environment) int {
	f, inputs, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return parseFailureExit(err, env)
	}

	cfg, envCfg, err := loadSettings(&f.common, &f.browser, &f.storage, env)
	if err != nil {
		fmt.Fprintln(env.Stderr, describeError(err, "", configName(&f.common, envCfg)))
		return exitCodeFor(err)
	}
	logger := initLogger(cfg, &f.common, env)

	jobs, err := planJobs(inputs, f)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}

	conv, err := env.NewConverter(ctx, cfg, metrics.NoopRecorder{}, logger)
	if err != nil {
		fmt.Fprintln(env.Stderr, describeError(err, cfg.Storage.PublicDir, ""))
		return exitCodeFor(err)
	}

	workers := resolveWorkers(f.workers, envCfg.Workers)
	if f.common.verbose {
		fmt.Fprintf(env.Stderr, "Workers: %d\n", workers)
	}

	opts := batchOptions{publish: !f.noPublish, countPages: f.common.verbose}
	outcomes := renderBatch(ctx, conv, jobs, workers, opts, env)

	if failed := printOutcomes(outcomes, f.common.quiet, f.common.verbose, cfg.Storage.PublicDir, env); failed > 0 {
		return exitCodeFor(firstError(outcomes))
	}
	return ExitSuccess
}

// planJobs validates the inputs against the flags and assigns file names.
func planJobs(inputs []string, f *renderFlags) ([]renderJob, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInput
	}
	batch := len(inputs) > 1
	if f.name != "" && batch {
		return nil, ErrNameWithBatch
	}
	if f.noPublish && f.output == "" {
		return nil, ErrNothingToDo
	}

	stdinSeen := false
	jobs := make([]renderJob, 0, len(inputs))
	for _, in := range inputs {
		if in == stdinArg {
			if stdinSeen {
				return nil, ErrMultipleStdin
			}
			stdinSeen = true
		}

		name := uuid.NewString() + ".pdf"
		if f.name != "" {
			name = withPDFExt(f.name)
		}
		if err := resumepdf.ValidateFileName(name); err != nil {
			return nil, err
		}

		jobs = append(jobs, renderJob{
			Input:    in,
			FileName: name,
			Output:   outputPath(f.output, in, name, batch),
		})
	}
	return jobs, nil
}

// withPDFExt appends .pdf unless name already ends with it.
func withPDFExt(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		return name
	}
	return name + ".pdf"
}

// outputPath resolves where the local copy of input goes.
// output is a directory in batch mode, when it ends with a separator, or when it exists as one.
func outputPath(output, input, fileName string, batch bool) string {
	if output == "" {
		return ""
	}
	asDir := batch ||
		strings.HasSuffix(output, "/") ||
		strings.HasSuffix(output, string(filepath.Separator)) ||
		fileutil.IsDir(output)
	if !asDir {
		return output
	}

	name := fileName
	if input != stdinArg {
		base := filepath.Base(input)
		name = strings.TrimSuffix(base, filepath.Ext(base)) + ".pdf"
	}
	return filepath.Join(output, name)
}

// renderBatch processes jobs concurrently, at most workers at a time.
// Outcomes are returned in job order.
func renderBatch(ctx context.Context, conv CLIConverter, jobs []renderJob, workers int, opts batchOptions, env *Environment) []renderOutcome {
	outcomes := make([]renderOutcome, len(jobs))

	var g errgroup.Group
	g.SetLimit(max(workers, 1))
	for i, job := range jobs {
		g.Go(func() error {
			outcomes[i] = renderOne(ctx, conv, job, opts, env)
			return nil
		})
	}
	// Failures are carried per job in outcomes.
	_ = g.Wait()

	return outcomes
}

// renderOne renders, optionally writes and publishes a single job.
func renderOne(ctx context.Context, conv CLIConverter, job renderJob, opts batchOptions, env *Environment) renderOutcome {
	start := env.Now()
	out := renderOutcome{Job: job}
	out.Err = processJob(ctx, conv, &out, opts, env.Stdin)
	out.Duration = env.Now().Sub(start)
	return out
}

func processJob(ctx context.Context, conv CLIConverter, out *renderOutcome, opts batchOptions, stdin io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	html, err := readInput(out.Job.Input, stdin)
	if err != nil {
		return err
	}

	art, err := conv.Render(ctx, html)
	if err != nil {
		return err
	}

	if opts.countPages {
		// Page count is informational; a PDF the parser rejects still gets published.
		if n, err := pdfcheck.PageCount(art.Bytes()); err == nil {
			out.Pages = n
		}
	}

	if out.Job.Output != "" {
		if err := writeOutput(out.Job.Output, art.Bytes()); err != nil {
			return err
		}
	}

	if opts.publish {
		res, err := conv.Publish(ctx, art, out.Job.FileName, "")
		if err != nil {
			return err
		}
		out.Publish = res
	}
	return nil
}

// readInput reads HTML from a file or, for stdinArg, from stdin.
func readInput(path string, stdin io.Reader) (string, error) {
	if path == stdinArg {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("%w: stdin: %w", ErrReadHTML, err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- input path is user-provided
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadHTML, err)
	}
	return string(data), nil
}

// writeOutput writes the local copy of a rendered PDF.
func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrWritePDF, err)
	}
	if err := fileutil.WriteFileAtomic(path, data, filePermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrWritePDF, err)
	}
	return nil
}

// displayName returns how an input is named in output.
func displayName(input string) string {
	if input == stdinArg {
		return "<stdin>"
	}
	return input
}

// resultSummary holds the count of succeeded and failed renders.
type resultSummary struct {
	Succeeded int
	Failed    int
}

// countOutcomes tallies succeeded and failed renders.
func countOutcomes(outcomes []renderOutcome) resultSummary {
	var summary resultSummary
	for _, o := range outcomes {
		if o.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// firstError returns the first failure in job order.
func firstError(outcomes []renderOutcome) error {
	for _, o := range outcomes {
		if o.Err != nil {
			return o.Err
		}
	}
	return nil
}

// printOutcomes writes one line per outcome and returns the failure count.
func printOutcomes(outcomes []renderOutcome, quiet, verbose bool, publicDir string, env *Environment) int {
	summary := countOutcomes(outcomes)

	for _, o := range outcomes {
		name := displayName(o.Job.Input)
		if o.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %s\n", name, describeError(o.Err, publicDir, ""))
			continue
		}

		if quiet {
			continue
		}

		if o.Publish.URL != "" {
			if verbose {
				fmt.Fprintf(env.Stdout, "%s -> %s (%s)\n", name, o.Publish.URL, verboseDetail(o, string(o.Publish.Origin)))
			} else {
				fmt.Fprintf(env.Stdout, "%s (%s)\n", o.Publish.URL, o.Publish.Origin)
			}
		}
		if o.Job.Output != "" {
			if verbose {
				fmt.Fprintf(env.Stdout, "%s -> %s (%s)\n", name, o.Job.Output, verboseDetail(o, "file"))
			} else {
				fmt.Fprintf(env.Stdout, "Created %s\n", o.Job.Output)
			}
		}
	}

	if !quiet && len(outcomes) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}

func verboseDetail(o renderOutcome, kind string) string {
	parts := []string{kind}
	if o.Pages > 0 {
		unit := "pages"
		if o.Pages == 1 {
			unit = "page"
		}
		parts = append(parts, fmt.Sprintf("%d %s", o.Pages, unit))
	}
	parts = append(parts, o.Duration.Round(time.Millisecond).String())
	return strings.Join(parts, ", ")
}
