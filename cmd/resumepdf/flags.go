package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// browserFlags holds browser resolution and render flags.
type browserFlags struct {
	chrome     string
	provider   string
	timeout    string
	pageFormat string
}

// storageFlags holds publish destination flags.
type storageFlags struct {
	publicDir string
	baseURL   string
	token     string
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common    commonFlags
	browser   browserFlags
	storage   storageFlags
	name      string
	output    string
	noPublish bool
	workers   int
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common  commonFlags
	browser browserFlags
	storage storageFlags
	addr    string
}

// doctorFlags holds all flags for the doctor command.
type doctorFlags struct {
	common   commonFlags
	browser  browserFlags
	storage  storageFlags
	json     bool
	selfTest bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
}

// addBrowserFlags adds browser flags to a FlagSet.
func addBrowserFlags(fs *flag.FlagSet, f *browserFlags) {
	fs.StringVar(&f.chrome, "chrome", "", "chrome executable or directory to scan")
	fs.StringVar(&f.provider, "provider", "", "runtime provider: packaged, system")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "render timeout (e.g., 30s, 2m)")
	fs.StringVarP(&f.pageFormat, "page-format", "p", "", "page format: a4, letter, legal")
}

// addStorageFlags adds storage flags to a FlagSet.
func addStorageFlags(fs *flag.FlagSet, f *storageFlags) {
	fs.StringVar(&f.publicDir, "public-dir", "", "local fallback root (PDFs go to <dir>/pdfs)")
	fs.StringVar(&f.baseURL, "base-url", "", "base URL for locally published PDFs")
	fs.StringVar(&f.token, "token", "", "blob store token for this run")
}

// newFlagSet creates a FlagSet that reports errors instead of exiting.
func newFlagSet(name string, stderr io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }
	return fs
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, stderr io.Writer) (*renderFlags, []string, error) {
	f := &renderFlags{}
	fs := newFlagSet("render", stderr, printRenderUsage)

	fs.StringVarP(&f.name, "name", "n", "", "published file name (single input, default: random)")
	fs.StringVarP(&f.output, "output", "o", "", "also write the PDF to a file or directory")
	fs.BoolVar(&f.noPublish, "no-publish", false, "skip publishing (requires --output)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel renders (0 = auto)")

	addCommonFlags(fs, &f.common)
	addBrowserFlags(fs, &f.browser)
	addStorageFlags(fs, &f.storage)

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, error) {
	f := &serveFlags{}
	fs := newFlagSet("serve", stderr, printServeUsage)

	fs.StringVar(&f.addr, "addr", "", "listen address (default :8080)")

	addCommonFlags(fs, &f.common)
	addBrowserFlags(fs, &f.browser)
	addStorageFlags(fs, &f.storage)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, errUnexpectedArgs(fs.Args())
	}
	return f, nil
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string, stderr io.Writer) (*doctorFlags, error) {
	f := &doctorFlags{}
	fs := newFlagSet("doctor", stderr, printDoctorUsage)

	fs.BoolVar(&f.json, "json", false, "output results as JSON")
	fs.BoolVar(&f.selfTest, "self-test", false, "render a test page with the resolved browser")

	addCommonFlags(fs, &f.common)
	addBrowserFlags(fs, &f.browser)
	addStorageFlags(fs, &f.storage)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, errUnexpectedArgs(fs.Args())
	}
	return f, nil
}
