package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: resumepdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render     Render HTML files to PDF and publish them")
	fmt.Fprintln(w, "  serve      Run the HTTP render API")
	fmt.Fprintln(w, "  doctor     Check browser and storage setup")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'resumepdf help <command>' for details on a specific command.")
}

// printBrowserFlags prints the flags shared by every browser-driving command.
func printBrowserFlags(w io.Writer) {
	fmt.Fprintln(w, "Browser:")
	fmt.Fprintln(w, "      --chrome <path>       Chrome executable or directory to scan")
	fmt.Fprintln(w, "      --provider <s>        Runtime provider: packaged, system")
	fmt.Fprintln(w, "  -t, --timeout <d>         Render timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "  -p, --page-format <s>     Page format: a4, letter, legal")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Storage:")
	fmt.Fprintln(w, "      --public-dir <path>   Local fallback root (PDFs go to <dir>/pdfs)")
	fmt.Fprintln(w, "      --base-url <url>      Base URL for locally published PDFs")
	fmt.Fprintln(w, "      --token <s>           Blob store token")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: resumepdf render <file.html>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render HTML to PDF and publish it. Remote storage is tried first;")
	fmt.Fprintln(w, "the PDF falls back to <public-dir>/pdfs when none is configured or all fail.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  file.html    HTML file, or - to read from stdin")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -n, --name <s>            Published file name (single input, default: random)")
	fmt.Fprintln(w, "  -o, --output <path>       Also write the PDF to a file or directory")
	fmt.Fprintln(w, "      --no-publish          Skip publishing (requires --output)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel renders (0 = auto)")
	fmt.Fprintln(w)
	printBrowserFlags(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: resumepdf serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve the render API:")
	fmt.Fprintln(w, "  POST /api/pdf/{id}    Render the HTML body (or JSON {\"html\"}) and publish {id}.pdf")
	fmt.Fprintln(w, "  GET  /api/pdf/{id}    Redirect to the last published URL for {id}")
	fmt.Fprintln(w, "  GET  /pdfs/{name}     Serve a locally published PDF")
	fmt.Fprintln(w, "  GET  /healthz         Liveness probe")
	fmt.Fprintln(w, "  GET  /metrics         Prometheus metrics")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "      --addr <addr>         Listen address (default :8080)")
	fmt.Fprintln(w)
	printBrowserFlags(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: resumepdf doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that a browser can be resolved and PDFs can be published.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Doctor:")
	fmt.Fprintln(w, "      --json                Output results as JSON")
	fmt.Fprintln(w, "      --self-test           Render a test page with the resolved browser")
	fmt.Fprintln(w)
	printBrowserFlags(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: resumepdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: resumepdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
