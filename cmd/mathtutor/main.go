// mathtutor — command-line client for the math tutor service.
//
// Usage:
//
//	mathtutor [global flags] <command> [args]
//
// Commands:
//
//	ocr   [--json] <image>              recognize the expression in a photo
//	solve [--json] <expression...>      solve an expression step by step
//	doubt [--json] [--step N] <question...>
//	                                    ask a follow-up question
//	version                             print the version
//	help                                show this help
//
// Global flags match mathtutor-tui and can also be set through
// MATHTUTOR_* environment variables or a .env file.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/mathtutor/internal/api"
	"github.com/Mr-Dark-debug/mathtutor/internal/config"
	"github.com/Mr-Dark-debug/mathtutor/internal/logging"
	"github.com/Mr-Dark-debug/mathtutor/internal/logging/events"
	"github.com/Mr-Dark-debug/mathtutor/internal/typeset"
	"github.com/Mr-Dark-debug/mathtutor/internal/upload"
	"github.com/Mr-Dark-debug/mathtutor/pkg/jsonutil"
	"github.com/Mr-Dark-debug/mathtutor/pkg/timeutil"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

const connectionFailureText = "Could not reach the server. Check your connection and try again."

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#58a6ff"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#bc8cff"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e"))
	alertStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f85149"))
)

func main() {
	cfg := config.MustLoad()
	logging.Configure(cfg.Logging.FilePath)
	logging.SetTraceEnabled(cfg.Logging.Trace)
	if err := logging.ConfigureSentry(cfg.Sentry.DSN, cfg.Sentry.Environment, "mathtutor@"+Version); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cfg, os.Stdout, os.Stderr)
	stop()
	logging.Flush(2 * time.Second)
	os.Exit(code)
}

type command func(ctx context.Context, client *api.Client, args []string, stdout, stderr io.Writer) int

var commands = map[string]command{
	"ocr":   runOCR,
	"solve": runSolve,
	"doubt": runDoubt,
}

// run dispatches the subcommand named by the first positional argument
// and returns the process exit status.
func run(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) int {
	if len(cfg.Positional) == 0 {
		printUsage(stderr)
		return exitUsage
	}
	name, args := cfg.Positional[0], cfg.Positional[1:]
	switch name {
	case "version":
		fmt.Fprintf(stdout, "mathtutor %s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
		return exitOK
	case "help":
		printUsage(stdout)
		return exitOK
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		printUsage(stderr)
		return exitUsage
	}
	client, err := api.NewClient(cfg.App.API)
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return exitUsage
	}
	events.App.Start(map[string]interface{}{"command": name, "args": args, "server": client.BaseURL()})
	return cmd(ctx, client, args, stdout, stderr)
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: mathtutor [global flags] <command> [args]

Commands:
  ocr   [--json] <image>                 recognize the expression in a photo
  solve [--json] <expression...>         solve an expression step by step
  doubt [--json] [--step N] <question...> ask a follow-up question
  version                                print the version
  help                                   show this help

Global flags:
`)
	fmt.Fprint(w, config.Usage(os.Environ()))
}

func newCommandFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *bool) {
	fs := flag.NewFlagSet("mathtutor "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	raw := fs.Bool("json", false, "print the raw JSON response")
	return fs, raw
}

// parseInterspersed parses flags that appear anywhere in args and
// returns the remaining words in order. Everything after "--" is a word.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var words []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return words, nil
		}
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(words, rest...), nil
		}
		words = append(words, rest[0])
		args = rest[1:]
	}
}

// ────────────────────────────────────────────────────────────
// Commands
// ────────────────────────────────────────────────────────────

func runOCR(ctx context.Context, client *api.Client, args []string, stdout, stderr io.Writer) int {
	fs, raw := newCommandFlagSet("ocr", stderr)
	if err := fs.Parse(args); err != nil {
		return parseStatus(err)
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: mathtutor ocr [--json] <image>")
		return exitUsage
	}

	sel, err := upload.Inspect(fs.Arg(0))
	if err != nil {
		if errors.Is(err, upload.ErrNoFile) {
			fmt.Fprintln(stderr, "Please select an image file first.")
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return exitUsage
	}
	data, err := sel.ReadAll()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	start := time.Now()
	resp, err := client.UploadOCR(ctx, api.UploadRequest{
		Filename:    sel.Name,
		ContentType: sel.ContentType(),
		Body:        bytes.NewReader(data),
	})
	if err != nil {
		return transportFailure(stderr, "ocr", err)
	}
	if *raw {
		return printRaw(stdout, resp.Raw, resp.Failure)
	}
	if resp.Failed() {
		return applicationFailure(stderr, resp.Failure)
	}

	latex := resp.LaTeX.String()
	section(stdout, "Recognized "+sel.Describe())
	if latex == "" {
		fmt.Fprintln(stdout, indent(dimStyle.Render("No expression was recognized in the image.")))
	} else {
		fmt.Fprintln(stdout, indent(typeset.Render(typeset.Wrap(latex))))
		fmt.Fprintln(stdout, indent(dimStyle.Render("LaTeX: "+latex)))
	}
	footer(stdout, start)
	return exitOK
}

func runSolve(ctx context.Context, client *api.Client, args []string, stdout, stderr io.Writer) int {
	fs, raw := newCommandFlagSet("solve", stderr)
	if err := fs.Parse(args); err != nil {
		return parseStatus(err)
	}
	input := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if input == "" {
		fmt.Fprintln(stderr, "usage: mathtutor solve [--json] <expression...>")
		return exitUsage
	}

	start := time.Now()
	resp, err := client.SolveMath(ctx, api.MathRequest{Input: input})
	if err != nil {
		return transportFailure(stderr, "solve", err)
	}
	if *raw {
		return printRaw(stdout, resp.Raw, resp.Failure)
	}
	if resp.Failed() {
		return applicationFailure(stderr, resp.Failure)
	}

	heading := "Answer"
	if !resp.ProblemType.Empty() {
		heading += " (" + resp.ProblemType.String() + ")"
	}
	section(stdout, heading)
	fmt.Fprintln(stdout, indent(typeset.Render(typeset.Wrap(resp.FinalAnswer.String()))))

	section(stdout, "Steps")
	if len(resp.Steps) == 0 {
		fmt.Fprintln(stdout, indent(dimStyle.Render("No steps available.")))
	}
	for i, s := range resp.Steps {
		fmt.Fprintln(stdout, indent(labelStyle.Render(s.Label(i))))
		fmt.Fprintln(stdout, indent(indent(typeset.Render(typeset.Wrap(s.Output.String())))))
		if !s.Hint.Empty() {
			fmt.Fprintln(stdout, indent(indent(dimStyle.Render(typeset.Render(s.Hint.String())))))
		}
	}

	section(stdout, "Explanation")
	if explanation := typeset.Prose(resp.Explanation.String()); explanation != "" {
		fmt.Fprintln(stdout, indent(typeset.Render(explanation)))
	} else {
		fmt.Fprintln(stdout, indent(dimStyle.Render("No explanation available.")))
	}
	footer(stdout, start)
	return exitOK
}

func runDoubt(ctx context.Context, client *api.Client, args []string, stdout, stderr io.Writer) int {
	fs, raw := newCommandFlagSet("doubt", stderr)
	stepFlag := fs.String("step", "", "step number the question refers to")
	words, err := parseInterspersed(fs, args)
	if err != nil {
		return parseStatus(err)
	}
	question := strings.TrimSpace(strings.Join(words, " "))
	if question == "" {
		fmt.Fprintln(stderr, "Please enter a question first.")
		return exitUsage
	}
	step, err := api.ParseStep(*stepFlag)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	start := time.Now()
	resp, err := client.AskDoubt(ctx, api.DoubtRequest{Question: question, Step: step})
	if err != nil {
		return transportFailure(stderr, "doubt", err)
	}
	if *raw {
		return printRaw(stdout, resp.Raw, resp.Failure)
	}
	if resp.Failed() {
		return applicationFailure(stderr, resp.Failure)
	}

	section(stdout, "Answer")
	if answer := typeset.Prose(resp.Answer.String()); answer != "" {
		fmt.Fprintln(stdout, indent(typeset.Render(answer)))
	} else {
		fmt.Fprintln(stdout, indent(dimStyle.Render("No answer was returned.")))
	}
	footer(stdout, start)
	return exitOK
}

// ────────────────────────────────────────────────────────────
// Output helpers
// ────────────────────────────────────────────────────────────

func section(w io.Writer, title string) {
	fmt.Fprintln(w, headingStyle.Render(title))
}

func footer(w io.Writer, start time.Time) {
	fmt.Fprintln(w, dimStyle.Render(timeutil.FormatLatency(time.Since(start))))
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = "  " + line
		}
	}
	return strings.Join(lines, "\n")
}

func printRaw(w io.Writer, raw []byte, f api.Failure) int {
	fmt.Fprintln(w, jsonutil.PrettyJSON(string(raw)))
	if f.Failed() {
		return exitFailure
	}
	return exitOK
}

func applicationFailure(w io.Writer, f api.Failure) int {
	fmt.Fprintln(w, alertStyle.Render(f.Reason()))
	if !f.Hint.Empty() {
		fmt.Fprintln(w, "Hint: "+f.Hint.String())
	}
	return exitFailure
}

func transportFailure(w io.Writer, kind string, err error) int {
	logging.Error(fmt.Errorf("%s request failed: %w", kind, err))
	fmt.Fprintln(w, alertStyle.Render(connectionFailureText))
	fmt.Fprintln(w, dimStyle.Render(err.Error()))
	return exitFailure
}

func parseStatus(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	return exitUsage
}
