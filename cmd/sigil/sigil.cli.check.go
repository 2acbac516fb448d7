package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/itsatony/go-sigil"
)

// checkConfig holds parsed check command configuration
type checkConfig struct {
	templatePath string
	format       string
	quiet        bool
}

// checkOutput represents JSON output for check
type checkOutput struct {
	Valid  bool               `json:"valid"`
	Issues []checkIssueOutput `json:"issues,omitempty"`
}

type checkIssueOutput struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Offset  int    `json:"offset"`
}

func runCheck(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseCheckFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgMissingTemplate, err)
		return ExitCodeUsageError
	}

	// Read template
	templateSource, err := readInput(cfg.templatePath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadFileFailed, err)
		return ExitCodeInputError
	}

	// Create engine and check
	engine := sigil.MustNew()
	result, err := engine.Validate(string(templateSource))
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgCheckFailed, err)
		return ExitCodeError
	}

	// Quiet mode reports through the exit code only
	if cfg.quiet {
		if !result.Valid {
			return ExitCodeValidationError
		}
		return ExitCodeSuccess
	}

	// Output based on format
	if cfg.format == OutputFormatJSON {
		return outputCheckJSON(result, stdout)
	}
	return outputCheckText(result, stdout)
}

func parseCheckFlags(args []string) (*checkConfig, error) {
	fs := flag.NewFlagSet(CmdNameCheck, flag.ContinueOnError)
	fs.SetOutput(io.Discard) // Suppress default error messages

	cfg := &checkConfig{}

	fs.StringVar(&cfg.templatePath, FlagTemplate, "", "")
	fs.StringVar(&cfg.templatePath, FlagTemplateShort, "", "")
	fs.StringVar(&cfg.format, FlagFormat, FlagDefaultFormat, "")
	fs.StringVar(&cfg.format, FlagFormatShort, FlagDefaultFormat, "")
	fs.BoolVar(&cfg.quiet, FlagQuiet, false, "")
	fs.BoolVar(&cfg.quiet, FlagQuietShort, false, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.templatePath == "" {
		return nil, errors.New(ErrMsgMissingTemplate)
	}

	if cfg.format != OutputFormatText && cfg.format != OutputFormatJSON {
		return nil, errors.New(ErrMsgInvalidFormat)
	}

	return cfg, nil
}

func outputCheckText(result *sigil.ValidationResult, stdout io.Writer) int {
	if result.Valid {
		fmt.Fprintln(stdout, CheckTextSuccess)
		return ExitCodeSuccess
	}

	// Issue messages already carry their source position
	fmt.Fprintln(stdout, CheckTextIssueHeader)
	for _, issue := range result.Errors {
		fmt.Fprintf(stdout, CheckTextIssueFormat+FmtNewline, issue.Kind, issue.Message)
	}
	fmt.Fprintf(stdout, CheckTextSummary+FmtNewline, len(result.Errors))

	return ExitCodeValidationError
}

func outputCheckJSON(result *sigil.ValidationResult, stdout io.Writer) int {
	output := checkOutput{
		Valid:  result.Valid,
		Issues: make([]checkIssueOutput, 0, len(result.Errors)),
	}

	for _, issue := range result.Errors {
		output.Issues = append(output.Issues, checkIssueOutput{
			Kind:    issue.Kind,
			Message: issue.Message,
			Line:    issue.Position.Line,
			Column:  issue.Position.Column,
			Offset:  issue.Position.Offset,
		})
	}

	jsonBytes, _ := json.MarshalIndent(output, "", "  ")
	fmt.Fprintln(stdout, string(jsonBytes))

	if !output.Valid {
		return ExitCodeValidationError
	}
	return ExitCodeSuccess
}
