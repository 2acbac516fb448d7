package main

// Command names
const (
	CmdNameRender  = "render"
	CmdNameCheck   = "check"
	CmdNameVersion = "version"
	CmdNameHelp    = "help"
)

// Flag names - long form
const (
	FlagTemplate = "template"
	FlagData     = "data"
	FlagDataFile = "data-file"
	FlagOutput   = "output"
	FlagQuiet    = "quiet"
	FlagVerbose  = "verbose"
	FlagFormat   = "format"
)

// Flag names - short form
const (
	FlagTemplateShort = "t"
	FlagDataShort     = "d"
	FlagDataFileShort = "f"
	FlagOutputShort   = "o"
	FlagQuietShort    = "q"
	FlagVerboseShort  = "v"
	FlagFormatShort   = "F"
)

// Flag default values
const (
	FlagDefaultOutput = "-" // stdout
	FlagDefaultFormat = "text"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes
const (
	ExitCodeSuccess         = 0
	ExitCodeError           = 1
	ExitCodeUsageError      = 2
	ExitCodeValidationError = 3
	ExitCodeInputError      = 4
)

// Input source indicators
const (
	InputSourceStdin = "-"
)

// Error messages - ALL must be constants
const (
	ErrMsgNoCommand           = "no command specified"
	ErrMsgUnknownCommand      = "unknown command"
	ErrMsgMissingTemplate     = "template source required"
	ErrMsgInvalidJSON         = "invalid JSON data"
	ErrMsgReadFileFailed      = "failed to read file"
	ErrMsgReadStdinFailed     = "failed to read from stdin"
	ErrMsgWriteOutputFailed   = "failed to write output"
	ErrMsgCompileFailed       = "template compilation failed"
	ErrMsgRenderFailed        = "template rendering failed"
	ErrMsgCheckFailed         = "template check failed"
	ErrMsgInvalidFormat       = "invalid output format"
	ErrMsgUnsupportedDataKind = "data values must be numbers, strings, or booleans"
)

// Help text templates
const (
	HelpMainUsage = `go-sigil - Strict expression templating CLI

Usage:
    sigil <command> [options]

Commands:
    render      Render a template with data
    check       Check a template without rendering
    version     Show version information
    help        Show help for a command

Use "sigil help <command>" for more information about a command.`

	HelpRenderUsage = `Render a template with data

Usage:
    sigil render [options]

Options:
    -t, --template <file>   Template file (use "-" for stdin)
    -d, --data <json>       JSON object with variable bindings
    -f, --data-file <file>  JSON data file
    -o, --output <file>     Output file (default: stdout)
    -q, --quiet             Suppress rendered output on stdout
    -v, --verbose           Enable debug logging on stderr

Data values must be JSON numbers, strings, or booleans; arrays,
objects, and null have no template representation and are rejected.

Examples:
    sigil render -t greeting.txt -d '{"name": "Alice"}'
    sigil render -t greeting.txt -f data.json
    cat greeting.txt | sigil render -t - -d '{"name": "Bob"}'
    sigil render -t greeting.txt -f data.json -o output.txt`

	HelpCheckUsage = `Check a template without rendering

Compiles the template and reports lexical and syntactic problems with
their positions. Render-stage problems (unbound variables, type
errors) are not detected by check.

Usage:
    sigil check [options]

Options:
    -t, --template <file>   Template file (use "-" for stdin)
    -F, --format <format>   Output format: text, json (default: text)
    -q, --quiet             Suppress output; exit code carries the verdict

Examples:
    sigil check -t greeting.txt
    sigil check -t greeting.txt -F json
    cat greeting.txt | sigil check -t -`

	HelpVersionUsage = `Show version information

Usage:
    sigil version [options]

Options:
    -F, --format <format>   Output format: text, json (default: text)`

	HelpHelpUsage = `Show help for a command

Usage:
    sigil help [command]

Commands:
    render      Show help for render command
    check       Show help for check command
    version     Show help for version command`
)

// Version output format templates
const (
	VersionTextTemplate = "go-sigil version %s\nCommit: %s\nBranch: %s\nBuilt: %s\nGo: %s"
	VersionUnknown      = "unknown"
)

// Check output format templates
const (
	CheckTextSuccess     = "Template is valid"
	CheckTextIssueHeader = "Template problems:"
	CheckTextIssueFormat = "  [%s] %s"
	CheckTextSummary     = "%d problem(s) found"
)

// CLI metadata
const (
	CLIName        = "sigil"
	CLIDescription = "Strict expression templating CLI"
)

// File permission constant
const (
	FilePermissions = 0644
)

// Format string constants
const (
	FmtErrorWithDetail = "%s: %s\n"
	FmtErrorWithCause  = "%s: %v\n"
	FmtUnsupportedKey  = "key %q: %s"
	FmtNewline         = "\n"
)
