package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/logfollow-go/config"
	"github.com/masmgr/logfollow-go/internal/output"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:      "logfollow",
		Usage:     "Show the history of a file across renames and copies",
		UsageText: "logfollow [options] <path>\n   logfollow log [options] <path>\n   logfollow diff [options] <base..head>",
		Version:   "1.0.0",
		Commands: []*cli.Command{
			LogCmd(),
			DiffCmd(),
		},
		Flags:  append([]cli.Flag{configFlag()}, logFlags()...),
		Action: defaultAction,
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file (.json or .yaml)",
	}
}

// Common flags shared across commands
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Usage:   "Path to Git repository",
			Value:   ".",
		},
		&cli.StringFlag{
			Name:  "backend",
			Usage: "History backend (go-git, git)",
		},
		&cli.IntFlag{
			Name:  "rename-score",
			Usage: "Minimum similarity percentage for renames and copies",
		},
		&cli.BoolFlag{
			Name:  "no-copies",
			Usage: "Do not follow copies, only renames",
		},
		&cli.BoolFlag{
			Name:  "find-copies-harder",
			Usage: "Also treat unmodified files as copy sources",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (console, json, csv, markdown, ci)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (default: stdout)",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Print progress to stderr",
		},
	}
}

// getOutputFormat parses the output format flag.
func getOutputFormat(s string) output.OutputFormat {
	switch s {
	case "json":
		return output.FormatJSON
	case "csv":
		return output.FormatCSV
	case "markdown", "md":
		return output.FormatMarkdown
	case "ci", "ndjson":
		return output.FormatCI
	default:
		return output.FormatConsole
	}
}

// loadConfig loads configuration from file or defaults and applies the
// command line overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if c.IsSet("branch") {
		cfg.Follow.Branch = c.String("branch")
	}
	if c.IsSet("backend") {
		cfg.Follow.Backend = c.String("backend")
	}
	if c.IsSet("rename-score") {
		cfg.Follow.RenameScore = c.Int("rename-score")
	}
	if c.Bool("no-copies") {
		cfg.Follow.DetectCopies = false
	}
	if c.IsSet("find-copies-harder") {
		cfg.Follow.FindCopiesHarder = c.Bool("find-copies-harder")
	}
	if c.IsSet("match") {
		cfg.Follow.Match = c.String("match")
	}
	if c.IsSet("timeout") {
		cfg.Follow.ResolveTimeoutSeconds = c.Int("timeout")
	}
	if c.IsSet("max-rounds") {
		cfg.Follow.MaxRounds = c.Int("max-rounds")
	}
	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}

	// Apply filter overrides from CLI
	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Filters.Include = includes
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Filters.Exclude = excludes
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultAction runs the log command when a path is given without a
// subcommand.
func defaultAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.ShowAppHelp(c)
	}
	return logAction(c)
}

// verbosef prints a diagnostic line to stderr when --verbose is set.
func verbosef(c *cli.Context, format string, args ...interface{}) {
	if !c.Bool("verbose") {
		return
	}
	color.New(color.FgYellow).Fprintf(c.App.ErrWriter, format+"\n", args...)
}

// Run executes the CLI application.
func Run() {
	if err := App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
