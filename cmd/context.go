package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/logfollow-go/config"
	"github.com/masmgr/logfollow-go/internal/git"
	"github.com/masmgr/logfollow-go/internal/output"
)

// CommandContext holds common state for command execution.
// It encapsulates the shared setup logic of the log and diff commands.
type CommandContext struct {
	Config   *config.Config
	RepoPath string
	Branch   string
	Reader   *git.HistoryReader
}

// NewCommandContext creates a context from CLI flags.
// It loads the configuration and opens the repository.
func NewCommandContext(c *cli.Context) (*CommandContext, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	opts, err := readOptions(c.String("repo"), cfg)
	if err != nil {
		return nil, err
	}

	reader, err := git.NewHistoryReader(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	return &CommandContext{
		Config:   cfg,
		RepoPath: opts.RepoPath,
		Branch:   cfg.Follow.Branch,
		Reader:   reader,
	}, nil
}

func readOptions(repoPath string, cfg *config.Config) (git.ReadOptions, error) {
	maxBlob, err := cfg.Follow.MaxBlobBytes()
	if err != nil {
		return git.ReadOptions{}, err
	}
	backend, err := git.ParseBackend(cfg.Follow.Backend)
	if err != nil {
		return git.ReadOptions{}, err
	}
	if repoPath == "" {
		repoPath = "."
	}
	return git.ReadOptions{
		RepoPath:         repoPath,
		Branch:           cfg.Follow.Branch,
		Backend:          backend,
		RenameScore:      cfg.Follow.RenameScore,
		DetectCopies:     cfg.Follow.DetectCopies,
		FindCopiesHarder: cfg.Follow.FindCopiesHarder,
		MaxBlobSize:      maxBlob,
	}, nil
}

// OutputOptions creates OutputOptions from CLI flags and configuration.
func (ctx *CommandContext) OutputOptions(c *cli.Context) output.OutputOptions {
	return output.OutputOptions{
		Format:     getOutputFormat(ctx.Config.Output.Format),
		Top:        c.Int("top"),
		OutputPath: c.String("output"),
	}
}
