package internal

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goplus/nativebuild/internal/config"
	"github.com/goplus/nativebuild/internal/env"
	"github.com/goplus/nativebuild/internal/frontend"
	"github.com/goplus/nativebuild/internal/pipeline"
)

// loadConfig resolves --root and loads --config, falling back to an
// optional nativebuild.toml in the root.
func loadConfig() (root string, cfg *config.Config, err error) {
	root, err = filepath.Abs(rootDir)
	if err != nil {
		return "", nil, fmt.Errorf("failed to resolve root: %w", err)
	}
	path, required := configPath, configPath != ""
	if !required {
		path = filepath.Join(root, config.FileName)
	}
	cfg, err = config.Load(path, required)
	if err != nil {
		return "", nil, err
	}
	return root, cfg, nil
}

func newSession(cmd *cobra.Command) (*pipeline.Session, error) {
	root, cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return &pipeline.Session{
		Native: cfg.Orchestrator(root, env.Ambient()),
		Frontend: &frontend.Exec{
			Argv:   cfg.Frontend.Command,
			Dir:    root,
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		},
	}, nil
}

// runSession returns a RunE running command in a fresh session.
func runSession(command string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		return s.Run(cmd.Context(), command, args)
	}
}
