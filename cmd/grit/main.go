// Command grit is a terminal client for browsing Git forges: your
// repositories, pull requests, issues, commits and CI runs, with vim
// keybindings throughout.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/altinukshini/grit/internal/auth"
	"github.com/altinukshini/grit/internal/config"
	"github.com/altinukshini/grit/internal/forge"
	"github.com/altinukshini/grit/internal/logger"
	"github.com/altinukshini/grit/internal/tui"
)

func main() {
	root := &cobra.Command{
		Use:          "grit [owner/repo]",
		Short:        "A TUI for browsing Git forge repositories",
		Long:         "Browse repositories, pull requests, issues, commits and CI runs.\nWith no argument grit opens the home screen; pass owner/repo to open\na repository directly, or \".\" to open the repository of the current\ndirectory's origin remote.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args)
		},
	}
	root.AddCommand(configCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage grit configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "explain",
		Short: "Print an example config file with documentation",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print(config.Example)
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Path()
			if err != nil {
				return fmt.Errorf("could not determine config directory: %w", err)
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(config.Example), 0o644); err != nil {
				return err
			}
			fmt.Printf("Config file written to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config file")
	cmd.AddCommand(initCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Path()
			if err != nil {
				return fmt.Errorf("could not determine config directory: %w", err)
			}
			fmt.Println(path)
			return nil
		},
	})

	return cmd
}

func run(args []string) error {
	closer, err := logger.Setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	cfg := config.Load()
	cwd, _ := os.Getwd()
	fc, err := config.DetectForge(cfg, cwd)
	if err != nil {
		return err
	}

	token, err := auth.LoadToken(fc)
	if err != nil {
		return err
	}

	f, err := newForge(fc, token)
	if err != nil {
		return err
	}

	slog.Info("starting", "forge", fc.Name, "host", fc.Host)
	app := tui.New(f, fc.Name)
	if len(args) == 1 {
		owner, repo, err := resolveRepoArg(args[0], cwd)
		if err != nil {
			return err
		}
		app.OpenRepo(owner, repo)
	}
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// resolveRepoArg turns the positional argument into owner and repo. "."
// means the repository behind the current directory's origin remote.
func resolveRepoArg(arg, cwd string) (string, string, error) {
	if arg == "." {
		return config.DetectRepo(cwd)
	}
	i := strings.LastIndex(arg, "/")
	if i <= 0 || i == len(arg)-1 {
		return "", "", fmt.Errorf("expected owner/repo, got %q", arg)
	}
	return arg[:i], arg[i+1:], nil
}

func newForge(fc config.ForgeConfig, token string) (forge.Forge, error) {
	switch fc.Type {
	case config.ForgeGitLab:
		return forge.NewGitLab(fc.Host, token), nil
	case config.ForgeGitea:
		return forge.NewGitea(fc.Host, token), nil
	case config.ForgeGitHub, "":
		return forge.NewGitHub(fc.Host, token)
	}
	return nil, fmt.Errorf("unknown forge type %q", fc.Type)
}
