// Package config loads the forge roster from the user's config file and
// picks the forge matching the current repository's origin remote.
package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type ForgeType string

const (
	ForgeGitHub ForgeType = "github"
	ForgeGitLab ForgeType = "gitlab"
	ForgeGitea  ForgeType = "gitea"
)

// ForgeConfig describes one configured forge endpoint and how to obtain
// its token.
type ForgeConfig struct {
	Name         string    `yaml:"name"`
	Type         ForgeType `yaml:"type"`
	Host         string    `yaml:"host"`
	TokenEnv     string    `yaml:"token_env,omitempty"`
	TokenCommand string    `yaml:"token_command,omitempty"`
}

type General struct {
	DefaultForge string `yaml:"default_forge,omitempty"`
}

type Config struct {
	General General       `yaml:"general"`
	Forges  []ForgeConfig `yaml:"forges"`
}

// Default is the zero-config behavior: GitHub over the gh CLI.
func Default() Config {
	return Config{
		Forges: []ForgeConfig{{
			Name:         "github",
			Type:         ForgeGitHub,
			Host:         "github.com",
			TokenEnv:     "GITHUB_TOKEN",
			TokenCommand: "gh auth token",
		}},
	}
}

// Path returns the config file location, ~/.config/grit/config.yaml on
// most systems.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "grit", "config.yaml"), nil
}

// Load reads the config file. A missing or unreadable file, a parse
// failure, or an empty forge list all fall back to Default so the tool
// works out of the box.
func Load() Config {
	path, err := Path()
	if err != nil {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Default()
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default()
	}
	if len(cfg.Forges) == 0 {
		return Default()
	}
	return cfg
}

// Example is the documented config written by `grit config init`.
const Example = `# grit configuration
#
# Each entry under forges describes one forge endpoint. When grit starts
# inside a git repository it matches the origin remote's host against
# these entries; otherwise the first entry (or general.default_forge)
# wins.
#
# Tokens are resolved per forge, in order:
#   1. the environment variable named by token_env
#   2. a stored token at ~/.config/grit/token_<name>
#   3. the output of token_command

general:
  default_forge: github

forges:
  - name: github
    type: github
    host: github.com
    token_env: GITHUB_TOKEN
    token_command: gh auth token

  # - name: work-gitlab
  #   type: gitlab
  #   host: gitlab.company.com
  #   token_env: GITLAB_TOKEN

  # - name: gitea
  #   type: gitea
  #   host: gitea.example.org
  #   token_env: GITEA_TOKEN
`

// DetectForge matches the origin remote of the repository in dir against
// the configured forges. Falls back to the named default forge, then the
// first entry.
func DetectForge(cfg Config, dir string) (ForgeConfig, error) {
	if fc, ok := detectFromRemote(cfg, dir); ok {
		return fc, nil
	}
	if cfg.General.DefaultForge != "" {
		for _, fc := range cfg.Forges {
			if fc.Name == cfg.General.DefaultForge {
				return fc, nil
			}
		}
	}
	if len(cfg.Forges) > 0 {
		return cfg.Forges[0], nil
	}
	return ForgeConfig{}, fmt.Errorf("no forge configured")
}

func detectFromRemote(cfg Config, dir string) (ForgeConfig, bool) {
	cmd := exec.Command("git", "remote", "get-url", "origin")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return ForgeConfig{}, false
	}
	host, ok := extractHost(strings.TrimSpace(string(out)))
	if !ok {
		return ForgeConfig{}, false
	}
	for _, fc := range cfg.Forges {
		if fc.Host == host {
			return fc, true
		}
	}
	return ForgeConfig{}, false
}

// extractHost pulls the hostname out of scp-style (git@host:...),
// https/http, and ssh:// remote URLs. ssh URLs may carry a port.
func extractHost(url string) (string, bool) {
	switch {
	case strings.HasPrefix(url, "git@"):
		rest := strings.TrimPrefix(url, "git@")
		host, _, _ := strings.Cut(rest, ":")
		return host, host != ""
	case strings.HasPrefix(url, "https://"), strings.HasPrefix(url, "http://"):
		_, rest, _ := strings.Cut(url, "://")
		host, _, _ := strings.Cut(rest, "/")
		return host, host != ""
	case strings.HasPrefix(url, "ssh://"):
		rest := strings.TrimPrefix(url, "ssh://")
		if i := strings.LastIndex(rest, "@"); i >= 0 {
			rest = rest[i+1:]
		}
		host, _, _ := strings.Cut(rest, "/")
		host, _, _ = strings.Cut(host, ":")
		return host, host != ""
	}
	return "", false
}

// DetectRepo parses owner and repo name from the origin remote of dir.
func DetectRepo(dir string) (owner, repo string, err error) {
	cmd := exec.Command("git", "remote", "get-url", "origin")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", "", fmt.Errorf("not inside a git repository with an origin remote")
	}
	url := strings.TrimSpace(string(out))
	path := url
	switch {
	case strings.HasPrefix(url, "git@"):
		_, path, _ = strings.Cut(url, ":")
	case strings.Contains(url, "://"):
		_, rest, _ := strings.Cut(url, "://")
		_, path, _ = strings.Cut(rest, "/")
	}
	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("cannot parse owner/repo from remote %q", url)
	}
	// GitLab remotes may nest groups; everything before the last segment
	// is the owner path.
	return strings.Join(parts[:len(parts)-1], "/"), parts[len(parts)-1], nil
}
