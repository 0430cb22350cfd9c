// Package auth resolves forge API tokens. Sources are tried cheapest
// first: environment variable, stored token file, then the configured
// token command (typically `gh auth token`, which spawns a subprocess).
package auth

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/altinukshini/grit/internal/config"
	"github.com/altinukshini/grit/internal/forge"
)

// LoadToken resolves the token for one configured forge.
func LoadToken(fc config.ForgeConfig) (string, error) {
	if fc.TokenEnv != "" {
		if token := strings.TrimSpace(os.Getenv(fc.TokenEnv)); token != "" {
			return token, nil
		}
	}
	if token := loadStored(fc.Name); token != "" {
		return token, nil
	}
	if fc.TokenCommand != "" {
		if token := runTokenCommand(fc.TokenCommand); token != "" {
			// Cache it so the next launch skips the subprocess.
			saveStored(fc.Name, token)
			return token, nil
		}
	}
	return "", forge.AuthError("no token for forge " + fc.Name +
		" (set " + envHint(fc) + " or store one at " + storedHint(fc.Name) + ")")
}

func envHint(fc config.ForgeConfig) string {
	if fc.TokenEnv != "" {
		return "$" + fc.TokenEnv
	}
	return "a token_env in the config"
}

func storedHint(name string) string {
	path, err := tokenPath(name)
	if err != nil {
		return "~/.config/grit/token_" + name
	}
	return path
}

// tokenPath is the stored-token location, alongside the config file.
func tokenPath(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "grit", "token_"+name), nil
}

func loadStored(name string) string {
	path, err := tokenPath(name)
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// saveStored writes the token with owner-only permissions; failures are
// ignored since the token was already obtained.
func saveStored(name, token string) {
	path, err := tokenPath(name)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return
	}
	_ = os.WriteFile(path, []byte(token+"\n"), 0o600)
}

func runTokenCommand(command string) string {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return ""
	}
	out, err := exec.Command(parts[0], parts[1:]...).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
