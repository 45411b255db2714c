package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/payreq/internal/config"
	payerr "github.com/mrz1836/payreq/pkg/errors"
)

func TestConfigInit(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "config.yaml")

	stdout, _, err := runCLI(t, home, "", "-o", "text", "config", "init")
	require.NoError(t, err)
	assert.Equal(t, "Configuration initialized at "+path+"\n", stdout)

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, home, loaded.Home)
	assert.Equal(t, filepath.Join(home, "payreq.log"), loaded.Logging.File)
	require.NoError(t, loaded.Validate())

	_, _, err = runCLI(t, home, "", "config", "init")
	require.Error(t, err)
	var pe *payerr.PayError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Suggestion, "--force")

	_, _, err = runCLI(t, home, "", "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigGetSet(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := runCLI(t, home, "", "-o", "text", "config", "get", "resolver.timeout_seconds")
	require.NoError(t, err)
	assert.Equal(t, "15\n", stdout)

	stdout, _, err = runCLI(t, home, "", "-o", "text", "config", "set", "resolver.timeout_seconds", "30")
	require.NoError(t, err)
	assert.Equal(t, "resolver.timeout_seconds = 30\n", stdout)

	stdout, _, err = runCLI(t, home, "", "config", "get", "resolver.timeout_seconds")
	require.NoError(t, err)
	m := decodeJSON(t, stdout)
	assert.Equal(t, "resolver.timeout_seconds", m["key"])
	assert.Equal(t, "30", m["value"])

	loaded, err := config.Load(config.Path(home))
	require.NoError(t, err)
	assert.Equal(t, 30, loaded.Resolver.TimeoutSeconds)
}

func TestConfigSet_DoesNotPersistOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv(config.EnvLogLevel, "debug")

	_, _, err := runCLI(t, home, "", "-o", "json", "config", "set", "output.color", "never")
	require.NoError(t, err)

	loaded, err := config.Load(config.Path(home))
	require.NoError(t, err)
	assert.Equal(t, "never", loaded.Output.Color)
	assert.Equal(t, "error", loaded.Logging.Level)
	assert.Equal(t, "auto", loaded.Output.DefaultFormat)
}

func TestConfigSet_Errors(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		expected *payerr.PayError
	}{
		{"unknown key", "resolver.nope", "1", payerr.ErrUnknownConfigKey},
		{"not a number", "resolver.timeout_seconds", "soon", payerr.ErrInvalidInput},
		{"fails validation", "output.default_format", "xml", payerr.ErrConfigInvalid},
		{"plain http api", "resolver.fio_api_url", "http://fio.example.com", payerr.ErrConfigInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			_, _, err := runCLI(t, home, "", "config", "set", tt.key, tt.value)
			require.Error(t, err)
			assert.True(t, payerr.Is(err, tt.expected), "got %v", err)

			_, statErr := os.Stat(config.Path(home))
			assert.True(t, os.IsNotExist(statErr), "nothing is written on failure")
		})
	}
}

func TestConfigShowAndPath(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := runCLI(t, home, "", "config", "show")
	require.NoError(t, err)
	m := decodeJSON(t, stdout)
	assert.Equal(t, home, m["home"])
	assert.Contains(t, m, "resolver")

	stdout, _, err = runCLI(t, home, "", "-o", "text", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "# "+config.Path(home))
	assert.Contains(t, stdout, "fio_api_url:")

	stdout, _, err = runCLI(t, home, "", "-o", "text", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, config.Path(home)+"\n", stdout)
}

func TestConfigGet_UnknownKey(t *testing.T) {
	_, err := executeCommand(t, "config", "get", "wallet.name")
	require.Error(t, err)
	assert.True(t, payerr.Is(err, payerr.ErrUnknownConfigKey))
}

func TestConfigGet_Completion(t *testing.T) {
	keys, directive := configGetCmd.ValidArgsFunction(configGetCmd, nil, "")
	assert.Equal(t, config.Keys(), keys)
	assert.NotZero(t, directive)

	keys, _ = configGetCmd.ValidArgsFunction(configGetCmd, []string{"logging.level"}, "")
	assert.Empty(t, keys)
}
