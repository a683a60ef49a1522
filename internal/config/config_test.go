package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

type fakeGetter struct {
	key string
	err error
}

func (f fakeGetter) Get() (string, error) { return f.key, f.err }

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestResolve_Precedence(t *testing.T) {
	tests := []struct {
		name       string
		opts       ResolveOptions
		wantKey    string
		wantSource Source
		wantErr    error
	}{
		{
			name:       "flag wins",
			opts:       ResolveOptions{FlagKey: " flag-key ", Getenv: envFrom(map[string]string{EnvAPIKey: "env-key"}), Credentials: fakeGetter{key: "stored"}},
			wantKey:    "flag-key",
			wantSource: SourceFlag,
		},
		{
			name:       "env when no flag",
			opts:       ResolveOptions{Getenv: envFrom(map[string]string{EnvAPIKey: "env-key"}), Credentials: fakeGetter{key: "stored"}},
			wantKey:    "env-key",
			wantSource: SourceEnv,
		},
		{
			name:       "credential store last",
			opts:       ResolveOptions{Getenv: envFrom(nil), Credentials: fakeGetter{key: "stored"}},
			wantKey:    "stored",
			wantSource: SourceKeyring,
		},
		{
			name:       "nothing",
			opts:       ResolveOptions{Getenv: envFrom(nil), Credentials: fakeGetter{err: ErrNoStoredKey}},
			wantSource: SourceNone,
			wantErr:    ErrNoAPIKey,
		},
		{
			name:       "no credential store",
			opts:       ResolveOptions{Getenv: envFrom(map[string]string{EnvAPIKey: "   "})},
			wantSource: SourceNone,
			wantErr:    ErrNoAPIKey,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, source, err := Resolve(tt.opts)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantSource, source)
		})
	}
}

func TestResolve_CredentialStoreFailure(t *testing.T) {
	boom := errors.New("dbus unavailable")
	_, source, err := Resolve(ResolveOptions{Getenv: envFrom(nil), Credentials: fakeGetter{err: boom}})
	assert.ErrorIs(t, err, ErrNoAPIKey)
	assert.Contains(t, err.Error(), "dbus unavailable")
	assert.Equal(t, SourceNone, source)
}

func TestResolve_ErrorMessage(t *testing.T) {
	_, _, err := Resolve(ResolveOptions{Getenv: envFrom(nil)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIGMA_API_TOKEN")
	assert.Contains(t, err.Error(), "--figma-api-key")
}

func TestCredentials_RoundTrip(t *testing.T) {
	keyring.MockInit()
	creds := NewCredentials()

	assert.False(t, creds.Has())
	_, err := creds.Get()
	assert.ErrorIs(t, err, ErrNoStoredKey)

	require.NoError(t, creds.Store("  figd_abc  "))
	assert.True(t, creds.Has())
	key, err := creds.Get()
	require.NoError(t, err)
	assert.Equal(t, "figd_abc", key)

	require.NoError(t, creds.Delete())
	assert.False(t, creds.Has())
	assert.NoError(t, creds.Delete(), "deleting twice is fine")
}

func TestCredentials_RejectsEmpty(t *testing.T) {
	keyring.MockInit()
	assert.Error(t, NewCredentials().Store("   "))
}

func TestCredentials_BackendError(t *testing.T) {
	keyring.MockInitWithError(errors.New("locked"))
	t.Cleanup(keyring.MockInit)

	_, err := NewCredentials().Get()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoStoredKey)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("FIGMA_MCP_TEST_DOTENV=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("FIGMA_MCP_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("FIGMA_MCP_TEST_DOTENV"))
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("FIGMA_MCP_TEST_KEEP=from-file\n"), 0o600))
	t.Setenv("FIGMA_MCP_TEST_KEEP", "from-env")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-env", os.Getenv("FIGMA_MCP_TEST_KEEP"))
}

func TestLoadDotEnv_Missing(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestReadConfigKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")
	content := strings.Join([]string{
		"# figma-mcp settings",
		"log-level debug",
		"figma-api-key figd_123 # personal token",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	key, err := ReadConfigKey(path)
	require.NoError(t, err)
	assert.Equal(t, "figd_123", key)

	values, err := ReadConfigValues(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", values["log-level"])
}

func TestReadConfigKey_Missing(t *testing.T) {
	_, err := ReadConfigKey(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultConfigFile(t *testing.T) {
	path := DefaultConfigFile()
	assert.Equal(t, "config", filepath.Base(path))
	assert.Equal(t, "figma-mcp", filepath.Base(filepath.Dir(path)))
}

func TestKeyStore(t *testing.T) {
	s := NewKeyStore("a", SourceFlag)
	assert.Equal(t, "a", s.APIKey())
	assert.Equal(t, SourceFlag, s.Source())

	assert.False(t, s.Set("a", SourceFlag))
	assert.True(t, s.Set("b", SourceConfigFile))
	assert.Equal(t, "b", s.APIKey())
	assert.Equal(t, SourceConfigFile, s.Source())
}

func TestClientConfig(t *testing.T) {
	data, err := NewClientConfig("figma-mcp", "figd_abc").Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"mcpServers":{"figma":{"command":"figma-mcp","args":["--figma-api-key=figd_abc"]}}}`, string(data))

	data, err = NewClientConfig("/usr/local/bin/figma-mcp", "", "--log-level=debug").Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"mcpServers":{"figma":{"command":"/usr/local/bin/figma-mcp","args":["--figma-api-key=<your-figma-api-key>","--log-level=debug"]}}}`, string(data))
}
