package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idm-go/idm/idman"
)

// isolate clears IDM_* variables for the test and returns a scratch dir.
// t.Setenv restores the originals; the Unsetenv lets .env files fill them.
func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range []string{EnvIDMPath, EnvSilent, EnvDownloadDir, EnvConcurrency} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaultsWhenNothingConfigured(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(LoadOptions{EnvFile: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, idman.DefaultToolPath, cfg.IDMPath)
	assert.Equal(t, 1, cfg.Concurrency)
}

func TestLoadJWCCFile(t *testing.T) {
	dir := isolate(t)
	file := writeFile(t, dir, "idm.jsonc", `{
		// where IDM lives on this box
		"idmPath": "D:\\Apps\\IDM\\IDMan.exe",
		"silent": true,
		"path": "D:\\Downloads",
		"concurrency": 2, // trailing comma below is fine
	}`)

	cfg, err := Load(LoadOptions{File: file, NoEnv: true})
	require.NoError(t, err)
	assert.Equal(t, `D:\Apps\IDM\IDMan.exe`, cfg.IDMPath)
	assert.True(t, cfg.Silent)
	assert.Equal(t, `D:\Downloads`, cfg.Path)
	assert.Equal(t, 2, cfg.Concurrency)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := isolate(t)
	file := writeFile(t, dir, "idm.jsonc", `{"silent": true}`)

	cfg, err := Load(LoadOptions{File: file, NoEnv: true})
	require.NoError(t, err)
	assert.Equal(t, idman.DefaultToolPath, cfg.IDMPath)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.True(t, cfg.Silent)
}

func TestLoadDefaultFileLocation(t *testing.T) {
	dir := isolate(t)
	defaultFile, err := DefaultFile()
	require.NoError(t, err)
	writeFile(t, filepath.Dir(defaultFile), filepath.Base(defaultFile), `{"path": "/srv/downloads"}`)

	cfg, err := Load(LoadOptions{EnvFile: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)
	assert.Equal(t, "/srv/downloads", cfg.Path)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	dir := isolate(t)

	_, err := Load(LoadOptions{File: filepath.Join(dir, "nope.jsonc"), NoEnv: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadInvalidFile(t *testing.T) {
	dir := isolate(t)
	file := writeFile(t, dir, "idm.jsonc", `{"silent": }`)

	_, err := Load(LoadOptions{File: file, NoEnv: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), file)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	file := writeFile(t, dir, "idm.jsonc", `{"idmPath": "from-file", "concurrency": 2}`)
	t.Setenv(EnvIDMPath, "from-env")
	t.Setenv(EnvSilent, "true")
	t.Setenv(EnvConcurrency, "4")

	cfg, err := Load(LoadOptions{File: file, EnvFile: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.IDMPath)
	assert.True(t, cfg.Silent)
	assert.Equal(t, 4, cfg.Concurrency)
}

func TestLoadDotEnvFile(t *testing.T) {
	dir := isolate(t)
	envFile := writeFile(t, dir, ".env", "IDM_DOWNLOAD_DIR=/data/idm\nIDM_SILENT=1\n")

	cfg, err := Load(LoadOptions{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "/data/idm", cfg.Path)
	assert.True(t, cfg.Silent)
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := isolate(t)
	envFile := writeFile(t, dir, ".env", "IDM_PATH=from-dotenv\n")
	t.Setenv(EnvIDMPath, "from-env")

	cfg, err := Load(LoadOptions{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.IDMPath)
}

func TestLoadInvalidEnv(t *testing.T) {
	dir := isolate(t)
	missing := filepath.Join(dir, "missing.env")

	t.Setenv(EnvSilent, "sometimes")
	_, err := Load(LoadOptions{EnvFile: missing})
	assert.ErrorContains(t, err, EnvSilent)

	t.Setenv(EnvSilent, "")
	t.Setenv(EnvConcurrency, "many")
	_, err = Load(LoadOptions{EnvFile: missing})
	assert.ErrorContains(t, err, EnvConcurrency)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())

	cfg.Concurrency = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.IDMPath = ""
	assert.Error(t, cfg.Validate())
}

func TestApply(t *testing.T) {
	cfg := Config{IDMPath: "/opt/idm/IDMan.exe", Silent: true, Path: "/downloads", Concurrency: 1}

	r := cfg.Apply(idman.New().SetSourceURL("https://example.com/f.exe"))
	assert.Equal(t, "/opt/idm/IDMan.exe", r.ToolPath())
	assert.Equal(t, []string{"/n", "/d", "https://example.com/f.exe", "/p", "/downloads"}, r.Args())
}

func TestApplyWithoutPathLeavesDestinationUnset(t *testing.T) {
	r := Default().Apply(idman.New())

	_, ok := r.DestinationPath()
	assert.False(t, ok)
	assert.Equal(t, idman.ModeDefault, r.Mode())
}
