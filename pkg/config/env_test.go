package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("FRESHSAVE_TEST_VALUE", "set")
	assert.Equal(t, "set", GetEnv("FRESHSAVE_TEST_VALUE", "default"))

	t.Setenv("FRESHSAVE_TEST_VALUE", "")
	assert.Equal(t, "default", GetEnv("FRESHSAVE_TEST_VALUE", "default"))
}

func TestGetIntAndDuration(t *testing.T) {
	t.Setenv("FRESHSAVE_TEST_INT", "42")
	t.Setenv("FRESHSAVE_TEST_BAD_INT", "forty")
	t.Setenv("FRESHSAVE_TEST_DUR", "1500ms")
	t.Setenv("FRESHSAVE_TEST_NEG_DUR", "-1s")

	assert.Equal(t, 42, GetInt("FRESHSAVE_TEST_INT", 1))
	assert.Equal(t, 1, GetInt("FRESHSAVE_TEST_BAD_INT", 1))
	assert.Equal(t, 1500*time.Millisecond, GetDuration("FRESHSAVE_TEST_DUR", time.Second))
	assert.Equal(t, time.Second, GetDuration("FRESHSAVE_TEST_NEG_DUR", time.Second))
}

func TestGetList(t *testing.T) {
	t.Setenv("FRESHSAVE_TEST_LIST", " a, ,b ,c")
	assert.Equal(t, []string{"a", "b", "c"}, GetList("FRESHSAVE_TEST_LIST", nil))

	t.Setenv("FRESHSAVE_TEST_LIST", " , ")
	assert.Equal(t, []string{"x"}, GetList("FRESHSAVE_TEST_LIST", []string{"x"}))
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(file, []byte("FRESHSAVE_DOTENV_A=from-file\nFRESHSAVE_DOTENV_B=from-file\n"), 0o600))

	t.Setenv("FRESHSAVE_DOTENV_A", "from-env")
	t.Cleanup(func() { os.Unsetenv("FRESHSAVE_DOTENV_B") })

	LoadDotEnv(file, filepath.Join(dir, "missing.env"))

	assert.Equal(t, "from-env", os.Getenv("FRESHSAVE_DOTENV_A"))
	assert.Equal(t, "from-file", os.Getenv("FRESHSAVE_DOTENV_B"))
}

func TestJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ENVIRONMENT", "development")
	secret, err := JWTSecret()
	require.NoError(t, err)
	assert.Equal(t, DevJWTSecret, secret)

	t.Setenv("ENVIRONMENT", "production")
	_, err = JWTSecret()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "s3cret")
	secret, err = JWTSecret()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", secret)
}
