package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveSecretPrefersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session_secret")
	require.NoError(t, os.WriteFile(path, []byte("from-file\n"), 0o600))
	t.Setenv("TEST_SECRET", "from-env")

	require.Equal(t, "from-file", resolveSecret(path, "TEST_SECRET", "fallback"))
}

func TestResolveSecretFallsBackToEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing_secret")
	t.Setenv("TEST_SECRET", "from-env")

	require.Equal(t, "from-env", resolveSecret(path, "TEST_SECRET", "fallback"))
}

func TestResolveSecretDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing_secret")
	t.Setenv("TEST_SECRET", "")

	require.Equal(t, "fallback", resolveSecret(path, "TEST_SECRET", "fallback"))
}

func TestCSV(t *testing.T) {
	require.Nil(t, CSV(""))
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, CSV(" kafka-1:9092, kafka-2:9092 ,"))
}
