package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandFlags(t *testing.T) {
	envFlag := rootCmd.PersistentFlags().Lookup("env-file")
	require.NotNil(t, envFlag)
	assert.Equal(t, ".env", envFlag.DefValue)

	portFlag := rootCmd.Flags().Lookup("port")
	require.NotNil(t, portFlag)
	assert.Equal(t, "", portFlag.DefValue)
}

func TestRunServe_InvalidConfig(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	envFile = t.TempDir() + "/missing.env"
	t.Cleanup(func() { envFile = ".env" })

	err := runServe(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported DB_DRIVER")
}
