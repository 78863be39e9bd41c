package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeardown(t *testing.T) {
	cmd := Teardown()

	require.NotNil(t, cmd)
	assert.Equal(t, "teardown", cmd.Use)
	assert.Contains(t, cmd.Long, "reverse provisioning order")
	assert.Contains(t, cmd.Long, "never deleted")
	assert.Contains(t, cmd.Long, "WARNING")
	assert.NotNil(t, cmd.RunE)
}

func TestTeardown_ConfigFlag(t *testing.T) {
	cmd := Teardown()

	flag := cmd.Flags().Lookup("config")
	require.NotNil(t, flag, "config flag should exist")
	assert.Equal(t, "c", flag.Shorthand)
	assert.Equal(t, "", flag.DefValue)
}
