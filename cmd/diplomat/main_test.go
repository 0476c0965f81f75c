package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCLIFlags(t *testing.T) {
	cli, _, err := parseCLIFlags([]string{"-config", "relay.toml", "-log-level", "debug", "-reply-prefix", "ack:"})
	require.NoError(t, err)
	assert.Equal(t, "relay.toml", cli.configPath)
	assert.Equal(t, "debug", cli.logLevel)
	assert.Equal(t, "ack:", cli.replyPrefix)
	assert.False(t, cli.help)

	_, _, err = parseCLIFlags([]string{"-unknown"})
	assert.Error(t, err)
}

func TestResolveRelayConfigOverrides(t *testing.T) {
	path := writeConfig(t, "diplomat.toml", "log_level = \"warn\"\nreply_prefix = \"file:\"\n")

	cfg, err := resolveRelayConfig(&CLIConfig{configPath: path})
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "file:", cfg.ReplyPrefix)

	cfg, err = resolveRelayConfig(&CLIConfig{configPath: path, logLevel: "error", replyPrefix: "flag:"})
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "flag:", cfg.ReplyPrefix)

	_, err = resolveRelayConfig(&CLIConfig{logLevel: "shout"})
	assert.Error(t, err)
}

func TestRunExitCodes(t *testing.T) {
	assert.Equal(t, 2, run([]string{"-bogus"}))
	assert.Equal(t, 1, run([]string{"-config", "missing.ini"}))
}
