package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownCommandErrors(t *testing.T) {
	tests := []struct {
		err      string
		unknown  bool
		extracts string
	}{
		{`unknown command "cpu" for "rrtop"`, true, "cpu"},
		{`unknown command "top-n" for "rrtop"`, true, "top-n"},
		{`unknown flag: --fps`, true, ""},
		{`unknown shorthand flag: 'x' in -x`, true, ""},
		{`unknown command "cpu`, true, ""},
		{`interval '5ms' is too short`, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.err, func(t *testing.T) {
			err := errors.New(tt.err)
			assert.Equal(t, tt.unknown, isUnknownCommandError(err))
			assert.Equal(t, tt.extracts, extractUnknownCommand(err))
		})
	}
}

func TestRootRejectsArguments(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"cpu"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.True(t, isUnknownCommandError(err))
	assert.Equal(t, "cpu", extractUnknownCommand(err))
}

func TestRootDashboardFlags(t *testing.T) {
	for name, short := range map[string]string{
		"interval": "i",
		"sort":     "s",
		"theme":    "",
		"tree":     "t",
		"group":    "g",
		"log-file": "",
	} {
		flag := rootCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "missing --%s", name)
		assert.Equal(t, short, flag.Shorthand, "--%s shorthand", name)
		assert.NotEqual(t, "true", flag.DefValue, "--%s defaults off", name)
	}

	for _, name := range []string{"config", "debug"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing --%s", name)
	}
}
