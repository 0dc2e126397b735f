package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"gotest.tools/v3/assert"
)

func newFlagCmd() *cobra.Command {
	c := &cobra.Command{Use: "t", Run: func(cmd *cobra.Command, args []string) {}}
	c.Flags().String("service", "", "")
	c.Flags().Bool("dry-run", false, "")
	return c
}

func TestStringFromEnvPrecedence(t *testing.T) {
	t.Setenv("UNIVERSE_SERVICE", "back")

	// Env fills in when the flag was not set.
	c := newFlagCmd()
	assert.NilError(t, c.Execute())
	assert.Equal(t, stringFromEnv(c.Flags(), "service", "UNIVERSE_SERVICE", ""), "back")

	// An explicit flag beats the environment.
	c = newFlagCmd()
	c.SetArgs([]string{"--service", "play"})
	assert.NilError(t, c.Execute())
	v, err := c.Flags().GetString("service")
	assert.NilError(t, err)
	assert.Equal(t, stringFromEnv(c.Flags(), "service", "UNIVERSE_SERVICE", v), "play")
}

func TestBoolFromEnvPrecedence(t *testing.T) {
	t.Setenv("UNIVERSE_DRY_RUN", "true")

	c := newFlagCmd()
	assert.NilError(t, c.Execute())
	assert.Equal(t, boolFromEnv(c.Flags(), "dry-run", "UNIVERSE_DRY_RUN", false), true)

	// Flag set to false explicitly wins over the env.
	c = newFlagCmd()
	c.SetArgs([]string{"--dry-run=false"})
	assert.NilError(t, c.Execute())
	assert.Equal(t, boolFromEnv(c.Flags(), "dry-run", "UNIVERSE_DRY_RUN", false), false)
}

func TestBoolFromEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("UNIVERSE_DRY_RUN", "definitely")
	c := newFlagCmd()
	assert.NilError(t, c.Execute())
	assert.Equal(t, boolFromEnv(c.Flags(), "dry-run", "UNIVERSE_DRY_RUN", false), false)
}

func TestRootCommandWiring(t *testing.T) {
	root := NewRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"build", "verify", "push", "deploy"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		assert.Assert(t, found, "missing subcommand %s", want)
	}
}
