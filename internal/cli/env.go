package cli

import (
	"os"
	"strconv"

	"github.com/spf13/pflag"
)

// stringFromEnv resolves a string flag with flag > env > default precedence.
func stringFromEnv(fs *pflag.FlagSet, flag, env, value string) string {
	if fs.Changed(flag) {
		return value
	}
	if e := os.Getenv(env); e != "" {
		return e
	}
	return value
}

// boolFromEnv resolves a bool flag with flag > env > default precedence.
func boolFromEnv(fs *pflag.FlagSet, flag, env string, value bool) bool {
	if fs.Changed(flag) {
		return value
	}
	if e := os.Getenv(env); e != "" {
		on, err := strconv.ParseBool(e)
		if err == nil {
			return on
		}
	}
	return value
}
