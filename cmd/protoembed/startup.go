package main

import (
	"os"
	"path/filepath"
	"strings"
)

// protoc finds plugins by name, so an executable called protoc-gen-<name>
// behaves as the plugin command. Arguments are kept, which lets a wrapper
// script pass default flags.
func init() {
	os.Args = pluginArgs(os.Args)
}

func pluginArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	base := strings.TrimSuffix(filepath.Base(args[0]), ".exe")
	if !strings.HasPrefix(base, "protoc-gen-") {
		return args
	}
	if len(args) > 1 && args[1] == "plugin" {
		return args
	}
	newArgs := make([]string, 0, len(args)+1)
	newArgs = append(newArgs, args[0], "plugin")
	newArgs = append(newArgs, args[1:]...)
	return newArgs
}
