package config

import (
	"github.com/alecthomas/kong"

	"github.com/Alia5/protoembed/internal/cmd"
)

type LogConfig struct {
	Level string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"PROTOEMBED_LOG_LEVEL"`
	File  string `help:"Also write logs to this file" env:"PROTOEMBED_LOG_FILE"`
}

// CLI is the root command line of protoembed.
type CLI struct {
	ConfigFile string           `name:"config" help:"Configuration file (json, yaml or toml)" env:"PROTOEMBED_CONFIG"`
	Log        LogConfig        `embed:"" prefix:"log."`
	Version    kong.VersionFlag `help:"Print the version and exit"`

	Generate cmd.Generate      `cmd:"" help:"Generate descriptor holders from .proto files"`
	Plugin   cmd.Plugin        `cmd:"" help:"Run as a protoc plugin (request on stdin, response on stdout)"`
	Config   cmd.ConfigCommand `cmd:"" help:"Configuration helpers"`
}
