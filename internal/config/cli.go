// Package config defines the command line of nge.
package config

import (
	"github.com/alecthomas/kong"

	"github.com/nge-dev/nge/internal/cmd"
)

// Log configures the process logger.
type Log struct {
	Level  string `help:"Log level" default:"info" enum:"trace,debug,info,warn,error" env:"NGE_LOG_LEVEL"`
	File   string `help:"Write logs to this file instead of stdout/stderr (errors still go to stderr)" env:"NGE_LOG_FILE"`
	Format string `help:"Log format" default:"text" enum:"text,json" env:"NGE_LOG_FORMAT"`
}

type CLI struct {
	ConfigFile string           `name:"config" help:"Configuration file (json, yaml or toml)" env:"NGE_CONFIG"`
	Version    kong.VersionFlag `help:"Print the version and exit"`
	Log        Log              `embed:"" prefix:"log."`

	Generate   cmd.Generate      `cmd:"" help:"Generate route handlers, preview wrappers, the manifest and the OpenAPI document"`
	Regenerate cmd.Regenerate    `cmd:"" help:"Remove previously generated files, then generate"`
	Watch      cmd.Watch         `cmd:"" help:"Generate, then regenerate on template changes"`
	Serve      cmd.Serve         `cmd:"" help:"Run the dev server: send routes, previews and the OpenAPI document"`
	Add        cmd.Add           `cmd:"" help:"Scaffold a new email template"`
	Setup      cmd.Setup         `cmd:"" help:"Create the emails directory with partials and an example template"`
	Config     cmd.ConfigCommand `cmd:"" help:"Configuration helpers"`
}
