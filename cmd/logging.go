package cmd

import (
	"github.com/ms-elk/rtcamp11/log"
	"github.com/urfave/cli"
)

var logger = log.New("rtcamp11")

func setupLogging(ctx *cli.Context) error {
	if name := flagString(ctx, "log-level"); name != "" {
		level, err := log.ParseLevel(name)
		if err != nil {
			return &ConfigError{Option: "log-level", Err: err}
		}
		log.SetLevel(level)
	}

	if flagBool(ctx, "v") {
		log.SetLevel(log.Info)
	}

	if flagBool(ctx, "vv") {
		log.SetLevel(log.Debug)
	}
	return nil
}

// Flags are looked up on the command first and then on the app so they can
// be passed before or after a subcommand name.
func flagBool(ctx *cli.Context, name string) bool {
	return ctx.Bool(name) || ctx.GlobalBool(name)
}

func flagString(ctx *cli.Context, name string) string {
	if v := ctx.String(name); v != "" {
		return v
	}
	return ctx.GlobalString(name)
}
