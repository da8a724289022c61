package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/handiism/webdl/internal/config"
	"github.com/handiism/webdl/internal/tui"
)

func main() {
	app := &cli.App{
		Name:  "webdl-tui",
		Usage: "Interactive downloader",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to a JSON or YAML config file"},
		},
		Action: func(c *cli.Context) error {
			settings, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			if err := settings.ApplyEnv(); err != nil {
				return err
			}
			return tui.Run(settings)
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
