// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Capectl drives REST resources from the command line through the
// same agents a client component would use, and can serve an
// in-memory REST API to try them against.
//
//     capectl serve --listen :5980 --collection user
//     capectl --base-path /api/ create user name=John
//     capectl index user
//     capectl --config cape.yaml call --id 1 user PATCH suspend
//
// The configuration file names resources and their agent options:
//
//     resources:
//       user:
//         base_path: /api/
//         adapter: rails
//       profile:
//         base_path: /api/
//         singular: true
package main

import (
	"io"
	"os"
	"time"

	"github.com/diffeo/go-cape/agent"
	"github.com/diffeo/go-cape/backend"
	"github.com/diffeo/go-cape/memserver"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

// capectl holds the state shared by all commands.
type capectl struct {
	Backend   backend.Backend
	Resources map[string]agent.Config
	BasePath  string
	Adapter   string
	Timeout   time.Duration
	Logger    *logrus.Logger

	// memory is the in-process server of the "memory" backend.
	// It lives as long as the capectl value.
	memory     *memserver.Server
	registered map[string]bool
}

func newCapectl() *capectl {
	return &capectl{
		Backend: backend.Backend{Implementation: "http", Address: "//localhost:5980/"},
		Logger:  logrus.StandardLogger(),
	}
}

func newApp(ctl *capectl, out io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "capectl"
	app.Usage = "drive REST resources through resource agents"
	app.Writer = out
	app.Flags = []cli.Flag{
		cli.GenericFlag{
			Name:  "backend",
			Value: &ctl.Backend,
			Usage: "impl:[address] of the REST server, e.g. http://localhost:5980/ or memory",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "YAML file describing resources",
		},
		cli.StringFlag{
			Name:  "base-path",
			Value: "/",
			Usage: "base path of resources not in the configuration",
		},
		cli.StringFlag{
			Name:  "adapter",
			Usage: "response adapter for every resource, e.g. rails",
		},
		cli.DurationFlag{
			Name:  "timeout",
			Value: 30 * time.Second,
			Usage: "give up on a request after this long",
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "log every request",
		},
	}
	app.Commands = ctl.commands()
	app.Before = func(c *cli.Context) error {
		if c.Bool("verbose") {
			ctl.Logger.SetLevel(logrus.DebugLevel)
		}
		ctl.BasePath = c.String("base-path")
		ctl.Adapter = c.String("adapter")
		ctl.Timeout = c.Duration("timeout")
		if filename := c.String("config"); filename != "" {
			resources, err := loadConfigYaml(filename)
			if err != nil {
				return err
			}
			ctl.Resources = resources
		}
		return nil
	}
	return app
}

func main() {
	app := newApp(newCapectl(), os.Stdout)
	if err := app.Run(os.Args); err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("capectl failed")
	}
}
