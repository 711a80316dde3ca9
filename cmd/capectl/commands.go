// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/diffeo/go-cape/agent"
	"github.com/diffeo/go-cape/memserver"
	"github.com/diffeo/go-cape/poller"
	"github.com/diffeo/go-cape/restclient"
	"github.com/urfave/cli"
)

// errUsage is returned when a command gets the wrong arguments.
var errUsage = errors.New("wrong number of arguments; see --help")

// formClient hands fixed attributes to a resource agent, standing in
// for a form.
type formClient struct {
	attrs map[string]interface{}
}

func (f formClient) Refresh() {}

func (f formClient) ParamsFor(name string) map[string]interface{} {
	return map[string]interface{}{name: f.attrs}
}

func (ctl *capectl) commands() []cli.Command {
	return []cli.Command{
		{
			Name:      "index",
			Usage:     "list a collection",
			ArgsUsage: "RESOURCE [key=value...]",
			Action:    ctl.index,
		},
		{
			Name:      "show",
			Usage:     "fetch one resource",
			ArgsUsage: "RESOURCE [ID]",
			Action:    ctl.show,
		},
		{
			Name:      "create",
			Usage:     "create a resource",
			ArgsUsage: "RESOURCE [key=value...]",
			Action:    ctl.create,
		},
		{
			Name:      "update",
			Usage:     "change a resource's attributes",
			ArgsUsage: "RESOURCE [ID] key=value...",
			Action:    ctl.update,
		},
		{
			Name:      "destroy",
			Usage:     "delete a resource",
			ArgsUsage: "RESOURCE [ID]",
			Action:    ctl.destroy,
		},
		{
			Name:      "call",
			Usage:     "issue a custom action",
			ArgsUsage: "RESOURCE METHOD ACTION [key=value...]",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "id",
					Usage: "act on this member rather than the collection",
				},
			},
			Action: ctl.call,
		},
		{
			Name:      "watch",
			Usage:     "print a collection whenever it is polled",
			ArgsUsage: "RESOURCE [key=value...]",
			Flags: []cli.Flag{
				cli.DurationFlag{
					Name:  "interval",
					Value: 5 * time.Second,
					Usage: "poll this often",
				},
				cli.IntFlag{
					Name:  "count",
					Usage: "stop after this many polls (0 means never)",
				},
			},
			Action: ctl.watch,
		},
		{
			Name:  "serve",
			Usage: "serve the configured resources from memory",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "listen",
					Value: ":5980",
					Usage: "[ip]:port for the HTTP REST interface",
				},
				cli.StringSliceFlag{
					Name:  "collection",
					Usage: "also serve this collection under --base-path",
				},
			},
			Action: ctl.serve,
		},
	}
}

// transport returns the transport for the configured backend.
func (ctl *capectl) transport(config agent.Config) (restclient.Transport, error) {
	var handler http.Handler
	if ctl.Backend.Implementation == "memory" {
		if ctl.memory == nil {
			ctl.memory = memserver.New()
			ctl.memory.Logger = ctl.Logger
			ctl.registered = make(map[string]bool)
		}
		if !ctl.registered[config.ResourceName] {
			registerResource(ctl.memory, config)
			ctl.registered[config.ResourceName] = true
		}
		handler = ctl.memory.Handler()
	}
	return ctl.Backend.Transport(handler)
}

func (ctl *capectl) options(config agent.Config) (agent.Options, error) {
	transport, err := ctl.transport(config)
	if err != nil {
		return agent.Options{}, err
	}
	return agent.Options{Transport: transport, Logger: ctl.Logger}, nil
}

// resource creates a resource agent.  Unless the resource is
// singular, an id is taken from the front of args if it does not
// look like a parameter.  The remaining arguments are returned.
func (ctl *capectl) resource(args []string, attrs map[string]interface{}) (*agent.ResourceAgent, []string, error) {
	if len(args) < 1 {
		return nil, nil, errUsage
	}
	config := ctl.config(args[0])
	args = args[1:]
	if !config.Singular && len(args) > 0 && !strings.Contains(args[0], "=") {
		config.ID = args[0]
		args = args[1:]
	}
	opts, err := ctl.options(config)
	if err != nil {
		return nil, nil, err
	}
	a, err := agent.NewResourceAgent(formClient{attrs: attrs}, config, opts)
	return a, args, err
}

func (ctl *capectl) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), ctl.Timeout)
}

// print waits for a call and writes its data to the app's output.
func (ctl *capectl) print(c *cli.Context, call *agent.Call) error {
	if err := call.Wait(); err != nil {
		return err
	}
	if text, isText := call.Data.(string); isText {
		fmt.Fprintln(c.App.Writer, text)
		return nil
	}
	data, err := restclient.EncodeJSON(call.Data)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(data))
	return nil
}

// ignore is the error handler of every command; errors come back
// through the call instead.
func ignore(error) {}

func (ctl *capectl) index(c *cli.Context) error {
	args := c.Args()
	if len(args) < 1 {
		return errUsage
	}
	params, err := parseParams(args.Tail())
	if err != nil {
		return err
	}
	config := ctl.config(args.First())
	opts, err := ctl.options(config)
	if err != nil {
		return err
	}
	a, err := agent.NewCollectionAgent(nil, config, opts)
	if err != nil {
		return err
	}
	ctx, cancel := ctl.context()
	defer cancel()
	return ctl.print(c, a.Index(ctx, params, nil, ignore))
}

func (ctl *capectl) show(c *cli.Context) error {
	a, rest, err := ctl.resource(c.Args(), nil)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return errUsage
	}
	ctx, cancel := ctl.context()
	defer cancel()
	return ctl.print(c, a.Show(ctx, nil, ignore))
}

func (ctl *capectl) create(c *cli.Context) error {
	args := c.Args()
	if len(args) < 1 {
		return errUsage
	}
	attrs, err := parseParams(args.Tail())
	if err != nil {
		return err
	}
	a, _, err := ctl.resource(args[:1], attrs)
	if err != nil {
		return err
	}
	ctx, cancel := ctl.context()
	defer cancel()
	return ctl.print(c, a.Create(ctx, nil, ignore))
}

func (ctl *capectl) update(c *cli.Context) error {
	attrs := make(map[string]interface{})
	a, rest, err := ctl.resource(c.Args(), attrs)
	if err != nil {
		return err
	}
	params, err := parseParams(rest)
	if err != nil {
		return err
	}
	for k, v := range params {
		attrs[k] = v
	}
	ctx, cancel := ctl.context()
	defer cancel()
	return ctl.print(c, a.Update(ctx, nil, ignore))
}

func (ctl *capectl) destroy(c *cli.Context) error {
	a, rest, err := ctl.resource(c.Args(), nil)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return errUsage
	}
	ctx, cancel := ctl.context()
	defer cancel()
	return ctl.print(c, a.Destroy(ctx, nil, ignore))
}

func (ctl *capectl) call(c *cli.Context) error {
	args := c.Args()
	if len(args) < 3 {
		return errUsage
	}
	params, err := parseParams(args[3:])
	if err != nil {
		return err
	}
	config := ctl.config(args[0])
	config.ID = c.String("id")
	opts, err := ctl.options(config)
	if err != nil {
		return err
	}
	a, err := agent.NewResourceAgent(nil, config, opts)
	if err != nil {
		return err
	}
	ctx, cancel := ctl.context()
	defer cancel()
	method := strings.ToUpper(args[1])
	return ctl.print(c, a.Request(ctx, method, args[2], params, nil, ignore))
}

func (ctl *capectl) watch(c *cli.Context) error {
	args := c.Args()
	if len(args) < 1 {
		return errUsage
	}
	params, err := parseParams(args.Tail())
	if err != nil {
		return err
	}
	config := ctl.config(args.First())
	opts, err := ctl.options(config)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	count := c.Int("count")
	polls := 0
	var a *agent.CollectionAgent
	client := agent.ClientFunc(func() {
		data, err := restclient.EncodeJSON(a.Objects().Slice())
		if err != nil {
			ctl.Logger.WithField("err", err).Error("Could not encode objects")
			return
		}
		fmt.Fprintln(c.App.Writer, string(data))
	})
	a, err = agent.NewCollectionAgent(client, config, opts)
	if err != nil {
		return err
	}
	a.Hooks.ParamsForRefresh = func() agent.Params { return params }

	// Polls are counted whether or not they succeed
	counted := countingRefresher{agent: a, counted: func() {
		polls++
		if count > 0 && polls >= count {
			cancel()
		}
	}}
	p := poller.Poller{
		Agents:       []poller.Refresher{counted},
		PollInterval: c.Duration("interval"),
		ErrorHandler: func(err error) {
			ctl.Logger.WithField("err", err).Warn("Poll failed")
		},
	}
	return p.Run(ctx)
}

// countingRefresher calls counted after every refresh of an agent.
type countingRefresher struct {
	agent   poller.Refresher
	counted func()
}

func (r countingRefresher) Refresh(ctx context.Context) *agent.Call {
	call := r.agent.Refresh(ctx)
	call.Wait()
	r.counted()
	return call
}

func (ctl *capectl) serve(c *cli.Context) error {
	s := memserver.New()
	s.Logger = ctl.Logger
	for _, config := range ctl.Resources {
		registerResource(s, config)
	}
	for _, name := range c.StringSlice("collection") {
		registerResource(s, agent.Config{ResourceName: name, BasePath: ctl.BasePath})
	}
	handler, err := serveHandler(s)
	if err != nil {
		return err
	}
	ctl.Logger.WithField("listen", c.String("listen")).Info("Serving")
	return http.ListenAndServe(c.String("listen"), handler)
}
