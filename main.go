package main

import (
	"context"
	"fmt"
	"os"

	"github.com/martinsuchenak/invd/cmd/device"
	"github.com/martinsuchenak/invd/cmd/server"
	"github.com/paularlott/cli"
)

func main() {
	cmd := &cli.Command{
		Name:        "invd",
		Usage:       "Network device inventory service",
		Description: "Track network devices and check their reachability",
		Commands: append([]*cli.Command{
			server.Command(),
		}, device.Commands()...),
	}

	if err := cmd.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
