package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/flokiorg/appinion/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := cli.New(cli.LoadService)
	if err := c.Execute(ctx); err != nil {
		c.PrintError(err)
		stop()
		os.Exit(1)
	}
}
