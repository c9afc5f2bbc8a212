package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/0x6d61/tampergen/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
