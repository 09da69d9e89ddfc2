package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	gmcmd "github.com/sablewood/chronicle/internal/cmd/gm"
	"github.com/sablewood/chronicle/internal/platform/config"
)

// main starts the GM turn service on stdio or HTTP.
func main() {
	cfg, err := gmcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[GM] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := gmcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve GM: %v", err)
	}
}
