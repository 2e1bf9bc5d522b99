package main

import (
	"context"
	"log"
	"os"

	"github.com/cameronmore/go-courses/config"
	"github.com/cameronmore/go-courses/server"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".env", os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
