package main

import (
	"context"
	"log"

	"github.com/dklimov/taskvault/internal/client/cli"
	"github.com/dklimov/taskvault/internal/client/config"
)

func main() {

	cfg := config.LoadConfig()

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(context.Background())

}
