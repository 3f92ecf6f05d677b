package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/taskvault/internal/server"
	"github.com/dmitrijs2005/taskvault/internal/server/config"
	"github.com/joho/godotenv"
)

func main() {

	// optional .env file for local development
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
