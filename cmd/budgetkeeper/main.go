package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/budgetkeeper/internal/app"
	"github.com/dmitrijs2005/budgetkeeper/internal/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	a, err := app.NewApp(ctx, cfg, os.Stdin, os.Stdout)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	if err := a.Run(ctx); err != nil {
		log.Printf("%v", err)
	}

}
