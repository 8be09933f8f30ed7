package main

import (
	"log"
	"run_the_numbers/internal/app"
)

func main() {
	if err := app.NewApp().Run(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
