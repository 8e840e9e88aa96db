package main

import (
	"log"

	"warden/cmd/internal/app"

	"github.com/joho/godotenv"
)

func main() {
	// Missing .env is fine; env vars win anyway.
	_ = godotenv.Load()

	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
