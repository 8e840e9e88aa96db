// Command migrate applies the embedded schema migrations.
//
// Usage:
//
//	migrate [up|down]
//
// The target database is taken from WARDEN_DATABASE_URL.
package main

import (
	"log"
	"os"

	"warden/cmd/internal/db/migrate"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	if err := migrate.Run(os.Getenv("WARDEN_DATABASE_URL"), direction); err != nil {
		log.Fatal(err)
	}

	log.Printf("migrations %s: done", direction)
}
