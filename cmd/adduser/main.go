// cmd/adduser/main.go
// Creates or updates a user in the database.
//
// Usage:
//
//	go run ./cmd/adduser -username mina -password testing
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/tripjeju/courseapi/config"
	bundb "github.com/tripjeju/courseapi/db"
	"github.com/tripjeju/courseapi/handlers"
	"github.com/tripjeju/courseapi/models"
)

func main() {
	username := flag.String("username", "", "username (required)")
	password := flag.String("password", "", "plain-text password (required)")
	flag.Parse()

	hash, err := handlers.HashPasswordForUser(*username, *password)
	if err != nil {
		log.Fatal(err)
	}

	cfg := config.Load()
	if cfg.InMemory() {
		log.Fatal("adduser needs a PostgreSQL database, DATABASE_URL is set to memory")
	}
	db := bundb.Setup(cfg)
	defer db.Close()

	ctx := context.Background()
	if err := bundb.CreateTables(ctx, db); err != nil {
		log.Fatal("create tables:", err)
	}

	user := &models.User{
		Username: *username,
		Password: hash,
	}
	if err := bundb.NewStore(db).SaveUser(ctx, user); err != nil {
		log.Fatal("save user:", err)
	}

	fmt.Printf("user %q saved (id %d)\n", *username, user.ID)
}
