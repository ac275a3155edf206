// Command token prints a signed session token for local development, using
// the same configuration the server loads.
//
//	go run ./cmd/token -sub 3f1c... -email ana@example.com -name Ana
package main

import (
	"flag"
	"fmt"

	"github.com/joho/godotenv"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/auth"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/config"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/logging"
)

func main() {
	sub := flag.String("sub", "", "user id (token subject)")
	email := flag.String("email", "", "user email")
	name := flag.String("name", "", "display name")
	flag.Parse()

	if *sub == "" || *email == "" {
		flag.Usage()
		logging.Fatal().Msg("-sub and -email are required")
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("config")
	}
	if cfg.IsProduction() {
		logging.Fatal().Msg("refusing to mint tokens in production")
	}

	m, err := auth.NewManager(cfg.Auth)
	if err != nil {
		logging.Fatal().Err(err).Msg("auth")
	}
	token, err := m.Issue(*sub, *email, *name)
	if err != nil {
		logging.Fatal().Err(err).Msg("issue token")
	}
	fmt.Println(token)
}
