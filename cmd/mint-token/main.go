// cmd/mint-token/main.go
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Annany2002/cvm-baseprep/config"
	"github.com/Annany2002/cvm-baseprep/internal/auth"
	"github.com/Annany2002/cvm-baseprep/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// Prints a bearer token for the API, signed with the configured JWT_SECRET.
func main() {
	operator := flag.String("operator", "", "name recorded in the token")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		customLog.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.JWTSecret == "" {
		customLog.Fatalf("JWT_SECRET is not set; the API is running without authentication")
	}
	if *operator == "" {
		flag.Usage()
		os.Exit(2)
	}

	token, err := auth.GenerateJWT(*operator, cfg.JWTSecret, cfg.JWTExpiration)
	if err != nil {
		customLog.Fatalf("Failed to mint token: %v", err)
	}
	fmt.Println(token)
}
