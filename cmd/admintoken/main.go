// Command admintoken mints an RS256 operator token for the /v1/admin routes.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/workforce-verify/internal/config"
	"github.com/workforce-verify/internal/domain"
	jwtinfra "github.com/workforce-verify/internal/infrastructure/jwt"
)

func main() {
	userID := flag.String("user", "", "operator user id (required)")
	role := flag.String("role", domain.RoleAdmin, "role claim")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "usage: admintoken -user <id> [-role admin]")
		os.Exit(2)
	}
	_ = godotenv.Load()

	p, err := jwtinfra.NewProvider(config.Load())
	if err != nil {
		fmt.Fprintf(os.Stderr, "load keys: %v\n", err)
		os.Exit(1)
	}
	tok, err := p.Sign(*userID, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
