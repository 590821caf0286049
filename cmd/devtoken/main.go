// Command devtoken prints an operator JWT signed with JWT_SECRET for
// calling the API locally.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/venue-seat-layout/internal/middleware"
	"github.com/iliyamo/venue-seat-layout/internal/utils"
)

func main() {
	id := flag.Uint64("operator", 1, "operator id (token subject)")
	role := flag.String("role", middleware.RoleOperator, "OPERATOR or ADMIN")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	tok, err := utils.NewOperatorToken(secret, *id, *role, *ttl)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(tok.Token)
}
