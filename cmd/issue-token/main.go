package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
	"github.com/sravanmaichrla/campus-placement-hub/internal/service"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/config"
)

// issue-token signs a bearer token with the configured JWT secret for local testing
// and for the identity provider's service account.
func main() {
	userID := flag.Int64("user", 0, "user id placed in the user_id claim")
	role := flag.String("role", string(models.RoleStudent), "student or admin")
	email := flag.String("email", "", "optional email claim")
	flag.Parse()

	if *userID <= 0 {
		fmt.Fprintln(os.Stderr, "usage: issue-token -user <id> [-role student|admin] [-email addr]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	r := models.UserRole(*role)
	if !r.Valid() {
		log.Fatalf("unknown role %q", *role)
	}

	token, expires, err := service.NewTokenService(cfg.JWT).Issue(*userID, r, *email)
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}
	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expires.Format(time.RFC3339))
}
