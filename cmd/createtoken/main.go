package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"faceclock.com/faceclock/security"
)

func main() {
	employeeID := flag.Uint("employee", 0, "employee id the token identifies")
	code := flag.String("code", "", "employee code")
	email := flag.String("email", "", "employee email")
	staff := flag.Bool("staff", false, "issue a staff token")
	expires := flag.Int64("expires", 24*60*60, "token lifetime in seconds")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("[INFO] no .env file loaded: %v", err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("[ERROR] JWT_SECRET is required")
	}

	token, err := security.CreateIdentityToken(&security.FaceclockIdentity{
		EmployeeID: *employeeID,
		Code:       *code,
		Email:      *email,
		Staff:      *staff,
	}, secret, *expires)
	if err != nil {
		log.Fatalf("[ERROR] create token: %v", err)
	}

	fmt.Println(token)
}
