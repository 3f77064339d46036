// Package main provides a CLI tool for generating caller tokens for the gatepass API.
// These tokens use the dev signing key and will NOT work in production.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"

	jwttoken "gatepass/internal/jwt_token"
	id "gatepass/pkg/domain"
)

const (
	// Dev signing key - matches config.go when JWT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	// Dev admin - matches config.go when ADMIN_ADDRESS is not set
	devAdminAddress = "0x00000000000000000000000000000000000000ad"

	defaultIssuer   = "gatepass"
	defaultAudience = "gatepass-api"
	defaultTokenTTL = 15 * time.Minute
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Caller    string            `json:"caller"`
	JTI       string            `json:"jti"`
	ExpiresIn string            `json:"expires_in"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	callerCmd := flag.NewFlagSet("caller", flag.ExitOnError)
	callerAddress := callerCmd.String("address", "", "Caller account address (0x...). Required.")
	callerKey := callerCmd.String("key", devSigningKey, "HMAC signing key")
	callerTTL := callerCmd.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	callerJSON := callerCmd.Bool("json", false, "Output as JSON")

	adminCmd := flag.NewFlagSet("admin", flag.ExitOnError)
	adminKey := adminCmd.String("key", devSigningKey, "HMAC signing key")
	adminTTL := adminCmd.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	adminJSON := adminCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "caller":
		_ = callerCmd.Parse(os.Args[2:]) //nolint:errcheck // ExitOnError
		generate(*callerAddress, *callerKey, *callerTTL, *callerJSON)
	case "admin":
		_ = adminCmd.Parse(os.Args[2:]) //nolint:errcheck // ExitOnError
		generate(devAdminAddress, *adminKey, *adminTTL, *adminJSON)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - Generate caller tokens for the gatepass API

WARNING: These tokens use the dev signing key by default and will NOT work in production.
         Only use for local development and testing.

Usage:
  tokengen <command> [flags]

Commands:
  caller    Generate a bearer token for an account address
  admin     Generate a bearer token for the default dev admin

Examples:
  # Token for a buyer
  tokengen caller -address 0x00000000000000000000000000000000000000a1

  # Admin token with a longer TTL, as JSON
  tokengen admin -ttl 1h -json

Use "tokengen <command> -h" for more information about a command.`)
}

func generate(rawAddress, signingKey string, ttl time.Duration, jsonOutput bool) {
	caller, err := id.RequireAddress(rawAddress, "address")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid address: %v\n", err)
		os.Exit(1)
	}

	token, jti, err := mint(caller, signingKey, ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			Caller:    caller.Hex(),
			JTI:       jti,
			ExpiresIn: ttl.String(),
			Usage: map[string]string{
				"header": "Authorization: Bearer <token>",
			},
		})
		return
	}

	fmt.Println("Caller Token (JWT)")
	fmt.Println("==================")
	fmt.Printf("Caller:     %s\n", caller.Hex())
	fmt.Printf("Expires In: %s\n", ttl)
	fmt.Printf("JTI:        %s\n", jti)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/passes")
}

func mint(caller common.Address, signingKey string, ttl time.Duration) (string, string, error) {
	svc := jwttoken.NewJWTService(signingKey, defaultIssuer, defaultAudience, ttl)
	return svc.GenerateCallerToken(context.Background(), caller)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
