package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/identitykeeper/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-w string   HTTP bind address for OAuth2 endpoints (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-gid string Google OAuth2 client id
//	-gsecret string Google OAuth2 client secret
//	-gurl string Google OAuth2 redirect URL (this server's callback)
//	-o string   frontend redirect URI after federated login
//	-v string   log level
//
// Duration flags are accepted as integers in minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-w", "-d", "-s", "-t", "-r", "-gid", "-gsecret", "-gurl", "-o", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run gRPC server")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "address and port to run HTTP server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	fs.StringVar(&config.GoogleClientID, "gid", config.GoogleClientID, "Google OAuth2 client id")
	fs.StringVar(&config.GoogleClientSecret, "gsecret", config.GoogleClientSecret, "Google OAuth2 client secret")
	fs.StringVar(&config.GoogleRedirectURL, "gurl", config.GoogleRedirectURL, "Google OAuth2 redirect URL")
	fs.StringVar(&config.OAuth2RedirectURI, "o", config.OAuth2RedirectURI, "frontend redirect URI")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
}
