// Package config loads runtime configuration for the identitykeeper CLI.
//
// Sources, lowest precedence first:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: SERVER_ADDRESS, ONLINE_CHECK_INTERVAL, REQUEST_TIMEOUT.
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags -a, -i and -t.
//
// Example JSON:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "request_timeout": "10s"
//	}
package config
