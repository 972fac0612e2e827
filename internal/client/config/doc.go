// Package config loads runtime configuration for the GophTasks terminal
// client.
//
// Sources, in order of precedence:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. JSON with comments,
//     or YAML when the name ends in .yaml/.yml.
//  3. Command-line flags.
//
// Flags
//
//	-a string   base URL of the GophTasks server
//	-f string   path to the local SQLite database
//	-i int      HTTP request timeout (seconds)
//
// File example:
//
//	{
//	  // where the server lives
//	  "server_base_url": "http://127.0.0.1:8080",
//	  "database_path": "~/.gophtasks/client.db",
//	  "request_timeout": "10s"
//	}
package config
