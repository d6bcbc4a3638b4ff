// Package constants defines global constants used throughout the playbooks service.
package constants

var version = "0.0.0-development" // Updated by CI/CD pipeline at build time

// GetVersion returns the current version of the playbooks service.
func GetVersion() *string {
	return &version
}

// ProjectName is the name of the CLI tool and application
const ProjectName = "playbooks"

// EnvPrefix is the prefix of every environment variable read by the configuration.
const EnvPrefix = "PLAYBOOKS"
