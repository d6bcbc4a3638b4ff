package constants

// Environment represents the execution environment (e.g., development, Lambda).
type Environment string

// Environment types for logger configuration.
const (
	Development Environment = "development"
	Production  Environment = "production"
)

// SCMDriver names a registered SCM driver.
type SCMDriver string

// SCM drivers.
const (
	// GitHubDriver talks to the GitHub REST API.
	GitHubDriver SCMDriver = "github"
	// GitDriver reads repositories through an in-memory git clone.
	GitDriver SCMDriver = "git"
)
