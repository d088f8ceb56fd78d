// Package config loads the registrar configuration file and selects the
// target environment. The selected Environment is constructed once and passed
// explicitly into every client and phase; nothing reads configuration
// ambiently after startup.
package config

import (
	"fmt"
	"time"
)

// DefaultFile is the configuration file looked up in the working directory
// when no --config flag is given.
const DefaultFile = "registrar.yaml"

// Config is the parsed configuration file: a set of named environments.
type Config struct {
	Environments map[string]Environment `yaml:"environments"`
}

// Environment holds everything needed to reach one deployment of the two
// backends. Field values may be overridden from the process environment with
// REGISTRAR_-prefixed variables (e.g. REGISTRAR_REGION, REGISTRAR_APPSYNCURL).
type Environment struct {
	// Name of the environment as selected on the command line. Filled in by
	// Select, not read from the file.
	Name string `yaml:"-" ignored:"true"`

	// Region is the AWS region hosting both backends.
	Region string `yaml:"region"`

	// AppSyncURL is the GraphQL endpoint of the data backend.
	AppSyncURL string `yaml:"appsync_url"`

	// UserPoolID identifies the Cognito user pool of the identity backend.
	UserPoolID string `yaml:"user_pool_id"`

	// AppClientID is the Cognito app client used for operator authentication.
	// Optional: only needed when auth_mode is "userpool".
	AppClientID string `yaml:"app_client_id"`

	// AuthMode selects how data-backend calls are authorized: "iam" signs
	// requests with sigv4, "userpool" sends the operator's Cognito token.
	AuthMode string `yaml:"auth_mode"`

	// OperatorUsername is the Cognito username to authenticate as when
	// auth_mode is "userpool". The password is prompted, never configured.
	OperatorUsername string `yaml:"operator_username"`

	// Profile optionally names a shared AWS config profile for credentials.
	// The bare AWS_PROFILE variable is honored as well.
	Profile string `yaml:"profile" envconfig:"AWS_PROFILE"`

	// AccessKey and SecretKey optionally override the default AWS credential
	// chain with static credentials.
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`

	// AdminDomain is the mail domain for the derived admin username.
	AdminDomain string `yaml:"admin_domain"`

	// PropagationDelay is the pause between group creation and the first
	// caretaker create, accommodating the data backend's read-after-write
	// latency. It is an accommodation, not a guarantee.
	PropagationDelay time.Duration `yaml:"propagation_delay"`
}

// Auth modes for data-backend calls.
const (
	AuthModeIAM      = "iam"
	AuthModeUserPool = "userpool"
)

// DefaultPropagationDelay is applied when the file does not set one.
const DefaultPropagationDelay = 3 * time.Second

// Validate checks that the environment names everything the run will need.
func (e *Environment) Validate() error {
	if e.Region == "" {
		return fmt.Errorf("environment %q: region is required", e.Name)
	}
	if e.AppSyncURL == "" {
		return fmt.Errorf("environment %q: appsync_url is required", e.Name)
	}
	if e.UserPoolID == "" {
		return fmt.Errorf("environment %q: user_pool_id is required", e.Name)
	}
	switch e.AuthMode {
	case AuthModeIAM:
	case AuthModeUserPool:
		if e.AppClientID == "" {
			return fmt.Errorf("environment %q: app_client_id is required for userpool auth", e.Name)
		}
		if e.OperatorUsername == "" {
			return fmt.Errorf("environment %q: operator_username is required for userpool auth", e.Name)
		}
	default:
		return fmt.Errorf("environment %q: auth_mode must be %q or %q, got %q",
			e.Name, AuthModeIAM, AuthModeUserPool, e.AuthMode)
	}
	return nil
}
