// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic and
// can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/owlback/registrar/internal/config"
	"github.com/owlback/registrar/internal/input"
	"github.com/owlback/registrar/internal/platform/appsync"
	"github.com/owlback/registrar/internal/platform/cognito"
	"github.com/owlback/registrar/internal/provisioning"
	"github.com/owlback/registrar/internal/ui"
)

// RegisterOptions carries the register command's flag values.
type RegisterOptions struct {
	File        string
	Environment string
	ConfigPath  string
	Verbose     bool
}

// workbook is the input surface the handler needs: the provider the pipeline
// consumes plus lifecycle management.
type workbook interface {
	input.Provider
	Close() error
}

// dataClient is the data backend plus the token switch used after operator
// authentication.
type dataClient interface {
	provisioning.DataBackend
	SetAuthToken(token string)
}

// identityClient is the identity backend plus the operator authentication
// surface.
type identityClient interface {
	provisioning.IdentityBackend
	Authenticate(ctx context.Context, username, password string) (string, error)
	RespondToNewPasswordChallenge(ctx context.Context, username, session, newPassword string) (string, error)
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	loadConfig = config.Load

	openWorkbook = func(path string) (workbook, error) {
		return input.OpenWorkbook(path)
	}

	newDataClient = func(ctx context.Context, env *config.Environment) (dataClient, error) {
		return appsync.NewClient(ctx, env)
	}

	newIdentityClient = func(ctx context.Context, env *config.Environment) (identityClient, error) {
		return cognito.NewClient(ctx, env)
	}

	newPrompter = func() ui.Prompter {
		return ui.NewFormPrompter()
	}

	newObserver = func(verbose bool) (provisioning.Observer, error) {
		return provisioning.NewObserver(verbose)
	}

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Register runs one registration workbook end to end: load and validate the
// input, authenticate against both backends, execute the provisioning
// pipeline, and render the final report.
//
// The run summary is printed even when the pipeline aborts partway, so the
// operator can see exactly which records exist before remediating.
func Register(ctx context.Context, opts RegisterOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	env, err := cfg.Select(opts.Environment)
	if err != nil {
		return err
	}

	observer, err := newObserver(opts.Verbose)
	if err != nil {
		return err
	}
	if s, ok := observer.(interface{ Sync() error }); ok {
		defer s.Sync() //nolint:errcheck
	}

	wb, err := openWorkbook(opts.File)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer wb.Close() //nolint:errcheck

	communities, err := wb.Communities()
	if err != nil {
		return fmt.Errorf("failed to read communities: %w", err)
	}
	caretakers, err := wb.Caretakers()
	if err != nil {
		return fmt.Errorf("failed to read caretakers: %w", err)
	}
	if err := provisioning.ValidateInput(communities, caretakers); err != nil {
		return reportAbort(err)
	}

	data, err := newDataClient(ctx, env)
	if err != nil {
		return fmt.Errorf("failed to build data backend client: %w", err)
	}
	identity, err := newIdentityClient(ctx, env)
	if err != nil {
		return fmt.Errorf("failed to build identity backend client: %w", err)
	}
	prompter := newPrompter()

	if env.AuthMode == config.AuthModeUserPool {
		token, err := authenticateOperator(ctx, env, identity, prompter)
		if err != nil {
			return err
		}
		data.SetAuthToken(token)
	}

	pctx := provisioning.NewContext(ctx, env, wb, data, identity, prompter, observer,
		communities[0], caretakers)

	runErr := provisioning.RunPhases(pctx, provisioning.Phases())
	fmt.Fprintln(stdout, pctx.State.Summary.Render())

	if runErr != nil {
		return reportAbort(runErr)
	}
	return nil
}

// authenticateOperator signs the operator into the user pool and returns the
// access token for data backend requests. A forced password rotation is
// handled inline; any other challenge is not supported non-interactively.
func authenticateOperator(ctx context.Context, env *config.Environment, identity identityClient, prompter ui.Prompter) (string, error) {
	password, err := prompter.Secret(ctx,
		fmt.Sprintf("Password for %s", env.OperatorUsername),
		"Operator password for the user pool. Used for this run only.")
	if err != nil {
		return "", err
	}

	token, err := identity.Authenticate(ctx, env.OperatorUsername, password)
	if err == nil {
		return token, nil
	}

	var challenge *cognito.ChallengeRequiredError
	if !errors.As(err, &challenge) {
		return "", fmt.Errorf("operator authentication failed: %w", err)
	}
	if challenge.Challenge != "NEW_PASSWORD_REQUIRED" {
		return "", fmt.Errorf("operator account requires unsupported challenge %s", challenge.Challenge)
	}

	ok, err := prompter.Confirm(ctx,
		fmt.Sprintf("Account %s requires a new password. Set one now?", env.OperatorUsername))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("operator password rotation declined; cannot authenticate")
	}

	newPassword, err := prompter.Secret(ctx,
		fmt.Sprintf("New password for %s", env.OperatorUsername),
		"The new permanent operator password.")
	if err != nil {
		return "", err
	}

	return identity.RespondToNewPasswordChallenge(ctx, env.OperatorUsername, challenge.Session, newPassword)
}

// reportAbort prints the abort reason and its remediation steps to stderr and
// returns a short error for the exit path.
func reportAbort(err error) error {
	abort, ok := provisioning.AsAbort(err)
	if !ok {
		return err
	}

	fmt.Fprintf(stderr, "\nRegistration aborted at the %s step: %s\n", abort.Step, abort.Reason)
	if abort.Err != nil {
		fmt.Fprintf(stderr, "  cause: %v\n", abort.Err)
	}
	if len(abort.Remediation) > 0 {
		fmt.Fprintln(stderr, "\nRemediation:")
		for _, step := range abort.Remediation {
			fmt.Fprintf(stderr, "  - %s\n", step)
		}
	}

	return fmt.Errorf("registration aborted at the %s step", abort.Step)
}
