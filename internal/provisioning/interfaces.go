// Package provisioning implements the registration workflow: a fixed,
// strictly sequential pipeline of phases that provisions one community and
// its caretakers across the data backend and the identity backend.
//
// The two backends share no transaction, so the pipeline substitutes ordering
// and pre-flight guards for atomicity: the idempotency guard runs before any
// mutation, every later phase fails fast, and no compensating cleanup is
// attempted. A fatal abort leaves whatever was created in place and reports
// the manual remediation steps for the state reached.
package provisioning

import (
	"context"

	"github.com/owlback/registrar/internal/platform/cognito"
	"github.com/owlback/registrar/internal/registry"
)

// Phase is one step of the registration pipeline.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Provision executes the phase. A returned error aborts the run.
	Provision(ctx *Context) error
}

// DataBackend is the typed surface of the data service used by the pipeline.
// Implemented by internal/platform/appsync.Client.
type DataBackend interface {
	CreateCommunity(ctx context.Context, in registry.CommunityInput) (*registry.Community, error)
	CreateCaretaker(ctx context.Context, in registry.CaretakerInput) (*registry.Caretaker, error)
	CaretakersByEmailAndRole(ctx context.Context, email, role string) ([]registry.Caretaker, error)
	ListCommunities(ctx context.Context, limit int) ([]registry.Community, error)
}

// IdentityBackend is the typed surface of the identity provider used by the
// pipeline. Implemented by internal/platform/cognito.Client.
type IdentityBackend interface {
	EnsureGroup(ctx context.Context, name, description string) error
	GroupExists(ctx context.Context, name string) (bool, error)
	UpsertUser(ctx context.Context, in cognito.UpsertUserInput) (cognito.UpsertOutcome, error)
	UserExists(ctx context.Context, email string) (bool, error)
	ListGroups(ctx context.Context) ([]cognito.Group, error)
}

// Phases returns the fixed registration pipeline in execution order.
func Phases() []Phase {
	return []Phase{
		&GuardPhase{},
		&CommunityPhase{},
		&GroupPhase{},
		&CaretakerPhase{},
		&AdminPhase{},
	}
}
