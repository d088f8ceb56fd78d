package provisioning

import (
	"context"

	"github.com/owlback/registrar/internal/config"
	"github.com/owlback/registrar/internal/input"
	"github.com/owlback/registrar/internal/registry"
	"github.com/owlback/registrar/internal/ui"
)

// State holds the shared results of the run. It is progressively populated as
// each phase completes and is read by subsequent phases: the community ID
// produced by the community phase is the binding key for everything after it.
type State struct {
	// Community is the record created by the community phase, carrying the
	// backend-assigned ID.
	Community *registry.Community

	// GroupName is the identity group materialized for the community.
	GroupName string

	// AdminEmail is the derived administrative username.
	AdminEmail string

	// Summary accumulates per-step outcomes for the final report.
	Summary *Summary
}

// NewState creates an empty run state.
func NewState() *State {
	return &State{Summary: NewSummary()}
}

// Context wraps all dependencies and state needed by the pipeline phases.
type Context struct {
	context.Context

	Env      *config.Environment
	Input    input.Provider
	Data     DataBackend
	Identity IdentityBackend
	Prompter ui.Prompter
	Observer Observer
	State    *State

	// CommunityInput is the single validated community record for this run.
	CommunityInput registry.CommunityInput

	// CaretakerInputs are the validated caretaker records. Their CommunityID
	// is overwritten with the created community's ID during provisioning.
	CaretakerInputs []registry.CaretakerInput
}

// NewContext assembles a pipeline context around validated input.
func NewContext(
	ctx context.Context,
	env *config.Environment,
	provider input.Provider,
	data DataBackend,
	identity IdentityBackend,
	prompter ui.Prompter,
	observer Observer,
	community registry.CommunityInput,
	caretakers []registry.CaretakerInput,
) *Context {
	return &Context{
		Context:         ctx,
		Env:             env,
		Input:           provider,
		Data:            data,
		Identity:        identity,
		Prompter:        prompter,
		Observer:        observer,
		State:           NewState(),
		CommunityInput:  community,
		CaretakerInputs: caretakers,
	}
}
