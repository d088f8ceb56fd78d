package testing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/owlback/registrar/internal/config"
	"github.com/owlback/registrar/internal/platform/cognito"
	"github.com/owlback/registrar/internal/provisioning"
	"github.com/owlback/registrar/internal/registry"
)

// Community builds a valid community input with defaults applied.
func Community(name string) registry.CommunityInput {
	in := registry.CommunityInput{
		Name:        name,
		PhoneNumber: "555-0100",
		Email:       strings.ToLower(strings.ReplaceAll(name, " ", "")) + "@example.com",
		Street:      "1 Main St",
		City:        "Springfield",
	}
	in.ApplyDefaults()
	return in
}

// Caretaker builds a valid caretaker input for the given email.
func Caretaker(email string) registry.CaretakerInput {
	return registry.CaretakerInput{
		FirstName: "Test",
		LastName:  "Caretaker",
		Email:     email,
	}
}

// Environment builds a test environment configuration.
func Environment() *config.Environment {
	return &config.Environment{
		Name:             "test",
		Region:           "us-east-1",
		AppSyncURL:       "https://example.appsync-api.us-east-1.amazonaws.com/graphql",
		UserPoolID:       "us-east-1_TESTPOOL",
		AppClientID:      "testclient",
		AuthMode:         config.AuthModeIAM,
		AdminDomain:      "example.com",
		PropagationDelay: time.Millisecond,
	}
}

// Fixture wires a complete happy-path pipeline: every backend call succeeds,
// created records verify, and prompts answer with canned values. Tests
// override individual func fields to inject failures.
type Fixture struct {
	Data     *FakeData
	Identity *FakeIdentity
	Provider *FakeProvider
	Prompter *ScriptedPrompter
	Observer *RecordingObserver
	Env      *config.Environment

	Community  registry.CommunityInput
	Caretakers []registry.CaretakerInput
}

// NewFixture creates a fixture for a single-community run with no caretakers.
func NewFixture() *Fixture {
	f := &Fixture{
		Data:      &FakeData{},
		Identity:  &FakeIdentity{},
		Provider:  &FakeProvider{},
		Prompter:  &ScriptedPrompter{SecretValue: "S3cret!pass", ConfirmValue: true},
		Observer:  &RecordingObserver{},
		Env:       Environment(),
		Community: Community("Test Community"),
	}

	created := make(map[string]bool)

	f.Data.CreateCommunityFunc = func(_ context.Context, in registry.CommunityInput) (*registry.Community, error) {
		return &registry.Community{
			ID:             "community-id-1",
			Name:           in.Name,
			PhoneNumber:    in.PhoneNumber,
			Email:          in.Email,
			Street:         in.Street,
			City:           in.City,
			ResidentLimit:  in.ResidentLimit,
			CaretakerLimit: in.CaretakerLimit,
			IsActive:       true,
		}, nil
	}
	f.Data.CreateCaretakerFunc = func(_ context.Context, in registry.CaretakerInput) (*registry.Caretaker, error) {
		created[in.Email] = true
		return &registry.Caretaker{
			ID:          fmt.Sprintf("caretaker-%d", len(created)),
			CommunityID: in.CommunityID,
			FirstName:   in.FirstName,
			LastName:    in.LastName,
			Email:       in.Email,
			Role:        in.Role,
		}, nil
	}
	f.Data.CaretakersByEmailAndRoleFunc = func(_ context.Context, email, role string) ([]registry.Caretaker, error) {
		if !created[email] {
			return nil, nil
		}
		return []registry.Caretaker{{ID: "verified", Email: email, Role: role}}, nil
	}
	f.Data.ListCommunitiesFunc = func(_ context.Context, _ int) ([]registry.Community, error) {
		return nil, nil
	}

	f.Identity.EnsureGroupFunc = func(_ context.Context, _, _ string) error { return nil }
	f.Identity.GroupExistsFunc = func(_ context.Context, _ string) (bool, error) { return false, nil }
	f.Identity.UpsertUserFunc = func(_ context.Context, _ cognito.UpsertUserInput) (cognito.UpsertOutcome, error) {
		return cognito.OutcomeCreated, nil
	}
	f.Identity.UserExistsFunc = func(_ context.Context, _ string) (bool, error) { return false, nil }
	f.Identity.ListGroupsFunc = func(_ context.Context) ([]cognito.Group, error) { return nil, nil }

	return f
}

// WithCaretakers sets the caretaker inputs for the run.
func (f *Fixture) WithCaretakers(caretakers ...registry.CaretakerInput) *Fixture {
	f.Caretakers = caretakers
	return f
}

// Context assembles a pipeline context from the fixture.
func (f *Fixture) Context(ctx context.Context) *provisioning.Context {
	return provisioning.NewContext(
		ctx, f.Env, f.Provider, f.Data, f.Identity, f.Prompter, f.Observer,
		f.Community, f.Caretakers,
	)
}
