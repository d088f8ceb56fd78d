package provisioning_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owlback/registrar/internal/platform/cognito"
	"github.com/owlback/registrar/internal/provisioning"
	"github.com/owlback/registrar/internal/registry"
	regtest "github.com/owlback/registrar/internal/testing"
)

func runPipeline(t *testing.T, f *regtest.Fixture) error {
	t.Helper()
	ctx := f.Context(context.Background())
	return provisioning.RunPhases(ctx, provisioning.Phases())
}

func requireAbort(t *testing.T, err error, step string) *provisioning.AbortError {
	t.Helper()
	require.Error(t, err)
	abort, ok := provisioning.AsAbort(err)
	require.True(t, ok, "expected an abort, got: %v", err)
	assert.Equal(t, step, abort.Step)
	assert.NotEmpty(t, abort.Remediation)
	return abort
}

func TestPipeline_ZeroCaretakers(t *testing.T) {
	t.Parallel()
	f := regtest.NewFixture()

	err := runPipeline(t, f)

	require.NoError(t, err)
	assert.Equal(t, 1, f.Data.CallCount("CreateCommunity"))
	assert.Equal(t, 1, f.Identity.CallCount("EnsureGroup"))
	// Only the admin record, no members.
	assert.Equal(t, 1, f.Data.CallCount("CreateCaretaker"))
	assert.Equal(t, 1, f.Identity.CallCount("UpsertUser"))

	assert.Equal(t, "community-id-1", f.Provider.WrittenCommunityID)
	assert.Equal(t, "testcommunity@example.com", f.Provider.WrittenAdminEmail)
	assert.Equal(t, "S3cret!pass", f.Provider.WrittenAdminPass)
}

func TestPipeline_TwoCaretakers(t *testing.T) {
	t.Parallel()
	f := regtest.NewFixture()
	f.Community = regtest.Community("Oak Manor")
	f.WithCaretakers(
		regtest.Caretaker("john@example.com"),
		regtest.Caretaker("jane@example.com"),
	)

	var caretakerInputs []registry.CaretakerInput
	inner := f.Data.CreateCaretakerFunc
	f.Data.CreateCaretakerFunc = func(ctx context.Context, in registry.CaretakerInput) (*registry.Caretaker, error) {
		caretakerInputs = append(caretakerInputs, in)
		return inner(ctx, in)
	}

	var adminUpsert cognito.UpsertUserInput
	var memberUpserts []cognito.UpsertUserInput
	f.Identity.UpsertUserFunc = func(_ context.Context, in cognito.UpsertUserInput) (cognito.UpsertOutcome, error) {
		if in.Password != "" {
			adminUpsert = in
		} else {
			memberUpserts = append(memberUpserts, in)
		}
		return cognito.OutcomeCreated, nil
	}

	pctx := f.Context(context.Background())
	err := provisioning.RunPhases(pctx, provisioning.Phases())
	require.NoError(t, err)

	require.Len(t, caretakerInputs, 3)
	for _, in := range caretakerInputs {
		assert.Equal(t, "community-id-1", in.CommunityID, "workbook community ID must be overwritten")
	}
	assert.Equal(t, registry.RoleCaretaker, caretakerInputs[0].Role)
	assert.Equal(t, registry.RoleCaretaker, caretakerInputs[1].Role)
	assert.Equal(t, registry.RoleAdmin, caretakerInputs[2].Role)
	assert.Equal(t, "oakmanor@example.com", caretakerInputs[2].Email)

	require.Len(t, memberUpserts, 2)
	assert.Equal(t, "community-community-id-1", memberUpserts[0].GroupName)
	assert.False(t, memberUpserts[0].Verified)

	assert.Equal(t, "oakmanor@example.com", adminUpsert.Email)
	assert.Equal(t, "Oak Manor", adminUpsert.GivenName)
	assert.Equal(t, "Admin", adminUpsert.FamilyName)
	assert.True(t, adminUpsert.Verified)
	assert.Equal(t, "S3cret!pass", adminUpsert.Password)

	assert.Equal(t, "community-community-id-1", pctx.State.GroupName)
	ok, failed, alarmed := pctx.State.Summary.Counts()
	assert.Equal(t, 2, ok)
	assert.Zero(t, failed)
	assert.Zero(t, alarmed)
}

func TestGuard_ProcessedMarkerStopsBeforeAnyBackendCall(t *testing.T) {
	t.Parallel()
	f := regtest.NewFixture()
	f.Provider.Processed = true

	err := runPipeline(t, f)

	abort := requireAbort(t, err, "guard")
	assert.Contains(t, abort.Reason, "already processed")
	assert.Zero(t, f.Data.TotalCalls())
	assert.Zero(t, f.Identity.TotalCalls())
}

func TestGuard_AccountCollision(t *testing.T) {
	t.Parallel()
	f := regtest.NewFixture()
	f.WithCaretakers(regtest.Caretaker("taken@example.com"))
	f.Identity.UserExistsFunc = func(_ context.Context, email string) (bool, error) {
		return email == "taken@example.com", nil
	}

	err := runPipeline(t, f)

	abort := requireAbort(t, err, "guard")
	assert.Contains(t, abort.Reason, "taken@example.com")
	assert.Zero(t, f.Data.CallCount("CreateCommunity"))
	assert.Zero(t, f.Identity.CallCount("EnsureGroup"))
}

func TestGuard_ChecksDerivedAdminAccountToo(t *testing.T) {
	t.Parallel()
	f := regtest.NewFixture()
	f.Identity.UserExistsFunc = func(_ context.Context, email string) (bool, error) {
		return email == "testcommunity@example.com", nil
	}

	err := runPipeline(t, f)

	abort := requireAbort(t, err, "guard")
	assert.Contains(t, abort.Reason, "testcommunity@example.com")
}

func TestGuard_GroupCollisionViaCommunityListing(t *testing.T) {
	t.Parallel()
	f := regtest.NewFixture()
	f.Data.ListCommunitiesFunc = func(_ context.Context, _ int) ([]registry.Community, error) {
		return []registry.Community{
			{ID: "old-1", Name: "Test Community", Email: "TestCommunity@Example.com"},
		}, nil
	}
	f.Identity.GroupExistsFunc = func(_ context.Context, name string) (bool, error) {
		return name == "community-old-1", nil
	}

	err := runPipeline(t, f)

	abort := requireAbort(t, err, "guard")
	assert.Contains(t, abort.Reason, "community-old-1")
	assert.Zero(t, f.Data.CallCount("CreateCommunity"))
}

func TestGuard_FallsBackToGroupScanWhenListingFails(t *testing.T) {
	t.Parallel()
	f := regtest.NewFixture()
	f.Data.ListCommunitiesFunc = func(_ context.Context, _ int) ([]registry.Community, error) {
		return nil, fmt.Errorf("listing unavailable")
	}
	f.Identity.ListGroupsFunc = func(_ context.Context) ([]cognito.Group, error) {
		return []cognito.Group{
			{Name: "community-other", Description: "Caretakers of Somewhere Else (community other)"},
			{Name: "community-old-9", Description: "Caretakers of Test Community (community old-9)"},
		}, nil
	}

	err := runPipeline(t, f)

	abort := requireAbort(t, err, "guard")
	assert.Contains(t, abort.Reason, "community-old-9")
}

func TestGuard_AbortsWhenBothCollisionPathsFail(t *testing.T) {
	t.Parallel()
	f := regtest.NewFixture()
	f.Data.ListCommunitiesFunc = func(_ context.Context, _ int) ([]registry.Community, error) {
		return nil, fmt.Errorf("listing unavailable")
	}
	f.Identity.ListGroupsFunc = func(_ context.Context) ([]cognito.Group, error) {
		return nil, fmt.Errorf("pool unavailable")
	}

	err := runPipeline(t, f)

	abort := requireAbort(t, err, "guard")
	assert.Contains(t, abort.Reason, "neither")
}

func TestCommunity_FailureLeavesBothBackendsUntouched(t *testing.T) {
	t.Parallel()
	f := regtest.NewFixture()
	f.Data.CreateCommunityFunc = func(_ context.Context, _ registry.CommunityInput) (*registry.Community, error) {
		return nil, fmt.Errorf("quota exceeded")
	}

	err := runPipeline(t, f)

	abort := requireAbort(t, err, "community")
	assert.Contains(t, strings.Join(abort.Remediation, " "), "no records were created")
	assert.Zero(t, f.Identity.CallCount("EnsureGroup"))
	assert.Zero(t, f.Data.CallCount("CreateCaretaker"))
}

func TestCommunity_WriteBackFailureIsNonFatal(t *testing.T) {
	t.Parallel()
	f := regtest.NewFixture()
	f.Provider.WriteBackIDErr = fmt.Errorf("workbook is read-only")

	ctx := f.Context(context.Background())
	err := provisioning.RunPhases(ctx, provisioning.Phases())

	require.NoError(t, err)
	require.NotEmpty(t, ctx.State.Summary.Alarms)
	assert.Contains(t, strings.Join(ctx.State.Summary.Alarms, " "), "community-id-1")
}

func TestGroup_ExhaustedRetriesAbortWithCommunityLeftover(t *testing.T) {
	t.Parallel()
	f := regtest.NewFixture()
	f.Identity.EnsureGroupFunc = func(_ context.Context, _, _ string) error {
		return fmt.Errorf("throttled")
	}

	err := runPipeline(t, f)

	abort := requireAbort(t, err, "group")
	assert.Equal(t, 3, f.Identity.CallCount("EnsureGroup"))
	assert.Contains(t, strings.Join(abort.Remediation, " "), "community-id-1")
	assert.Zero(t, f.Data.CallCount("CreateCaretaker"))
}

func TestCaretakers_RecordFailureContinuesToNextMember(t *testing.T) {
	t.Parallel()
	f := regtest.NewFixture()
	f.WithCaretakers(
		regtest.Caretaker("bad@example.com"),
		regtest.Caretaker("good@example.com"),
	)
	inner := f.Data.CreateCaretakerFunc
	f.Data.CreateCaretakerFunc = func(ctx context.Context, in registry.CaretakerInput) (*registry.Caretaker, error) {
		if in.Email == "bad@example.com" {
			return nil, fmt.Errorf("rejected")
		}
		return inner(ctx, in)
	}

	ctx := f.Context(context.Background())
	err := provisioning.RunPhases(ctx, provisioning.Phases())

	require.NoError(t, err)
	ok, failed, _ := ctx.State.Summary.Counts()
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, failed)
	// The failed member never reached the identity backend.
	assert.Equal(t, 2, f.Identity.CallCount("UpsertUser"), "good member plus admin")
}

func TestCaretakers_IdentityFailureAborts(t *testing.T) {
	t.Parallel()
	f := regtest.NewFixture()
	f.WithCaretakers(
		regtest.Caretaker("first@example.com"),
		regtest.Caretaker("second@example.com"),
	)
	f.Identity.UpsertUserFunc = func(_ context.Context, in cognito.UpsertUserInput) (cognito.UpsertOutcome, error) {
		if in.Email == "second@example.com" {
			return 0, fmt.Errorf("pool rejected the account")
		}
		return cognito.OutcomeCreated, nil
	}

	ctx := f.Context(context.Background())
	err := provisioning.RunPhases(ctx, provisioning.Phases())

	abort := requireAbort(t, err, "caretakers")
	assert.Contains(t, abort.Reason, "second@example.com")
	// The first member was fully provisioned before the abort.
	assert.Equal(t, 2, f.Data.CallCount("CreateCaretaker"))
	// No admin work happened.
	assert.Empty(t, f.Prompter.SecretTitles)
}

func TestCaretakers_FirstMemberIdentityFailureHaltsBeforeSecond(t *testing.T) {
	t.Parallel()
	f := regtest.NewFixture()
	f.WithCaretakers(
		regtest.Caretaker("first@example.com"),
		regtest.Caretaker("second@example.com"),
	)
	f.Identity.UpsertUserFunc = func(_ context.Context, _ cognito.UpsertUserInput) (cognito.UpsertOutcome, error) {
		return 0, fmt.Errorf("pool rejected the account")
	}

	ctx := f.Context(context.Background())
	err := provisioning.RunPhases(ctx, provisioning.Phases())

	requireAbort(t, err, "caretakers")
	// The second member was never reached.
	assert.Equal(t, 1, f.Data.CallCount("CreateCaretaker"))
	assert.Equal(t, 1, f.Identity.CallCount("UpsertUser"))
	// The first member's record survives in the summary.
	require.Len(t, ctx.State.Summary.Caretakers, 1)
	assert.Equal(t, "first@example.com", ctx.State.Summary.Caretakers[0].Email)
	assert.NotNil(t, ctx.State.Summary.Caretakers[0].Record)
}

func TestCaretakers_EmptyVerificationIsAlarmNotFailure(t *testing.T) {
	t.Parallel()
	f := regtest.NewFixture()
	f.WithCaretakers(regtest.Caretaker("ghost@example.com"))
	f.Data.CaretakersByEmailAndRoleFunc = func(_ context.Context, email, role string) ([]registry.Caretaker, error) {
		if role == registry.RoleCaretaker {
			return nil, nil
		}
		return []registry.Caretaker{{Email: email, Role: role}}, nil
	}

	ctx := f.Context(context.Background())
	err := provisioning.RunPhases(ctx, provisioning.Phases())

	require.NoError(t, err)
	require.NotEmpty(t, ctx.State.Summary.Alarms)
	assert.Contains(t, strings.Join(ctx.State.Summary.Alarms, " "), "ghost@example.com")
	ok, failed, alarmed := ctx.State.Summary.Counts()
	assert.Zero(t, ok)
	assert.Zero(t, failed)
	assert.Equal(t, 1, alarmed)
}

func TestAdmin_PromptFailureAborts(t *testing.T) {
	t.Parallel()
	f := regtest.NewFixture()
	f.Prompter.SecretErr = fmt.Errorf("prompt cancelled")

	err := runPipeline(t, f)

	abort := requireAbort(t, err, "admin")
	assert.Contains(t, abort.Reason, "password")
	assert.Zero(t, f.Identity.CallCount("UpsertUser"))
}

func TestAdmin_IdentityFailureIsFatal(t *testing.T) {
	t.Parallel()
	f := regtest.NewFixture()
	f.Identity.UpsertUserFunc = func(_ context.Context, _ cognito.UpsertUserInput) (cognito.UpsertOutcome, error) {
		return 0, fmt.Errorf("pool rejected the account")
	}

	err := runPipeline(t, f)

	requireAbort(t, err, "admin")
	assert.Zero(t, f.Data.CallCount("CreateCaretaker"))
}

func TestAdmin_RecordFailureIsFatal(t *testing.T) {
	t.Parallel()
	f := regtest.NewFixture()
	f.Data.CreateCaretakerFunc = func(_ context.Context, _ registry.CaretakerInput) (*registry.Caretaker, error) {
		return nil, fmt.Errorf("rejected")
	}

	err := runPipeline(t, f)

	abort := requireAbort(t, err, "admin")
	assert.Contains(t, strings.Join(abort.Remediation, " "), "already exists with the chosen password")
}

func TestAdmin_EmptyVerificationIsFatal(t *testing.T) {
	t.Parallel()
	f := regtest.NewFixture()
	f.Data.CaretakersByEmailAndRoleFunc = func(_ context.Context, _, _ string) ([]registry.Caretaker, error) {
		return nil, nil
	}

	err := runPipeline(t, f)

	abort := requireAbort(t, err, "admin")
	assert.Contains(t, abort.Reason, "did not verify")
}

func TestAdmin_CredentialWriteBackFailureIsAlarmOnly(t *testing.T) {
	t.Parallel()
	f := regtest.NewFixture()
	f.Provider.WriteBackCredsErr = fmt.Errorf("workbook is read-only")

	ctx := f.Context(context.Background())
	err := provisioning.RunPhases(ctx, provisioning.Phases())

	require.NoError(t, err)
	assert.Equal(t, "community-id-1", f.Provider.WrittenCommunityID)
	require.NotEmpty(t, ctx.State.Summary.Alarms)
	assert.Contains(t, strings.Join(ctx.State.Summary.Alarms, " "), "processed marker")
}
