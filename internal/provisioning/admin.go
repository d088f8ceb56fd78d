package provisioning

import (
	"fmt"

	"github.com/owlback/registrar/internal/platform/cognito"
	"github.com/owlback/registrar/internal/util/naming"
	"github.com/owlback/registrar/internal/registry"
)

// AdminPhase provisions the distinguished administrative account: a
// pre-verified identity account with an operator-chosen permanent password,
// plus the matching caretaker record with role Admin. Every failure here is
// fatal, because the community would otherwise be left without an
// administrator. Note the deliberate asymmetry with the caretaker loop:
// there, a failed verification is only an alarm.
type AdminPhase struct{}

// Name implements Phase.
func (p *AdminPhase) Name() string { return "admin" }

// Provision implements Phase.
func (p *AdminPhase) Provision(ctx *Context) error {
	community := ctx.State.Community
	email := naming.AdminEmail(community.Name, ctx.Env.AdminDomain)
	ctx.State.AdminEmail = email

	password, err := ctx.Prompter.Secret(ctx,
		fmt.Sprintf("Password for %s", email),
		"Permanent password for the community administrator. It is stored in the workbook, never logged.")
	if err != nil {
		return &AbortError{
			Step:   p.Name(),
			Reason: "no admin password was provided",
			Err:    err,
			Remediation: []string{
				remediationLeftovers(ctx),
			},
		}
	}

	outcome, err := ctx.Identity.UpsertUser(ctx, cognito.UpsertUserInput{
		Email:      email,
		GivenName:  community.Name,
		FamilyName: registry.RoleAdmin,
		GroupName:  ctx.State.GroupName,
		Verified:   true,
		Password:   password,
	})
	if err != nil {
		return &AbortError{
			Step:   p.Name(),
			Reason: fmt.Sprintf("identity registration failed for admin account %s", email),
			Err:    err,
			Remediation: []string{
				remediationLeftovers(ctx),
			},
		}
	}

	record, err := ctx.Data.CreateCaretaker(ctx, registry.CaretakerInput{
		CommunityID: community.ID,
		FirstName:   community.Name,
		LastName:    registry.RoleAdmin,
		Email:       email,
		Role:        registry.RoleAdmin,
	})
	if err != nil {
		return &AbortError{
			Step:   p.Name(),
			Reason: fmt.Sprintf("the data backend rejected the admin record for %s", email),
			Err:    err,
			Remediation: []string{
				fmt.Sprintf("identity account %s already exists with the chosen password", email),
				remediationLeftovers(ctx),
			},
		}
	}

	if !verifyRecord(ctx, email, registry.RoleAdmin) {
		return &AbortError{
			Step:   p.Name(),
			Reason: fmt.Sprintf("admin record %s did not verify after creation", email),
			Remediation: []string{
				"the community must not go live without a confirmed administrator",
				remediationLeftovers(ctx),
			},
		}
	}

	ctx.State.Summary.AdminEmail = email
	ctx.State.Summary.AdminRecord = record
	ctx.State.Summary.AdminOutcome = outcome.String()
	ctx.Observer.Printf("admin account %s provisioned (account %s)", email, outcome)

	// The credentials sheet is also the processed marker consumed by the
	// guard on a future run.
	if err := ctx.Input.WriteBackAdminCredentials(email, password); err != nil {
		ctx.Observer.Warnf("could not write admin credentials back to the input: %v", err)
		ctx.State.Summary.AddAlarm(
			"admin credentials were not written back; the processed marker is missing, so a re-run of this workbook will NOT be stopped by the first guard check")
	}

	return nil
}

func remediationLeftovers(ctx *Context) string {
	return fmt.Sprintf(
		"remove the created caretaker records and accounts, group %s, and community %s from both backends, then retry",
		ctx.State.GroupName, ctx.State.Community.ID)
}
