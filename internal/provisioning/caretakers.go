package provisioning

import (
	"fmt"

	"github.com/owlback/registrar/internal/platform/cognito"
	"github.com/owlback/registrar/internal/registry"
)

// CaretakerPhase creates each caretaker record, verifies the write, and
// provisions the matching identity account. A failed record create is
// recorded and the loop continues; a failed identity registration aborts the
// run, because an account that cannot authenticate is a hard inconsistency.
type CaretakerPhase struct{}

// Name implements Phase.
func (p *CaretakerPhase) Name() string { return "caretakers" }

// Provision implements Phase.
func (p *CaretakerPhase) Provision(ctx *Context) error {
	total := len(ctx.CaretakerInputs)
	for i, in := range ctx.CaretakerInputs {
		ctx.Observer.Progress(p.Name(), i+1, total)

		// The workbook's CommunityId is informational only.
		in.CommunityID = ctx.State.Community.ID
		in.Role = registry.RoleCaretaker

		record, err := ctx.Data.CreateCaretaker(ctx, in)
		if err != nil {
			ctx.Observer.Warnf("caretaker %s: record creation failed: %v", in.Email, err)
			ctx.State.Summary.RecordCaretakerFailure(in.Email, err)
			continue
		}

		verified := verifyRecord(ctx, in.Email, registry.RoleCaretaker)

		outcome, err := ctx.Identity.UpsertUser(ctx, cognito.UpsertUserInput{
			Email:      in.Email,
			GivenName:  in.FirstName,
			FamilyName: in.LastName,
			GroupName:  ctx.State.GroupName,
		})
		if err != nil {
			ctx.State.Summary.RecordCaretaker(record, verified, "")
			return &AbortError{
				Step:   p.Name(),
				Reason: fmt.Sprintf("identity registration failed for %s; the account would not be able to authenticate", in.Email),
				Err:    err,
				Remediation: []string{
					fmt.Sprintf("caretaker records up to and including %s exist in the data backend", in.Email),
					fmt.Sprintf("remove the created caretaker records, group %s, and community %s, then retry", ctx.State.GroupName, ctx.State.Community.ID),
				},
			}
		}

		ctx.State.Summary.RecordCaretaker(record, verified, outcome.String())
		ctx.Observer.Printf("caretaker %s provisioned (account %s)", in.Email, outcome)
	}

	return nil
}

// verifyRecord re-queries the data backend for a just-created caretaker.
// An empty result is reported as a consistency alarm, not a failure: the
// record usually exists and the query simply took a different read path.
func verifyRecord(ctx *Context, email, role string) bool {
	items, err := ctx.Data.CaretakersByEmailAndRole(ctx, email, role)
	if err != nil {
		ctx.Observer.Warnf("CONSISTENCY ALARM: verification query for %s failed: %v", email, err)
		ctx.State.Summary.AddAlarm(fmt.Sprintf("verification query for %s failed: %v", email, err))
		return false
	}
	if len(items) == 0 {
		ctx.Observer.Warnf("CONSISTENCY ALARM: caretaker %s not found on re-query after creation", email)
		ctx.State.Summary.AddAlarm(fmt.Sprintf("caretaker %s was created but not found on re-query", email))
		return false
	}
	return true
}
