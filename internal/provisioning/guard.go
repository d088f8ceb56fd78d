package provisioning

import (
	"fmt"
	"strings"

	"github.com/owlback/registrar/internal/util/naming"
)

// guardListLimit bounds the community listing used for collision lookup.
const guardListLimit = 500

// GuardPhase runs the idempotency checks before any mutation. The backends
// cannot be provisioned transactionally, so detecting a likely prior run up
// front is the only protection against double-creation. The checks err on the
// side of aborting: a false abort is recoverable, a double-provisioned
// community is not.
type GuardPhase struct{}

// Name implements Phase.
func (p *GuardPhase) Name() string { return "guard" }

// Provision implements Phase. Checks run in order: processed marker, account
// collisions, group collision.
func (p *GuardPhase) Provision(ctx *Context) error {
	if err := p.checkProcessedMarker(ctx); err != nil {
		return err
	}
	if err := p.checkAccountCollisions(ctx); err != nil {
		return err
	}
	return p.checkGroupCollision(ctx)
}

func (p *GuardPhase) checkProcessedMarker(ctx *Context) error {
	processed, err := ctx.Input.HasProcessedMarker()
	if err != nil {
		return &AbortError{
			Step:   p.Name(),
			Reason: "could not inspect the input for a processed marker",
			Err:    err,
			Remediation: []string{
				"verify the workbook is readable and not open in another program",
			},
		}
	}
	if processed {
		return &AbortError{
			Step:   p.Name(),
			Reason: "input was already processed (community ID or admin credentials are present)",
			Remediation: []string{
				"this input has been provisioned before; re-running would create duplicates",
				"start from a fresh workbook if this is genuinely a new community",
			},
		}
	}
	return nil
}

func (p *GuardPhase) checkAccountCollisions(ctx *Context) error {
	emails := make([]string, 0, len(ctx.CaretakerInputs)+1)
	for _, ct := range ctx.CaretakerInputs {
		emails = append(emails, ct.Email)
	}
	emails = append(emails, naming.AdminEmail(ctx.CommunityInput.Name, ctx.Env.AdminDomain))

	for _, email := range emails {
		exists, err := ctx.Identity.UserExists(ctx, email)
		if err != nil {
			return &AbortError{
				Step:   p.Name(),
				Reason: fmt.Sprintf("could not check identity backend for account %s", email),
				Err:    err,
				Remediation: []string{
					"verify identity backend connectivity and credentials, then retry",
				},
			}
		}
		if exists {
			return &AbortError{
				Step:   p.Name(),
				Reason: fmt.Sprintf("account %s already exists in the identity backend", email),
				Remediation: []string{
					"this community (or one of its caretakers) appears to be provisioned already",
					fmt.Sprintf("if the account is unrelated, remove or rename %s in the input and retry", email),
				},
			}
		}
	}
	return nil
}

// checkGroupCollision resolves the community by email through the data
// backend and probes for its derived group. When the data backend cannot be
// queried, it falls back to scanning group descriptions; that match is
// heuristic and best-effort, not a guarantee.
func (p *GuardPhase) checkGroupCollision(ctx *Context) error {
	communities, err := ctx.Data.ListCommunities(ctx, guardListLimit)
	if err != nil {
		ctx.Observer.Warnf("data backend listing unavailable (%v); falling back to group scan", err)
		return p.scanGroupDescriptions(ctx)
	}

	for _, existing := range communities {
		if !strings.EqualFold(existing.Email, ctx.CommunityInput.Email) {
			continue
		}
		groupName := naming.Group(existing.ID)
		exists, err := ctx.Identity.GroupExists(ctx, groupName)
		if err != nil {
			return &AbortError{
				Step:   p.Name(),
				Reason: fmt.Sprintf("could not check identity backend for group %s", groupName),
				Err:    err,
				Remediation: []string{
					"verify identity backend connectivity and credentials, then retry",
				},
			}
		}
		if exists {
			return p.groupCollisionAbort(ctx, groupName)
		}
	}
	return nil
}

func (p *GuardPhase) scanGroupDescriptions(ctx *Context) error {
	groups, err := ctx.Identity.ListGroups(ctx)
	if err != nil {
		return &AbortError{
			Step:   p.Name(),
			Reason: "neither the data backend nor the identity backend could be queried for prior provisioning",
			Err:    err,
			Remediation: []string{
				"both collision-check paths failed; fix backend connectivity before retrying",
			},
		}
	}

	name := strings.ToLower(ctx.CommunityInput.Name)
	email := strings.ToLower(ctx.CommunityInput.Email)
	for _, group := range groups {
		desc := strings.ToLower(group.Description)
		if desc == "" {
			continue
		}
		if strings.Contains(desc, name) || strings.Contains(desc, email) {
			return p.groupCollisionAbort(ctx, group.Name)
		}
	}
	return nil
}

func (p *GuardPhase) groupCollisionAbort(ctx *Context, groupName string) *AbortError {
	return &AbortError{
		Step:   p.Name(),
		Reason: fmt.Sprintf("group %s already exists for community %q", groupName, ctx.CommunityInput.Name),
		Remediation: []string{
			"a community with this email or name already has identity infrastructure",
			fmt.Sprintf("inspect group %s in the user pool; if this is a stale leftover, remove it and the matching community record, then retry", groupName),
		},
	}
}
