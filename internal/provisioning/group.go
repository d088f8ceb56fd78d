package provisioning

import (
	"fmt"
	"time"

	"github.com/owlback/registrar/internal/util/naming"
	"github.com/owlback/registrar/internal/util/retry"
)

// Existence-check retry bounds for group materialization. Creation itself is
// never retried blindly; EnsureGroup re-checks existence on every attempt.
const (
	groupRetryAttempts = 3
	groupRetryDelay    = time.Second
)

// GroupPhase materializes the community's access-control group in the
// identity backend, then waits out the data backend's read-after-write
// latency before the caretaker loop starts.
type GroupPhase struct{}

// Name implements Phase.
func (p *GroupPhase) Name() string { return "group" }

// Provision implements Phase.
func (p *GroupPhase) Provision(ctx *Context) error {
	community := ctx.State.Community
	groupName := naming.Group(community.ID)
	description := naming.GroupDescription(community.Name, community.ID)

	ctx.Observer.Printf("ensuring group %s", groupName)

	err := retry.Do(ctx, groupRetryAttempts, groupRetryDelay, func() error {
		return ctx.Identity.EnsureGroup(ctx, groupName, description)
	})
	if err != nil {
		// The community now exists without a group: a known inconsistency,
		// surfaced instead of silently retried.
		return &AbortError{
			Step:   p.Name(),
			Reason: fmt.Sprintf("could not materialize group %s", groupName),
			Err:    err,
			Remediation: []string{
				fmt.Sprintf("community %s exists in the data backend but has no identity group", community.ID),
				fmt.Sprintf("remove community %s from the data backend, then retry the registration", community.ID),
			},
		}
	}

	ctx.State.GroupName = groupName
	ctx.State.Summary.GroupName = groupName

	// Accommodates eventual consistency on the data backend's read path; it
	// is not a correctness guarantee.
	ctx.Observer.Printf("waiting %v before caretaker creation", ctx.Env.PropagationDelay)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(ctx.Env.PropagationDelay):
	}

	return nil
}
