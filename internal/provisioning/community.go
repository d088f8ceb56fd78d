package provisioning

// CommunityPhase creates the community record in the data backend. The
// backend-assigned ID becomes the binding key for every subsequent phase.
type CommunityPhase struct{}

// Name implements Phase.
func (p *CommunityPhase) Name() string { return "community" }

// Provision implements Phase.
func (p *CommunityPhase) Provision(ctx *Context) error {
	in := ctx.CommunityInput
	ctx.Observer.Printf("creating community %q (residents %d, caretakers %d)",
		in.Name, in.ResidentLimit, in.CaretakerLimit)

	community, err := ctx.Data.CreateCommunity(ctx, in)
	if err != nil {
		// No identity-side work exists yet, so nothing needs cleanup.
		return &AbortError{
			Step:   p.Name(),
			Reason: "the data backend rejected the community",
			Err:    err,
			Remediation: []string{
				"no records were created in either backend",
				"fix the reported backend error and retry",
			},
		}
	}

	ctx.State.Community = community
	ctx.State.Summary.Community = community
	ctx.Observer.Printf("community created with ID %s", community.ID)

	// Bookkeeping only; this run never re-reads the workbook.
	if err := ctx.Input.WriteBackCommunityID(community.ID); err != nil {
		ctx.Observer.Warnf("could not write community ID back to the input: %v", err)
		ctx.State.Summary.AddAlarm("community ID was not written back to the input; note it down manually: " + community.ID)
	}

	return nil
}
