package appsync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/owlback/registrar/internal/registry"
)

// Typed operations over the GraphQL schema. Each is a single synchronous
// request/response call with no implicit retry.

const createCommunityMutation = `
mutation CreateCommunity($input: CreateCommunityInput!) {
  createCommunity(input: $input) {
    id
    name
    street
    city
    state
    country
    postalCode
    phoneNumber
    email
    residentLimit
    caretakerLimit
    isActive
    createdAt
    updatedAt
  }
}`

// CreateCommunity creates a community record and returns it with its
// backend-assigned ID.
func (c *Client) CreateCommunity(ctx context.Context, in registry.CommunityInput) (*registry.Community, error) {
	var data struct {
		CreateCommunity *registry.Community `json:"createCommunity"`
	}
	if err := c.Execute(ctx, createCommunityMutation, inputVariables(in), &data); err != nil {
		return nil, fmt.Errorf("createCommunity %q: %w", in.Name, err)
	}
	if data.CreateCommunity == nil || data.CreateCommunity.ID == "" {
		return nil, fmt.Errorf("createCommunity %q: backend returned no id", in.Name)
	}
	return data.CreateCommunity, nil
}

const createCaretakerMutation = `
mutation CreateCaretaker($input: CreateCaretakerInput!) {
  createCaretaker(input: $input) {
    id
    communityId
    firstName
    lastName
    email
    role
    isActive
    createdAt
    updatedAt
  }
}`

// CreateCaretaker creates a caretaker record bound to a community.
func (c *Client) CreateCaretaker(ctx context.Context, in registry.CaretakerInput) (*registry.Caretaker, error) {
	var data struct {
		CreateCaretaker *registry.Caretaker `json:"createCaretaker"`
	}
	if err := c.Execute(ctx, createCaretakerMutation, inputVariables(in), &data); err != nil {
		return nil, fmt.Errorf("createCaretaker %q: %w", in.Email, err)
	}
	if data.CreateCaretaker == nil || data.CreateCaretaker.ID == "" {
		return nil, fmt.Errorf("createCaretaker %q: backend returned no id", in.Email)
	}
	return data.CreateCaretaker, nil
}

const caretakersByEmailAndRoleQuery = `
query CaretakersByEmailAndRole($email: String!, $role: String!) {
  caretakersByEmailAndRole(email: $email, role: $role) {
    items {
      id
      communityId
      firstName
      lastName
      email
      role
      isActive
    }
  }
}`

// CaretakersByEmailAndRole queries caretaker records by their cross-system
// join key. Used to verify writes after creation.
func (c *Client) CaretakersByEmailAndRole(ctx context.Context, email, role string) ([]registry.Caretaker, error) {
	var data struct {
		Result struct {
			Items []registry.Caretaker `json:"items"`
		} `json:"caretakersByEmailAndRole"`
	}
	vars := map[string]any{"email": email, "role": role}
	if err := c.Execute(ctx, caretakersByEmailAndRoleQuery, vars, &data); err != nil {
		return nil, fmt.Errorf("caretakersByEmailAndRole %q: %w", email, err)
	}
	return data.Result.Items, nil
}

const listCommunitiesQuery = `
query ListCommunities($limit: Int) {
  listCommunities(limit: $limit) {
    items {
      id
      name
      email
    }
  }
}`

// ListCommunities lists up to limit community records. Used only by the
// idempotency guard for email-collision lookup.
func (c *Client) ListCommunities(ctx context.Context, limit int) ([]registry.Community, error) {
	var data struct {
		Result struct {
			Items []registry.Community `json:"items"`
		} `json:"listCommunities"`
	}
	if err := c.Execute(ctx, listCommunitiesQuery, map[string]any{"limit": limit}, &data); err != nil {
		return nil, fmt.Errorf("listCommunities: %w", err)
	}
	return data.Result.Items, nil
}

// inputVariables wraps a typed input struct into the {"input": ...} variables
// object expected by create mutations, going through JSON so the GraphQL field
// names on the struct tags apply.
func inputVariables(in any) map[string]any {
	raw, err := json.Marshal(in)
	if err != nil {
		return map[string]any{"input": in}
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return map[string]any{"input": in}
	}
	return map[string]any{"input": fields}
}
