// Package appsync provides a client for the AppSync GraphQL data backend.
package appsync

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"

	"github.com/owlback/registrar/internal/config"
	"github.com/owlback/registrar/internal/platform/awsauth"
)

const signingService = "appsync"

// Client executes GraphQL operations against an AppSync endpoint.
// Requests are either sigv4-signed (IAM auth) or carry a Cognito user pool
// token in the Authorization header.
type Client struct {
	httpClient *http.Client
	url        string
	region     string
	creds      aws.CredentialsProvider
	signer     *v4.Signer
	authToken  string
}

// NewClient creates a client for the data backend described by env.
func NewClient(ctx context.Context, env *config.Environment) (*Client, error) {
	cfg, err := awsauth.Load(ctx, env)
	if err != nil {
		return nil, err
	}

	return &Client{
		httpClient: &http.Client{},
		url:        env.AppSyncURL,
		region:     env.Region,
		creds:      cfg.Credentials,
		signer:     v4.NewSigner(),
	}, nil
}

// SetAuthToken switches the client to user-pool authorization using the given
// Cognito token. Subsequent requests are no longer sigv4-signed.
func (c *Client) SetAuthToken(token string) {
	c.authToken = token
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []ErrorEntry    `json:"errors"`
}

// Execute posts a GraphQL operation and decodes the "data" object into out.
// Backend-reported errors are returned as a *GraphQLError carrying the raw
// error payload; the client does not interpret them further.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(request{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.authorize(ctx, req, body); err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graphql request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read graphql response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &TransportError{StatusCode: resp.StatusCode, Body: raw}
	}

	var parsed response
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("failed to decode graphql response: %w", err)
	}

	if len(parsed.Errors) > 0 {
		return &GraphQLError{Errors: parsed.Errors, Raw: raw}
	}

	if out != nil {
		if err := json.Unmarshal(parsed.Data, out); err != nil {
			return fmt.Errorf("failed to decode graphql data: %w", err)
		}
	}

	return nil
}

// authorize attaches either the user pool token or a sigv4 signature.
func (c *Client) authorize(ctx context.Context, req *http.Request, body []byte) error {
	if c.authToken != "" {
		req.Header.Set("Authorization", c.authToken)
		return nil
	}

	creds, err := c.creds.Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve AWS credentials: %w", err)
	}

	sum := sha256.Sum256(body)
	payloadHash := hex.EncodeToString(sum[:])

	if err := c.signer.SignHTTP(ctx, creds, req, payloadHash, signingService, c.region, time.Now()); err != nil {
		return fmt.Errorf("failed to sign graphql request: %w", err)
	}

	return nil
}
