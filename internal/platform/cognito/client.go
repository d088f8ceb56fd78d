// Package cognito provides a client for the Cognito identity backend:
// operator authentication, group management, and account provisioning.
package cognito

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"github.com/owlback/registrar/internal/config"
	"github.com/owlback/registrar/internal/platform/awsauth"
)

// api is the subset of the Cognito identity provider API the client uses.
// Satisfied by *cognitoidentityprovider.Client; replaced by a mock in tests.
type api interface {
	InitiateAuth(ctx context.Context, params *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	RespondToAuthChallenge(ctx context.Context, params *cip.RespondToAuthChallengeInput, optFns ...func(*cip.Options)) (*cip.RespondToAuthChallengeOutput, error)
	GetGroup(ctx context.Context, params *cip.GetGroupInput, optFns ...func(*cip.Options)) (*cip.GetGroupOutput, error)
	CreateGroup(ctx context.Context, params *cip.CreateGroupInput, optFns ...func(*cip.Options)) (*cip.CreateGroupOutput, error)
	AdminCreateUser(ctx context.Context, params *cip.AdminCreateUserInput, optFns ...func(*cip.Options)) (*cip.AdminCreateUserOutput, error)
	AdminUpdateUserAttributes(ctx context.Context, params *cip.AdminUpdateUserAttributesInput, optFns ...func(*cip.Options)) (*cip.AdminUpdateUserAttributesOutput, error)
	AdminSetUserPassword(ctx context.Context, params *cip.AdminSetUserPasswordInput, optFns ...func(*cip.Options)) (*cip.AdminSetUserPasswordOutput, error)
	AdminAddUserToGroup(ctx context.Context, params *cip.AdminAddUserToGroupInput, optFns ...func(*cip.Options)) (*cip.AdminAddUserToGroupOutput, error)
	AdminGetUser(ctx context.Context, params *cip.AdminGetUserInput, optFns ...func(*cip.Options)) (*cip.AdminGetUserOutput, error)
	ListGroups(ctx context.Context, params *cip.ListGroupsInput, optFns ...func(*cip.Options)) (*cip.ListGroupsOutput, error)
}

// Client wraps the Cognito identity provider for one user pool.
type Client struct {
	api         api
	userPoolID  string
	appClientID string
}

// NewClient creates a client for the identity backend described by env.
func NewClient(ctx context.Context, env *config.Environment) (*Client, error) {
	cfg, err := awsauth.Load(ctx, env)
	if err != nil {
		return nil, err
	}
	return &Client{
		api:         cip.NewFromConfig(cfg),
		userPoolID:  env.UserPoolID,
		appClientID: env.AppClientID,
	}, nil
}

// Authenticate performs the USER_PASSWORD_AUTH flow and returns the session
// ID token. A mid-authentication challenge (forced password reset and the
// like) is returned as a *ChallengeRequiredError: the primary workflow has no
// interactive recovery for it.
func (c *Client) Authenticate(ctx context.Context, username, password string) (string, error) {
	out, err := c.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(c.appClientID),
		AuthParameters: map[string]string{
			"USERNAME": username,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return "", fmt.Errorf("authentication failed for %s: %w", username, err)
	}

	if out.ChallengeName != "" {
		return "", &ChallengeRequiredError{
			Username:  username,
			Challenge: string(out.ChallengeName),
			Session:   aws.ToString(out.Session),
		}
	}

	if out.AuthenticationResult == nil || out.AuthenticationResult.IdToken == nil {
		return "", fmt.Errorf("authentication for %s returned no token", username)
	}
	return aws.ToString(out.AuthenticationResult.IdToken), nil
}

// RespondToNewPasswordChallenge resolves a NEW_PASSWORD_REQUIRED challenge
// using the session from the failed Authenticate call. Maintenance path only.
func (c *Client) RespondToNewPasswordChallenge(ctx context.Context, username, session, newPassword string) (string, error) {
	out, err := c.api.RespondToAuthChallenge(ctx, &cip.RespondToAuthChallengeInput{
		ChallengeName: types.ChallengeNameTypeNewPasswordRequired,
		ClientId:      aws.String(c.appClientID),
		Session:       aws.String(session),
		ChallengeResponses: map[string]string{
			"USERNAME":     username,
			"NEW_PASSWORD": newPassword,
		},
	})
	if err != nil {
		return "", fmt.Errorf("challenge response failed for %s: %w", username, err)
	}

	if out.ChallengeName != "" {
		return "", &ChallengeRequiredError{
			Username:  username,
			Challenge: string(out.ChallengeName),
			Session:   aws.ToString(out.Session),
		}
	}

	if out.AuthenticationResult == nil || out.AuthenticationResult.IdToken == nil {
		return "", fmt.Errorf("challenge response for %s returned no token", username)
	}
	return aws.ToString(out.AuthenticationResult.IdToken), nil
}

// EnsureGroup creates the named group if it does not exist. Safe to call
// repeatedly for the same community: an existing group is a success.
func (c *Client) EnsureGroup(ctx context.Context, name, description string) error {
	_, err := c.api.GetGroup(ctx, &cip.GetGroupInput{
		GroupName:  aws.String(name),
		UserPoolId: aws.String(c.userPoolID),
	})
	if err == nil {
		return nil
	}
	if !IsGroupNotFound(err) {
		return fmt.Errorf("failed to look up group %s: %w", name, err)
	}

	_, err = c.api.CreateGroup(ctx, &cip.CreateGroupInput{
		GroupName:   aws.String(name),
		UserPoolId:  aws.String(c.userPoolID),
		Description: aws.String(description),
	})
	if err != nil {
		return fmt.Errorf("failed to create group %s: %w", name, err)
	}
	return nil
}

// GroupExists reports whether the named group exists in the user pool.
func (c *Client) GroupExists(ctx context.Context, name string) (bool, error) {
	_, err := c.api.GetGroup(ctx, &cip.GetGroupInput{
		GroupName:  aws.String(name),
		UserPoolId: aws.String(c.userPoolID),
	})
	if err != nil {
		if IsGroupNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up group %s: %w", name, err)
	}
	return true, nil
}

// UserExists reports whether an account with the given email exists.
// A missing account is a normal outcome, not an error.
func (c *Client) UserExists(ctx context.Context, email string) (bool, error) {
	_, err := c.api.AdminGetUser(ctx, &cip.AdminGetUserInput{
		Username:   aws.String(email),
		UserPoolId: aws.String(c.userPoolID),
	})
	if err != nil {
		if IsUserNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up account %s: %w", email, err)
	}
	return true, nil
}

// Group is a user pool group as returned by ListGroups.
type Group struct {
	Name        string
	Description string
}

// ListGroups returns all groups in the user pool, following pagination.
// Fallback path for the collision guard when the data backend is unavailable.
func (c *Client) ListGroups(ctx context.Context) ([]Group, error) {
	var groups []Group
	var nextToken *string
	for {
		out, err := c.api.ListGroups(ctx, &cip.ListGroupsInput{
			UserPoolId: aws.String(c.userPoolID),
			NextToken:  nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list groups: %w", err)
		}
		for _, g := range out.Groups {
			groups = append(groups, Group{
				Name:        aws.ToString(g.GroupName),
				Description: aws.ToString(g.Description),
			})
		}
		if out.NextToken == nil {
			return groups, nil
		}
		nextToken = out.NextToken
	}
}
