package cognito

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// UpsertOutcome tags the result of an account upsert so callers branch on the
// tag instead of on error identity.
type UpsertOutcome int

const (
	// OutcomeCreated means a fresh account was created.
	OutcomeCreated UpsertOutcome = iota
	// OutcomeUpdated means the account already existed and its attributes,
	// password, and group membership were refreshed instead.
	OutcomeUpdated
)

func (o UpsertOutcome) String() string {
	if o == OutcomeUpdated {
		return "updated"
	}
	return "created"
}

// UpsertUserInput describes the desired state of one identity account.
type UpsertUserInput struct {
	Email      string
	GivenName  string
	FamilyName string
	GroupName  string

	// Verified marks the email as verified on creation. Set only for the
	// administrative account.
	Verified bool

	// Password, when non-empty, is set as a permanent password and the Cognito
	// invitation mail is suppressed. Empty means the account gets a temporary
	// password and must set its own.
	Password string
}

// UpsertUser creates the account, falling back to an attribute update when it
// already exists, and (re)adds it to the group either way. Idempotent: running
// it twice with the same input converges on the same account state.
func (c *Client) UpsertUser(ctx context.Context, in UpsertUserInput) (UpsertOutcome, error) {
	outcome := OutcomeCreated

	createInput := &cip.AdminCreateUserInput{
		UserPoolId:     aws.String(c.userPoolID),
		Username:       aws.String(in.Email),
		UserAttributes: userAttributes(in),
	}
	if in.Password != "" {
		createInput.MessageAction = types.MessageActionTypeSuppress
	} else {
		createInput.DesiredDeliveryMediums = []types.DeliveryMediumType{types.DeliveryMediumTypeEmail}
	}

	_, err := c.api.AdminCreateUser(ctx, createInput)
	switch {
	case err == nil:
	case IsUsernameExists(err):
		outcome = OutcomeUpdated
		if err := c.updateUser(ctx, in); err != nil {
			return outcome, err
		}
	default:
		return outcome, fmt.Errorf("failed to create account %s: %w", in.Email, err)
	}

	if in.Password != "" {
		_, err = c.api.AdminSetUserPassword(ctx, &cip.AdminSetUserPasswordInput{
			UserPoolId: aws.String(c.userPoolID),
			Username:   aws.String(in.Email),
			Password:   aws.String(in.Password),
			Permanent:  true,
		})
		if err != nil {
			return outcome, fmt.Errorf("failed to set password for %s: %w", in.Email, err)
		}
	}

	_, err = c.api.AdminAddUserToGroup(ctx, &cip.AdminAddUserToGroupInput{
		UserPoolId: aws.String(c.userPoolID),
		Username:   aws.String(in.Email),
		GroupName:  aws.String(in.GroupName),
	})
	if err != nil {
		return outcome, fmt.Errorf("failed to add %s to group %s: %w", in.Email, in.GroupName, err)
	}

	return outcome, nil
}

func (c *Client) updateUser(ctx context.Context, in UpsertUserInput) error {
	_, err := c.api.AdminUpdateUserAttributes(ctx, &cip.AdminUpdateUserAttributesInput{
		UserPoolId:     aws.String(c.userPoolID),
		Username:       aws.String(in.Email),
		UserAttributes: userAttributes(in),
	})
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", in.Email, err)
	}
	return nil
}

func userAttributes(in UpsertUserInput) []types.AttributeType {
	verified := "false"
	if in.Verified {
		verified = "true"
	}
	return []types.AttributeType{
		{Name: aws.String("email"), Value: aws.String(in.Email)},
		{Name: aws.String("given_name"), Value: aws.String(in.GivenName)},
		{Name: aws.String("family_name"), Value: aws.String(in.FamilyName)},
		{Name: aws.String("email_verified"), Value: aws.String(verified)},
	}
}
