package cognito

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
)

// ChallengeRequiredError is returned when authentication is interrupted by a
// challenge (forced password reset, MFA) that needs interactive handling.
type ChallengeRequiredError struct {
	Username  string
	Challenge string
	// Session carries the challenge state needed to respond.
	Session string
}

func (e *ChallengeRequiredError) Error() string {
	return fmt.Sprintf("authentication for %s requires interactive challenge %s", e.Username, e.Challenge)
}

// IsChallengeRequired reports whether err is a mid-authentication challenge.
func IsChallengeRequired(err error) bool {
	var challengeErr *ChallengeRequiredError
	return errors.As(err, &challengeErr)
}

// IsUsernameExists checks if the error indicates the account already exists.
// This is the signal for the upsert fallback, not a failure.
func IsUsernameExists(err error) bool {
	if err == nil {
		return false
	}

	var exists *types.UsernameExistsException
	if errors.As(err, &exists) {
		return true
	}

	return hasAPIErrorCode(err, "UsernameExistsException")
}

// IsUserNotFound checks if the error indicates the account does not exist.
func IsUserNotFound(err error) bool {
	if err == nil {
		return false
	}

	var notFound *types.UserNotFoundException
	if errors.As(err, &notFound) {
		return true
	}

	return hasAPIErrorCode(err, "UserNotFoundException")
}

// IsGroupNotFound checks if the error indicates the group does not exist.
// Cognito reports missing groups as ResourceNotFoundException.
func IsGroupNotFound(err error) bool {
	if err == nil {
		return false
	}

	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return true
	}

	return hasAPIErrorCode(err, "ResourceNotFoundException")
}

// hasAPIErrorCode falls back to the generic API error code for responses that
// do not deserialize into the typed exceptions.
func hasAPIErrorCode(err error, code string) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == code
	}
	return false
}
