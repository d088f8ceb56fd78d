package cognito

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI implements the api interface with overridable behavior per call.
type fakeAPI struct {
	initiateAuth           func(*cip.InitiateAuthInput) (*cip.InitiateAuthOutput, error)
	respondToAuthChallenge func(*cip.RespondToAuthChallengeInput) (*cip.RespondToAuthChallengeOutput, error)
	getGroup               func(*cip.GetGroupInput) (*cip.GetGroupOutput, error)
	createGroup            func(*cip.CreateGroupInput) (*cip.CreateGroupOutput, error)
	adminCreateUser        func(*cip.AdminCreateUserInput) (*cip.AdminCreateUserOutput, error)
	adminUpdateUser        func(*cip.AdminUpdateUserAttributesInput) (*cip.AdminUpdateUserAttributesOutput, error)
	adminSetUserPassword   func(*cip.AdminSetUserPasswordInput) (*cip.AdminSetUserPasswordOutput, error)
	adminAddUserToGroup    func(*cip.AdminAddUserToGroupInput) (*cip.AdminAddUserToGroupOutput, error)
	adminGetUser           func(*cip.AdminGetUserInput) (*cip.AdminGetUserOutput, error)
	listGroups             func(*cip.ListGroupsInput) (*cip.ListGroupsOutput, error)
}

func (f *fakeAPI) InitiateAuth(_ context.Context, p *cip.InitiateAuthInput, _ ...func(*cip.Options)) (*cip.InitiateAuthOutput, error) {
	return f.initiateAuth(p)
}

func (f *fakeAPI) RespondToAuthChallenge(_ context.Context, p *cip.RespondToAuthChallengeInput, _ ...func(*cip.Options)) (*cip.RespondToAuthChallengeOutput, error) {
	return f.respondToAuthChallenge(p)
}

func (f *fakeAPI) GetGroup(_ context.Context, p *cip.GetGroupInput, _ ...func(*cip.Options)) (*cip.GetGroupOutput, error) {
	return f.getGroup(p)
}

func (f *fakeAPI) CreateGroup(_ context.Context, p *cip.CreateGroupInput, _ ...func(*cip.Options)) (*cip.CreateGroupOutput, error) {
	return f.createGroup(p)
}

func (f *fakeAPI) AdminCreateUser(_ context.Context, p *cip.AdminCreateUserInput, _ ...func(*cip.Options)) (*cip.AdminCreateUserOutput, error) {
	return f.adminCreateUser(p)
}

func (f *fakeAPI) AdminUpdateUserAttributes(_ context.Context, p *cip.AdminUpdateUserAttributesInput, _ ...func(*cip.Options)) (*cip.AdminUpdateUserAttributesOutput, error) {
	return f.adminUpdateUser(p)
}

func (f *fakeAPI) AdminSetUserPassword(_ context.Context, p *cip.AdminSetUserPasswordInput, _ ...func(*cip.Options)) (*cip.AdminSetUserPasswordOutput, error) {
	return f.adminSetUserPassword(p)
}

func (f *fakeAPI) AdminAddUserToGroup(_ context.Context, p *cip.AdminAddUserToGroupInput, _ ...func(*cip.Options)) (*cip.AdminAddUserToGroupOutput, error) {
	return f.adminAddUserToGroup(p)
}

func (f *fakeAPI) AdminGetUser(_ context.Context, p *cip.AdminGetUserInput, _ ...func(*cip.Options)) (*cip.AdminGetUserOutput, error) {
	return f.adminGetUser(p)
}

func (f *fakeAPI) ListGroups(_ context.Context, p *cip.ListGroupsInput, _ ...func(*cip.Options)) (*cip.ListGroupsOutput, error) {
	return f.listGroups(p)
}

func newTestClient(api *fakeAPI) *Client {
	return &Client{api: api, userPoolID: "us-east-1_pool", appClientID: "client-id"}
}

func TestAuthenticate_Success(t *testing.T) {
	t.Parallel()
	client := newTestClient(&fakeAPI{
		initiateAuth: func(in *cip.InitiateAuthInput) (*cip.InitiateAuthOutput, error) {
			assert.Equal(t, types.AuthFlowTypeUserPasswordAuth, in.AuthFlow)
			assert.Equal(t, "ops@x.com", in.AuthParameters["USERNAME"])
			return &cip.InitiateAuthOutput{
				AuthenticationResult: &types.AuthenticationResultType{IdToken: aws.String("id-token")},
			}, nil
		},
	})

	token, err := client.Authenticate(context.Background(), "ops@x.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "id-token", token)
}

func TestAuthenticate_ChallengeRequired(t *testing.T) {
	t.Parallel()
	client := newTestClient(&fakeAPI{
		initiateAuth: func(*cip.InitiateAuthInput) (*cip.InitiateAuthOutput, error) {
			return &cip.InitiateAuthOutput{
				ChallengeName: types.ChallengeNameTypeNewPasswordRequired,
				Session:       aws.String("challenge-session"),
			}, nil
		},
	})

	_, err := client.Authenticate(context.Background(), "ops@x.com", "secret")
	require.Error(t, err)
	require.True(t, IsChallengeRequired(err))

	var challengeErr *ChallengeRequiredError
	require.ErrorAs(t, err, &challengeErr)
	assert.Equal(t, "NEW_PASSWORD_REQUIRED", challengeErr.Challenge)
	assert.Equal(t, "challenge-session", challengeErr.Session)
}

func TestRespondToNewPasswordChallenge(t *testing.T) {
	t.Parallel()
	client := newTestClient(&fakeAPI{
		respondToAuthChallenge: func(in *cip.RespondToAuthChallengeInput) (*cip.RespondToAuthChallengeOutput, error) {
			assert.Equal(t, types.ChallengeNameTypeNewPasswordRequired, in.ChallengeName)
			assert.Equal(t, "challenge-session", aws.ToString(in.Session))
			assert.Equal(t, "new-secret", in.ChallengeResponses["NEW_PASSWORD"])
			return &cip.RespondToAuthChallengeOutput{
				AuthenticationResult: &types.AuthenticationResultType{IdToken: aws.String("fresh-token")},
			}, nil
		},
	})

	token, err := client.RespondToNewPasswordChallenge(context.Background(), "ops@x.com", "challenge-session", "new-secret")
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
}

func TestEnsureGroup_CreatesWhenMissing(t *testing.T) {
	t.Parallel()
	created := false
	client := newTestClient(&fakeAPI{
		getGroup: func(*cip.GetGroupInput) (*cip.GetGroupOutput, error) {
			return nil, &types.ResourceNotFoundException{}
		},
		createGroup: func(in *cip.CreateGroupInput) (*cip.CreateGroupOutput, error) {
			created = true
			assert.Equal(t, "community-c-1", aws.ToString(in.GroupName))
			assert.Contains(t, aws.ToString(in.Description), "Oak Manor")
			return &cip.CreateGroupOutput{}, nil
		},
	})

	err := client.EnsureGroup(context.Background(), "community-c-1", "Caretakers of Oak Manor (community c-1)")
	require.NoError(t, err)
	assert.True(t, created)
}

func TestEnsureGroup_ExistingIsSuccess(t *testing.T) {
	t.Parallel()
	client := newTestClient(&fakeAPI{
		getGroup: func(*cip.GetGroupInput) (*cip.GetGroupOutput, error) {
			return &cip.GetGroupOutput{Group: &types.GroupType{GroupName: aws.String("community-c-1")}}, nil
		},
		createGroup: func(*cip.CreateGroupInput) (*cip.CreateGroupOutput, error) {
			t.Fatal("create must not be called when the group exists")
			return nil, nil
		},
	})

	require.NoError(t, client.EnsureGroup(context.Background(), "community-c-1", "desc"))
}

func TestEnsureGroup_LookupErrorPropagates(t *testing.T) {
	t.Parallel()
	client := newTestClient(&fakeAPI{
		getGroup: func(*cip.GetGroupInput) (*cip.GetGroupOutput, error) {
			return nil, errors.New("throttled")
		},
	})

	err := client.EnsureGroup(context.Background(), "community-c-1", "desc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestUserExists(t *testing.T) {
	t.Parallel()
	client := newTestClient(&fakeAPI{
		adminGetUser: func(in *cip.AdminGetUserInput) (*cip.AdminGetUserOutput, error) {
			if aws.ToString(in.Username) == "present@x.com" {
				return &cip.AdminGetUserOutput{Username: in.Username}, nil
			}
			return nil, &types.UserNotFoundException{}
		},
	})

	exists, err := client.UserExists(context.Background(), "present@x.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = client.UserExists(context.Background(), "absent@x.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpsertUser_CreatePath(t *testing.T) {
	t.Parallel()
	var addedToGroup string
	client := newTestClient(&fakeAPI{
		adminCreateUser: func(in *cip.AdminCreateUserInput) (*cip.AdminCreateUserOutput, error) {
			assert.Equal(t, "alice@x.com", aws.ToString(in.Username))
			assert.Empty(t, in.MessageAction)
			assert.Equal(t, []types.DeliveryMediumType{types.DeliveryMediumTypeEmail}, in.DesiredDeliveryMediums)
			return &cip.AdminCreateUserOutput{}, nil
		},
		adminAddUserToGroup: func(in *cip.AdminAddUserToGroupInput) (*cip.AdminAddUserToGroupOutput, error) {
			addedToGroup = aws.ToString(in.GroupName)
			return &cip.AdminAddUserToGroupOutput{}, nil
		},
	})

	outcome, err := client.UpsertUser(context.Background(), UpsertUserInput{
		Email:      "alice@x.com",
		GivenName:  "Alice",
		FamilyName: "Lee",
		GroupName:  "community-c-1",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)
	assert.Equal(t, "community-c-1", addedToGroup)
}

func TestUpsertUser_ExistingFallsBackToUpdate(t *testing.T) {
	t.Parallel()
	updated := false
	grouped := false
	client := newTestClient(&fakeAPI{
		adminCreateUser: func(*cip.AdminCreateUserInput) (*cip.AdminCreateUserOutput, error) {
			return nil, &types.UsernameExistsException{}
		},
		adminUpdateUser: func(in *cip.AdminUpdateUserAttributesInput) (*cip.AdminUpdateUserAttributesOutput, error) {
			updated = true
			assert.Equal(t, "alice@x.com", aws.ToString(in.Username))
			return &cip.AdminUpdateUserAttributesOutput{}, nil
		},
		adminAddUserToGroup: func(*cip.AdminAddUserToGroupInput) (*cip.AdminAddUserToGroupOutput, error) {
			grouped = true
			return &cip.AdminAddUserToGroupOutput{}, nil
		},
	})

	outcome, err := client.UpsertUser(context.Background(), UpsertUserInput{
		Email:     "alice@x.com",
		GroupName: "community-c-1",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)
	assert.True(t, updated)
	assert.True(t, grouped)
}

func TestUpsertUser_PermanentPassword(t *testing.T) {
	t.Parallel()
	var passwordSet bool
	client := newTestClient(&fakeAPI{
		adminCreateUser: func(in *cip.AdminCreateUserInput) (*cip.AdminCreateUserOutput, error) {
			assert.Equal(t, types.MessageActionTypeSuppress, in.MessageAction)
			for _, attr := range in.UserAttributes {
				if aws.ToString(attr.Name) == "email_verified" {
					assert.Equal(t, "true", aws.ToString(attr.Value))
				}
			}
			return &cip.AdminCreateUserOutput{}, nil
		},
		adminSetUserPassword: func(in *cip.AdminSetUserPasswordInput) (*cip.AdminSetUserPasswordOutput, error) {
			passwordSet = true
			assert.True(t, in.Permanent)
			return &cip.AdminSetUserPasswordOutput{}, nil
		},
		adminAddUserToGroup: func(*cip.AdminAddUserToGroupInput) (*cip.AdminAddUserToGroupOutput, error) {
			return &cip.AdminAddUserToGroupOutput{}, nil
		},
	})

	outcome, err := client.UpsertUser(context.Background(), UpsertUserInput{
		Email:      "oakmanor@wisefido.com",
		GivenName:  "Oak Manor",
		FamilyName: "Admin",
		GroupName:  "community-c-1",
		Verified:   true,
		Password:   "permanent-secret",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)
	assert.True(t, passwordSet)
}

func TestUpsertUser_GroupAddFailure(t *testing.T) {
	t.Parallel()
	client := newTestClient(&fakeAPI{
		adminCreateUser: func(*cip.AdminCreateUserInput) (*cip.AdminCreateUserOutput, error) {
			return &cip.AdminCreateUserOutput{}, nil
		},
		adminAddUserToGroup: func(*cip.AdminAddUserToGroupInput) (*cip.AdminAddUserToGroupOutput, error) {
			return nil, errors.New("group gone")
		},
	})

	_, err := client.UpsertUser(context.Background(), UpsertUserInput{Email: "a@x.com", GroupName: "g"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "group gone")
}

func TestListGroups_Paginates(t *testing.T) {
	t.Parallel()
	calls := 0
	client := newTestClient(&fakeAPI{
		listGroups: func(in *cip.ListGroupsInput) (*cip.ListGroupsOutput, error) {
			calls++
			if calls == 1 {
				assert.Nil(t, in.NextToken)
				return &cip.ListGroupsOutput{
					Groups:    []types.GroupType{{GroupName: aws.String("community-1"), Description: aws.String("one")}},
					NextToken: aws.String("page-2"),
				}, nil
			}
			assert.Equal(t, "page-2", aws.ToString(in.NextToken))
			return &cip.ListGroupsOutput{
				Groups: []types.GroupType{{GroupName: aws.String("community-2"), Description: aws.String("two")}},
			}, nil
		},
	})

	groups, err := client.ListGroups(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "community-1", groups[0].Name)
	assert.Equal(t, "two", groups[1].Description)
}
