package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/owlback/registrar/internal/platform/cognito"
	"github.com/owlback/registrar/internal/registry"
)

// FakeData is a func-field fake of the data backend. Unset funcs fail the
// call, so a test only wires what it expects to be reached. Calls counts
// every invocation by method name.
type FakeData struct {
	mu    sync.Mutex
	Calls map[string]int

	CreateCommunityFunc          func(ctx context.Context, in registry.CommunityInput) (*registry.Community, error)
	CreateCaretakerFunc          func(ctx context.Context, in registry.CaretakerInput) (*registry.Caretaker, error)
	CaretakersByEmailAndRoleFunc func(ctx context.Context, email, role string) ([]registry.Caretaker, error)
	ListCommunitiesFunc          func(ctx context.Context, limit int) ([]registry.Community, error)
}

func (f *FakeData) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Calls == nil {
		f.Calls = make(map[string]int)
	}
	f.Calls[method]++
}

// CallCount returns how many times method was invoked.
func (f *FakeData) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[method]
}

// TotalCalls returns the number of invocations across all methods.
func (f *FakeData) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.Calls {
		total += n
	}
	return total
}

func (f *FakeData) CreateCommunity(ctx context.Context, in registry.CommunityInput) (*registry.Community, error) {
	f.record("CreateCommunity")
	if f.CreateCommunityFunc == nil {
		return nil, fmt.Errorf("unexpected call to CreateCommunity")
	}
	return f.CreateCommunityFunc(ctx, in)
}

func (f *FakeData) CreateCaretaker(ctx context.Context, in registry.CaretakerInput) (*registry.Caretaker, error) {
	f.record("CreateCaretaker")
	if f.CreateCaretakerFunc == nil {
		return nil, fmt.Errorf("unexpected call to CreateCaretaker")
	}
	return f.CreateCaretakerFunc(ctx, in)
}

func (f *FakeData) CaretakersByEmailAndRole(ctx context.Context, email, role string) ([]registry.Caretaker, error) {
	f.record("CaretakersByEmailAndRole")
	if f.CaretakersByEmailAndRoleFunc == nil {
		return nil, fmt.Errorf("unexpected call to CaretakersByEmailAndRole")
	}
	return f.CaretakersByEmailAndRoleFunc(ctx, email, role)
}

func (f *FakeData) ListCommunities(ctx context.Context, limit int) ([]registry.Community, error) {
	f.record("ListCommunities")
	if f.ListCommunitiesFunc == nil {
		return nil, fmt.Errorf("unexpected call to ListCommunities")
	}
	return f.ListCommunitiesFunc(ctx, limit)
}

// FakeIdentity is a func-field fake of the identity backend.
type FakeIdentity struct {
	mu    sync.Mutex
	Calls map[string]int

	EnsureGroupFunc func(ctx context.Context, name, description string) error
	GroupExistsFunc func(ctx context.Context, name string) (bool, error)
	UpsertUserFunc  func(ctx context.Context, in cognito.UpsertUserInput) (cognito.UpsertOutcome, error)
	UserExistsFunc  func(ctx context.Context, email string) (bool, error)
	ListGroupsFunc  func(ctx context.Context) ([]cognito.Group, error)
}

func (f *FakeIdentity) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Calls == nil {
		f.Calls = make(map[string]int)
	}
	f.Calls[method]++
}

// CallCount returns how many times method was invoked.
func (f *FakeIdentity) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[method]
}

// TotalCalls returns the number of invocations across all methods.
func (f *FakeIdentity) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.Calls {
		total += n
	}
	return total
}

func (f *FakeIdentity) EnsureGroup(ctx context.Context, name, description string) error {
	f.record("EnsureGroup")
	if f.EnsureGroupFunc == nil {
		return fmt.Errorf("unexpected call to EnsureGroup")
	}
	return f.EnsureGroupFunc(ctx, name, description)
}

func (f *FakeIdentity) GroupExists(ctx context.Context, name string) (bool, error) {
	f.record("GroupExists")
	if f.GroupExistsFunc == nil {
		return false, fmt.Errorf("unexpected call to GroupExists")
	}
	return f.GroupExistsFunc(ctx, name)
}

func (f *FakeIdentity) UpsertUser(ctx context.Context, in cognito.UpsertUserInput) (cognito.UpsertOutcome, error) {
	f.record("UpsertUser")
	if f.UpsertUserFunc == nil {
		return 0, fmt.Errorf("unexpected call to UpsertUser")
	}
	return f.UpsertUserFunc(ctx, in)
}

func (f *FakeIdentity) UserExists(ctx context.Context, email string) (bool, error) {
	f.record("UserExists")
	if f.UserExistsFunc == nil {
		return false, fmt.Errorf("unexpected call to UserExists")
	}
	return f.UserExistsFunc(ctx, email)
}

func (f *FakeIdentity) ListGroups(ctx context.Context) ([]cognito.Group, error) {
	f.record("ListGroups")
	if f.ListGroupsFunc == nil {
		return nil, fmt.Errorf("unexpected call to ListGroups")
	}
	return f.ListGroupsFunc(ctx)
}

// FakeProvider is an in-memory input provider. Write-backs are recorded in
// exported fields for assertions.
type FakeProvider struct {
	CommunityRows []registry.CommunityInput
	CaretakerRows []registry.CaretakerInput
	Processed     bool

	CommunitiesErr    error
	CaretakersErr     error
	MarkerErr         error
	WriteBackIDErr    error
	WriteBackCredsErr error

	WrittenCommunityID string
	WrittenAdminEmail  string
	WrittenAdminPass   string
}

func (f *FakeProvider) Communities() ([]registry.CommunityInput, error) {
	return f.CommunityRows, f.CommunitiesErr
}

func (f *FakeProvider) Caretakers() ([]registry.CaretakerInput, error) {
	return f.CaretakerRows, f.CaretakersErr
}

func (f *FakeProvider) HasProcessedMarker() (bool, error) {
	return f.Processed, f.MarkerErr
}

func (f *FakeProvider) WriteBackCommunityID(id string) error {
	if f.WriteBackIDErr != nil {
		return f.WriteBackIDErr
	}
	f.WrittenCommunityID = id
	return nil
}

func (f *FakeProvider) WriteBackAdminCredentials(email, password string) error {
	if f.WriteBackCredsErr != nil {
		return f.WriteBackCredsErr
	}
	f.WrittenAdminEmail = email
	f.WrittenAdminPass = password
	return nil
}

// ScriptedPrompter answers prompts without a terminal.
type ScriptedPrompter struct {
	SecretValue  string
	SecretErr    error
	ConfirmValue bool
	ConfirmErr   error

	SecretTitles []string
}

func (p *ScriptedPrompter) Secret(_ context.Context, title, _ string) (string, error) {
	p.SecretTitles = append(p.SecretTitles, title)
	if p.SecretErr != nil {
		return "", p.SecretErr
	}
	return p.SecretValue, nil
}

func (p *ScriptedPrompter) Confirm(_ context.Context, _ string) (bool, error) {
	return p.ConfirmValue, p.ConfirmErr
}

// RecordingObserver captures observer output for assertions.
type RecordingObserver struct {
	mu       sync.Mutex
	Messages []string
	Warnings []string
}

func (o *RecordingObserver) Printf(format string, v ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Messages = append(o.Messages, fmt.Sprintf(format, v...))
}

func (o *RecordingObserver) Warnf(format string, v ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Warnings = append(o.Warnings, fmt.Sprintf(format, v...))
}

func (o *RecordingObserver) Progress(step string, current, total int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Messages = append(o.Messages, fmt.Sprintf("[%s] %d/%d", step, current, total))
}
