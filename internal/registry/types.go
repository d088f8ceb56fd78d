// Package registry defines the community and caretaker entities exchanged
// with the data backend, plus the input records read from the registration
// workbook.
package registry

// Caretaker roles as stored by the data backend.
const (
	RoleCaretaker = "Caretaker"
	RoleAdmin     = "Admin"
)

// Default capacity limits applied when the input omits them.
const (
	DefaultResidentLimit  = 100
	DefaultCaretakerLimit = 10
)

// CommunityInput holds the fields for a createCommunity mutation.
// JSON tags match the GraphQL input field names.
type CommunityInput struct {
	Name           string `json:"name" validate:"required"`
	PhoneNumber    string `json:"phoneNumber" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Street         string `json:"street,omitempty"`
	City           string `json:"city,omitempty"`
	State          string `json:"state,omitempty"`
	Country        string `json:"country,omitempty"`
	PostalCode     string `json:"postalCode,omitempty"`
	ResidentLimit  int    `json:"residentLimit" validate:"gt=0"`
	CaretakerLimit int    `json:"caretakerLimit" validate:"gt=0"`
}

// ApplyDefaults fills in capacity limits when the workbook left them empty.
func (in *CommunityInput) ApplyDefaults() {
	if in.ResidentLimit == 0 {
		in.ResidentLimit = DefaultResidentLimit
	}
	if in.CaretakerLimit == 0 {
		in.CaretakerLimit = DefaultCaretakerLimit
	}
}

// Community is a community record as returned by the data backend.
// The ID is backend-assigned and absent until creation succeeds.
type Community struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	PhoneNumber    string `json:"phoneNumber"`
	Email          string `json:"email"`
	Street         string `json:"street"`
	City           string `json:"city"`
	State          string `json:"state"`
	Country        string `json:"country"`
	PostalCode     string `json:"postalCode"`
	ResidentLimit  int    `json:"residentLimit"`
	CaretakerLimit int    `json:"caretakerLimit"`
	IsActive       bool   `json:"isActive"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

// CaretakerInput holds the fields for a createCaretaker mutation.
// CommunityID from the workbook is informational only; the orchestrator
// overwrites it with the ID of the community created in the same run.
type CaretakerInput struct {
	CommunityID string `json:"communityId"`
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Role        string `json:"role,omitempty"`
}

// Caretaker is a caretaker record as returned by the data backend.
type Caretaker struct {
	ID          string `json:"id"`
	CommunityID string `json:"communityId"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	IsActive    bool   `json:"isActive"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}
