// Package input supplies registration records to the orchestrator. The
// concrete implementation reads the operator's Excel workbook; the orchestrator
// only sees the Provider interface.
package input

import "github.com/owlback/registrar/internal/registry"

// Provider supplies one run's worth of registration input and receives
// bookkeeping write-backs.
type Provider interface {
	// Communities returns the community records found in the input.
	// The workflow itself rejects anything other than exactly one.
	Communities() ([]registry.CommunityInput, error)

	// Caretakers returns the caretaker records found in the input.
	Caretakers() ([]registry.CaretakerInput, error)

	// HasProcessedMarker reports whether the input carries evidence of a
	// previous run (a written community ID or stored admin credentials).
	HasProcessedMarker() (bool, error)

	// WriteBackCommunityID records the backend-assigned community ID in the
	// input for operator bookkeeping. It is not re-read by this run.
	WriteBackCommunityID(id string) error

	// WriteBackAdminCredentials stores the admin account credentials in the
	// input. Also serves as the processed marker for future runs.
	WriteBackAdminCredentials(email, password string) error
}
