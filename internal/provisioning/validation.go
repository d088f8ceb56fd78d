package provisioning

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/owlback/registrar/internal/registry"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateInput checks the registration records before the pipeline starts.
// Input errors are reported immediately; the run never reaches the guard.
func ValidateInput(communities []registry.CommunityInput, caretakers []registry.CaretakerInput) error {
	switch n := len(communities); {
	case n == 0:
		return &AbortError{
			Step:   "input",
			Reason: "input contains no community record",
			Remediation: []string{
				"fill in the Community Info sheet with exactly one community",
			},
		}
	case n > 1:
		return &AbortError{
			Step:   "input",
			Reason: fmt.Sprintf("input contains %d community records; a run provisions exactly one", n),
			Remediation: []string{
				"split the workbook into one file per community and run each separately",
			},
		}
	}

	if err := validate.Struct(&communities[0]); err != nil {
		return &AbortError{
			Step:   "input",
			Reason: fmt.Sprintf("community %q is incomplete: %v", communities[0].Name, err),
			Remediation: []string{
				"complete the Community Info sheet (name, contact phone, and contact email are required)",
			},
		}
	}

	for i, ct := range caretakers {
		if ct.Email == "" {
			return &AbortError{
				Step:   "input",
				Reason: fmt.Sprintf("caretaker %s %s (row %d) has no email; an account cannot be provisioned without one", ct.FirstName, ct.LastName, i+1),
				Remediation: []string{
					"add an email address for every caretaker in the Users sheet",
				},
			}
		}
		if err := validate.Struct(&ct); err != nil {
			return &AbortError{
				Step:   "input",
				Reason: fmt.Sprintf("caretaker %q (row %d) is invalid: %v", ct.Email, i+1, err),
				Remediation: []string{
					"complete the Users sheet (first name, last name, and a valid email are required)",
				},
			}
		}
	}

	return nil
}
