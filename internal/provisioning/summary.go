package provisioning

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/owlback/registrar/internal/registry"
)

var (
	sumColorGreen  = lipgloss.Color("#22c55e")
	sumColorRed    = lipgloss.Color("#ef4444")
	sumColorYellow = lipgloss.Color("#eab308")
	sumColorDim    = lipgloss.Color("#6b7280")
	sumColorWhite  = lipgloss.Color("#f9fafb")
)

var (
	sumTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(sumColorWhite)

	sumOKStyle = lipgloss.NewStyle().
			Foreground(sumColorGreen)

	sumFailStyle = lipgloss.NewStyle().
			Foreground(sumColorRed)

	sumAlarmStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(sumColorYellow)

	sumDimStyle = lipgloss.NewStyle().
			Foreground(sumColorDim)
)

// CaretakerResult is the per-member outcome line of a run.
type CaretakerResult struct {
	Email    string
	Record   *registry.Caretaker
	Verified bool
	Outcome  string
	Err      error
}

// Summary accumulates what a run actually did, across both backends. It is
// filled in as phases progress and rendered once at the end, whether the run
// finished or aborted partway.
type Summary struct {
	Community    *registry.Community
	GroupName    string
	Caretakers   []CaretakerResult
	AdminEmail   string
	AdminRecord  *registry.Caretaker
	AdminOutcome string
	Alarms       []string
}

func NewSummary() *Summary {
	return &Summary{}
}

// RecordCaretaker notes a member whose data record was created. An empty
// outcome means the identity side failed after the record existed.
func (s *Summary) RecordCaretaker(record *registry.Caretaker, verified bool, outcome string) {
	s.Caretakers = append(s.Caretakers, CaretakerResult{
		Email:    record.Email,
		Record:   record,
		Verified: verified,
		Outcome:  outcome,
	})
}

// RecordCaretakerFailure notes a member whose data record could not be
// created. The run continues past these.
func (s *Summary) RecordCaretakerFailure(email string, err error) {
	s.Caretakers = append(s.Caretakers, CaretakerResult{Email: email, Err: err})
}

// AddAlarm records a non-fatal condition the operator must follow up on.
func (s *Summary) AddAlarm(msg string) {
	s.Alarms = append(s.Alarms, msg)
}

// Counts returns how many members succeeded on both backends, how many
// failed, and how many carry a consistency alarm.
func (s *Summary) Counts() (ok, failed, alarmed int) {
	for _, c := range s.Caretakers {
		switch {
		case c.Err != nil || c.Outcome == "":
			failed++
		case !c.Verified:
			alarmed++
		default:
			ok++
		}
	}
	return ok, failed, alarmed
}

// Render produces the styled end-of-run report.
func (s *Summary) Render() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(sumTitleStyle.Render("  registrar summary"))
	b.WriteString("\n")
	b.WriteString(sumDimStyle.Render("  " + strings.Repeat("═", 40)))
	b.WriteString("\n")

	if s.Community != nil {
		fmt.Fprintf(&b, "  %s Community  %s (%s)\n", sumOKStyle.Render("[OK]"), s.Community.Name, s.Community.ID)
	} else {
		fmt.Fprintf(&b, "  %s Community  not created\n", sumFailStyle.Render("[!!]"))
	}

	if s.GroupName != "" {
		fmt.Fprintf(&b, "  %s Group      %s\n", sumOKStyle.Render("[OK]"), s.GroupName)
	} else {
		fmt.Fprintf(&b, "  %s Group      not created\n", sumFailStyle.Render("[!!]"))
	}

	if len(s.Caretakers) > 0 {
		b.WriteString("\n")
		b.WriteString(sumDimStyle.Render(fmt.Sprintf("  %-34s %-9s %s", "Member", "Account", "Record")))
		b.WriteString("\n")
		for _, c := range s.Caretakers {
			b.WriteString("  ")
			b.WriteString(caretakerLine(c))
			b.WriteString("\n")
		}
		ok, failed, alarmed := s.Counts()
		fmt.Fprintf(&b, "  %d ok, %d failed, %d to verify\n", ok, failed, alarmed)
	}

	if s.AdminEmail != "" {
		b.WriteString("\n")
		fmt.Fprintf(&b, "  %s Admin      %s (%s)\n", sumOKStyle.Render("[OK]"), s.AdminEmail, s.AdminOutcome)
	}

	if len(s.Alarms) > 0 {
		b.WriteString("\n")
		b.WriteString(sumAlarmStyle.Render("  Alarms"))
		b.WriteString("\n")
		for _, a := range s.Alarms {
			fmt.Fprintf(&b, "  %s %s\n", sumAlarmStyle.Render("[??]"), a)
		}
	}

	return b.String()
}

func caretakerLine(c CaretakerResult) string {
	switch {
	case c.Err != nil:
		return fmt.Sprintf("%s %-29s %v", sumFailStyle.Render("[!!]"), c.Email, c.Err)
	case c.Outcome == "":
		return fmt.Sprintf("%s %-29s %-9s account failed", sumFailStyle.Render("[!!]"), c.Email, recordMark(c.Verified))
	case !c.Verified:
		return fmt.Sprintf("%s %-29s %-9s %s", sumAlarmStyle.Render("[??]"), c.Email, c.Outcome, recordMark(false))
	default:
		return fmt.Sprintf("%s %-29s %-9s %s", sumOKStyle.Render("[OK]"), c.Email, c.Outcome, recordMark(true))
	}
}

func recordMark(verified bool) string {
	if verified {
		return "verified"
	}
	return "unverified"
}
