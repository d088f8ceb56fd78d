package input

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WriteSample creates a registration workbook with placeholder data for the
// operator to edit: one community and two caretakers.
func WriteSample(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(communitySheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", communitySheet, err)
	}
	if err := f.SetSheetRow(communitySheet, "A1", &[]any{
		"Name", "Contact Phone Number", "Contact Email",
		"Street", "City", "State", "Country", "Zip Code",
		"No. Resident", "No. Users", "CommunityId",
	}); err != nil {
		return fmt.Errorf("failed to write community headers: %w", err)
	}
	if err := f.SetSheetRow(communitySheet, "A2", &[]any{
		"Sunrise Senior Living", "+1-555-0101", "contact@sunrisesenior.com",
		"123 Sunrise Boulevard", "San Francisco", "CA", "USA", "94102",
		150, 15, nil,
	}); err != nil {
		return fmt.Errorf("failed to write sample community: %w", err)
	}

	if _, err := f.NewSheet(usersSheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", usersSheet, err)
	}
	if err := f.SetSheetRow(usersSheet, "A1", &[]any{
		"First Name", "Last Name", "Email", "CommunityId",
	}); err != nil {
		return fmt.Errorf("failed to write user headers: %w", err)
	}
	userRows := [][]any{
		{"John", "Doe", "john.doe@sunrisesenior.com", nil},
		{"Jane", "Smith", "jane.smith@sunrisesenior.com", nil},
	}
	for i, row := range userRows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address user row: %w", err)
		}
		if err := f.SetSheetRow(usersSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write sample user: %w", err)
		}
	}

	// Drop the default sheet created by excelize.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}
