package input

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/owlback/registrar/internal/registry"
)

// Workbook sheet and header names, matching the registration template.
const (
	communitySheet   = "Community Info"
	usersSheet       = "Users"
	credentialsSheet = "Admin Credentials"
)

var communityColumns = map[string]string{
	"Name":                 "name",
	"Contact Phone Number": "phoneNumber",
	"Contact Email":        "email",
	"Street":               "street",
	"City":                 "city",
	"State":                "state",
	"Country":              "country",
	"Zip Code":             "postalCode",
	"No. Resident":         "residentLimit",
	"No. Users":            "caretakerLimit",
	"CommunityId":          "communityId",
}

var userColumns = map[string]string{
	"First Name":  "firstName",
	"Last Name":   "lastName",
	"Email":       "email",
	"CommunityId": "communityId",
}

// Workbook reads and writes the registration Excel file.
type Workbook struct {
	file *excelize.File
	path string
}

// OpenWorkbook opens the registration workbook at path.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	return &Workbook{file: f, path: path}, nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// Communities reads the community sheet. Fully empty rows are skipped;
// partially filled rows are returned as-is so that input validation can
// report what is missing instead of silently dropping the row.
func (w *Workbook) Communities() ([]registry.CommunityInput, error) {
	rows, err := w.file.GetRows(communitySheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", communitySheet, err)
	}
	if len(rows) < 1 {
		return nil, nil
	}

	headers := rows[0]
	var communities []registry.CommunityInput
	for rowIdx, row := range rows[1:] {
		if rowEmpty(row) {
			continue
		}

		var c registry.CommunityInput
		for colIdx, header := range headers {
			field, known := communityColumns[strings.TrimSpace(header)]
			if !known || colIdx >= len(row) {
				continue
			}
			value := strings.TrimSpace(row[colIdx])
			if value == "" {
				continue
			}

			switch field {
			case "name":
				c.Name = value
			case "phoneNumber":
				c.PhoneNumber = value
			case "email":
				c.Email = value
			case "street":
				c.Street = value
			case "city":
				c.City = value
			case "state":
				c.State = value
			case "country":
				c.Country = value
			case "postalCode":
				c.PostalCode = value
			case "residentLimit":
				n, err := parseCount(value)
				if err != nil {
					return nil, fmt.Errorf("row %d: invalid resident count %q", rowIdx+2, value)
				}
				c.ResidentLimit = n
			case "caretakerLimit":
				n, err := parseCount(value)
				if err != nil {
					return nil, fmt.Errorf("row %d: invalid user count %q", rowIdx+2, value)
				}
				c.CaretakerLimit = n
			}
		}

		c.ApplyDefaults()
		communities = append(communities, c)
	}

	return communities, nil
}

// Caretakers reads the users sheet. Fully empty rows are skipped; incomplete
// rows are left for validation to reject.
func (w *Workbook) Caretakers() ([]registry.CaretakerInput, error) {
	rows, err := w.file.GetRows(usersSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", usersSheet, err)
	}
	if len(rows) < 1 {
		return nil, nil
	}

	headers := rows[0]
	var caretakers []registry.CaretakerInput
	for _, row := range rows[1:] {
		if rowEmpty(row) {
			continue
		}

		var ct registry.CaretakerInput
		for colIdx, header := range headers {
			field, known := userColumns[strings.TrimSpace(header)]
			if !known || colIdx >= len(row) {
				continue
			}
			value := strings.TrimSpace(row[colIdx])
			if value == "" {
				continue
			}

			switch field {
			case "firstName":
				ct.FirstName = value
			case "lastName":
				ct.LastName = value
			case "email":
				ct.Email = value
			case "communityId":
				ct.CommunityID = value
			}
		}

		caretakers = append(caretakers, ct)
	}

	return caretakers, nil
}

// HasProcessedMarker reports whether a previous run left its traces in this
// workbook: a stored admin-credentials sheet or a filled-in community ID.
func (w *Workbook) HasProcessedMarker() (bool, error) {
	idx, err := w.file.GetSheetIndex(credentialsSheet)
	if err != nil {
		return false, fmt.Errorf("failed to inspect workbook: %w", err)
	}
	if idx >= 0 {
		return true, nil
	}

	col, err := w.communityIDColumn()
	if err != nil {
		return false, err
	}
	if col < 0 {
		return false, nil
	}

	rows, err := w.file.GetRows(communitySheet)
	if err != nil {
		return false, fmt.Errorf("failed to read sheet %q: %w", communitySheet, err)
	}
	for _, row := range rows[1:] {
		if col < len(row) && strings.TrimSpace(row[col]) != "" {
			return true, nil
		}
	}
	return false, nil
}

// WriteBackCommunityID fills the CommunityId cell of the first populated
// community row and saves the workbook.
func (w *Workbook) WriteBackCommunityID(id string) error {
	col, err := w.communityIDColumn()
	if err != nil {
		return err
	}
	if col < 0 {
		return fmt.Errorf("sheet %q has no CommunityId column", communitySheet)
	}

	rows, err := w.file.GetRows(communitySheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %q: %w", communitySheet, err)
	}
	for rowIdx, row := range rows[1:] {
		if rowEmpty(row) {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
		if err != nil {
			return fmt.Errorf("failed to address CommunityId cell: %w", err)
		}
		if err := w.file.SetCellValue(communitySheet, cell, id); err != nil {
			return fmt.Errorf("failed to write community ID: %w", err)
		}
		break
	}

	if err := w.file.Save(); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// WriteBackAdminCredentials stores the admin credentials in a dedicated sheet
// and saves the workbook. The sheet doubles as the processed marker.
func (w *Workbook) WriteBackAdminCredentials(email, password string) error {
	if _, err := w.file.NewSheet(credentialsSheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", credentialsSheet, err)
	}
	if err := w.file.SetSheetRow(credentialsSheet, "A1", &[]any{"Email", "Password"}); err != nil {
		return fmt.Errorf("failed to write credentials header: %w", err)
	}
	if err := w.file.SetSheetRow(credentialsSheet, "A2", &[]any{email, password}); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := w.file.Save(); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// communityIDColumn returns the zero-based index of the CommunityId header in
// the community sheet, or -1 when absent.
func (w *Workbook) communityIDColumn() (int, error) {
	rows, err := w.file.GetRows(communitySheet)
	if err != nil {
		return -1, fmt.Errorf("failed to read sheet %q: %w", communitySheet, err)
	}
	if len(rows) == 0 {
		return -1, nil
	}
	for colIdx, header := range rows[0] {
		if strings.TrimSpace(header) == "CommunityId" {
			return colIdx, nil
		}
	}
	return -1, nil
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseCount parses a capacity cell. Spreadsheet numerics may render with a
// decimal point.
func parseCount(value string) (int, error) {
	if n, err := strconv.Atoi(value); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
