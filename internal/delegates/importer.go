package delegates

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/summit-delegates/backend/internal/models"
)

// CSV headers as exported by the event registration sheet.
const (
	headerFirstName    = "Name of Delegate (Firstname)"
	headerSurname      = "Name of Delegate (Surname)"
	headerOrganisation = "Local Organisation"
	headerEmail        = "Email"
	headerPhone        = "Phone"
)

// ParseCSV reads a delegate roster CSV (header row required) into delegate
// records. Rows without a name are skipped. Organization type defaults to
// CITY, matching the roster format which carries no type column.
func ParseCSV(r io.Reader) ([]models.Delegate, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{headerFirstName, headerSurname} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("csv missing column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var list []models.Delegate
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		fullName := strings.TrimSpace(field(row, headerFirstName) + " " + field(row, headerSurname))
		if fullName == "" {
			continue
		}
		list = append(list, models.Delegate{
			FullName:          fullName,
			LocalOrganization: field(row, headerOrganisation),
			OrganizationType:  models.OrgTypeCity,
			Email:             field(row, headerEmail),
			PhoneNumber:       field(row, headerPhone),
		})
	}
	return list, nil
}
