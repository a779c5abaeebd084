package delegates

import (
	"strings"
	"testing"

	"github.com/summit-delegates/backend/internal/models"
)

const rosterCSV = `Name of Delegate (Firstname),Name of Delegate (Surname),Local Organisation,Email,Phone
Alice,Mwangi,Nairobi Chapter,alice@example.com,+254700000001
 Bob , Otieno ,Kisumu Chapter,bob@example.com,+254700000002
,,,,
Carol,Wanjiru,Mombasa Chapter,carol@example.com,+254700000003
`

func TestParseCSV(t *testing.T) {
	list, err := ParseCSV(strings.NewReader(rosterCSV))
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 delegates (blank row skipped), got %d", len(list))
	}

	first := list[0]
	if first.FullName != "Alice Mwangi" {
		t.Fatalf("expected full name 'Alice Mwangi', got %q", first.FullName)
	}
	if first.LocalOrganization != "Nairobi Chapter" {
		t.Fatalf("expected organization 'Nairobi Chapter', got %q", first.LocalOrganization)
	}
	if first.OrganizationType != models.OrgTypeCity {
		t.Fatalf("expected default organization type CITY, got %s", first.OrganizationType)
	}
	if first.Email != "alice@example.com" || first.PhoneNumber != "+254700000001" {
		t.Fatalf("unexpected contact fields: %+v", first)
	}

	// Whitespace around fields is trimmed.
	if list[1].FullName != "Bob Otieno" {
		t.Fatalf("expected trimmed full name 'Bob Otieno', got %q", list[1].FullName)
	}
}

func TestParseCSVMissingColumns(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("Email,Phone\na@example.com,123\n"))
	if err == nil {
		t.Fatal("expected error for missing name columns")
	}
}

func TestParseCSVEmpty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	if err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestParseCSVHeaderOnly(t *testing.T) {
	header := "Name of Delegate (Firstname),Name of Delegate (Surname),Local Organisation,Email,Phone\n"
	list, err := ParseCSV(strings.NewReader(header))
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no delegates, got %d", len(list))
	}
}
