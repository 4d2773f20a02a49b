package domain

import (
	"fmt"
	"strings"
)

// Engineer is the credentialed professional of record on a report.
type Engineer struct {
	Name    string `json:"nome"`
	License string `json:"crea"`
	Address string `json:"endereco"`
	Phone   string `json:"telefone"`
}

// Validate checks the fields required to save an engineer to the roster.
func (e Engineer) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: nome", ErrMissingField)
	}
	if strings.TrimSpace(e.License) == "" {
		return fmt.Errorf("%w: crea", ErrMissingField)
	}
	return nil
}

// SeedEngineers is the roster used when the registry has none stored.
func SeedEngineers() []Engineer {
	return []Engineer{
		{Name: "Daniel", License: "PR-123456", Address: "Curitiba", Phone: "41 99999-9991"},
		{Name: "Débora", License: "PR-234567", Address: "Londrina", Phone: "43 99999-9992"},
		{Name: "Lorena", License: "PR-345678", Address: "Maringá", Phone: "44 99999-9993"},
		{Name: "Tainara", License: "PR-456789", Address: "Cascavel", Phone: "45 99999-9994"},
	}
}

// FindEngineer returns the first engineer named name.
func FindEngineer(roster []Engineer, name string) (Engineer, bool) {
	for _, e := range roster {
		if e.Name == name {
			return e, true
		}
	}
	return Engineer{}, false
}
