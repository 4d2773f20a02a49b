package domain

import (
	"fmt"
	"time"
)

// ControlNumber renders the document control number: the sequence id
// zero-padded to four digits followed by the year of now.
func ControlNumber(id int, now time.Time) string {
	return fmt.Sprintf("%04d-%d", id, now.Year())
}
