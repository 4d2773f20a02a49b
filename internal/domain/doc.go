// Package domain models civil-defense damage assessment reports ("laudos").
//
// # Report Lifecycle
//
// A [Report] is created fresh for every inspection draft and is never loaded
// back from storage. The only state that outlives a draft is kept by the
// registry: the engineer roster and the running report sequence number.
//
//	draft created  ->  fields edited  ->  finalize  ->  PDF exported
//	(id = counter)                                     (counter + 1)
//
// The sequence number only advances after an export succeeds, so a counter
// increment always implies a delivered document.
//
// # Wire Conventions
//
// JSON field names follow the original Portuguese form model ("municipio",
// "engenheiro", "danos", "classificacao", ...) so that existing front-ends can
// talk to the service unchanged.
//
// Dates are rendered in Brazilian notation:
//
//	"dd/mm/yyyy"  ->  e.g. "07/03/2026"
//
// Coordinates are stored as strings with six decimal places:
//
//	"-25.492578", "-52.525791"
//
// Photos are data URLs with base64 payloads:
//
//	"data:image/jpeg;base64,/9j/4AAQSkZJRg..."
//
// # Severity Classification
//
// The four-level classification maps to a fixed destruction label and
// percentage (see [Derive]):
//
//	Danos Mínimos  -> Sem Destruição            10%
//	Danos Parciais -> Destruição Parcial Leve   40%
//	Danos Severos  -> Destruição Parcial Grave  70%
//	Ruína          -> Destruição Total         100%
//
// # Addresses
//
// Reverse-geocoded addresses are formatted as
//
//	"{road}, {number} - {neighborhood}, {city} - {state}"
//
// with "S/N" (sem número) when the house number is unknown. See [FormatAddress].
//
// # Control Number
//
// The exported document shows the sequence id zero-padded to four digits and
// the current calendar year, e.g. id 7 in 2026 -> "0007-2026". The year is
// taken at render time and is not stored with the report. See [ControlNumber].
package domain
