// Package form holds the report drafts being edited and the operations the
// inspector performs on them: field edits, damage selection, photo uploads
// and map location with reverse geocoded address.
package form

import (
	"maps"
	"slices"
	"sync"

	"github.com/couchcryptid/laudo-service/internal/domain"
)

// Draft is a report under construction. All mutations are serialized by the
// draft's mutex; readers get deep copies through Snapshot.
type Draft struct {
	id string

	mu       sync.Mutex
	report   domain.Report
	geoToken uint64
}

func newDraft(id string, r domain.Report) *Draft {
	return &Draft{id: id, report: r}
}

// ID is the opaque draft identifier used by the API. It is unrelated to the
// report's sequential number.
func (d *Draft) ID() string { return d.id }

// Snapshot returns a deep copy of the current report.
func (d *Draft) Snapshot() domain.Report {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.report.Clone()
}

func (d *Draft) SetField(key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.report.SetField(key, value)
}

// SetFields applies several field edits as one update. Keys are applied in
// sorted order; if any edit fails the draft is left unchanged.
func (d *Draft) SetFields(fields map[string]string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	next := d.report.Clone()
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		if err := next.SetField(key, fields[key]); err != nil {
			return err
		}
	}
	d.report = next
	return nil
}

func (d *Draft) ToggleDamage(category string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.report.ToggleDamage(category)
}

func (d *Draft) SetDamageDescription(category, text string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.report.SetDamageDescription(category, text)
}

func (d *Draft) RemovePhoto(category string, index int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.report.RemovePhoto(category, index)
}

// SetID records the sequential number a finished export used.
func (d *Draft) SetID(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.report.ID = id
}

func (d *Draft) hasDamage(category string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.report.Damage(category)
	return ok
}

func (d *Draft) appendPhotos(category string, photos []string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.report.AppendPhotos(category, photos)
}

// setLocation stores the coordinates and returns the token that a later
// address lookup must present to be applied.
func (d *Draft) setLocation(lat, lon float64) (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.report.SetCoordinates(lat, lon); err != nil {
		return 0, err
	}
	d.geoToken++
	return d.geoToken, nil
}

// applyAddress sets the address only if token belongs to the most recent
// location. It reports whether the address was applied.
func (d *Draft) applyAddress(token uint64, address string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if token != d.geoToken {
		return false
	}
	d.report.Address = address
	return true
}
