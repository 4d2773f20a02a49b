package domain

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/golang/geo/s2"
)

// DamageEntry is one selected damage category with its notes and photos.
// Photos are data URLs; a photo's index in the slice is its position.
type DamageEntry struct {
	Category    string   `json:"tipo"`
	Description string   `json:"descricao"`
	Photos      []string `json:"fotos"`
}

// Report is the damage assessment report under construction.
type Report struct {
	ID                    int            `json:"id"`
	Date                  string         `json:"data"`
	Municipality          string         `json:"municipio"`
	Engineer              string         `json:"engenheiro"`
	MunicipalRegistration string         `json:"inscricaoMunicipal"`
	Owner                 string         `json:"proprietario"`
	Requester             string         `json:"requerente"`
	Address               string         `json:"endereco"`
	Latitude              string         `json:"latitude"`
	Longitude             string         `json:"longitude"`
	Typology              Typology       `json:"tipologia"`
	TypologyOther         string         `json:"tipologiaOutro,omitempty"`
	Damages               []DamageEntry  `json:"danos"`
	Classification        Classification `json:"classificacao"`
	Severity
}

// DateLayout is the Brazilian day/month/year notation used on reports.
const DateLayout = "02/01/2006"

// NewReport builds a fresh report with the form defaults applied.
func NewReport(id int, date time.Time, municipality, engineer string) Report {
	r := Report{
		ID:           id,
		Date:         date.Format(DateLayout),
		Municipality: municipality,
		Engineer:     engineer,
		Typology:     TypologyMasonry,
		Damages:      []DamageEntry{},
	}
	r.SetClassification(ClassificationMinimal)
	return r
}

// SetClassification stores c and re-derives the severity pair in the same step.
func (r *Report) SetClassification(c Classification) {
	r.Classification = c
	r.Severity = Derive(c)
}

// SetField merges a single form field into the report. Enumerated fields are
// parsed against their enumeration; free-text fields are stored as given.
// Coordinates are not settable here, see SetCoordinates.
func (r *Report) SetField(key, value string) error {
	switch key {
	case "data":
		r.Date = value
	case "municipio":
		r.Municipality = value
	case "engenheiro":
		r.Engineer = value
	case "inscricaoMunicipal":
		r.MunicipalRegistration = value
	case "proprietario":
		r.Owner = value
	case "requerente":
		r.Requester = value
	case "endereco":
		r.Address = value
	case "tipologiaOutro":
		r.TypologyOther = value
	case "tipologia":
		t, err := ParseTypology(value)
		if err != nil {
			return err
		}
		r.Typology = t
	case "classificacao":
		c, err := ParseClassification(value)
		if err != nil {
			return err
		}
		r.SetClassification(c)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	return nil
}

// ToggleDamage removes the entry for category if present, dropping its
// description and photos, or appends a new empty entry otherwise. It reports
// whether the category is selected afterwards.
func (r *Report) ToggleDamage(category string) (bool, error) {
	if !IsDamageCategory(category) {
		return false, fmt.Errorf("%w: tipo %q", ErrInvalidValue, category)
	}
	if i := r.damageIndex(category); i >= 0 {
		r.Damages = slices.Delete(r.Damages, i, i+1)
		return false, nil
	}
	r.Damages = append(r.Damages, DamageEntry{Category: category, Photos: []string{}})
	return true, nil
}

// SetDamageDescription updates the description of the entry for category.
// It is a no-op returning false when the category is not selected.
func (r *Report) SetDamageDescription(category, text string) bool {
	i := r.damageIndex(category)
	if i < 0 {
		return false
	}
	r.Damages[i].Description = text
	return true
}

// AppendPhotos appends encoded photos to the entry for category, keeping the
// ones already attached. It returns false, attaching nothing, when the
// category is no longer selected.
func (r *Report) AppendPhotos(category string, photos []string) bool {
	i := r.damageIndex(category)
	if i < 0 {
		return false
	}
	r.Damages[i].Photos = append(r.Damages[i].Photos, photos...)
	return true
}

// RemovePhoto removes the photo at index from the entry for category; later
// photos shift down by one. Unknown categories and out-of-range indices are
// a no-op returning false.
func (r *Report) RemovePhoto(category string, index int) bool {
	i := r.damageIndex(category)
	if i < 0 {
		return false
	}
	photos := r.Damages[i].Photos
	if index < 0 || index >= len(photos) {
		return false
	}
	r.Damages[i].Photos = slices.Delete(photos, index, index+1)
	return true
}

// Damage returns a copy of the entry for category. It has a value receiver
// so it can be called on snapshots returned by value.
func (r Report) Damage(category string) (DamageEntry, bool) {
	i := r.damageIndex(category)
	if i < 0 {
		return DamageEntry{}, false
	}
	return r.Damages[i].clone(), true
}

// SetCoordinates stores latitude and longitude together, formatted with six
// decimal places.
func (r *Report) SetCoordinates(lat, lon float64) error {
	if !s2.LatLngFromDegrees(lat, lon).IsValid() {
		return fmt.Errorf("%w: %f,%f", ErrInvalidCoordinates, lat, lon)
	}
	r.Latitude = strconv.FormatFloat(lat, 'f', 6, 64)
	r.Longitude = strconv.FormatFloat(lon, 'f', 6, 64)
	return nil
}

// Coordinates parses the stored pair. ok is false until a location is set.
func (r *Report) Coordinates() (lat, lon float64, ok bool) {
	if r.Latitude == "" || r.Longitude == "" {
		return 0, 0, false
	}
	lat, errLat := strconv.ParseFloat(r.Latitude, 64)
	lon, errLon := strconv.ParseFloat(r.Longitude, 64)
	if errLat != nil || errLon != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// TypologyLabel is the typology as shown on the document, including the
// free-text description when the typology is "Outro".
func (r *Report) TypologyLabel() string {
	if r.Typology == TypologyOther && r.TypologyOther != "" {
		return fmt.Sprintf("%s (%s)", r.Typology, r.TypologyOther)
	}
	return string(r.Typology)
}

// Clone returns a deep copy that shares no slices with r.
func (r Report) Clone() Report {
	out := r
	out.Damages = make([]DamageEntry, len(r.Damages))
	for i, d := range r.Damages {
		out.Damages[i] = d.clone()
	}
	return out
}

func (d DamageEntry) clone() DamageEntry {
	out := d
	out.Photos = append([]string{}, d.Photos...)
	return out
}

func (r *Report) damageIndex(category string) int {
	return slices.IndexFunc(r.Damages, func(d DamageEntry) bool {
		return d.Category == category
	})
}
