package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/couchcryptid/laudo-service/internal/domain"
	"github.com/couchcryptid/laudo-service/internal/export"
	"github.com/couchcryptid/laudo-service/internal/form"
	"github.com/couchcryptid/laudo-service/internal/photo"
	geojson "github.com/paulmach/go.geojson"
)

// maxUploadBytes bounds one multipart photo upload.
const maxUploadBytes = 64 << 20

// Forms is the draft service behind the report routes.
type Forms interface {
	NewDraft() *form.Draft
	Draft(id string) (*form.Draft, error)
	Discard(id string) error
	SetLocation(id string, lat, lon float64) (*form.Draft, error)
	AddPhotos(ctx context.Context, id, category string, files []photo.File) (int, error)
}

// Roster is the engineer registry behind the engineer routes.
type Roster interface {
	Engineers() []domain.Engineer
	AddEngineer(ctx context.Context, e domain.Engineer) error
}

// Exporter produces the final PDF for a report.
type Exporter interface {
	Export(ctx context.Context, r domain.Report) (export.Result, error)
}

// API serves the JSON report form and the PDF export.
type API struct {
	forms       Forms
	roster      Roster
	exporter    Exporter
	logger      *slog.Logger
	uploadLimit int64
}

// NewAPI creates the report API handlers.
func NewAPI(forms Forms, roster Roster, exporter Exporter, logger *slog.Logger) *API {
	return &API{forms: forms, roster: roster, exporter: exporter, logger: logger, uploadLimit: maxUploadBytes}
}

// Register mounts the API routes on mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/catalog", a.handleCatalog)

	mux.HandleFunc("GET /api/engineers", a.handleListEngineers)
	mux.HandleFunc("POST /api/engineers", a.handleAddEngineer)

	mux.HandleFunc("POST /api/reports", a.handleCreateReport)
	mux.HandleFunc("GET /api/reports/{id}", a.handleGetReport)
	mux.HandleFunc("DELETE /api/reports/{id}", a.handleDiscardReport)
	mux.HandleFunc("PATCH /api/reports/{id}", a.handleSetFields)
	mux.HandleFunc("PUT /api/reports/{id}/location", a.handleSetLocation)
	mux.HandleFunc("GET /api/reports/{id}/marker", a.handleMarker)
	mux.HandleFunc("POST /api/reports/{id}/damages/{category}/toggle", a.handleToggleDamage)
	mux.HandleFunc("PUT /api/reports/{id}/damages/{category}/description", a.handleSetDescription)
	mux.HandleFunc("POST /api/reports/{id}/damages/{category}/photos", a.handleAddPhotos)
	mux.HandleFunc("DELETE /api/reports/{id}/damages/{category}/photos/{index}", a.handleRemovePhoto)
	mux.HandleFunc("POST /api/reports/{id}/finalize", a.handleFinalize)
}

type catalogResponse struct {
	Municipalities   []string                `json:"municipios"`
	Typologies       []domain.Typology       `json:"tipologias"`
	Classifications  []domain.Classification `json:"classificacoes"`
	DamageCategories []string                `json:"danos"`
}

type draftResponse struct {
	DraftID string        `json:"draft_id"`
	Report  domain.Report `json:"laudo"`
}

type locationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type descriptionRequest struct {
	Description string `json:"descricao"`
}

func (a *API) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{
		Municipalities:   domain.Municipalities,
		Typologies:       domain.Typologies,
		Classifications:  domain.Classifications,
		DamageCategories: domain.DamageCategories,
	})
}

func (a *API) handleListEngineers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.roster.Engineers())
}

func (a *API) handleAddEngineer(w http.ResponseWriter, r *http.Request) {
	var e domain.Engineer
	if err := decodeJSON(r, &e); err != nil {
		writeError(w, a.logger, err)
		return
	}
	if err := a.roster.AddEngineer(r.Context(), e); err != nil {
		writeError(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, a.roster.Engineers())
}

func (a *API) handleCreateReport(w http.ResponseWriter, _ *http.Request) {
	d := a.forms.NewDraft()
	writeJSON(w, http.StatusCreated, draftResponse{DraftID: d.ID(), Report: d.Snapshot()})
}

func (a *API) handleGetReport(w http.ResponseWriter, r *http.Request) {
	d, ok := a.draft(w, r)
	if !ok {
		return
	}
	writeDraft(w, http.StatusOK, d)
}

func (a *API) handleDiscardReport(w http.ResponseWriter, r *http.Request) {
	if err := a.forms.Discard(r.PathValue("id")); err != nil {
		writeError(w, a.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleSetFields(w http.ResponseWriter, r *http.Request) {
	d, ok := a.draft(w, r)
	if !ok {
		return
	}
	var fields map[string]string
	if err := decodeJSON(r, &fields); err != nil {
		writeError(w, a.logger, err)
		return
	}
	if err := d.SetFields(fields); err != nil {
		writeError(w, a.logger, err)
		return
	}
	writeDraft(w, http.StatusOK, d)
}

func (a *API) handleSetLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, a.logger, err)
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		writeError(w, a.logger, fmt.Errorf("%w: latitude and longitude are both required", domain.ErrInvalidCoordinates))
		return
	}
	d, err := a.forms.SetLocation(r.PathValue("id"), *req.Latitude, *req.Longitude)
	if err != nil {
		writeError(w, a.logger, err)
		return
	}
	// The address arrives later from the reverse lookup.
	writeDraft(w, http.StatusAccepted, d)
}

func (a *API) handleMarker(w http.ResponseWriter, r *http.Request) {
	d, ok := a.draft(w, r)
	if !ok {
		return
	}
	report := d.Snapshot()
	lat, lon, ok := report.Coordinates()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "location not set"})
		return
	}
	marker := geojson.NewPointFeature([]float64{lon, lat})
	marker.SetProperty("id", report.ID)
	marker.SetProperty("endereco", report.Address)

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(marker) //nolint:errcheck // client went away
}

func (a *API) handleToggleDamage(w http.ResponseWriter, r *http.Request) {
	d, ok := a.draft(w, r)
	if !ok {
		return
	}
	selected, err := d.ToggleDamage(r.PathValue("category"))
	if err != nil {
		writeError(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"selected": selected, "laudo": d.Snapshot()})
}

func (a *API) handleSetDescription(w http.ResponseWriter, r *http.Request) {
	d, ok := a.draft(w, r)
	if !ok {
		return
	}
	var req descriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, a.logger, err)
		return
	}
	updated := d.SetDamageDescription(r.PathValue("category"), req.Description)
	writeJSON(w, http.StatusOK, map[string]any{"updated": updated, "laudo": d.Snapshot()})
}

func (a *API) handleAddPhotos(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.uploadLimit)
	if err := r.ParseMultipartForm(a.uploadLimit); err != nil {
		if tooLarge := new(http.MaxBytesError); errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit)})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart upload"})
		return
	}
	files, err := readUploads(r.MultipartForm.File["fotos"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	id := r.PathValue("id")
	attached, err := a.forms.AddPhotos(r.Context(), id, r.PathValue("category"), files)
	if err != nil {
		writeError(w, a.logger, err)
		return
	}
	d, err := a.forms.Draft(id)
	if err != nil {
		writeError(w, a.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"attached": attached, "laudo": d.Snapshot()})
}

func (a *API) handleRemovePhoto(w http.ResponseWriter, r *http.Request) {
	d, ok := a.draft(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "photo index must be an integer"})
		return
	}
	removed := d.RemovePhoto(r.PathValue("category"), index)
	writeJSON(w, http.StatusOK, map[string]any{"removed": removed, "laudo": d.Snapshot()})
}

func (a *API) handleFinalize(w http.ResponseWriter, r *http.Request) {
	d, ok := a.draft(w, r)
	if !ok {
		return
	}
	res, err := a.exporter.Export(r.Context(), d.Snapshot())
	if err != nil {
		writeError(w, a.logger, err)
		return
	}
	d.SetID(res.ID)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "laudo-"+res.ControlNumber+".pdf"))
	w.Header().Set("X-Control-Number", res.ControlNumber)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.PDF)))
	w.WriteHeader(http.StatusOK)
	w.Write(res.PDF) //nolint:errcheck // client went away
}

func (a *API) draft(w http.ResponseWriter, r *http.Request) (*form.Draft, bool) {
	d, err := a.forms.Draft(r.PathValue("id"))
	if err != nil {
		writeError(w, a.logger, err)
		return nil, false
	}
	return d, true
}

func readUploads(headers []*multipart.FileHeader) ([]photo.File, error) {
	files := make([]photo.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %q: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read upload %q: %w", fh.Filename, err)
		}
		files = append(files, photo.File{Name: fh.Filename, Data: data})
	}
	return files, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

var errMalformedBody = errors.New("malformed request body")

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}

// statusFor maps domain and service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, form.ErrDraftNotFound):
		return http.StatusNotFound
	case errors.Is(err, errMalformedBody),
		errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, domain.ErrInvalidValue),
		errors.Is(err, domain.ErrInvalidCoordinates),
		errors.Is(err, photo.ErrNotImage):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrMissingField):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrDuplicateEngineer),
		errors.Is(err, export.ErrExportInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		msg = "internal error"
		if errors.Is(err, export.ErrExportFailed) {
			msg = export.FailureMessage
		}
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeDraft(w http.ResponseWriter, status int, d *form.Draft) {
	writeJSON(w, status, draftResponse{DraftID: d.ID(), Report: d.Snapshot()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
