package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iota-uz/iota-facility/modules/tiers/domain/entities/tiers"
	"github.com/iota-uz/iota-facility/modules/tiers/domain/importsheet"
	"github.com/iota-uz/iota-facility/modules/tiers/infrastructure/spreadsheet"
	"github.com/iota-uz/iota-facility/modules/tiers/services"
	"github.com/iota-uz/iota-facility/pkg/application"
	"github.com/iota-uz/iota-facility/pkg/composables"
	"github.com/iota-uz/iota-facility/pkg/middleware"
)

const (
	messageCreated  = "Tiers créé avec succès"
	messageImported = "Import terminé avec succès"
	messageDryRun   = "Import vérifié, aucune donnée enregistrée"
	messageNoFile   = "Erreur: aucun fichier fourni"
	messageTooLarge = "Erreur: fichier trop volumineux"
	messageInternal = "internal error"

	defaultMaxUploadMemory = 32 << 20
)

type APIOptions struct {
	MaxUploadSize   int64
	MaxUploadMemory int64
	MaxRowsPerSheet int
	RequestIDHeader string
	TenantIDHeader  string
	UserIDHeader    string
}

type TiersAPIController struct {
	app      application.Application
	tiers    *services.TiersService
	imports  *services.ImportService
	opts     APIOptions
	basePath string
}

func NewTiersAPIController(app application.Application, opts APIOptions) application.Controller {
	return &TiersAPIController{
		app:      app,
		tiers:    app.Service(services.TiersService{}).(*services.TiersService),
		imports:  app.Service(services.ImportService{}).(*services.ImportService),
		opts:     opts,
		basePath: "/tiers",
	}
}

func (c *TiersAPIController) Key() string {
	return c.basePath
}

func (c *TiersAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.ProvideActor(c.opts.TenantIDHeader, c.opts.UserIDHeader))
	router.HandleFunc("/create-pp", c.CreatePhysicalPerson).Methods(http.MethodPost)
	router.HandleFunc("/create-pm", c.CreateLegalEntity).Methods(http.MethodPost)
	router.HandleFunc("/create-pp-pm", c.CreatePhysicalPersonWithEntity).Methods(http.MethodPost)
	router.HandleFunc("/import-excel", c.Import).Methods(http.MethodPost)
	router.HandleFunc("/import-template", c.Template).Methods(http.MethodGet)
}

func (c *TiersAPIController) CreatePhysicalPerson(w http.ResponseWriter, r *http.Request) {
	var dto tiers.CreatePhysicalPersonDTO
	if err := decodeJSON(r, &dto); err != nil {
		c.writeAPIError(w, r, http.StatusBadRequest, "TIERS_INVALID_JSON", "Erreur: JSON invalide")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		c.writeValidationError(w, r, errs)
		return
	}

	id, err := c.tiers.CreatePhysicalPerson(r.Context(), &dto)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": messageCreated,
		"id":      id,
	})
}

func (c *TiersAPIController) CreateLegalEntity(w http.ResponseWriter, r *http.Request) {
	var dto tiers.CreateLegalEntityDTO
	if err := decodeJSON(r, &dto); err != nil {
		c.writeAPIError(w, r, http.StatusBadRequest, "TIERS_INVALID_JSON", "Erreur: JSON invalide")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		c.writeValidationError(w, r, errs)
		return
	}

	id, err := c.tiers.CreateLegalEntity(r.Context(), &dto)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": messageCreated,
		"id":      id,
	})
}

func (c *TiersAPIController) CreatePhysicalPersonWithEntity(w http.ResponseWriter, r *http.Request) {
	var dto tiers.CreatePhysicalPersonWithEntityDTO
	if err := decodeJSON(r, &dto); err != nil {
		c.writeAPIError(w, r, http.StatusBadRequest, "TIERS_INVALID_JSON", "Erreur: JSON invalide")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		c.writeValidationError(w, r, errs)
		return
	}

	pair, err := c.tiers.CreatePhysicalPersonWithEntity(r.Context(), &dto)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": messageCreated,
		"pp_id":   pair.PhysicalPersonID,
		"pm_id":   pair.LegalEntityID,
		"id":      pair.PhysicalPersonID,
	})
}

// Import reads the whole multipart upload in field "file". Passing
// dry_run=true validates against the database without persisting.
func (c *TiersAPIController) Import(w http.ResponseWriter, r *http.Request) {
	if c.opts.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, c.opts.MaxUploadSize)
	}
	maxMemory := c.opts.MaxUploadMemory
	if maxMemory <= 0 {
		maxMemory = defaultMaxUploadMemory
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.writeAPIError(w, r, http.StatusRequestEntityTooLarge, "TIERS_FILE_TOO_LARGE", messageTooLarge)
			return
		}
		c.writeAPIError(w, r, http.StatusBadRequest, "TIERS_FILE_MISSING", messageNoFile)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		c.writeAPIError(w, r, http.StatusBadRequest, "TIERS_FILE_MISSING", messageNoFile)
		return
	}
	defer file.Close()

	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))
	summary, err := c.imports.ImportFile(r.Context(), file, services.ImportOptions{
		DryRun:          dryRun,
		MaxRowsPerSheet: c.opts.MaxRowsPerSheet,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	message := messageImported
	if dryRun {
		message = messageDryRun
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": message,
		"summary": summary,
	})
}

// Template serves an empty workbook with every sheet and header of the
// current import contract.
func (c *TiersAPIController) Template(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="import-tiers-v`+strconv.Itoa(importsheet.ContractVersion)+`.xlsx"`)
	if err := spreadsheet.WriteTemplate(w); err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("tiers: writing import template")
	}
}

// writeServiceError maps domain failures to 400 and everything else to 500.
func (c *TiersAPIController) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	logger := composables.UseLogger(r.Context())

	var (
		dup     *tiers.DuplicateError
		unknown *tiers.UnknownReferenceError
		dupRows *importsheet.DuplicateRowsError
		rowErr  *importsheet.RowError
		fileErr *importsheet.FileError
	)
	switch {
	case errors.As(err, &dup):
		logger.WithError(err).Info("tiers: duplicate")
		c.writeAPIError(w, r, http.StatusBadRequest, "TIERS_DUPLICATE", importsheet.ErrorPrefix+" "+dup.Error())
	case errors.As(err, &unknown):
		logger.WithError(err).Info("tiers: unknown reference")
		c.writeAPIError(w, r, http.StatusBadRequest, "TIERS_UNKNOWN_REFERENCE", importsheet.ErrorPrefix+" "+unknown.Error())
	case errors.As(err, &dupRows):
		logger.WithError(err).Info("tiers import: duplicate rows")
		c.writeAPIError(w, r, http.StatusBadRequest, "TIERS_IMPORT_DUPLICATE", dupRows.Error())
	case errors.As(err, &rowErr):
		logger.WithError(err).Info("tiers import: invalid row")
		c.writeAPIError(w, r, http.StatusBadRequest, "TIERS_IMPORT_INVALID_ROW", rowErr.Error())
	case errors.As(err, &fileErr):
		logger.WithError(err).Info("tiers import: unreadable file")
		c.writeAPIError(w, r, http.StatusBadRequest, "TIERS_IMPORT_INVALID_FILE", fileErr.Error())
	default:
		logger.WithError(err).Error("tiers: request failed")
		c.writeAPIError(w, r, http.StatusInternalServerError, "TIERS_INTERNAL", messageInternal)
	}
}
