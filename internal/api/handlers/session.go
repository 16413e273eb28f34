package handlers

import (
	"errors"
	"net/http"

	"github.com/Harshitk-cp/wumpus/internal/api/middleware"
	"github.com/Harshitk-cp/wumpus/internal/domain"
	"github.com/Harshitk-cp/wumpus/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type SessionHandler struct {
	svc *service.SessionService
}

func NewSessionHandler(svc *service.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

type createSessionRequest struct {
	ExternalID string `json:"external_id" validate:"omitempty,max=255"`
	GridSize   int    `json:"grid_size" validate:"required,min=1"`
}

type gridSizeRequest struct {
	GridSize int `json:"grid_size" validate:"required,min=1"`
}

type factInput struct {
	X    int    `json:"x" validate:"min=1"`
	Y    int    `json:"y" validate:"min=1"`
	Kind string `json:"kind" validate:"required,percept"`
}

type factsRequest struct {
	Facts []factInput `json:"facts" validate:"required,min=1,max=256,dive"`
}

type observationInput struct {
	X      int  `json:"x" validate:"min=1"`
	Y      int  `json:"y" validate:"min=1"`
	Breeze bool `json:"breeze"`
	Stench bool `json:"stench"`
}

type observationsRequest struct {
	Observations []observationInput `json:"observations" validate:"required,min=1,max=64,dive"`
}

// target resolves the tenant and the session id of a request.
func target(w http.ResponseWriter, r *http.Request) (uuid.UUID, *domain.Tenant, bool) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return uuid.Nil, nil, false
	}
	return id, tenant, true
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createSessionRequest
	if !decode(w, r, &req) {
		return
	}

	sess := &domain.Session{
		TenantID:   tenant.ID,
		ExternalID: req.ExternalID,
		GridSize:   req.GridSize,
	}
	if err := h.svc.Create(r.Context(), sess); err != nil {
		writeServiceError(w, err, "failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, sess)
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, tenant, ok := target(w, r)
	if !ok {
		return
	}
	sess, err := h.svc.Get(r.Context(), id, tenant.ID)
	if err != nil {
		writeServiceError(w, err, "failed to get session")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, tenant, ok := target(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id, tenant.ID); err != nil {
		writeServiceError(w, err, "failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) SetGridSize(w http.ResponseWriter, r *http.Request) {
	id, tenant, ok := target(w, r)
	if !ok {
		return
	}
	var req gridSizeRequest
	if !decode(w, r, &req) {
		return
	}
	sess, err := h.svc.SetGridSize(r.Context(), id, tenant.ID, req.GridSize)
	if err != nil {
		writeServiceError(w, err, "failed to set grid size")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *SessionHandler) AssertFacts(w http.ResponseWriter, r *http.Request) {
	id, tenant, ok := target(w, r)
	if !ok {
		return
	}
	var req factsRequest
	if !decode(w, r, &req) {
		return
	}

	facts := make([]domain.PerceptFact, 0, len(req.Facts))
	for _, f := range req.Facts {
		facts = append(facts, domain.PerceptFact{
			Cell: domain.Coordinate{X: f.X, Y: f.Y},
			Kind: domain.PerceptKind(f.Kind),
		})
	}

	sess, err := h.svc.AssertFacts(r.Context(), id, tenant.ID, facts)
	if err != nil {
		writeServiceError(w, err, "failed to assert facts")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *SessionHandler) AssertObservations(w http.ResponseWriter, r *http.Request) {
	id, tenant, ok := target(w, r)
	if !ok {
		return
	}
	var req observationsRequest
	if !decode(w, r, &req) {
		return
	}

	obs := make([]domain.Observation, 0, len(req.Observations))
	for _, o := range req.Observations {
		obs = append(obs, domain.Observation{
			Cell:   domain.Coordinate{X: o.X, Y: o.Y},
			Breeze: o.Breeze,
			Stench: o.Stench,
		})
	}

	sess, err := h.svc.AssertObservations(r.Context(), id, tenant.ID, obs)
	if err != nil {
		writeServiceError(w, err, "failed to record observations")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *SessionHandler) MarkWumpusDead(w http.ResponseWriter, r *http.Request) {
	id, tenant, ok := target(w, r)
	if !ok {
		return
	}
	sess, err := h.svc.MarkWumpusDead(r.Context(), id, tenant.ID)
	if err != nil {
		writeServiceError(w, err, "failed to mark wumpus dead")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id, tenant, ok := target(w, r)
	if !ok {
		return
	}
	sess, err := h.svc.Reset(r.Context(), id, tenant.ID)
	if err != nil {
		writeServiceError(w, err, "failed to reset session")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *SessionHandler) Safe(w http.ResponseWriter, r *http.Request) {
	id, tenant, ok := target(w, r)
	if !ok {
		return
	}
	report, err := h.svc.Query(r.Context(), id, tenant.ID)
	if err != nil {
		writeServiceError(w, err, "failed to compute safe cells")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSessionConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidEvidence):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrGridTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrQueryTimeout):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
