package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-lsh/internal/audit"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

// handleListDevices returns the full device registry snapshot.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.adapter.Snapshot(r.Context())
	if err != nil {
		writeInternalError(w, "reading device registry failed")
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// handleListConfiguredDevices returns the sorted list of device names
// named in the loaded SystemConfig.
func (s *Server) handleListConfiguredDevices(w http.ResponseWriter, r *http.Request) {
	names, err := s.adapter.ConfiguredDeviceNames(r.Context())
	if err != nil {
		writeInternalError(w, "reading configured devices failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": names})
}

// handleGetConfig returns the raw SystemConfig document currently
// loaded from disk.
func (s *Server) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	raw, err := s.adapter.RawSystemConfig()
	if err != nil {
		writeInternalError(w, "reading system config failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw) //nolint:errcheck // best-effort write; connection may be closed
}

// handlePatchConfig applies an RFC 7386 JSON merge patch to the
// SystemConfig document and reloads the orchestrator.
func (s *Server) handlePatchConfig(w http.ResponseWriter, r *http.Request) {
	patch, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "reading request body failed")
		return
	}
	if !json.Valid(patch) {
		writeBadRequest(w, "request body is not valid JSON")
		return
	}

	if err := s.adapter.PatchSystemConfig(r.Context(), patch); err != nil {
		writeInternalError(w, "applying config patch failed: "+err.Error())
		return
	}

	raw, err := s.adapter.RawSystemConfig()
	if err != nil {
		writeInternalError(w, "reading merged system config failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw) //nolint:errcheck // best-effort write; connection may be closed
}

// handleListAudit queries the audit trail, optionally filtered by
// action/entity_type/entity_id query parameters and paginated via
// limit/offset.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.auditRepo == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "audit trail not configured")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action:     q.Get("action"),
		EntityType: q.Get("entity_type"),
		EntityID:   q.Get("entity_id"),
		Limit:      defaultAuditLimit,
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= maxAuditLimit {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filter.Offset = n
		}
	}

	result, err := s.auditRepo.List(r.Context(), filter)
	if err != nil {
		writeInternalError(w, "querying audit trail failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// setContextRequest is the body of PUT /api/v1/context/{key}.
type setContextRequest struct {
	Value bool `json:"value"`
}

// handleSetContext lets an external actor (a non-LSH device, a scene
// system, a presence sensor) publish a boolean fact that smartToggle's
// otherActors pass reads back via lshcore.ContextReader.
func (s *Server) handleSetContext(w http.ResponseWriter, r *http.Request) {
	if s.ctxStore == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "context store not configured")
		return
	}

	key := chi.URLParam(r, "key")
	if key == "" {
		writeBadRequest(w, "key is required")
		return
	}

	var body setContextRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if err := s.ctxStore.Set(r.Context(), key, body.Value); err != nil {
		writeInternalError(w, "writing context entry failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"key": key, "value": body.Value})
}
