package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/akolanti/DocQA/internal/adapter"
	"github.com/akolanti/DocQA/internal/adapter/utils"
	"github.com/akolanti/DocQA/internal/api"
	"github.com/akolanti/DocQA/internal/domain/sessionModel"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

var logSH *logger_i.Logger

// CreateSessionHandler godoc
// @Summary      Start a new conversation session
// @Tags         Sessions
// @Produce      json
// @Success      201  {object}  api.SessionResponse
// @Router       /sessions [post]
func CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		session, err := sessionStoreInstance.CreateSession(r.Context())
		if err != nil {
			logSH.Error("Error creating session", "error", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Internal Server Error")
			return
		}
		writeJsonResponse(w, http.StatusCreated, adapter.ToSessionResponse(session))
	}
}

// ListSessionsHandler godoc
// @Summary      List live session ids
// @Tags         Sessions
// @Produce      json
// @Success      200  {object}  api.SessionListResponse
// @Router       /sessions [get]
func ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		ids, err := sessionStoreInstance.ListSessions(r.Context())
		if err != nil {
			logSH.Error("Error listing sessions", "error", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Internal Server Error")
			return
		}
		writeJsonResponse(w, http.StatusOK, api.SessionListResponse{Sessions: ids})
	}
}

// GetSessionHandler godoc
// @Summary      Get session metadata
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  api.SessionResponse
// @Failure      404  {object}  api.JobResponse "Session not found"
// @Failure      410  {object}  api.JobResponse "Session was deleted"
// @Router       /sessions/{id} [get]
func GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		idString := utils.GetChiURLParam(r, "id")
		session, err := sessionStoreInstance.GetSession(r.Context(), idString)
		if err != nil {
			writeSessionError(w, idString, err)
			return
		}
		writeJsonResponse(w, http.StatusOK, adapter.ToSessionResponse(session))
	}
}

// GetHistoryHandler godoc
// @Summary      Get conversation history
// @Description  Returns the session's turns in order. An optional limit keeps only the most recent turns.
// @Tags         Sessions
// @Produce      json
// @Param        id     path   string  true   "Session ID"
// @Param        limit  query  int     false  "Max number of trailing turns"
// @Success      200  {object}  api.HistoryResponse
// @Failure      404  {object}  api.JobResponse "Session not found"
// @Failure      410  {object}  api.JobResponse "Session was deleted"
// @Router       /sessions/{id}/history [get]
func GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		idString := utils.GetChiURLParam(r, "id")

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				WriteErrorResponse(w, http.StatusBadRequest, idString, "limit must be a non-negative integer")
				return
			}
			limit = parsed
		}

		turns, err := sessionStoreInstance.GetHistory(r.Context(), idString, limit)
		if err != nil {
			writeSessionError(w, idString, err)
			return
		}
		writeJsonResponse(w, http.StatusOK, adapter.ToHistoryResponse(idString, turns))
	}
}

// ClearSessionHandler godoc
// @Summary      Clear a session's history
// @Description  Drops all turns but keeps the session usable.
// @Tags         Sessions
// @Param        id   path  string  true  "Session ID"
// @Success      204  "History cleared"
// @Failure      404  {object}  api.JobResponse "Session not found"
// @Failure      410  {object}  api.JobResponse "Session was deleted"
// @Router       /sessions/{id}/clear [post]
func ClearSessionHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		idString := utils.GetChiURLParam(r, "id")
		if err := sessionStoreInstance.Clear(r.Context(), idString); err != nil {
			writeSessionError(w, idString, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteSessionHandler godoc
// @Summary      Delete a session
// @Description  Removes the session and its history. The id stays tombstoned so later calls report Gone, not NotFound.
// @Tags         Sessions
// @Param        id   path  string  true  "Session ID"
// @Success      204  "Session deleted"
// @Failure      404  {object}  api.JobResponse "Session not found"
// @Failure      410  {object}  api.JobResponse "Session was already deleted"
// @Router       /sessions/{id} [delete]
func DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		idString := utils.GetChiURLParam(r, "id")
		if err := sessionStoreInstance.Delete(r.Context(), idString); err != nil {
			writeSessionError(w, idString, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeSessionError(w http.ResponseWriter, sessionId string, err error) {
	switch {
	case errors.Is(err, sessionModel.ErrSessionNotFound):
		WriteErrorResponse(w, http.StatusNotFound, sessionId, "Session not found")
	case errors.Is(err, sessionModel.ErrSessionDeleted):
		WriteErrorResponse(w, http.StatusGone, sessionId, "Session was deleted")
	default:
		logSH.Error("Session operation failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, sessionId, "Internal Server Error")
	}
}
