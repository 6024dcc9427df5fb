package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/akolanti/DocQA/internal/adapter"
	"github.com/akolanti/DocQA/internal/adapter/utils"
	"github.com/akolanti/DocQA/internal/api"
	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/domain/sessionModel"
	"github.com/akolanti/DocQA/internal/rag"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

var logRH *logger_i.Logger

var ragServiceInstance rag.Service
var sessionStoreInstance sessionModel.SessionStore

// InitRequestHandlers wires the synchronous surfaces. Ingestion jobs go
// through InitJobHandler instead.
func InitRequestHandlers(svc rag.Service, sessions sessionModel.SessionStore) {
	ragServiceInstance = svc
	sessionStoreInstance = sessions
}

type newJobData struct {
	id             string
	traceId        string
	documentId     string
	documentName   string
	documentSource string
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	return
}

// AskHandler godoc
// @Summary      Ask a question in a session
// @Description  Answers synchronously: rewrites the question against the session history, retrieves grounding chunks, generates the answer and records the exchange. Starts a new session when no session_id is given.
// @Tags         Ask
// @Accept       json
// @Produce      json
// @Param        request  body      api.AskRequest  true  "Session ID and message"
// @Success      200      {object}  api.AskResponse "The generated answer and its sources"
// @Failure      400      {object}  api.JobResponse "Invalid request data"
// @Failure      404      {object}  api.JobResponse "Unknown session"
// @Failure      410      {object}  api.JobResponse "Session was deleted"
// @Router       /ask [post]
func AskHandler(w http.ResponseWriter, request *http.Request) {

	if validateContext(request.Context()) {

		var requestData api.AskRequest
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logRH.Error("Couldn't close the Ask handler reader :", err)
			}
		}(request.Body)
		if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil ||
			requestData.Message == "" {

			logRH.Warn("Bad Ask Request: ", "request data:", requestData)
			WriteErrorResponse(w, http.StatusBadRequest, requestData.SessionId, "Bad Request")
			return
		}

		//no session given means this is the start of a new conversation
		if requestData.SessionId == "" {
			session, err := sessionStoreInstance.CreateSession(request.Context())
			if err != nil {
				logRH.Error("Could not create session for ask", "error", err)
				WriteErrorResponse(w, http.StatusInternalServerError, "", "Internal Server Error")
				return
			}
			requestData.SessionId = session.Id
		}

		start := time.Now()
		result, err := ragServiceInstance.Answer(request.Context(), requestData.SessionId, requestData.Message)
		if err != nil {
			writeAnswerError(w, requestData.SessionId, err)
			return
		}

		response := adapter.ToAskResponse(requestData.Message, result)
		response.ProcessingTimeMs = time.Since(start).Milliseconds()
		writeJsonResponse(w, http.StatusOK, response)
		return
	}
	logRH.Warn("Invalid Context by request ", request.RemoteAddr)
}

func writeAnswerError(w http.ResponseWriter, sessionId string, err error) {
	switch {
	case errors.Is(err, sessionModel.ErrSessionNotFound):
		WriteErrorResponse(w, http.StatusNotFound, sessionId, "Session not found")
	case errors.Is(err, sessionModel.ErrSessionDeleted):
		WriteErrorResponse(w, http.StatusGone, sessionId, "Session was deleted")
	case errors.Is(err, commonModels.ErrGenerationFailed):
		logRH.Error("Answer generation failed", "error", err)
		WriteErrorResponse(w, http.StatusBadGateway, sessionId, "Answer generation failed")
	default:
		logRH.Error("Answer failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, sessionId, "Internal Server Error")
	}
}

// GetStatusHandler godoc
// @Summary      Get ingestion job status
// @Description  Retrieves the current status of a specific ingestion job using its ID.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID "
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		//use chi get the url id
		idString := utils.GetChiURLParam(r, "id")
		result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))

		logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
	}
}

// PostIngestHandler handles the uploading of PDF or DOCX documents for RAG ingestion.
// @Summary      Upload a document for ingestion
// @Description  Receives a file via multipart/form-data, saves it to a temporary directory, and queues an ingestion job. The document becomes searchable only once the job completes.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        document_name  formData  string  true  "The display name of the document"
// @Param        document       formData  file    true  "The PDF or DOCX file to upload"
// @Success      202  {object}  api.InitJobResponse "Accepted - returns job and document ids"
// @Failure      400  {object}  api.JobResponse "Bad Request - Missing fields or file too large"
// @Failure      500  {object}  api.JobResponse "Internal Server Error - Storage or Write Error"
// @Router       /upload [post]
func PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {

		targetDir, errString := getTargetDirectory()

		if errString != "" {
			logRH.Error("Couldn't get target directory :", "err", errString)
			WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
			return
		}

		const maxUploadSize = 32 << 20 //32mb
		err := r.ParseMultipartForm(maxUploadSize)
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
			return
		}

		//process request
		docName := r.FormValue("document_name")
		if docName == "" {
			WriteErrorResponse(w, http.StatusBadRequest, "", "document_name is required")
			return
		}

		//get the document name the user uploads
		fileReader, fileMetadata, err := r.FormFile("document")
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, docName, "Could not retrieve file")
			return
		}
		defer fileReader.Close()

		filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileMetadata.Filename)
		tempFilePath := filepath.Join(targetDir, filename)
		destinationFileWriter, err := os.Create(tempFilePath)
		if err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, docName, "Storage error")
			return
		}
		defer destinationFileWriter.Close()

		if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, docName, "Write error")
			return
		}
		processNewJobData(r, w, docName, tempFilePath)
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// DeleteDocumentHandler godoc
// @Summary      Delete a document
// @Description  Removes the document's chunks from the index. The id stays known so a repeat delete is a no-op.
// @Tags         Ingestion
// @Produce      json
// @Param        id   path  string  true  "Document ID"
// @Success      204  "Document deleted"
// @Failure      404  {object}  api.JobResponse "Document not found"
// @Router       /documents/{id} [delete]
func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		idString := utils.GetChiURLParam(r, "id")

		err := ragServiceInstance.DeleteDocument(r.Context(), idString)
		if errors.Is(err, commonModels.ErrDocumentNotFound) {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Document not found")
			return
		}
		if err != nil {
			logRH.Error("Error deleting document", "error", err)
			WriteErrorResponse(w, http.StatusInternalServerError, idString, "Internal Server Error")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
