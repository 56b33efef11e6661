package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/resumeatlas/ResumeAPI/internal/adapter"
	"github.com/resumeatlas/ResumeAPI/internal/adapter/utils"
	"github.com/resumeatlas/ResumeAPI/internal/api"
	"github.com/resumeatlas/ResumeAPI/internal/config"
	"github.com/resumeatlas/ResumeAPI/internal/domain/sessionModel"
	"github.com/resumeatlas/ResumeAPI/pkg/logger_i"
)

var logRH *logger_i.Logger

type newJobData struct {
	id        string
	sessionId string
	message   string
	traceId   string
	fileName  string
	filePath  string
	mediaType string
	isAnalyze bool
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	return
}

// UploadResumeHandler godoc
// @Summary      Upload a resume for analysis
// @Description  Receives an image or PDF via multipart/form-data, resets the session and queues an analysis job. Only one analysis per session may run at a time.
// @Tags         Analysis
// @Accept       multipart/form-data
// @Produce      json
// @Param        resume      formData  file    true   "The resume file (JPEG, PNG, GIF or PDF)"
// @Param        session_id  formData  string  false  "Session to reuse; a new one is created when omitted"
// @Success      202  {object}  api.InitJobResponse  "Job successfully queued"
// @Failure      400  {object}  api.JobResponse      "Missing file or bad request"
// @Failure      409  {object}  api.JobResponse      "An analysis is already running for this session"
// @Failure      415  {object}  api.JobResponse      "Declared media type not accepted"
// @Router       /resume [post]
func UploadResumeHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {

		targetDir, errString := getTargetDirectory()
		if errString != "" {
			logRH.Error("Couldn't get target directory :", "err", errString)
			WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
			return
		}

		err := r.ParseMultipartForm(config.MaxUploadSizeBytes)
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
			return
		}

		fileReader, fileMetadata, err := r.FormFile("resume")
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
			return
		}
		defer fileReader.Close()

		// reject unsupported declared types before touching disk
		mediaType := fileMetadata.Header.Get("Content-Type")
		if !config.AllowedMediaTypes[mediaType] {
			logRH.Warn("Rejected upload", "mediaType", mediaType)
			WriteErrorResponse(w, http.StatusUnsupportedMediaType, "", "Unsupported media type: "+mediaType)
			return
		}

		sessionID := r.FormValue("session_id")
		if sessionID == "" {
			sessionID = utils.GetNewUUID()
			logRH.Debug(" New session : ", "sessionID:", sessionID)
		}

		ctx := r.Context()
		if !handlerInstance.service.SessionStore.AcquireRun(ctx, sessionID) {
			WriteErrorResponse(w, http.StatusConflict, sessionID, "Analysis already in progress for this session")
			return
		}

		// a new upload resets the session before the pipeline starts
		if err := handlerInstance.service.SessionStore.SaveSession(ctx, sessionModel.Session{
			Id:         sessionID,
			FileName:   fileMetadata.Filename,
			Processing: true,
		}); err != nil {
			handlerInstance.service.SessionStore.ReleaseRun(ctx, sessionID)
			WriteErrorResponse(w, http.StatusInternalServerError, sessionID, "Storage error")
			return
		}

		filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileMetadata.Filename)
		tempFilePath := filepath.Join(targetDir, filename)
		destinationFileWriter, err := os.Create(tempFilePath)
		if err != nil {
			handlerInstance.service.SessionStore.ReleaseRun(ctx, sessionID)
			WriteErrorResponse(w, http.StatusInternalServerError, sessionID, "Storage error")
			return
		}
		defer destinationFileWriter.Close()

		if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
			handlerInstance.service.SessionStore.ReleaseRun(ctx, sessionID)
			WriteErrorResponse(w, http.StatusInternalServerError, sessionID, "Write error")
			return
		}

		newJob := newJobData{
			id:        utils.GetNewUUID(),
			sessionId: sessionID,
			traceId:   ctx.Value(config.TRACE_ID_KEY).(string),
			fileName:  fileMetadata.Filename,
			filePath:  tempFilePath,
			mediaType: mediaType,
			isAnalyze: true,
		}
		CreateNewJob(newJob)
		writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id, sessionID))
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
	WriteErrorResponse(w, http.StatusRequestTimeout, "", "Request cancelled")
}

// ChatHandler godoc
// @Summary      Ask a follow-up question
// @Description  Accepts a question about the analyzed resume, queues a background job and returns a job ID to track status.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest      true  "Session ID and message"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Blank message or session without an analyzed resume"
// @Failure      409      {object}  api.JobResponse      "Another request is already running for this session"
// @Router       /chat [post]
func ChatHandler(w http.ResponseWriter, request *http.Request) {

	if validateContext(request.Context()) {

		var requestData api.ChatRequest
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logRH.Error("Couldn't close the Chat handler reader :", err)
			}
		}(request.Body)
		if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || !ValidateChatRequest(request.Context(), requestData) {

			logRH.Warn("Bad Chat Request: ", "error:", err, "request data:", requestData)
			WriteErrorResponse(w, http.StatusBadRequest, requestData.SessionID, "Bad Request")
			return
		}

		// chat runs take the same per-session guard as uploads: one
		// pipeline run in flight at a time, so transcript appends stay
		// strictly ordered
		ctx := request.Context()
		if !handlerInstance.service.SessionStore.AcquireRun(ctx, requestData.SessionID) {
			WriteErrorResponse(w, http.StatusConflict, requestData.SessionID, "Another request is already in progress for this session")
			return
		}

		if session, found := handlerInstance.service.SessionStore.GetSession(ctx, requestData.SessionID); found {
			session.AIBusy = true
			if err := handlerInstance.service.SessionStore.SaveSession(ctx, session); err != nil {
				logRH.Error("Couldn't mark session busy", "err", err)
			}
		}

		newJob := newJobData{
			id:        utils.GetNewUUID(),
			sessionId: requestData.SessionID,
			message:   requestData.Message,
			traceId:   ctx.Value(config.TRACE_ID_KEY).(string),
		}
		CreateNewJob(newJob)
		writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id, requestData.SessionID))
		return
	}
	logRH.Warn("Invalid Context by request ", request.RemoteAddr)
	WriteErrorResponse(w, http.StatusRequestTimeout, "", "Request cancelled")
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a specific job using its ID.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID "
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		idString := utils.GetChiURLParam(r, "id")
		result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))

		logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
		return
	}
	WriteErrorResponse(w, http.StatusRequestTimeout, "", "Request cancelled")
}

// GetSessionHandler godoc
// @Summary      Get session state
// @Description  Returns the extracted text, transcript and in-flight flags for a session.
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  api.SessionResponse
// @Failure      404  {object}  api.JobResponse  "Session not found"
// @Router       /session/{id} [get]
func GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		idString := utils.GetChiURLParam(r, "id")
		session, found := GetSession(r.Context(), idString)
		if !found {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Session not found")
			return
		}
		writeJsonResponse(w, http.StatusOK, adapter.ToSessionResponse(session))
		return
	}
	WriteErrorResponse(w, http.StatusRequestTimeout, "", "Request cancelled")
}

// PublishPortfolioHandler godoc
// @Summary      Publish a session as a portfolio
// @Description  Snapshots the session's extracted text and transcript under a username. Republishing a username overwrites the previous snapshot.
// @Tags         Portfolio
// @Accept       json
// @Produce      json
// @Param        username  path      string              true  "Portfolio username"
// @Param        request   body      api.PublishRequest  true  "Session to publish"
// @Success      201       {object}  api.PortfolioResponse
// @Failure      400       {object}  api.JobResponse  "Session has no analyzed resume"
// @Failure      404       {object}  api.JobResponse  "Session not found"
// @Router       /portfolio/{username} [post]
func PublishPortfolioHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		username := strings.TrimSpace(utils.GetChiURLParam(r, "username"))
		if username == "" {
			WriteErrorResponse(w, http.StatusBadRequest, "", "username is required")
			return
		}

		var requestData api.PublishRequest
		if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || requestData.SessionID == "" {
			WriteErrorResponse(w, http.StatusBadRequest, username, "Bad Request")
			return
		}
		defer r.Body.Close()

		ctx := r.Context()
		session, found := GetSession(ctx, requestData.SessionID)
		if !found {
			WriteErrorResponse(w, http.StatusNotFound, requestData.SessionID, "Session not found")
			return
		}
		if session.ExtractedText == "" {
			WriteErrorResponse(w, http.StatusBadRequest, requestData.SessionID, "Session has no analyzed resume")
			return
		}

		portfolio := sessionModel.Portfolio{
			Username:      username,
			SessionId:     session.Id,
			FileName:      session.FileName,
			ExtractedText: session.ExtractedText,
			Transcript:    session.Transcript,
			PublishedTime: time.Now(),
		}
		if err := handlerInstance.service.SessionStore.SavePortfolio(ctx, portfolio); err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, username, "Storage error")
			return
		}
		writeJsonResponse(w, http.StatusCreated, adapter.ToPortfolioResponse(portfolio))
		return
	}
	WriteErrorResponse(w, http.StatusRequestTimeout, "", "Request cancelled")
}

// GetPortfolioHandler godoc
// @Summary      View a published portfolio
// @Description  Returns the published snapshot for a username, or 404 when nothing was published.
// @Tags         Portfolio
// @Produce      json
// @Param        username  path      string  true  "Portfolio username"
// @Success      200       {object}  api.PortfolioResponse
// @Failure      404       {object}  api.JobResponse  "Portfolio not found"
// @Router       /portfolio/{username} [get]
func GetPortfolioHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		username := utils.GetChiURLParam(r, "username")
		portfolio, found := handlerInstance.service.SessionStore.GetPortfolio(r.Context(), username)
		if !found {
			WriteErrorResponse(w, http.StatusNotFound, username, "Portfolio not found")
			return
		}
		writeJsonResponse(w, http.StatusOK, adapter.ToPortfolioResponse(portfolio))
		return
	}
	WriteErrorResponse(w, http.StatusRequestTimeout, "", "Request cancelled")
}
