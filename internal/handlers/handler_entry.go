package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/opentally/bookkeeping_app/internal/core/ports/services"
	"github.com/opentally/bookkeeping_app/internal/core/workflow"
	"github.com/opentally/bookkeeping_app/internal/dto"
	"github.com/opentally/bookkeeping_app/internal/middleware"
	"github.com/opentally/bookkeeping_app/internal/utils/accounting"
)

// entryHandler handles HTTP requests related to journal entries.
type entryHandler struct {
	entryService portssvc.EntrySvcFacade
}

// newEntryHandler creates a new entryHandler.
func newEntryHandler(entryService portssvc.EntrySvcFacade) *entryHandler {
	return &entryHandler{
		entryService: entryService,
	}
}

// RegisterEntryRoutes wires the journal entry endpoints into the v1 group.
func RegisterEntryRoutes(rg *gin.RouterGroup, entryService portssvc.EntrySvcFacade) {
	h := newEntryHandler(entryService)

	entries := rg.Group("/entries")
	{
		entries.POST("", h.createEntry)
		entries.GET("", h.listEntries)
		entries.GET("/:entryID", h.getEntry)
		entries.PUT("/:entryID", h.updateEntry)
		entries.DELETE("/:entryID", h.deleteEntry)
		entries.POST("/:entryID/transitions", h.transitionEntry)
		entries.GET("/:entryID/audit", h.getEntryAudit)
	}
}

// createEntry godoc
// @Summary Create a journal entry
// @Description Creates a new DRAFT journal entry with its lines
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   entry body dto.CreateEntryRequest true "Entry and lines"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid request format or unbalanced line"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /entries [post]
func (h *entryHandler) createEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	createReq := dto.CreateEntryRequest{}
	if err := c.ShouldBindJSON(&createReq); err != nil {
		logger.Error("Failed to bind JSON for createEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.entryService.CreateEntry(c.Request.Context(), createReq, creatorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create entry")
		return
	}

	logger.Info("Entry created", slog.String("entry_id", entry.EntryID))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry, accounting.ComputeImbalance(entry.Lines)))
}

// getEntry godoc
// @Summary Get a journal entry
// @Description Retrieves an entry with its lines and current imbalance
// @Tags entries
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Router /entries/{entryID} [get]
func (h *entryHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.entryService.GetEntryByID(c.Request.Context(), entryID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve entry")
		return
	}

	c.JSON(http.StatusOK, dto.ToEntryResponse(entry, accounting.ComputeImbalance(entry.Lines)))
}

// listEntries godoc
// @Summary List journal entries
// @Description Retrieves a filtered, token-paginated page of entry summaries
// @Tags entries
// @Produce  json
// @Param   status query string false "Workflow status filter"
// @Param   dateFrom query string false "Entry date lower bound (YYYY-MM-DD)"
// @Param   dateTo query string false "Entry date upper bound (YYYY-MM-DD)"
// @Param   description query string false "Description substring"
// @Param   accountCode query string false "Entries touching this account"
// @Param   amountFrom query number false "Total debits lower bound"
// @Param   amountTo query number false "Total debits upper bound"
// @Param   limit query int false "Page size"
// @Param   nextToken query string false "Cursor from the previous page"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 400 {object} map[string]string "Invalid filter or token"
// @Router /entries [get]
func (h *entryHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	params := dto.ListEntriesParams{}
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for listEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, err := h.entryService.ListEntries(c.Request.Context(), userID, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list entries")
		return
	}

	c.JSON(http.StatusOK, page)
}

// updateEntry godoc
// @Summary Edit a DRAFT journal entry
// @Description Updates the header and/or replaces the lines of a DRAFT entry, guarded by expectedVersion
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Param   entry body dto.UpdateEntryRequest true "Fields to update"
// @Success 200 {object} dto.EntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Version conflict"
// @Failure 422 {object} map[string]string "Entry is not editable in its current status"
// @Router /entries/{entryID} [put]
func (h *entryHandler) updateEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	updateReq := dto.UpdateEntryRequest{}
	if err := c.ShouldBindJSON(&updateReq); err != nil {
		logger.Error("Failed to bind JSON for updateEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.entryService.UpdateEntry(c.Request.Context(), entryID, updateReq, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update entry")
		return
	}

	logger.Info("Entry updated", slog.String("entry_id", entryID), slog.Int64("version", entry.Version))
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry, accounting.ComputeImbalance(entry.Lines)))
}

// deleteEntry godoc
// @Summary Delete a DRAFT journal entry
// @Description Removes a DRAFT entry and its lines, guarded by expectedVersion
// @Tags entries
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Param   expectedVersion query int true "Version the client last observed"
// @Success 204 "Deleted"
// @Failure 409 {object} map[string]string "Version conflict"
// @Failure 422 {object} map[string]string "Entry is not deletable in its current status"
// @Router /entries/{entryID} [delete]
func (h *entryHandler) deleteEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	expectedVersion, err := strconv.ParseInt(c.Query("expectedVersion"), 10, 64)
	if err != nil || expectedVersion < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expectedVersion query parameter is required and must be a positive integer"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.entryService.DeleteEntry(c.Request.Context(), entryID, expectedVersion, userID); err != nil {
		respondServiceError(c, logger, err, "Failed to delete entry")
		return
	}

	logger.Info("Entry deleted", slog.String("entry_id", entryID))
	c.Status(http.StatusNoContent)
}

// transitionEntry godoc
// @Summary Apply a workflow transition
// @Description Applies SUBMIT, APPROVE, REJECT or CONFIRM to an entry, guarded by expectedVersion
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Param   transition body dto.TransitionRequest true "Event to apply"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Unbalanced entry or missing reason"
// @Failure 403 {object} map[string]string "Actor role may not perform this event"
// @Failure 409 {object} map[string]string "Version conflict"
// @Failure 422 {object} map[string]string "Event not legal from the current status"
// @Router /entries/{entryID}/transitions [post]
func (h *entryHandler) transitionEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	transitionReq := dto.TransitionRequest{}
	if err := c.ShouldBindJSON(&transitionReq); err != nil {
		logger.Error("Failed to bind JSON for transitionEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	event, err := workflow.ParseEvent(transitionReq.Event)
	if err != nil {
		respondServiceError(c, logger, err, "Invalid transition event")
		return
	}

	entry, err := h.entryService.Transition(c.Request.Context(), entryID, transitionReq.ExpectedVersion, event, actorUserID, transitionReq.Reason)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to apply transition")
		return
	}

	logger.Info("Entry transitioned",
		slog.String("entry_id", entryID),
		slog.String("event", string(event)),
		slog.String("status", string(entry.Status)))
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry, accounting.ComputeImbalance(entry.Lines)))
}

// getEntryAudit godoc
// @Summary Get an entry's transition history
// @Description Retrieves the audit trail of workflow transitions, oldest first
// @Tags entries
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Success 200 {array} dto.TransitionRecordResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Router /entries/{entryID}/audit [get]
func (h *entryHandler) getEntryAudit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	records, err := h.entryService.ListEntryAudit(c.Request.Context(), entryID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve audit trail")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransitionRecordResponses(records))
}
