package delivery

import (
	"net/http"
	"strconv"

	journaldomain "migralog-backend/internal/journal/domain"
	journaldto "migralog-backend/internal/journal/dto"
	"migralog-backend/internal/journal/usecase"

	"github.com/gin-gonic/gin"
)

type JournalHandler struct {
	journalUsecase usecase.JournalUsecase
}

func NewJournalHandler(journalUsecase usecase.JournalUsecase) *JournalHandler {
	return &JournalHandler{
		journalUsecase: journalUsecase,
	}
}

func (h *JournalHandler) CreateEntry(c *gin.Context) {
	userID := c.GetString("userID")

	var req journaldto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry := req.ToEntry()
	if err := h.journalUsecase.CreateEntry(userID, entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

func (h *JournalHandler) ListEntries(c *gin.Context) {
	userID := c.GetString("userID")

	limit := 20
	offset := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	var kind *journaldomain.EntryKind
	if kindStr := c.Query("kind"); kindStr != "" {
		k := journaldomain.EntryKind(kindStr)
		kind = &k
	}

	entries, total, err := h.journalUsecase.ListEntries(userID, kind, limit, offset)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, journaldto.EntriesResponse{
		Entries: entries,
		Limit:   limit,
		Offset:  offset,
		Total:   total,
	})
}

func (h *JournalHandler) GetEntry(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	entry, err := h.journalUsecase.GetEntry(userID, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (h *JournalHandler) UpdateEntry(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	var req journaldto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry := req.ToEntry()
	entry.ID = id
	if err := h.journalUsecase.UpdateEntry(userID, entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (h *JournalHandler) DeleteEntry(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	if err := h.journalUsecase.DeleteEntry(userID, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "entry deleted"})
}
