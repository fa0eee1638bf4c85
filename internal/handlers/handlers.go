package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"libranet/internal/liberr"
	"libranet/internal/metrics"
	"libranet/internal/models"
	"libranet/internal/services"
)

type LibraryHandler struct {
	svc services.LendingService
}

func RegisterRoutes(r *gin.Engine, svc services.LendingService) {
	registerValidators()
	h := &LibraryHandler{svc: svc}

	// Catalogue
	r.POST("/items", h.addItem)
	r.GET("/items", h.listItems)
	r.GET("/items/:id", h.getItem)

	// Lending
	r.POST("/items/:id/borrow", h.borrowItem)
	r.POST("/items/:id/return", h.returnItem)
	r.POST("/items/:id/archive", h.archiveMagazine)
	r.POST("/items/:id/playback", h.controlPlayback)

	// Users
	r.POST("/users", h.addUser)
	r.GET("/users/:id/borrows", h.listUserBorrows)
	r.GET("/users/:id/fines", h.listUserFines)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
}

type addItemRequest struct {
	ID            int               `json:"id" binding:"required,gt=0"`
	Type          string            `json:"type" binding:"required,itemtype"`
	Title         string            `json:"title" binding:"required"`
	Authors       []string          `json:"authors"`
	Metadata      map[string]string `json:"metadata"`
	PageCount     int               `json:"page_count"`
	PlaybackHours int               `json:"playback_hours"`
	Narrator      string            `json:"narrator"`
	IssueNumber   int               `json:"issue_number"`
	IssueDate     *time.Time        `json:"issue_date"`
}

func (h *LibraryHandler) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	authors := req.Authors
	if len(authors) == 0 {
		authors = []string{"Unknown"}
	}

	var (
		item *models.Item
		err  error
	)
	switch models.ItemType(req.Type) {
	case models.ItemTypeBook:
		item, err = models.NewBook(req.ID, req.Title, authors, req.PageCount)
	case models.ItemTypeAudiobook:
		item, err = models.NewAudiobook(req.ID, req.Title, authors, time.Duration(req.PlaybackHours)*time.Hour, req.Narrator)
	case models.ItemTypeEMagazine:
		issued := time.Now()
		if req.IssueDate != nil {
			issued = *req.IssueDate
		}
		item, err = models.NewEMagazine(req.ID, req.Title, authors, req.IssueNumber, issued)
	default:
		err = liberr.InvalidInput("unknown item type %q", req.Type)
	}
	if err != nil {
		h.writeError(c, "addItem", err)
		return
	}
	for k, v := range req.Metadata {
		item.Metadata[k] = v
	}

	id, err := h.svc.AddItem(item)
	if err != nil {
		h.writeError(c, "addItem", err)
		return
	}
	log.Printf("[INFO] addItem: added %s %q (id=%d)", item.Type, item.Title, id)
	c.JSON(http.StatusCreated, item)
}

func (h *LibraryHandler) listItems(c *gin.Context) {
	if typeName := c.Query("type"); typeName != "" {
		c.JSON(http.StatusOK, h.svc.SearchByType(typeName))
		return
	}
	c.JSON(http.StatusOK, h.svc.ListItems())
}

func (h *LibraryHandler) getItem(c *gin.Context) {
	itemID, ok := pathID(c, "item")
	if !ok {
		return
	}
	item, err := h.svc.GetItem(itemID)
	if err != nil {
		h.writeError(c, "getItem", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

type borrowRequest struct {
	UserID   int    `json:"user_id" binding:"required,gt=0"`
	Duration string `json:"duration"`
}

func (h *LibraryHandler) borrowItem(c *gin.Context) {
	itemID, ok := pathID(c, "item")
	if !ok {
		return
	}
	var req borrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.svc.BorrowItem(req.UserID, itemID, req.Duration)
	metrics.ObserveOperation("borrow", resultLabel(err))
	if err != nil {
		h.writeError(c, "borrowItem", err)
		return
	}
	metrics.IncrementActiveBorrows()
	log.Printf("[INFO] borrowItem: item %d borrowed by user %d (record=%d), due %s",
		itemID, req.UserID, rec.ID, rec.DueAt.Format(time.RFC3339))
	c.JSON(http.StatusCreated, gin.H{"borrow": rec})
}

type returnRequest struct {
	UserID int `json:"user_id" binding:"required,gt=0"`
}

func (h *LibraryHandler) returnItem(c *gin.Context) {
	itemID, ok := pathID(c, "item")
	if !ok {
		return
	}
	var req returnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fine, err := h.svc.ReturnItem(req.UserID, itemID)
	metrics.ObserveOperation("return", resultLabel(err))
	if err != nil {
		h.writeError(c, "returnItem", err)
		return
	}
	metrics.DecrementActiveBorrows()
	if fine != nil {
		metrics.ObserveFine(fine.Amount)
		log.Printf("[INFO] returnItem: applied fine %s for user %d on item %d", fine.Amount, req.UserID, itemID)
	} else {
		log.Printf("[INFO] returnItem: item %d returned on time by user %d", itemID, req.UserID)
	}
	c.JSON(http.StatusOK, gin.H{"returned": true, "fine": fine})
}

func (h *LibraryHandler) archiveMagazine(c *gin.Context) {
	itemID, ok := pathID(c, "item")
	if !ok {
		return
	}
	err := h.svc.ArchiveMagazine(itemID)
	metrics.ObserveOperation("archive", resultLabel(err))
	if err != nil {
		h.writeError(c, "archiveMagazine", err)
		return
	}
	log.Printf("[INFO] archiveMagazine: archived magazine item %d", itemID)
	c.JSON(http.StatusOK, gin.H{"archived": true})
}

type playbackRequest struct {
	Action          string `json:"action" binding:"required,oneof=play pause stop seek status"`
	PositionMinutes int    `json:"position_minutes" binding:"gte=0"`
}

func (h *LibraryHandler) controlPlayback(c *gin.Context) {
	itemID, ok := pathID(c, "item")
	if !ok {
		return
	}
	var req playbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st, err := h.svc.ControlPlayback(itemID, services.PlaybackAction(req.Action), time.Duration(req.PositionMinutes)*time.Minute)
	if err != nil {
		h.writeError(c, "controlPlayback", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state":            st.State,
		"position_minutes": int(st.Position / time.Minute),
		"length_minutes":   int(st.Length / time.Minute),
	})
}

type addUserRequest struct {
	ID          int    `json:"id" binding:"gte=0"`
	Name        string `json:"name" binding:"required"`
	BorrowLimit int    `json:"borrow_limit" binding:"gte=0"`
}

func (h *LibraryHandler) addUser(c *gin.Context) {
	var req addUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.svc.AddUser(req.ID, req.Name, req.BorrowLimit)
	if err != nil {
		h.writeError(c, "addUser", err)
		return
	}
	log.Printf("[INFO] addUser: added user %q (id=%d)", req.Name, id)
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

type borrowView struct {
	*models.BorrowRecord
	DisplayStatus models.BorrowStatus `json:"display_status"`
}

func (h *LibraryHandler) listUserBorrows(c *gin.Context) {
	userID, ok := pathID(c, "user")
	if !ok {
		return
	}
	records, err := h.svc.ListUserBorrows(userID)
	if err != nil {
		h.writeError(c, "listUserBorrows", err)
		return
	}
	now := time.Now()
	out := make([]borrowView, 0, len(records))
	for _, rec := range records {
		out = append(out, borrowView{BorrowRecord: rec, DisplayStatus: rec.DisplayStatus(now)})
	}
	c.JSON(http.StatusOK, out)
}

func (h *LibraryHandler) listUserFines(c *gin.Context) {
	userID, ok := pathID(c, "user")
	if !ok {
		return
	}
	fines, err := h.svc.ListUserFines(userID)
	if err != nil {
		h.writeError(c, "listUserFines", err)
		return
	}
	total, err := h.svc.UserFineTotal(userID)
	if err != nil {
		h.writeError(c, "listUserFines", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fines": fines, "total": total})
}

// pathID parses the :id parameter, answering 400 itself when it is not an integer.
func pathID(c *gin.Context, what string) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + what + " id"})
		return 0, false
	}
	return id, true
}

// writeError maps a domain error kind to an HTTP status. Domain errors are
// expected outcomes and are logged as warnings; anything else is an internal error.
func (h *LibraryHandler) writeError(c *gin.Context, op string, err error) {
	kind := liberr.KindOf(err)
	status := statusForKind(kind)
	if status == http.StatusInternalServerError {
		log.Printf("[ERROR] %s: %v", op, err)
	} else {
		log.Printf("[WARN] %s: %v", op, err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
}

func statusForKind(kind liberr.Kind) int {
	switch kind {
	case liberr.KindNotFound:
		return http.StatusNotFound
	case liberr.KindInvalidInput:
		return http.StatusBadRequest
	case liberr.KindItemNotAvailable, liberr.KindReturnMismatch, liberr.KindAlreadyArchived, liberr.KindLimitExceeded:
		return http.StatusConflict
	case liberr.KindNotAMagazine:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := liberr.KindOf(err); kind != "" {
		return strings.ToLower(string(kind))
	}
	return "error"
}
