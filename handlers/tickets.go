package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qualikit/qualikit/backend/go-services/internal/governance"
	"github.com/qualikit/qualikit/backend/go-services/internal/storage"
	"github.com/qualikit/qualikit/backend/go-services/internal/ticket"
	"github.com/qualikit/qualikit/backend/go-services/pkg/middleware"
)

// TicketHandler exposes request tickets. Attachments are optional: when the
// store is nil (no MinIO configured) uploads are rejected but the plain
// JSON create path keeps working.
type TicketHandler struct {
	svc         *governance.Service
	attachments *storage.AttachmentStore
}

func NewTicketHandler(svc *governance.Service, attachments *storage.AttachmentStore) *TicketHandler {
	return &TicketHandler{svc: svc, attachments: attachments}
}

func (h *TicketHandler) Register(rg *gin.RouterGroup) {
	t := rg.Group("/tickets")
	t.POST("", h.Create)
	t.GET("/:id", h.Get)
	t.POST("/:id/resolve", h.Resolve)
	t.GET("/:id/attachment", h.AttachmentURL)
	rg.GET("/areas/:id/tickets", h.ListByArea)
}

type createTicketRequest struct {
	DocumentID   string `json:"documentId" binding:"required"`
	TargetAreaID string `json:"targetAreaId" binding:"required"`
}

// Create opens a ticket. Accepts either a JSON body or a multipart form with
// the same field names plus an optional "attachment" file part.
func (h *TicketHandler) Create(c *gin.Context) {
	var req createTicketRequest
	attachmentKey := ""

	if mediaType := c.ContentType(); mediaType == "multipart/form-data" {
		req.DocumentID = c.PostForm("documentId")
		req.TargetAreaID = c.PostForm("targetAreaId")
		if req.DocumentID == "" || req.TargetAreaID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "documentId and targetAreaId required"})
			return
		}
		fh, err := c.FormFile("attachment")
		if err == nil && fh != nil {
			if h.attachments == nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "attachment storage not configured"})
				return
			}
			f, err := fh.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			defer f.Close()
			key := fmt.Sprintf("tickets/%d-%s", time.Now().UnixNano(), fh.Filename)
			attachmentKey, err = h.attachments.Upload(c.Request.Context(), key, f, fh.Size, fh.Header.Get("Content-Type"))
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "attachment upload failed"})
				return
			}
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	t, err := h.svc.CreateTicket(c.Request.Context(), req.DocumentID, middleware.ActorSub(c), req.TargetAreaID, attachmentKey)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *TicketHandler) Get(c *gin.Context) {
	t, err := h.svc.GetTicket(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

type resolveTicketRequest struct {
	Decision string `json:"decision" binding:"required"` // "approve" | "decline"
	Comment  string `json:"comment"`
}

func (h *TicketHandler) Resolve(c *gin.Context) {
	var req resolveTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dec := ticket.Decision(req.Decision)
	if dec != ticket.DecisionApprove && dec != ticket.DecisionDecline {
		c.JSON(http.StatusBadRequest, gin.H{"error": "decision must be approve or decline"})
		return
	}
	t, err := h.svc.ResolveTicket(c.Request.Context(), c.Param("id"), middleware.ActorSub(c), dec, req.Comment)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TicketHandler) ListByArea(c *gin.Context) {
	ts, err := h.svc.ListTicketsByArea(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": ts})
}

// AttachmentURL returns a short-lived presigned download link for the
// ticket's attachment.
func (h *TicketHandler) AttachmentURL(c *gin.Context) {
	t, err := h.svc.GetTicket(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if t.AttachmentKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "ticket has no attachment"})
		return
	}
	if h.attachments == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "attachment storage not configured"})
		return
	}
	url, err := h.attachments.PresignedURL(c.Request.Context(), t.AttachmentKey, 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign attachment url"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "expiresIn": int((15 * time.Minute).Seconds())})
}
