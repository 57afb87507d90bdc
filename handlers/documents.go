package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qualikit/qualikit/backend/go-services/internal/document"
	"github.com/qualikit/qualikit/backend/go-services/internal/governance"
	"github.com/qualikit/qualikit/backend/go-services/pkg/middleware"
)

// DocumentHandler exposes controlled documents over HTTP. Every mutation goes
// through the governance facade; the handler only translates JSON and status
// codes.
type DocumentHandler struct {
	svc *governance.Service
}

func NewDocumentHandler(svc *governance.Service) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

func (h *DocumentHandler) Register(rg *gin.RouterGroup) {
	d := rg.Group("/documents")
	d.GET("", h.List)
	d.POST("", h.Create)
	d.GET("/:id", h.Get)
	d.PATCH("/:id", h.Patch)
	d.POST("/:id/transition", h.Transition)
}

type createDocumentRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Version     string `json:"version" binding:"required"`
	Mode        string `json:"mode" binding:"required"` // "editor" | "upload"
	Content     string `json:"content"`
	FileKey     string `json:"fileKey"`
	ReviewerSub string `json:"reviewerSub"`
	ApproverSub string `json:"approverSub"`
}

func (h *DocumentHandler) Create(c *gin.Context) {
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := h.svc.CreateDocument(c.Request.Context(), middleware.ActorSub(c), governance.CreateDocumentInput{
		Code:        req.Code,
		Name:        req.Name,
		Version:     req.Version,
		Mode:        document.ContentMode(req.Mode),
		Content:     req.Content,
		FileKey:     req.FileKey,
		ReviewerSub: req.ReviewerSub,
		ApproverSub: req.ApproverSub,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *DocumentHandler) List(c *gin.Context) {
	ds, err := h.svc.ListDocuments(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": ds})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	d, err := h.svc.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

type patchDocumentRequest struct {
	Name         *string `json:"name"`
	Content      *string `json:"content"`
	Version      *string `json:"version"`
	ReviewerSub  *string `json:"reviewerSub"`
	ApproverSub  *string `json:"approverSub"`
	Visibility   *string `json:"visibility"` // "private" | "public"
	NextReviewAt *string `json:"nextReviewAt"`
}

func (h *DocumentHandler) Patch(c *gin.Context) {
	var req patchDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := governance.DocumentPatch{
		Name:         req.Name,
		Content:      req.Content,
		Version:      req.Version,
		ReviewerSub:  req.ReviewerSub,
		ApproverSub:  req.ApproverSub,
		NextReviewAt: req.NextReviewAt,
	}
	if req.Visibility != nil {
		v := document.Visibility(*req.Visibility)
		if v != document.VisibilityPrivate && v != document.VisibilityPublic {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid visibility"})
			return
		}
		p.Visibility = &v
	}
	d, err := h.svc.UpdateDocument(c.Request.Context(), c.Param("id"), middleware.ActorSub(c), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

type transitionRequest struct {
	Target string `json:"target" binding:"required"`
}

func (h *DocumentHandler) Transition(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := h.svc.ApplyDocumentTransition(c.Request.Context(), c.Param("id"), middleware.ActorSub(c), document.State(req.Target))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
