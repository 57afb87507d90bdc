package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qualikit/qualikit/backend/go-services/internal/areas"
)

// AreaHandler manages the organizational areas tickets are routed to.
type AreaHandler struct {
	svc *areas.Service
}

func NewAreaHandler(svc *areas.Service) *AreaHandler {
	return &AreaHandler{svc: svc}
}

func (h *AreaHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/areas")
	a.GET("", h.List)
	a.PUT("/:id", h.Upsert)
	a.GET("/:id", h.Get)
}

type upsertAreaRequest struct {
	Name     string `json:"name" binding:"required"`
	OwnerSub string `json:"ownerSub"`
}

func (h *AreaHandler) Upsert(c *gin.Context) {
	var req upsertAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a := &areas.Area{ID: c.Param("id"), Name: req.Name, OwnerSub: req.OwnerSub}
	if err := h.svc.Upsert(c.Request.Context(), a); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AreaHandler) Get(c *gin.Context) {
	a, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AreaHandler) List(c *gin.Context) {
	as, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"areas": as})
}
