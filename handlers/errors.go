package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qualikit/qualikit/backend/go-services/internal/areas"
	"github.com/qualikit/qualikit/backend/go-services/internal/document/lifecycle"
	docrepo "github.com/qualikit/qualikit/backend/go-services/internal/document/repository"
	"github.com/qualikit/qualikit/backend/go-services/internal/ticket"
	tktrepo "github.com/qualikit/qualikit/backend/go-services/internal/ticket/repository"
)

// writeError maps domain errors onto HTTP statuses. Conflicts from optimistic
// concurrency come back as 409 so clients know to reload and resubmit.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, docrepo.ErrNotFound), errors.Is(err, tktrepo.ErrNotFound), errors.Is(err, areas.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, lifecycle.ErrUnauthorized), errors.Is(err, ticket.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, lifecycle.ErrIllegalTransition),
		errors.Is(err, lifecycle.ErrMissingAssignee),
		errors.Is(err, ticket.ErrDocumentNotPublic):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, docrepo.ErrStaleVersion), errors.Is(err, tktrepo.ErrStaleVersion),
		errors.Is(err, ticket.ErrAlreadyResolved):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
