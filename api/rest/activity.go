package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ryotaku/taskforge/gamify/activity"
	mw "github.com/ryotaku/taskforge/middleware"
	"gorm.io/gorm"
)

// ActivityHandler handles activity feed REST endpoints.
type ActivityHandler struct {
	db       *gorm.DB
	activity *activity.Service
}

// NewActivityHandler creates an ActivityHandler.
func NewActivityHandler(db *gorm.DB, act *activity.Service) *ActivityHandler {
	return &ActivityHandler{db: db, activity: act}
}

// Recent handles GET /api/activity?limit=20. Returns the caller's newest
// activity rows.
func (h *ActivityHandler) Recent(c *gin.Context) {
	userID := mw.GetUserID(c)

	limit := 20
	if l, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = l
	}

	rows, err := h.activity.Recent(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": rows})
}
