package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"plaza/api/internal/models"
	"plaza/api/internal/service"
)

type setStatusRequest struct {
	Status     string    `json:"status" binding:"required,oneof=AVAILABLE UNAVAILABLE"`
	Message    string    `json:"message" binding:"max=140"`
	Location   string    `json:"location" binding:"omitempty,oneof=HOME GREENSPACE THIRD_PLACE"`
	StartTime  time.Time `json:"startTime" binding:"required"`
	EndTime    time.Time `json:"endTime" binding:"required"`
	SharedWith []string  `json:"sharedWith"`
}

type statusResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	Location   string    `json:"location"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	SharedWith []string  `json:"sharedWith"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toStatusResponse(status models.Status) statusResponse {
	return statusResponse{
		ID:         status.ID,
		UserID:     status.UserID,
		Status:     string(status.Status),
		Message:    status.Message,
		Location:   string(status.Location),
		StartTime:  status.StartTime,
		EndTime:    status.EndTime,
		SharedWith: status.SharedWith,
		CreatedAt:  status.CreatedAt,
		UpdatedAt:  status.UpdatedAt,
	}
}

func (h HandlerSet) SetStatus(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	location := models.StatusLocation(req.Location)
	if location == "" {
		location = models.LocationHome
	}

	status, err := h.statuses.SetStatus(c.Request.Context(), user.ID, service.SetStatusInput{
		Status:     models.StatusKind(req.Status),
		Message:    req.Message,
		Location:   location,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		SharedWith: req.SharedWith,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toStatusResponse(status))
}

func (h HandlerSet) MyStatus(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	status := h.statuses.CurrentStatus(c.Request.Context(), user.ID)
	if status == nil {
		c.JSON(http.StatusOK, gin.H{"status": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": toStatusResponse(*status)})
}

func (h HandlerSet) ClearStatus(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	count, err := h.statuses.ClearStatus(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"deletedCount": count,
	})
}

func (h HandlerSet) FriendStatuses(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	includeMuted := c.Query("includeMuted") == "true"
	statuses := h.statuses.FriendStatuses(c.Request.Context(), user.ID, includeMuted)

	resp := make([]statusResponse, 0, len(statuses))
	for _, status := range statuses {
		resp = append(resp, toStatusResponse(status))
	}
	c.JSON(http.StatusOK, gin.H{"statuses": resp})
}
