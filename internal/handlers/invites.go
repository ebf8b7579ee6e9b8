package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"plaza/api/internal/models"
)

type inviteResponse struct {
	Code      string     `json:"code"`
	InviterID string     `json:"inviterId"`
	ExpiresAt time.Time  `json:"expiresAt"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
}

func toInviteResponse(invite models.Invite) inviteResponse {
	return inviteResponse{
		Code:      invite.Code,
		InviterID: invite.InviterID,
		ExpiresAt: invite.ExpiresAt,
		Used:      invite.Used(),
		UsedAt:    invite.UsedAt,
	}
}

func (h HandlerSet) GenerateInvite(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	invite, err := h.invites.Generate(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toInviteResponse(invite))
}

func (h HandlerSet) GetInvite(c *gin.Context) {
	invite, err := h.invites.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toInviteResponse(invite))
}

func (h HandlerSet) UseInvite(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	invite, err := h.invites.Use(c.Request.Context(), c.Param("code"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toInviteResponse(invite))
}
