package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"plaza/api/internal/models"
)

type friendUserResponse struct {
	ID        string  `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	AvatarURL *string `json:"avatarUrl"`
}

func toFriendUserResponse(user models.User) friendUserResponse {
	return friendUserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		AvatarURL: user.AvatarURL,
	}
}

type friendViewResponse struct {
	User      friendUserResponse `json:"user"`
	Direction string             `json:"direction"`
	Muted     bool               `json:"muted"`
	Blocked   bool               `json:"blocked"`
}

func (h HandlerSet) Friends(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	views := h.friends.Friends(c.Request.Context(), user.ID)

	resp := make([]friendViewResponse, 0, len(views))
	for _, view := range views {
		// muted/blocked describe the edge pointing at the caller, which is
		// the direction the caller controls
		muted := view.Incoming != nil && view.Incoming.Status == models.FriendMuted
		blocked := view.Incoming != nil && view.Incoming.Status == models.FriendBlocked
		resp = append(resp, friendViewResponse{
			User:      toFriendUserResponse(view.User),
			Direction: string(view.Direction),
			Muted:     muted,
			Blocked:   blocked,
		})
	}
	c.JSON(http.StatusOK, gin.H{"friends": resp})
}

type pendingInviteResponse struct {
	User      friendUserResponse `json:"user"`
	StatusID  string             `json:"statusId"`
	Message   string             `json:"message"`
	Location  string             `json:"location"`
	StartTime time.Time          `json:"startTime"`
	EndTime   time.Time          `json:"endTime"`
}

func (h HandlerSet) PendingFriends(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	invites := h.friends.PendingFriends(c.Request.Context(), user.ID)

	resp := make([]pendingInviteResponse, 0, len(invites))
	for _, invite := range invites {
		resp = append(resp, pendingInviteResponse{
			User:      toFriendUserResponse(invite.User),
			StatusID:  invite.Status.ID,
			Message:   invite.Status.Message,
			Location:  string(invite.Status.Location),
			StartTime: invite.Status.StartTime,
			EndTime:   invite.Status.EndTime,
		})
	}
	c.JSON(http.StatusOK, gin.H{"pending": resp})
}

// Relationship transitions all operate on the edge other -> caller; :id is
// the other user.

func (h HandlerSet) MuteFriend(c *gin.Context) {
	h.transition(c, func(callerID, otherID string) error {
		return h.friends.Mute(c.Request.Context(), otherID, callerID)
	})
}

func (h HandlerSet) UnmuteFriend(c *gin.Context) {
	h.transition(c, func(callerID, otherID string) error {
		return h.friends.Unmute(c.Request.Context(), otherID, callerID)
	})
}

func (h HandlerSet) BlockFriend(c *gin.Context) {
	h.transition(c, func(callerID, otherID string) error {
		return h.friends.Block(c.Request.Context(), otherID, callerID)
	})
}

func (h HandlerSet) UnblockFriend(c *gin.Context) {
	h.transition(c, func(callerID, otherID string) error {
		return h.friends.Unblock(c.Request.Context(), otherID, callerID)
	})
}

func (h HandlerSet) AcceptFriend(c *gin.Context) {
	h.transition(c, func(callerID, otherID string) error {
		return h.friends.Accept(c.Request.Context(), callerID, otherID)
	})
}

func (h HandlerSet) transition(c *gin.Context, op func(callerID, otherID string) error) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	otherID := c.Param("id")
	if otherID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id required"})
		return
	}

	if err := op(user.ID, otherID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
