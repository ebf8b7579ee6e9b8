package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"plaza/api/internal/models"
	"plaza/api/internal/service"
)

type userResponse struct {
	ID        string  `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	HasPhone  bool    `json:"hasPhone"`
	AvatarURL *string `json:"avatarUrl"`
}

func toUserResponse(user models.User) userResponse {
	return userResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		HasPhone:  user.PhoneHash != nil,
		AvatarURL: user.AvatarURL,
	}
}

func (h HandlerSet) Me(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

type updateMeRequest struct {
	FirstName string  `json:"firstName" binding:"required"`
	LastName  string  `json:"lastName" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	Phone     *string `json:"phone"`
}

func (h HandlerSet) UpdateMe(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.users.UpdateProfile(c.Request.Context(), user.ID, service.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(updated)})
}

func (h HandlerSet) DeleteMe(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), user.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) UploadAvatar(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_required"})
		return
	}
	defer file.Close()

	url, err := h.users.UploadAvatar(c.Request.Context(), user.ID, file, header.Size)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("avatar upload failed")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatarUrl": url})
}
