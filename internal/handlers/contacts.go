package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type hashPhonesRequest struct {
	PhoneNumbers []string `json:"phoneNumbers" binding:"required,min=1"`
}

func (h HandlerSet) HashPhones(c *gin.Context) {
	var req hashPhonesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"phoneHashes": h.contacts.HashPhones(req.PhoneNumbers)})
}

type phoneHashesRequest struct {
	PhoneHashes []string `json:"phoneHashes" binding:"required,min=1"`
}

func (h HandlerSet) CheckContacts(c *gin.Context) {
	var req phoneHashesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.contacts.CheckContacts(c.Request.Context(), req.PhoneHashes)
	if err != nil {
		respondError(c, err)
		return
	}

	existing := make([]friendUserResponse, 0, len(result.ExistingUsers))
	for _, user := range result.ExistingUsers {
		existing = append(existing, toFriendUserResponse(user))
	}

	nonUser := result.NonUserHashes
	if nonUser == nil {
		nonUser = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"existingUsers": existing,
		"nonUserHashes": nonUser,
	})
}

func (h HandlerSet) MatchContacts(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req phoneHashesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.contacts.MatchContacts(c.Request.Context(), user.ID, req.PhoneHashes)
	if err != nil {
		respondError(c, err)
		return
	}

	matched := make([]friendUserResponse, 0, len(result.Users))
	for _, matchedUser := range result.Users {
		matched = append(matched, toFriendUserResponse(matchedUser))
	}

	c.JSON(http.StatusOK, gin.H{
		"matched": result.Matched,
		"users":   matched,
	})
}

type contactResponse struct {
	User   friendUserResponse `json:"user"`
	Status string             `json:"status"`
}

func (h HandlerSet) Contacts(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	views := h.contacts.Contacts(c.Request.Context(), user.ID)

	resp := make([]contactResponse, 0, len(views))
	for _, view := range views {
		resp = append(resp, contactResponse{
			User:   toFriendUserResponse(view.User),
			Status: string(view.Contact.Status),
		})
	}
	c.JSON(http.StatusOK, gin.H{"contacts": resp})
}
