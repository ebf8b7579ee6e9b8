package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"plaza/api/internal/service"
)

type groupRequest struct {
	Name string `json:"name" binding:"required"`
}

type groupResponse struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

func (h HandlerSet) CreateGroup(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req groupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.groups.Create(c.Request.Context(), user.ID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, groupResponse{ID: group.ID, Name: group.Name, Members: []string{}})
}

func (h HandlerSet) ListGroups(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	groups, err := h.groups.List(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]groupResponse, 0, len(groups))
	for _, group := range groups {
		members := make([]string, 0, len(group.Members))
		for _, member := range group.Members {
			members = append(members, member.MemberUserID)
		}
		resp = append(resp, groupResponse{
			ID:      group.Group.ID,
			Name:    group.Group.Name,
			Members: members,
		})
	}
	c.JSON(http.StatusOK, gin.H{"groups": resp})
}

func (h HandlerSet) RenameGroup(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req groupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.groups.Rename(c.Request.Context(), c.Param("id"), user.ID, req.Name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h HandlerSet) DeleteGroup(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	if err := h.groups.Delete(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addMemberRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (h HandlerSet) AddGroupMember(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.groups.AddMember(c.Request.Context(), c.Param("id"), user.ID, req.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h HandlerSet) RemoveGroupMember(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	if err := h.groups.RemoveMember(c.Request.Context(), c.Param("id"), user.ID, c.Param("userId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type appContactRequest struct {
	Contacts []struct {
		Name  string `json:"name" binding:"required"`
		Phone string `json:"phone" binding:"required"`
	} `json:"contacts" binding:"required,min=1"`
}

func (h HandlerSet) SaveAppContacts(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req appContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inputs := make([]service.AppContactInput, 0, len(req.Contacts))
	for _, contact := range req.Contacts {
		inputs = append(inputs, service.AppContactInput{Name: contact.Name, Phone: contact.Phone})
	}

	if err := h.groups.SaveAppContacts(c.Request.Context(), user.ID, inputs); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": len(inputs)})
}

type appContactResponse struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	PhoneHash string `json:"phoneHash"`
}

func (h HandlerSet) AppContacts(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	contacts, err := h.groups.AppContacts(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]appContactResponse, 0, len(contacts))
	for _, contact := range contacts {
		resp = append(resp, appContactResponse{
			Name:      contact.Name,
			Phone:     contact.Phone,
			PhoneHash: contact.PhoneHash,
		})
	}
	c.JSON(http.StatusOK, gin.H{"contacts": resp})
}
