package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tsubakurame/team-todo-api/internal/dto"
	apierrors "github.com/tsubakurame/team-todo-api/internal/errors"
	"github.com/tsubakurame/team-todo-api/internal/middleware"
	"github.com/tsubakurame/team-todo-api/internal/services"
)

// OrganizationHandler exposes organization, slug, membership, and invitation
// endpoints.
type OrganizationHandler struct {
	orgService        *services.OrganizationService
	invitationService *services.InvitationService
}

// NewOrganizationHandler creates a new OrganizationHandler.
func NewOrganizationHandler(orgService *services.OrganizationService, invitationService *services.InvitationService) *OrganizationHandler {
	return &OrganizationHandler{
		orgService:        orgService,
		invitationService: invitationService,
	}
}

// GetOrganization returns the current user's organization.
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	org, err := h.orgService.GetOrganization(user)
	if err != nil {
		respondOrgError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTO(*org))
}

// ResolveSlug maps a slug to its organization.
func (h *OrganizationHandler) ResolveSlug(c *gin.Context) {
	org, err := h.orgService.ResolveSlug(c.Param("slug"))
	if err != nil {
		respondOrgError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTO(*org))
}

// CheckSlug reports whether the slug given in the query is available.
func (h *OrganizationHandler) CheckSlug(c *gin.Context) {
	slug := c.Query("slug")
	if slug == "" {
		apierrors.BadRequest(c, "slug query parameter is required")
		return
	}

	available, err := h.orgService.CheckSlug(slug)
	if err != nil {
		if errors.Is(err, services.ErrInvalidSlug) {
			apierrors.BadRequest(c, err.Error())
			return
		}
		apierrors.InternalError(c, "Failed to check slug")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"slug":      slug,
		"available": available,
	})
}

// SetSlug assigns a slug to the current user's organization.
func (h *OrganizationHandler) SetSlug(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type SetSlugRequest struct {
		Slug string `json:"slug" binding:"required"`
	}

	var req SetSlugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	org, err := h.orgService.SetSlug(user, req.Slug)
	if err != nil {
		respondOrgError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTO(*org))
}

// ListMembers lists the users of the current user's organization.
func (h *OrganizationHandler) ListMembers(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	members, err := h.orgService.ListMembers(user)
	if err != nil {
		apierrors.InternalError(c, "Failed to list members")
		return
	}

	memberDTOs := make([]dto.UserDTO, 0, len(members))
	for _, member := range members {
		memberDTOs = append(memberDTOs, dto.ToUserDTO(member))
	}

	c.JSON(http.StatusOK, gin.H{
		"members": memberDTOs,
	})
}

// RemoveMember moves a member back to the default organization.
func (h *OrganizationHandler) RemoveMember(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	memberID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.orgService.RemoveMember(user, memberID); err != nil {
		respondOrgError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}

// Invite creates and emails an invitation to join the current user's
// organization.
func (h *OrganizationHandler) Invite(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type InviteRequest struct {
		Email string `json:"email" binding:"required,email"`
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "A valid email address is required")
		return
	}

	invitation, err := h.invitationService.Invite(c.Request.Context(), user, req.Email)
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToInvitationDTO(*invitation))
}

// AcceptInvitation resolves an invitation token. Anonymous callers get a
// sign-in prompt and the invitation is left untouched; authenticated callers
// with the matching email are moved into the organization.
func (h *OrganizationHandler) AcceptInvitation(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		type AcceptRequest struct {
			Token string `json:"token"`
		}
		var req AcceptRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			token = req.Token
		}
	}
	if token == "" {
		apierrors.BadRequest(c, "token is required")
		return
	}

	principal, _ := middleware.CurrentUser(c)

	result, err := h.invitationService.Accept(token, principal)
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	if result.SignInRequired {
		c.JSON(http.StatusOK, gin.H{
			"status": "sign_in_required",
			"email":  result.Invitation.Email,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "accepted",
		"user":   dto.ToUserDTO(*result.User),
	})
}

// ListInvitations returns the invitations of the current user's organization.
func (h *OrganizationHandler) ListInvitations(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	invitations, err := h.invitationService.List(user)
	if err != nil {
		apierrors.InternalError(c, "Failed to list invitations")
		return
	}

	invitationDTOs := make([]dto.InvitationDTO, 0, len(invitations))
	for _, invitation := range invitations {
		invitationDTOs = append(invitationDTOs, dto.ToInvitationDTO(invitation))
	}

	c.JSON(http.StatusOK, gin.H{
		"invitations": invitationDTOs,
	})
}

// Reinvite rotates an invitation's token and resends its email.
func (h *OrganizationHandler) Reinvite(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	invitationID, ok := parseID(c, "id")
	if !ok {
		return
	}

	invitation, err := h.invitationService.Reinvite(c.Request.Context(), user, invitationID)
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInvitationDTO(*invitation))
}

// DeleteInvitation removes an invitation of the current user's organization.
func (h *OrganizationHandler) DeleteInvitation(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	invitationID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.invitationService.Delete(user, invitationID); err != nil {
		respondInvitationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invitation deleted successfully",
	})
}

func respondOrgError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOrganizationNotFound),
		errors.Is(err, services.ErrMemberNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidSlug):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrSlugTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrCannotRemoveSelf),
		errors.Is(err, services.ErrLastMember):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}

func respondInvitationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvitationNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrAlreadyMember),
		errors.Is(err, services.ErrDuplicateInvitation),
		errors.Is(err, services.ErrInvitationAccepted):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvitationExpired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEmailMismatch):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrEmailSendFailed):
		apierrors.UpstreamFailure(c)
	default:
		apierrors.InternalError(c, "")
	}
}
