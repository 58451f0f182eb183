package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tsubakurame/team-todo-api/internal/constants"
	"github.com/tsubakurame/team-todo-api/internal/mailer"
	"github.com/tsubakurame/team-todo-api/internal/models"
	"github.com/tsubakurame/team-todo-api/internal/repository"
	"github.com/tsubakurame/team-todo-api/internal/utils"
)

var (
	ErrAlreadyMember       = errors.New("this email already belongs to a member of your organization")
	ErrDuplicateInvitation = errors.New("an active invitation for this email already exists")
	ErrInvitationNotFound  = errors.New("invitation not found")
	ErrInvitationAccepted  = errors.New("invitation has already been accepted")
	ErrInvitationExpired   = errors.New("invitation has expired")
	ErrEmailMismatch       = errors.New("invitation was issued for a different email address")
)

// InvitationService manages the cross-organization invitation lifecycle.
// Creating an invitation and sending its email form a two-step saga: the
// email call cannot join the database transaction, so a failed send triggers
// a compensating delete of the record.
type InvitationService struct {
	invitationRepo repository.InvitationRepository
	userRepo       repository.UserRepository
	orgRepo        repository.OrganizationRepository
	mail           mailer.Sender
	baseURL        string
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(
	invitationRepo repository.InvitationRepository,
	userRepo repository.UserRepository,
	orgRepo repository.OrganizationRepository,
	mail mailer.Sender,
	baseURL string,
) *InvitationService {
	return &InvitationService{
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		orgRepo:        orgRepo,
		mail:           mail,
		baseURL:        baseURL,
	}
}

// Invite creates an invitation for an email address to join the inviter's
// organization and sends the invitation email. If the email cannot be sent
// the record is deleted again so no undeliverable invitation remains.
func (s *InvitationService) Invite(ctx context.Context, inviter *models.User, email string) (*models.OrgInvitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email address")
	}

	if existing, err := s.userRepo.FindByEmail(email); err == nil {
		if existing.OrganizationID == inviter.OrganizationID {
			return nil, ErrAlreadyMember
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	now := time.Now()
	if _, err := s.invitationRepo.FindActive(email, inviter.OrganizationID, now); err == nil {
		return nil, ErrDuplicateInvitation
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing invitations: %w", err)
	}

	invitation := &models.OrgInvitation{
		Email:          email,
		OrganizationID: inviter.OrganizationID,
		InvitedByID:    inviter.ID,
		Token:          utils.GenerateToken(),
		ExpiresAt:      now.Add(constants.InvitationTTL),
	}
	if err := s.invitationRepo.Create(invitation); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	if err := s.sendInvitationMail(ctx, invitation, inviter.Email); err != nil {
		// Compensating action: the record must not outlive a failed send.
		if delErr := s.invitationRepo.Delete(invitation.ID); delErr != nil {
			return nil, fmt.Errorf("failed to roll back invitation %d: %v (send error: %w)",
				invitation.ID, delErr, err)
		}
		return nil, err
	}

	return invitation, nil
}

// Reinvite rotates the token and expiry of an existing invitation and
// resends the email. Unlike Invite there is no compensating delete: a failed
// resend leaves the existing invitation valid.
func (s *InvitationService) Reinvite(ctx context.Context, requester *models.User, invitationID uint64) (*models.OrgInvitation, error) {
	invitation, err := s.findForOrg(requester, invitationID)
	if err != nil {
		return nil, err
	}

	if invitation.Accepted {
		return nil, ErrInvitationAccepted
	}

	invitation.Token = utils.GenerateToken()
	invitation.ExpiresAt = time.Now().Add(constants.InvitationTTL)
	if err := s.invitationRepo.Update(invitation); err != nil {
		return nil, fmt.Errorf("failed to update invitation: %w", err)
	}

	if err := s.sendInvitationMail(ctx, invitation, requester.Email); err != nil {
		return nil, err
	}

	return invitation, nil
}

// AcceptResult captures the outcome of an Accept call.
type AcceptResult struct {
	// SignInRequired is set when no authenticated principal was supplied.
	// The invitation is left untouched so the flow can resume after sign-in.
	SignInRequired bool
	Invitation     *models.OrgInvitation
	User           *models.User
}

// Accept validates an invitation token and, given an authenticated principal
// whose email matches, marks the invitation accepted and moves the user into
// the organization. Both writes are one transaction.
func (s *InvitationService) Accept(token string, principal *models.User) (*AcceptResult, error) {
	invitation, err := s.invitationRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to look up invitation: %w", err)
	}

	if invitation.Accepted {
		return nil, ErrInvitationAccepted
	}
	if time.Now().After(invitation.ExpiresAt) {
		return nil, ErrInvitationExpired
	}

	if principal == nil {
		return &AcceptResult{SignInRequired: true, Invitation: invitation}, nil
	}

	if !strings.EqualFold(principal.Email, invitation.Email) {
		return nil, ErrEmailMismatch
	}

	if err := s.invitationRepo.AcceptAndMoveUser(invitation, principal); err != nil {
		return nil, fmt.Errorf("failed to accept invitation: %w", err)
	}

	return &AcceptResult{Invitation: invitation, User: principal}, nil
}

// Delete removes an invitation of the requester's organization.
func (s *InvitationService) Delete(requester *models.User, invitationID uint64) error {
	invitation, err := s.findForOrg(requester, invitationID)
	if err != nil {
		return err
	}
	if err := s.invitationRepo.Delete(invitation.ID); err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}
	return nil
}

// List returns the invitations of the requester's organization.
func (s *InvitationService) List(requester *models.User) ([]models.OrgInvitation, error) {
	invitations, err := s.invitationRepo.ListByOrganization(requester.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, nil
}

// findForOrg loads an invitation and hides it from requesters outside its
// organization.
func (s *InvitationService) findForOrg(requester *models.User, invitationID uint64) (*models.OrgInvitation, error) {
	invitation, err := s.invitationRepo.FindByID(invitationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to find invitation: %w", err)
	}
	if invitation.OrganizationID != requester.OrganizationID {
		return nil, ErrInvitationNotFound
	}
	return invitation, nil
}

func (s *InvitationService) sendInvitationMail(ctx context.Context, invitation *models.OrgInvitation, inviterEmail string) error {
	org, err := s.orgRepo.FindByID(invitation.OrganizationID)
	if err != nil {
		return fmt.Errorf("failed to find organization: %w", err)
	}

	link := fmt.Sprintf("%s/api/org/invite/accept?token=%s", s.baseURL, invitation.Token)
	subject, body := mailer.InvitationMail(org.Name, inviterEmail, link)
	if err := s.mail.Send(ctx, invitation.Email, subject, body); err != nil {
		return fmt.Errorf("%w: %v", ErrEmailSendFailed, err)
	}
	return nil
}
