package controller

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tribeconnect/models"
	"tribeconnect/utils"
)

type CircleController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewCircleController(db *gorm.DB, logger *log.Logger) *CircleController {
	return &CircleController{
		DB:     db,
		Logger: logger,
	}
}

// CreateCircle creates a circle, adds the creator as owner, and
// optionally writes and emails a first invite. The circle and invite are
// committed even when the email fails; the response then carries the
// join link so the owner can share it by hand while the invite worker
// retries delivery.
func (cc *CircleController) CreateCircle(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Name        string `json:"name" validate:"required,max=100"`
		InviteEmail string `json:"invite_email" validate:"omitempty,email"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	circle := models.Circle{
		Name:    strings.TrimSpace(input.Name),
		OwnerID: user.ID,
	}

	var invite *models.CircleInvite
	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&circle).Error; err != nil {
			return err
		}

		member := models.CircleMember{
			CircleID: circle.ID,
			UserID:   user.ID,
			Role:     models.RoleOwner,
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}

		if input.InviteEmail != "" {
			if err := checkmail.ValidateFormat(input.InviteEmail); err != nil {
				return errInvalidInviteEmail
			}
			invite = &models.CircleInvite{
				CircleID:  circle.ID,
				Email:     strings.ToLower(input.InviteEmail),
				Token:     uuid.NewString(),
				Status:    models.InviteStatusPending,
				InvitedBy: user.ID,
			}
			if err := tx.Create(invite).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, errInvalidInviteEmail) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid invite email address", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create circle", err)
	}

	response := fiber.Map{"circle": circle}
	if invite != nil {
		emailSent := cc.deliverInviteEmail(invite, circle.Name, "")
		response["invite_link"] = utils.InviteLink(invite.Token, "")
		response["email_sent"] = emailSent
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(response))
}

var errInvalidInviteEmail = errors.New("invalid invite email")

// deliverInviteEmail attempts immediate delivery and records the result
// on the invite row. The invite worker picks up failures later.
func (cc *CircleController) deliverInviteEmail(invite *models.CircleInvite, circleName, origin string) bool {
	err := utils.SendCircleInviteEmail(invite.Email, circleName, invite.Token, origin)

	updates := map[string]interface{}{
		"email_attempts": gorm.Expr("email_attempts + 1"),
	}
	if err == nil {
		updates["email_sent_at"] = time.Now()
		updates["last_error"] = ""
	} else {
		updates["last_error"] = err.Error()

		logrus.WithFields(logrus.Fields{
			"invite_id": invite.ID,
			"circle_id": invite.CircleID,
			"email":     invite.Email,
		}).WithError(err).Error("invite email delivery failed")

		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("component", "invite_email")
			scope.SetExtra("invite_id", invite.ID)
			sentry.CaptureException(err)
		})
	}

	if dbErr := cc.DB.Model(invite).Updates(updates).Error; dbErr != nil {
		cc.Logger.Printf("Failed to record invite delivery state for invite %d: %v", invite.ID, dbErr)
	}

	return err == nil
}

// GetCircles returns the circles the user owns or belongs to. Circles and
// their member rows are loaded in one query; any failure aborts the whole
// resolution rather than returning a partial list.
func (cc *CircleController) GetCircles(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var circles []models.Circle
	if err := cc.DB.Preload("Members").Find(&circles).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load circles", err)
	}

	return c.JSON(utils.SuccessResponse(utils.ResolveJoinedCircles(user.ID, circles)))
}

// GetCircle returns one circle with its members; pending invites are
// included for the owner only.
func (cc *CircleController) GetCircle(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	circleID := utils.ParseUint(c.Params("id"))

	var circle models.Circle
	if err := cc.DB.Preload("Members").First(&circle, circleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Circle not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load circle", err)
	}

	if !utils.IsJoined(user.ID, circle) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You are not a member of this circle", nil)
	}

	response := fiber.Map{
		"circle":  circle,
		"members": circle.Members,
	}

	if circle.OwnerID == user.ID {
		var invites []models.CircleInvite
		if err := cc.DB.Where("circle_id = ?", circle.ID).Find(&invites).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load invites", err)
		}
		response["invites"] = invites
	}

	return c.JSON(utils.SuccessResponse(response))
}

// DeleteCircle removes a circle and everything scoped to it.
func (cc *CircleController) DeleteCircle(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	circleID := utils.ParseUint(c.Params("id"))

	var circle models.Circle
	if err := cc.DB.First(&circle, circleID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Circle not found", nil)
	}
	if circle.OwnerID != user.ID {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Only the owner can delete a circle", nil)
	}

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&models.CircleMember{}, &models.CircleInvite{},
			&models.Notification{}, &models.FamilyMember{},
		} {
			if err := tx.Where("circle_id = ?", circle.ID).Delete(m).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Event{}).
			Where("circle_id = ?", circle.ID).
			Update("circle_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&circle).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete circle", err)
	}

	return c.JSON(fiber.Map{"message": "Circle deleted"})
}

// RemoveMember removes a member from the circle. The owner row is never
// removable.
func (cc *CircleController) RemoveMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	circleID := utils.ParseUint(c.Params("id"))
	memberUserID := utils.ParseUint(c.Params("userId"))

	var circle models.Circle
	if err := cc.DB.First(&circle, circleID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Circle not found", nil)
	}
	if circle.OwnerID != user.ID {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Only the owner can remove members", nil)
	}
	if memberUserID == circle.OwnerID {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "The circle owner cannot be removed", nil)
	}

	result := cc.DB.Where("circle_id = ? AND user_id = ?", circle.ID, memberUserID).
		Delete(&models.CircleMember{})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to remove member", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Member not found", nil)
	}

	return c.JSON(fiber.Map{"message": "Member removed"})
}

// UpdateMemberRole changes a member's role. Owner role is fixed.
func (cc *CircleController) UpdateMemberRole(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	circleID := utils.ParseUint(c.Params("id"))
	memberUserID := utils.ParseUint(c.Params("userId"))

	var input struct {
		Role string `json:"role" validate:"required,oneof=editor viewer member"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var circle models.Circle
	if err := cc.DB.First(&circle, circleID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Circle not found", nil)
	}
	if circle.OwnerID != user.ID {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Only the owner can change roles", nil)
	}
	if memberUserID == circle.OwnerID {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "The owner role cannot be changed", nil)
	}

	result := cc.DB.Model(&models.CircleMember{}).
		Where("circle_id = ? AND user_id = ?", circle.ID, memberUserID).
		Update("role", input.Role)
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update role", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Member not found", nil)
	}

	return c.JSON(fiber.Map{"message": "Role updated"})
}

// CreateInvite writes a new single-use invite and attempts delivery.
func (cc *CircleController) CreateInvite(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	circleID := utils.ParseUint(c.Params("id"))

	var input struct {
		Email  string `json:"email" validate:"required,email"`
		Origin string `json:"origin" validate:"omitempty,url"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var circle models.Circle
	if err := cc.DB.Preload("Members").First(&circle, circleID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Circle not found", nil)
	}
	if !canManageInvites(user.ID, circle) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Only owners and editors can send invites", nil)
	}

	if err := checkmail.ValidateFormat(input.Email); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid invite email address", err)
	}

	invite := models.CircleInvite{
		CircleID:  circle.ID,
		Email:     strings.ToLower(input.Email),
		Token:     uuid.NewString(),
		Status:    models.InviteStatusPending,
		InvitedBy: user.ID,
	}
	if err := cc.DB.Create(&invite).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create invite", err)
	}

	emailSent := cc.deliverInviteEmail(&invite, circle.Name, input.Origin)

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{
		"invite":      invite,
		"invite_link": utils.InviteLink(invite.Token, input.Origin),
		"email_sent":  emailSent,
	}))
}

// RevokeInvite marks a pending invite revoked so its token stops working.
func (cc *CircleController) RevokeInvite(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	circleID := utils.ParseUint(c.Params("id"))
	inviteID := utils.ParseUint(c.Params("inviteId"))

	var circle models.Circle
	if err := cc.DB.First(&circle, circleID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Circle not found", nil)
	}
	if circle.OwnerID != user.ID {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Only the owner can revoke invites", nil)
	}

	result := cc.DB.Model(&models.CircleInvite{}).
		Where("id = ? AND circle_id = ? AND status = ?", inviteID, circle.ID, models.InviteStatusPending).
		Update("status", models.InviteStatusRevoked)
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to revoke invite", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Pending invite not found", nil)
	}

	return c.JSON(fiber.Map{"message": "Invite revoked"})
}

// JoinCircle accepts an invite token: the caller becomes an editor member
// and the invite is consumed. Tokens are single-use; accepted or revoked
// tokens are rejected.
func (cc *CircleController) JoinCircle(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	token := c.Query("token")
	if token == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invite token is required", nil)
	}

	var invite models.CircleInvite
	if err := cc.DB.Where("token = ? AND status = ?", token, models.InviteStatusPending).
		First(&invite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Invalid or expired token", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to look up invite", err)
	}

	var circle models.Circle
	if err := cc.DB.First(&circle, invite.CircleID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load circle", err)
	}

	var existing models.CircleMember
	if err := cc.DB.Where("circle_id = ? AND user_id = ?", circle.ID, user.ID).
		First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "You are already a member of this circle", nil)
	}

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		member := models.CircleMember{
			CircleID: circle.ID,
			UserID:   user.ID,
			Role:     models.RoleEditor,
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		// Consume the token
		return tx.Model(&invite).Update("status", models.InviteStatusAccepted).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to join circle", err)
	}

	// Announce the new member; delivery is best-effort
	name := user.Email
	if user.Name != nil && *user.Name != "" {
		name = *user.Name
	}
	if err := CreateCircleNotification(cc.DB, circle.ID, name+" joined the circle"); err != nil {
		cc.Logger.Printf("Failed to create join notification for circle %d: %v", circle.ID, err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"circle": utils.CircleSummary{ID: circle.ID, Name: circle.Name, OwnerID: circle.OwnerID},
	}))
}

// SendInviteEmail is the mail-relay endpoint: it composes and sends a
// join-link email for an existing invite token.
//
// Request: {"email","circle_name","token","origin"?}; response is
// {"success":true} on 200 or {"error":...} on 500, matching the clients
// that already speak this shape.
func (cc *CircleController) SendInviteEmail(c *fiber.Ctx) error {
	var input struct {
		Email      string `json:"email" validate:"required,email"`
		CircleName string `json:"circle_name" validate:"required"`
		Token      string `json:"token" validate:"required"`
		Origin     string `json:"origin" validate:"omitempty,url"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := utils.SendCircleInviteEmail(input.Email, input.CircleName, input.Token, input.Origin); err != nil {
		logrus.WithFields(logrus.Fields{
			"email": input.Email,
			"token": input.Token,
		}).WithError(err).Error("invite email relay failed")
		sentry.CaptureException(err)

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true})
}

// canManageInvites allows the owner and editor members to invite.
func canManageInvites(userID uint, circle models.Circle) bool {
	if circle.OwnerID == userID {
		return true
	}
	for _, m := range circle.Members {
		if m.UserID == userID && (m.Role == models.RoleOwner || m.Role == models.RoleEditor) {
			return true
		}
	}
	return false
}
