package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tribeconnect/models"
	"tribeconnect/utils"
)

type NotificationController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewNotificationController(db *gorm.DB, logger *log.Logger) *NotificationController {
	return &NotificationController{
		DB:     db,
		Logger: logger,
	}
}

// CreateCircleNotification writes a notification for a circle and pushes
// it to connected members. Used by the circle/event controllers and the
// reminder worker.
func CreateCircleNotification(db *gorm.DB, circleID uint, message string) error {
	notification := models.Notification{
		CircleID: circleID,
		Message:  message,
		ReadBy:   []uint{},
	}
	if err := db.Create(&notification).Error; err != nil {
		return err
	}

	BroadcastNotification(notification)
	return nil
}

// joinedCircleIDs loads every circle with its members and resolves the
// user's joined set. A single failed query fails the whole resolution.
func (nc *NotificationController) joinedCircleIDs(userID uint) ([]uint, error) {
	var circles []models.Circle
	if err := nc.DB.Preload("Members").Find(&circles).Error; err != nil {
		return nil, err
	}
	return utils.JoinedCircleIDs(userID, circles), nil
}

// GetNotifications lists the notifications visible to the user, newest
// first, along with an unread indicator.
func (nc *NotificationController) GetNotifications(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	joined, err := nc.joinedCircleIDs(user.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load circle memberships", err)
	}

	var notifications []models.Notification
	if err := nc.DB.Find(&notifications).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load notifications", err)
	}

	visible := utils.VisibleNotifications(notifications, joined)

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"notifications": visible,
		"unread":        utils.HasUnread(visible, user.ID),
	}))
}

// CreateNotification posts a message to a circle. Owners and editors only.
func (nc *NotificationController) CreateNotification(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		CircleID uint   `json:"circle_id" validate:"required"`
		Message  string `json:"message" validate:"required,max=500"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var circle models.Circle
	if err := nc.DB.Preload("Members").First(&circle, input.CircleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Circle not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load circle", err)
	}
	if !canManageInvites(user.ID, circle) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Only owners and editors can post notifications", nil)
	}

	if err := CreateCircleNotification(nc.DB, circle.ID, input.Message); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create notification", err)
	}

	return c.SendStatus(fiber.StatusCreated)
}

// MarkRead appends the user to a notification's readBy list. Marking the
// same notification twice is a no-op.
func (nc *NotificationController) MarkRead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	notificationID := utils.ParseUint(c.Params("id"))

	joined, err := nc.joinedCircleIDs(user.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load circle memberships", err)
	}

	var notification models.Notification
	if err := nc.DB.First(&notification, notificationID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Notification not found", nil)
	}

	visible := false
	for _, id := range joined {
		if id == notification.CircleID {
			visible = true
			break
		}
	}
	if !visible {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Notification is not visible to you", nil)
	}

	notification.ReadBy = utils.AppendReader(notification.ReadBy, user.ID)
	if err := nc.DB.Save(&notification).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to mark notification read", err)
	}

	return c.JSON(utils.SuccessResponse(notification))
}

// MarkAllRead marks every visible unread notification. Failed updates do
// not roll back the successful ones; their IDs are reported so the client
// can retry.
func (nc *NotificationController) MarkAllRead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	joined, err := nc.joinedCircleIDs(user.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load circle memberships", err)
	}

	var notifications []models.Notification
	if err := nc.DB.Find(&notifications).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load notifications", err)
	}

	visible := utils.VisibleNotifications(notifications, joined)

	var markedCount int
	var failedIDs []uint
	for i := range visible {
		if visible[i].IsReadBy(user.ID) {
			continue
		}
		visible[i].ReadBy = utils.AppendReader(visible[i].ReadBy, user.ID)
		if err := nc.DB.Save(&visible[i]).Error; err != nil {
			nc.Logger.Printf("Failed to mark notification %d read: %v", visible[i].ID, err)
			failedIDs = append(failedIDs, visible[i].ID)
			continue
		}
		markedCount++
	}

	response := fiber.Map{"marked": markedCount}
	if len(failedIDs) > 0 {
		response["failed_ids"] = failedIDs
		return c.Status(fiber.StatusMultiStatus).JSON(utils.SuccessResponse(response))
	}

	return c.JSON(utils.SuccessResponse(response))
}
