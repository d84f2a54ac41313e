package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tribeconnect/models"
	"tribeconnect/utils"
)

type DashboardController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewDashboardController(db *gorm.DB, logger *log.Logger) *DashboardController {
	return &DashboardController{
		DB:     db,
		Logger: logger,
	}
}

// GetDashboardStats aggregates the numbers the home screen shows:
// joined circles, events over the coming week (repeat rules included),
// and unread notifications.
func (dc *DashboardController) GetDashboardStats(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var circles []models.Circle
	if err := dc.DB.Preload("Members").Find(&circles).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load circles", err)
	}
	joined := utils.ResolveJoinedCircles(user.ID, circles)
	joinedIDs := utils.JoinedCircleIDs(user.ID, circles)

	var events []models.Event
	query := dc.DB.Where("user_id = ?", user.ID)
	if len(joinedIDs) > 0 {
		query = query.Or("circle_id IN ?", joinedIDs)
	}
	if err := query.Find(&events).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load events", err)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	week := make([]time.Time, 7)
	for i := range week {
		week[i] = today.AddDate(0, 0, i)
	}
	upcoming := utils.ExpandOccurrences(events, week)

	upcomingCount := 0
	for _, dayEvents := range upcoming {
		upcomingCount += len(dayEvents)
	}

	var notifications []models.Notification
	if len(joinedIDs) > 0 {
		if err := dc.DB.Where("circle_id IN ?", joinedIDs).Find(&notifications).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load notifications", err)
		}
	}
	unreadCount := 0
	for _, n := range notifications {
		if !n.IsReadBy(user.ID) {
			unreadCount++
		}
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"circle_count":         len(joined),
		"upcoming_event_count": upcomingCount,
		"upcoming_events":      upcoming,
		"unread_notifications": unreadCount,
		"has_unread":           unreadCount > 0,
	}))
}
