package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	controller "tribeconnect/controllers"
	"tribeconnect/models"
	"tribeconnect/utils"
)

// ReminderWorker posts a day-before notification for circle events,
// expanding repeat rules so recurring events remind on every occurrence.
type ReminderWorker struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewReminderWorker(db *gorm.DB, logger *log.Logger) *ReminderWorker {
	return &ReminderWorker{
		DB:     db,
		Logger: logger,
	}
}

func (rw *ReminderWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	rw.Logger.Println("Reminder worker started")

	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	// Catch up immediately in case the process was down over the boundary
	rw.processReminders()

	for {
		select {
		case <-ctx.Done():
			rw.Logger.Println("Reminder worker shutting down...")
			return
		case <-ticker.C:
			rw.processReminders()
		}
	}
}

func (rw *ReminderWorker) processReminders() {
	tomorrow := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	tomorrowStr := tomorrow.Format(utils.DateLayout)

	var events []models.Event
	if err := rw.DB.Where("circle_id IS NOT NULL").Find(&events).Error; err != nil {
		rw.Logger.Printf("Error fetching events for reminders: %v", err)
		return
	}

	for _, event := range events {
		if event.RemindedFor == tomorrowStr {
			continue
		}
		if !utils.OccursOn(event, tomorrow) {
			continue
		}

		message := fmt.Sprintf("Reminder: %s is tomorrow (%s)", event.Title, tomorrowStr)
		if err := controller.CreateCircleNotification(rw.DB, *event.CircleID, message); err != nil {
			rw.Logger.Printf("Error creating reminder for event %d: %v", event.ID, err)
			continue
		}

		// Stamp the occurrence so the next tick does not remind again
		if err := rw.DB.Model(&event).Update("reminded_for", tomorrowStr).Error; err != nil {
			rw.Logger.Printf("Error stamping reminder for event %d: %v", event.ID, err)
		}
	}
}
