package models

import "time"

// SystemConfigID is the primary key of the single configuration row.
const SystemConfigID = "global"

// SystemConfig is a singleton row holding event-wide settings. It is
// upserted by admins and read by every invitation render and by the
// webhook notification sender.
type SystemConfig struct {
	ID           string `gorm:"type:varchar(20);primarykey"`
	EventTime    *time.Time
	EventEndTime *time.Time
	MeetingLink  string `gorm:"type:varchar(500)"`
	WecomWebhook string `gorm:"type:varchar(500)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
