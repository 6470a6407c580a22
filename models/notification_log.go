package models

import "time"

// NotificationLog is an append-only audit row for one outbound webhook
// attempt. Exactly one row is written per accept/decline response,
// success or not. Never updated or deleted.
type NotificationLog struct {
	ID           uint             `gorm:"primarykey"`
	InvitationID uint             `gorm:"index;not null"`
	GuestName    string           `gorm:"type:varchar(150)"`
	Status       InvitationStatus `gorm:"type:varchar(20)"`
	Success      bool             `gorm:"not null"`
	HTTPStatus   *int
	ErrorMessage string `gorm:"type:text"`
	CreatedAt    time.Time
}
