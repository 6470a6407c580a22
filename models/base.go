package models

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type ctxKey string

// CtxUserIDKey carries the acting user's ID through a context so the
// BaseModel hooks can fill the audit columns.
const CtxUserIDKey ctxKey = "user_id"

// ContextWithUserID returns a context carrying the acting user's ID.
func ContextWithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, CtxUserIDKey, userID)
}

// UserIDFromContext extracts the acting user's ID, if present.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(CtxUserIDKey).(uint)
	return id, ok
}

// BaseModel is embedded by every entity: numeric PK, timestamps, soft
// delete and audit columns filled from the request context.
type BaseModel struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedBy *uint          `gorm:"index"`
	UpdatedBy *uint
	DeletedBy *uint
}

// BeforeCreate fills CreatedBy from the context, if an acting user is known.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if id, ok := UserIDFromContext(tx.Statement.Context); ok && id != 0 {
		m.CreatedBy = &id
	}
	return nil
}

// BeforeUpdate fills UpdatedBy from the context, if an acting user is
// known. SetColumn reaches map-based Updates as well as struct saves,
// where assigning to the receiver would be silently ignored.
func (m *BaseModel) BeforeUpdate(tx *gorm.DB) error {
	if id, ok := UserIDFromContext(tx.Statement.Context); ok && id != 0 {
		tx.Statement.SetColumn("updated_by", id)
	}
	return nil
}
