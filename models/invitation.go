package models

import (
	"crypto/rand"
	"math/big"
	"time"

	"gorm.io/gorm"
)

// InvitationStatus tracks the guest-facing lifecycle of an invitation.
type InvitationStatus string

const (
	StatusPending  InvitationStatus = "PENDING"
	StatusOpened   InvitationStatus = "OPENED"
	StatusAccepted InvitationStatus = "ACCEPTED"
	StatusDeclined InvitationStatus = "DECLINED"
)

const (
	tokenLength  = 10
	tokenCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

	discountCodePrefix  = "RS-"
	discountCodeLength  = 6
	discountCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Invitation is a guest-specific tokenized record. The UniqueToken is the
// sole capability granting guest access; ownership (UserID) only scopes
// staff listing and mutation.
type Invitation struct {
	BaseModel
	GuestName    string           `gorm:"type:varchar(150);not null"`
	UniqueToken  string           `gorm:"type:varchar(10);uniqueIndex;not null"`
	DiscountCode string           `gorm:"type:varchar(20);not null"`
	Status       InvitationStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Language     string           `gorm:"type:varchar(10);not null;default:'zh'"`
	StyleID      uint             `gorm:"index;not null"`
	Style        Style            `gorm:"foreignKey:StyleID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	UserID       uint             `gorm:"index;not null"`
	User         User             `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	VisitCount   int              `gorm:"not null;default:0"`
	OpenedAt     *time.Time
	AcceptedAt   *time.Time
	DeclinedAt   *time.Time
	SalesNote    string `gorm:"type:text"`
	UserAgent    string           `gorm:"type:varchar(500)"` // last guest agent seen
}

// BeforeCreate generates the guest token and discount code when unset.
// Token uniqueness is enforced by the DB index; the service retries on
// the (vanishingly rare) collision.
func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if err := i.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if i.UniqueToken == "" {
		token, err := randomString(tokenCharset, tokenLength)
		if err != nil {
			return err
		}
		i.UniqueToken = token
	}
	if i.DiscountCode == "" {
		code, err := randomString(discountCodeCharset, discountCodeLength)
		if err != nil {
			return err
		}
		i.DiscountCode = discountCodePrefix + code
	}
	return nil
}

func randomString(charset string, length int) (string, error) {
	max := big.NewInt(int64(len(charset)))
	b := make([]byte, length)
	for idx := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[idx] = charset[n.Int64()]
	}
	return string(b), nil
}
