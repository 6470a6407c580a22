package models

// UserRole separates the two staff roles. Guests never have accounts;
// invitation access is capability based (see Invitation.UniqueToken).
type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleSales UserRole = "SALES"
)

// User is a staff account (admin or sales). Created by an admin or the
// seeder; deactivated instead of deleted.
type User struct {
	BaseModel
	Username string   `gorm:"type:varchar(50);uniqueIndex;not null"`
	Password string   `gorm:"type:varchar(255);not null" json:"-"` // bcrypt hash
	Role     UserRole `gorm:"type:varchar(20);not null;default:'SALES';index"`
	Name     string   `gorm:"type:varchar(100)"`
	WechatID string   `gorm:"type:varchar(100)"` // mention tag for webhook notifications
	IsActive bool     `gorm:"default:true;index"`

	Invitations []Invitation `gorm:"foreignKey:UserID"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
