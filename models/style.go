package models

// Style is a named visual template selectable per invitation. Component is
// the key into the guest view template registry (views/styles/<component>.html).
// Styles are seeded, toggled by admins and never deleted while referenced.
type Style struct {
	BaseModel
	Name       string `gorm:"type:varchar(100);uniqueIndex;not null"`
	Component  string `gorm:"type:varchar(100);not null"`
	IsActive   bool   `gorm:"default:true;index"`
	PreviewURL string `gorm:"type:varchar(500)"`
}

// Seeded style component keys.
const (
	StyleComponentClassic  = "classic"
	StyleComponentElegant  = "elegant"
	StyleComponentFestival = "festival"
)
