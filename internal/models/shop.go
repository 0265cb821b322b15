package models

// Shop represents a merchant a transaction happened at.
type Shop struct {
	Base
	UserID  string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name    string `gorm:"not null" json:"name"`
	Address string `json:"address"`
}
