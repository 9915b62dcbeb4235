package models

type Category struct {
	ID     uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name   string  `gorm:"unique;not null" json:"name"`
	Image  string  `json:"image"`
	Phones []Phone `gorm:"many2many:phone_categories" json:"phones,omitempty"`
}
