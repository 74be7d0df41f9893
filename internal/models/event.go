package models

import "time"

// Event is one entry of the chapter's event catalog.
// Date is YYYY-MM-DD and Time is HH:MM, both in the display timezone.
type Event struct {
	ID          uint      `gorm:"primaryKey;autoIncrement:false" json:"id" yaml:"id"`
	Position    int       `gorm:"not null;default:0;index" json:"-" yaml:"-"`
	Title       string    `gorm:"not null" json:"title" yaml:"title"`
	Date        string    `gorm:"not null;size:10" json:"date" yaml:"date"`
	Time        string    `gorm:"not null;size:5" json:"time" yaml:"time"`
	Location    string    `gorm:"not null;default:''" json:"location" yaml:"location"`
	Category    string    `gorm:"not null;default:'';index" json:"category" yaml:"category"`
	Description string    `gorm:"type:text" json:"description" yaml:"description"`
	Attendees   int       `gorm:"not null;default:0" json:"attendees" yaml:"attendees"`
	CreatedAt   time.Time `json:"-" yaml:"-"`
	UpdatedAt   time.Time `json:"-" yaml:"-"`
}
