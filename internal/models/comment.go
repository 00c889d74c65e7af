package models

import "time"

// Comment belongs to a post through PostID.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	PostID    uint      `gorm:"not null;index" json:"post"`
	AuthorID  uint      `gorm:"index" json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}
