package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a blog entry. AuthorID is a plain indexed column; it is not checked
// against the users table.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `json:"title"`
	Content  string `gorm:"type:text" json:"content"`
	Category string `gorm:"index" json:"category"`
	// Tags is the API view of TagRows.
	Tags      []string  `gorm:"-" json:"tags"`
	TagRows   []PostTag `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID  uint      `gorm:"index" json:"author"`
	Likes     int       `gorm:"not null;default:0" json:"likes"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// PostTag stores one tag of a post. A post carries each tag at most once.
type PostTag struct {
	ID     uint   `gorm:"primaryKey"`
	PostID uint   `gorm:"not null;uniqueIndex:idx_post_tags_post_name"`
	Name   string `gorm:"not null;index;uniqueIndex:idx_post_tags_post_name"`
}

// AfterFind fills Tags from the preloaded tag rows.
func (p *Post) AfterFind(_ *gorm.DB) error {
	p.Tags = TagNames(p.TagRows)
	return nil
}

// TagNames returns the names of rows in order, never nil.
func TagNames(rows []PostTag) []string {
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}
	return names
}

// TagRowsFor builds tag rows for names, dropping blanks and duplicates while
// keeping first-seen order.
func TagRowsFor(names []string) []PostTag {
	seen := make(map[string]struct{}, len(names))
	rows := make([]PostTag, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		rows = append(rows, PostTag{Name: name})
	}
	return rows
}
