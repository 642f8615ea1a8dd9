package models

import "time"

// Article is a published or planned content piece on the company blog.
type Article struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title      string `json:"title" gorm:"not null"`
	Subtitle   string `json:"subtitle,omitempty"`
	Text       string `json:"text" gorm:"type:text"`
	PictureURL string `json:"picture_url,omitempty"`

	// Content management
	ContentStatus string     `json:"content_status" gorm:"index;default:'draft'"` // draft, review, published, archived
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	AuthorName    string     `json:"author_name,omitempty"`

	// SEO & web
	MetaDescription string `json:"meta_description,omitempty"`
	Slug            string `json:"slug,omitempty" gorm:"uniqueIndex"`

	Category string `json:"category,omitempty" gorm:"index"`
	Tags     string `json:"tags,omitempty"` // JSON string with tags

	ViewCount int `json:"view_count" gorm:"default:0"`
}

func (Article) TableName() string { return "articles" }
