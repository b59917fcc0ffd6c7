package models

import (
	"strings"
	"time"
)

// PaperRecord is a row of the crawled paper catalogue. Vectors live in Qdrant;
// EmbeddedAt marks rows that have already been indexed.
type PaperRecord struct {
	ID         uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title      string     `gorm:"type:text;not null" json:"title"`
	Abstract   string     `gorm:"type:text" json:"abstract"`
	Authors    string     `gorm:"type:text" json:"authors"`
	Year       int        `json:"year"`
	Venue      string     `gorm:"type:text" json:"venue"`
	URL        string     `gorm:"type:text" json:"url"`
	Category   string     `gorm:"type:text;index" json:"category"`
	EmbeddedAt *time.Time `gorm:"type:timestamp;index" json:"embedded_at,omitempty"`
	CreatedAt  time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (PaperRecord) TableName() string {
	return "papers"
}

// AuthorList splits the stored author string ("A; B; C").
func (p *PaperRecord) AuthorList() []string {
	return SplitAuthors(p.Authors)
}

// ToPaper converts a catalogue row into the descriptor returned to clients.
func (p *PaperRecord) ToPaper() Paper {
	return Paper{
		Title:    p.Title,
		Authors:  p.AuthorList(),
		Abstract: p.Abstract,
		Year:     p.Year,
		Venue:    p.Venue,
		URL:      p.URL,
	}
}

func SplitAuthors(authors string) []string {
	var out []string
	for _, name := range strings.Split(authors, ";") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// EmbeddingStats summarises catalogue indexing progress.
type EmbeddingStats struct {
	Total    int64 `json:"total"`
	Embedded int64 `json:"embedded"`
	Pending  int64 `json:"pending"`
}
