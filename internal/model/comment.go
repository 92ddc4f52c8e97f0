package model

import "time"

// Comment represents a review comment on an idea.
type Comment struct {
	ID        int64     `json:"id"`
	IdeaID    string    `json:"idea_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
