package model

import "time"

type KnowledgeFile struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	Filename  string    `json:"filename,omitempty"`
	URL       *string   `json:"url,omitempty"`
	Size      int64     `json:"size"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
