package model

import "time"

type Ticket struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Answer    *string   `json:"answer"`
}
