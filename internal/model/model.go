package model

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusAttended Status = "attended"
)

type Event struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug,omitempty" json:"slug,omitempty"`
	Date        time.Time `db:"date" json:"date"`
	Address     string    `db:"address,omitempty" json:"address,omitempty"`
	Description string    `db:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type Registration struct {
	ID        int64     `db:"id" json:"id"`
	EventID   int64     `db:"event_id" json:"event_id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Title     string    `db:"title,omitempty" json:"title,omitempty"`
	Email     string    `db:"email,omitempty" json:"email,omitempty"`
	Phone     string    `db:"phone,omitempty" json:"phone,omitempty"`
	DOB       string    `db:"dob,omitempty" json:"dob,omitempty"`
	Gender    string    `db:"gender,omitempty" json:"gender,omitempty"`
	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
