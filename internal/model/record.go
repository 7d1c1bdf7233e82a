package model

import "time"

// Record is a generic entity held in the record store. The envelope fields
// are authoritative for ownership checks; everything domain-specific lives
// in the open Fields map.
type Record struct {
	ID             string         `json:"id"`
	CreatedDate    time.Time      `json:"created_date"`
	UpdatedDate    time.Time      `json:"updated_date"`
	CreatedBy      string         `json:"created_by"`
	CreatedByEmail string         `json:"created_by_email"`
	Fields         map[string]any `json:"fields"`
}
