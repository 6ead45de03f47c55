package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Client is a CRM contact owned by exactly one user.
type Client struct {
	bun.BaseModel `bun:"table:clients,alias:c"`

	ID          string          `bun:"id,pk,type:uuid" json:"id"`
	UserID      string          `bun:"user_id,notnull" json:"userId"`
	Type        string          `bun:"type,notnull" json:"type"`
	FirstName   string          `bun:"first_name,notnull" json:"firstName"`
	LastName    string          `bun:"last_name,notnull" json:"lastName"`
	Email       string          `bun:"email,notnull" json:"email"`
	Phone       *string         `bun:"phone" json:"phone"`
	Stage       *string         `bun:"stage" json:"stage"`
	Status      *string         `bun:"status" json:"status"`
	LeadScore   *int            `bun:"lead_score" json:"leadScore"`
	Source      *string         `bun:"source" json:"source"`
	Preferences json.RawMessage `bun:"preferences,type:jsonb" json:"preferences"`
	Notes       *string         `bun:"notes" json:"notes"`
	CreatedAt   time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time       `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

// ValidateForCreate verifies the record is well formed before insertion.
func (c *Client) ValidateForCreate() error {
	if _, err := uuid.Parse(c.ID); err != nil {
		return errors.New("id must be a valid UUID")
	}
	if c.UserID == "" {
		return errors.New("user_id is required")
	}
	if c.Type == "" || c.FirstName == "" || c.LastName == "" || c.Email == "" {
		return errors.New("type, first_name, last_name and email are required")
	}
	return nil
}

// ClientPatch carries the fields of a partial update; nil means "leave unchanged".
type ClientPatch struct {
	Type        *string
	FirstName   *string
	LastName    *string
	Email       *string
	Phone       *string
	Stage       *string
	Status      *string
	LeadScore   *int
	Source      *string
	Preferences json.RawMessage
	Notes       *string
}

// Columns maps the set fields of the patch to column values.
func (p ClientPatch) Columns() map[string]any {
	cols := map[string]any{}
	setString(cols, "type", p.Type)
	setString(cols, "first_name", p.FirstName)
	setString(cols, "last_name", p.LastName)
	setString(cols, "email", p.Email)
	setString(cols, "phone", p.Phone)
	setString(cols, "stage", p.Stage)
	setString(cols, "status", p.Status)
	if p.LeadScore != nil {
		cols["lead_score"] = *p.LeadScore
	}
	setString(cols, "source", p.Source)
	setJSON(cols, "preferences", p.Preferences)
	setString(cols, "notes", p.Notes)
	return cols
}

// setJSON stores raw as JSON text; an explicit null clears the column.
func setJSON(cols map[string]any, column string, raw json.RawMessage) {
	switch {
	case raw == nil:
	case string(raw) == "null":
		cols[column] = nil
	default:
		cols[column] = string(raw)
	}
}

func setString(cols map[string]any, column string, v *string) {
	if v != nil {
		cols[column] = *v
	}
}
