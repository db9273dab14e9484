package models

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Dialect        Dialect   `json:"dialect"`
	Design         Design    `json:"design"`
	AIConversation string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Prepare fills the defaults a new project row needs.
func (p *Project) Prepare() {
	if p.ID == uuid.Nil {
		p.ID = uuid.Must(uuid.NewV7())
	}
	if p.Dialect == "" {
		p.Dialect = DialectGeneral
	}
	if p.Design.ID == "" {
		p.Design.ID = p.ID.String()
	}
	if p.Design.Tables == nil {
		p.Design.Tables = []Table{}
	}
	if p.Design.Relationships == nil {
		p.Design.Relationships = []ForeignKey{}
	}
}
