package models

import "time"

// Client is a contact record together with its history, as loaded by the store.
// Interactions and StatusChanges are ordered most recent first.
type Client struct {
	ID            int            `json:"id"`
	Name          string         `json:"nombre"`
	Phone         string         `json:"telefono,omitempty"`
	Email         string         `json:"email,omitempty"`
	Company       string         `json:"empresa,omitempty"`
	Status        Status         `json:"estatus"`
	NextContactAt *time.Time     `json:"proximoContacto,omitempty"`
	LastContactAt *time.Time     `json:"ultimoContacto,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	Interactions  []Interaction  `json:"interactions,omitempty"`
	StatusChanges []StatusChange `json:"statusChanges,omitempty"`
}

// HasCompleteData reports whether both email and company are present.
func (c *Client) HasCompleteData() bool {
	return c.Email != "" && c.Company != ""
}

// MissingContactData reports whether both email and company are absent.
func (c *Client) MissingContactData() bool {
	return c.Email == "" && c.Company == ""
}

// Interaction is a single logged touch with a client.
type Interaction struct {
	ID        int       `json:"id"`
	ClientID  int       `json:"clientId"`
	Type      string    `json:"tipo"`
	Content   string    `json:"contenido,omitempty"`
	Result    string    `json:"resultado,omitempty"`
	Outcome   Outcome   `json:"outcome,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// StatusChange is an audit entry for a status transition.
type StatusChange struct {
	ID         int       `json:"id"`
	ClientID   int       `json:"clientId"`
	FromStatus Status    `json:"fromStatus"`
	ToStatus   Status    `json:"toStatus"`
	CreatedAt  time.Time `json:"createdAt"`
}

// LogInteractionRequest is the payload for recording an interaction.
type LogInteractionRequest struct {
	Type        string     `json:"tipo" validate:"required,max=50"`
	Content     string     `json:"contenido" validate:"required,max=5000"`
	Result      string     `json:"resultado,omitempty" validate:"max=200"`
	Outcome     Outcome    `json:"outcome,omitempty" validate:"omitempty,oneof=respuesta silencio avance rechazo"`
	NewStatus   string     `json:"nuevoEstatus,omitempty"`
	NextContact *time.Time `json:"proximoContacto,omitempty"`
}
