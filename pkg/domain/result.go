package domain

import "time"

// RecipeResult is the terminal artifact produced by the generator.
type RecipeResult struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Ingredients []string  `json:"ingredients,omitempty"`
	ImageURL    string    `json:"image_url"`
	QRPayload   string    `json:"qr_payload"`
	CreatedAt   time.Time `json:"created_at"`
}

// Channel names a delivery collaborator.
type Channel string

const (
	ChannelPrint Channel = "print"
	ChannelSave  Channel = "save"
	ChannelEmail Channel = "email"
)

// AllChannels lists every delivery channel in display order.
var AllChannels = []Channel{ChannelPrint, ChannelSave, ChannelEmail}

// Notification is the user-facing outcome of a single delivery.
type Notification struct {
	Channel Channel `json:"channel"`
	Success bool    `json:"success"`
	Message string  `json:"message"`
}
