package domain

import "time"

// Item type and status values. An item's status starts out equal to its type
// and becomes "claimed" only through an approved claim.
const (
	ItemTypeLost  = "lost"
	ItemTypeFound = "found"

	ItemStatusLost    = "lost"
	ItemStatusFound   = "found"
	ItemStatusClaimed = "claimed"
)

type Item struct {
	ItemID        string    `json:"id" dynamodbav:"item_id"`
	Title         string    `json:"title" dynamodbav:"title"`
	Description   string    `json:"description" dynamodbav:"description"`
	Category      string    `json:"category" dynamodbav:"category"`
	Location      string    `json:"location" dynamodbav:"location"`
	DateLostFound time.Time `json:"date_lost_found" dynamodbav:"date_lost_found"`
	Type          string    `json:"type" dynamodbav:"type"`
	Status        string    `json:"status" dynamodbav:"status"`
	Images        []string  `json:"images" dynamodbav:"images"`
	UserID        string    `json:"user_id" dynamodbav:"user_id"`
	UserEmail     string    `json:"user_email" dynamodbav:"user_email"`
	UserName      string    `json:"user_name" dynamodbav:"user_name"`
	ContactEmail  string    `json:"contact_email" dynamodbav:"contact_email"`
	ContactPhone  *string   `json:"contact_phone,omitempty" dynamodbav:"contact_phone"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateItemRequest struct {
	Title         string   `json:"title" validate:"required,max=100"`
	Description   string   `json:"description" validate:"max=1000"`
	Category      string   `json:"category" validate:"required,max=50"`
	Location      string   `json:"location" validate:"required,max=200"`
	DateLostFound string   `json:"date_lost_found" validate:"required"` // expected format: YYYY-MM-DD
	Type          string   `json:"type" validate:"required,oneof=lost found"`
	Images        []string `json:"images" validate:"max=5"`
	ContactEmail  string   `json:"contact_email" validate:"required,email"`
	ContactPhone  *string  `json:"contact_phone"`
}

type UpdateItemRequest struct {
	Title         *string  `json:"title" validate:"omitempty,max=100"`
	Description   *string  `json:"description" validate:"omitempty,max=1000"`
	Category      *string  `json:"category" validate:"omitempty,max=50"`
	Location      *string  `json:"location" validate:"omitempty,max=200"`
	DateLostFound *string  `json:"date_lost_found"` // expected format: YYYY-MM-DD
	Images        []string `json:"images" validate:"omitempty,max=5"`
	ContactEmail  *string  `json:"contact_email" validate:"omitempty,email"`
	ContactPhone  *string  `json:"contact_phone"`
}

// ItemFilter narrows a browse listing. Zero values mean "no constraint".
type ItemFilter struct {
	Type     string // lost | found
	Status   string // lost | found | claimed
	Category string
	Location string // substring match
	Search   string // free text over title/description/category/location
	DateFrom *time.Time
	DateTo   *time.Time
}
