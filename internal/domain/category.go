package domain

import "time"

// Category is an admin-managed vocabulary entry for item classification.
type Category struct {
	CategoryID string    `json:"id" dynamodbav:"category_id"`
	Name       string    `json:"name" dynamodbav:"name"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CategoryInput struct {
	Name string `json:"name" validate:"required,max=50"`
}
