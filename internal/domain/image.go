package domain

import "time"

// Image records an uploaded item photo. The public URL is what gets stored on
// Item.Images; the object key is kept so the owner can delete the blob later.
type Image struct {
	ImageID          string    `json:"id" dynamodbav:"image_id"`
	Object           string    `json:"object" dynamodbav:"object"` // S3 key
	URL              string    `json:"url" dynamodbav:"url"`
	Size             int64     `json:"size" dynamodbav:"size"`
	ContentType      string    `json:"content_type" dynamodbav:"content_type"`
	UploadedByUserID string    `json:"uploaded_by_user_id" dynamodbav:"uploaded_by_user_id"`
	CreatedAt        time.Time `json:"created" dynamodbav:"created_at"`
}
