package domain

import "time"

// Claim status values. A claim is active while pending or approved.
// Owner-rejected claims are deleted outright; cascade-rejected claims are
// kept with status "rejected" so the claimer can see why they lost.
const (
	ClaimStatusPending  = "pending"
	ClaimStatusApproved = "approved"
	ClaimStatusRejected = "rejected"
)

type Claim struct {
	ClaimID           string     `json:"id" dynamodbav:"claim_id"`
	ItemID            string     `json:"item_id" dynamodbav:"item_id"`
	ClaimerID         string     `json:"claimer_id" dynamodbav:"claimer_id"`
	ClaimerEmail      string     `json:"claimer_email" dynamodbav:"claimer_email"`
	ClaimerName       string     `json:"claimer_name" dynamodbav:"claimer_name"`
	Reason            string     `json:"reason" dynamodbav:"reason"`
	UniqueIdentifiers string     `json:"unique_identifiers" dynamodbav:"unique_identifiers"`
	Status            string     `json:"status" dynamodbav:"status"`
	CreatedAt         time.Time  `json:"created" dynamodbav:"created_at"`
	RespondedAt       *time.Time `json:"responded_at,omitempty" dynamodbav:"responded_at"`
}

// Active reports whether the claim still counts against the
// one-active-claim-per-user-per-item rule.
func (c *Claim) Active() bool {
	return c.Status == ClaimStatusPending || c.Status == ClaimStatusApproved
}

type SubmitClaimRequest struct {
	Reason            string `json:"reason" validate:"required,max=1000"`
	UniqueIdentifiers string `json:"unique_identifiers" validate:"max=1000"`
}

type RespondClaimRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
}
