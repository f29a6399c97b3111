package model

import (
	"time"
)

// Claim represents one insurance claim row.
type Claim struct {
	ID           int64     `json:"id"`
	ClaimNumber  string    `json:"claim_number"`
	ClaimantName string    `json:"claimant_name"`
	Amount       float64   `json:"amount"`
	Status       string    `json:"status"` // free-form string, "pending" by default
	DateFiled    string    `json:"date_filed,omitempty"`
	Description  string    `json:"description,omitempty"`
	IsApproved   bool      `json:"is_approved"`
	CreatedAt    time.Time `json:"created_at"`
}

// StatusPending is assigned when a claim is created without a status.
const StatusPending = "pending"

// DateLayout is the on-the-wire format for date_filed.
const DateLayout = "2006-01-02"

// ClaimCreate is the request payload for creating a claim.
// Amount is a pointer so a zero amount still passes the required check.
type ClaimCreate struct {
	ClaimNumber  string   `json:"claim_number" binding:"required"`
	ClaimantName string   `json:"claimant_name" binding:"required"`
	Amount       *float64 `json:"amount" binding:"required"`
	Status       string   `json:"status"`
	DateFiled    string   `json:"date_filed"`
	Description  string   `json:"description"`
	IsApproved   bool     `json:"is_approved"`
}

// ClaimLog is one row of the verbose creation log.
type ClaimLog struct {
	ID        int64     `json:"id"`
	ClaimID   *int64    `json:"claim_id"`
	Action    string    `json:"action"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
