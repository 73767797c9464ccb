package models

import "time"

// GigStatus is the lifecycle state of a gig. It only ever moves open -> assigned.
type GigStatus string

const (
	GigOpen     GigStatus = "open"
	GigAssigned GigStatus = "assigned"
)

// BidStatus is the lifecycle state of a bid.
type BidStatus string

const (
	BidPending  BidStatus = "pending"
	BidHired    BidStatus = "hired"
	BidRejected BidStatus = "rejected"
)

// EventHired is the live-channel event sent to a freelancer who was hired.
const EventHired = "hired"

// User represents a marketplace participant (client or freelancer)
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	Name         string    `gorm:"not null" json:"name" bson:"name"`
	Email        string    `gorm:"size:320;not null;uniqueIndex" json:"email" bson:"email"`
	PasswordHash string    `gorm:"not null" json:"-" bson:"password_hash"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// Summary returns the public identity fields of the user.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserSummary is the identity shape embedded in gig and bid responses
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Gig represents a posted unit of work owned by a client
type Gig struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	Title       string    `gorm:"not null" json:"title" bson:"title"`
	Description string    `gorm:"not null" json:"description" bson:"description"`
	Budget      float64   `gorm:"not null" json:"budget" bson:"budget"`
	OwnerID     string    `gorm:"size:36;not null;index" json:"owner_id" bson:"owner_id"`
	Status      GigStatus `gorm:"type:varchar(20);not null;index" json:"status" bson:"status"`
	CreatedAt   time.Time `gorm:"index" json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// Bid represents a freelancer's priced proposal against a gig
type Bid struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	GigID        string    `gorm:"size:36;not null;index:idx_bids_gig_status" json:"gig_id" bson:"gig_id"`
	FreelancerID string    `gorm:"size:36;not null;index" json:"freelancer_id" bson:"freelancer_id"`
	Message      string    `json:"message" bson:"message"`
	Price        float64   `gorm:"not null" json:"price" bson:"price"`
	Status       BidStatus `gorm:"type:varchar(20);not null;index:idx_bids_gig_status" json:"status" bson:"status"`
	CreatedAt    time.Time `gorm:"index" json:"created_at" bson:"created_at"`
}

// HiredPayload is the body of the "hired" live event.
type HiredPayload struct {
	GigID    string `json:"gigId"`
	GigTitle string `json:"gigTitle"`
	Message  string `json:"message"`
}

// HiredResult is what a successful hire returns to the caller.
type HiredResult struct {
	Bid        Bid
	Gig        Gig
	Freelancer UserSummary
	Rejected   int64
}

// GigWithOwner is a gig with the public identity of the client who posted it.
type GigWithOwner struct {
	Gig
	Owner UserSummary
}

// BidWithFreelancer is a bid with the public identity of its bidder.
type BidWithFreelancer struct {
	Bid
	Freelancer UserSummary
}
