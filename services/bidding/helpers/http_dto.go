package helpers

import (
	"time"

	"gigflow/internal/models"
)

// Request DTOs
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateGigRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Budget      float64 `json:"budget" binding:"required,gt=0"`
}

type PlaceBidRequest struct {
	GigID   string  `json:"gigId" binding:"required"`
	Message string  `json:"message"`
	Price   float64 `json:"price" binding:"required,gt=0"`
}

// Response DTOs
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type GigResponse struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Budget      float64       `json:"budget"`
	OwnerID     string        `json:"ownerId"`
	Owner       *UserResponse `json:"owner,omitempty"`
	Status      string        `json:"status"`
	CreatedAt   string        `json:"createdAt"`
}

type BidResponse struct {
	ID           string        `json:"id"`
	GigID        string        `json:"gigId"`
	FreelancerID string        `json:"freelancerId"`
	Freelancer   *UserResponse `json:"freelancer,omitempty"`
	Message      string        `json:"message"`
	Price        float64       `json:"price"`
	Status       string        `json:"status"`
	CreatedAt    string        `json:"createdAt"`
}

func NewUserResponse(u models.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

func summaryResponse(s models.UserSummary) *UserResponse {
	return &UserResponse{ID: s.ID, Name: s.Name, Email: s.Email}
}

func NewGigResponse(g models.Gig) GigResponse {
	return GigResponse{
		ID:          g.ID,
		Title:       g.Title,
		Description: g.Description,
		Budget:      g.Budget,
		OwnerID:     g.OwnerID,
		Status:      string(g.Status),
		CreatedAt:   g.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func NewGigWithOwnerResponse(g models.GigWithOwner) GigResponse {
	resp := NewGigResponse(g.Gig)
	resp.Owner = summaryResponse(g.Owner)
	return resp
}

func NewBidResponse(b models.Bid) BidResponse {
	return BidResponse{
		ID:           b.ID,
		GigID:        b.GigID,
		FreelancerID: b.FreelancerID,
		Message:      b.Message,
		Price:        b.Price,
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func NewBidWithFreelancerResponse(b models.BidWithFreelancer) BidResponse {
	resp := NewBidResponse(b.Bid)
	resp.Freelancer = summaryResponse(b.Freelancer)
	return resp
}

// NewHiredBidResponse shapes the hire result as the hired bid with its freelancer.
func NewHiredBidResponse(r models.HiredResult) BidResponse {
	return NewBidWithFreelancerResponse(models.BidWithFreelancer{Bid: r.Bid, Freelancer: r.Freelancer})
}
