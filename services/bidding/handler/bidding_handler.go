package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"gigflow/internal/models"
	"gigflow/services/bidding/helpers"
	"gigflow/utils"
)

//go:generate mockgen -source=bidding_handler.go -destination=mock_service.go -package=handler

type BiddingServiceInterface interface {
	CreateGig(ctx context.Context, ownerID, title, description string, budget float64) (models.Gig, error)
	ListOpenGigs(ctx context.Context, search string) ([]models.GigWithOwner, error)
	PlaceBid(ctx context.Context, freelancerID, gigID, message string, price float64) (models.Bid, error)
	GetBidsForGig(ctx context.Context, gigID, actingUserID string) ([]models.BidWithFreelancer, error)
}

type HiringServiceInterface interface {
	Hire(ctx context.Context, bidID, actingUserID string) (models.HiredResult, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
	hiring  HiringServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface, hiring HiringServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service, hiring: hiring}
}

// ListGigsHandler handles GET /api/gigs
func (h *BiddingHandler) ListGigsHandler(c *gin.Context) {
	search := c.Query("search")
	gigs, err := h.service.ListOpenGigs(c.Request.Context(), search)
	if err != nil {
		helpers.RespondServiceError(c, "ListGigsHandler", err, map[string]any{"search": search})
		return
	}

	resp := make([]helpers.GigResponse, 0, len(gigs))
	for _, g := range gigs {
		resp = append(resp, helpers.NewGigWithOwnerResponse(g))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "gigs retrieved successfully")
	helpers.LogSuccess("ListGigsHandler", "gigs retrieved successfully", map[string]any{
		"search": search,
		"count":  len(resp),
	})
}

// CreateGigHandler handles POST /api/gigs
func (h *BiddingHandler) CreateGigHandler(c *gin.Context) {
	user, _ := helpers.CurrentUser(c)

	var req helpers.CreateGigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateGigHandler", err)
		return
	}

	gig, err := h.service.CreateGig(c.Request.Context(), user.ID, req.Title, req.Description, req.Budget)
	if err != nil {
		helpers.RespondServiceError(c, "CreateGigHandler", err, map[string]any{"user_id": user.ID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewGigResponse(gig), "gig created successfully")
	helpers.LogSuccess("CreateGigHandler", "gig created successfully", map[string]any{
		"gig_id":  gig.ID,
		"user_id": user.ID,
		"budget":  gig.Budget,
	})
}

// PlaceBidHandler handles POST /api/bids
func (h *BiddingHandler) PlaceBidHandler(c *gin.Context) {
	user, _ := helpers.CurrentUser(c)

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	bid, err := h.service.PlaceBid(c.Request.Context(), user.ID, req.GigID, req.Message, req.Price)
	if err != nil {
		helpers.RespondServiceError(c, "PlaceBidHandler", err, map[string]any{
			"gig_id":  req.GigID,
			"user_id": user.ID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(bid), "bid placed successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid placed successfully", map[string]any{
		"bid_id":  bid.ID,
		"gig_id":  bid.GigID,
		"user_id": user.ID,
		"price":   bid.Price,
	})
}

// GetBidsByGigHandler handles GET /api/bids/:id where id is a gig id
func (h *BiddingHandler) GetBidsByGigHandler(c *gin.Context) {
	user, _ := helpers.CurrentUser(c)
	gigID := c.Param("id")

	bids, err := h.service.GetBidsForGig(c.Request.Context(), gigID, user.ID)
	if err != nil {
		helpers.RespondServiceError(c, "GetBidsByGigHandler", err, map[string]any{
			"gig_id":  gigID,
			"user_id": user.ID,
		})
		return
	}

	resp := make([]helpers.BidResponse, 0, len(bids))
	for _, b := range bids {
		resp = append(resp, helpers.NewBidWithFreelancerResponse(b))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByGigHandler", "bids retrieved successfully", map[string]any{
		"gig_id": gigID,
		"count":  len(resp),
	})
}

// HireHandler handles PATCH /api/bids/:id/hire where id is a bid id
func (h *BiddingHandler) HireHandler(c *gin.Context) {
	user, _ := helpers.CurrentUser(c)
	bidID := c.Param("id")

	result, err := h.hiring.Hire(c.Request.Context(), bidID, user.ID)
	if err != nil {
		helpers.RespondServiceError(c, "HireHandler", err, map[string]any{
			"bid_id":  bidID,
			"user_id": user.ID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewHiredBidResponse(result), "Freelancer hired successfully")
	helpers.LogSuccess("HireHandler", "freelancer hired", map[string]any{
		"bid_id":        result.Bid.ID,
		"gig_id":        result.Gig.ID,
		"freelancer_id": result.Bid.FreelancerID,
		"rejected":      result.Rejected,
	})
}
