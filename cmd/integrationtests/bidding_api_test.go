package integrationtests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	t.Parallel()
	app := SetupTestApp(t)

	alice := app.Register(t, "Alice Client", "Alice@Example.com")

	resp, w := alice.Do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, w.StatusCode)
	me := Data(t, resp)
	require.Equal(t, "alice@example.com", me["email"])
	require.NotContains(t, me, "password")

	// duplicate email, any case
	_, w = app.NewSession(t).Do(http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Other", "email": "ALICE@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusConflict, w.StatusCode)

	guest := app.NewSession(t)
	_, w = guest.Do(http.MethodPost, "/api/auth/login", map[string]string{"email": "alice@example.com", "password": "wrong-password"})
	require.Equal(t, http.StatusUnauthorized, w.StatusCode)

	_, w = guest.Do(http.MethodPost, "/api/auth/login", map[string]string{"email": "alice@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, w.StatusCode)
	_, w = guest.Do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, w.StatusCode)

	_, w = guest.Do(http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.StatusCode)
	_, w = guest.Do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusUnauthorized, w.StatusCode)
}

func TestCreateGigAndPlaceBid(t *testing.T) {
	t.Parallel()
	app := SetupTestApp(t)

	client := app.Register(t, "Alice Client", "client@example.com")
	bob := app.Register(t, "Bob Freelancer", "bob@example.com")

	tests := []struct {
		name       string
		request    any
		wantStatus int
	}{
		{name: "Valid_Gig", request: map[string]any{"title": "Logo", "description": "Need a logo", "budget": 500}, wantStatus: http.StatusCreated},
		{name: "Missing_Title", request: map[string]any{"description": "Need a logo", "budget": 500}, wantStatus: http.StatusBadRequest},
		{name: "Zero_Budget", request: map[string]any{"title": "Logo", "description": "Need a logo", "budget": 0}, wantStatus: http.StatusBadRequest},
		{name: "Invalid_JSON", request: "{title: 'missing quotes'}", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, w := client.Do(http.MethodPost, "/api/gigs", tt.request)
			require.Equal(t, tt.wantStatus, w.StatusCode)
		})
	}

	_, w := app.NewSession(t).Do(http.MethodPost, "/api/gigs", map[string]any{"title": "Anon", "description": "x", "budget": 1})
	require.Equal(t, http.StatusUnauthorized, w.StatusCode)

	resp, w := app.NewSession(t).Do(http.MethodGet, "/api/gigs?search=LOG", nil)
	require.Equal(t, http.StatusOK, w.StatusCode)
	gigs := List(t, resp)
	require.Len(t, gigs, 1)
	gig := gigs[0].(map[string]any)
	require.Equal(t, "Logo", gig["title"])
	require.Equal(t, "open", gig["status"])
	require.Equal(t, "Alice Client", gig["owner"].(map[string]any)["name"])
	gigID := gig["id"].(string)

	resp, w = bob.Do(http.MethodPost, "/api/bids", map[string]any{"gigId": gigID, "message": "I can do it", "price": 450})
	require.Equal(t, http.StatusCreated, w.StatusCode)
	bid := Data(t, resp)
	require.Equal(t, "pending", bid["status"])
	require.Equal(t, bob.userID, bid["freelancerId"])
	_, err := time.Parse(time.RFC3339, bid["createdAt"].(string))
	require.NoError(t, err)

	// the owner may not bid on their own gig
	_, w = client.Do(http.MethodPost, "/api/bids", map[string]any{"gigId": gigID, "message": "me", "price": 10})
	require.Equal(t, http.StatusForbidden, w.StatusCode)

	_, w = bob.Do(http.MethodPost, "/api/bids", map[string]any{"gigId": "00000000-0000-0000-0000-000000000000", "price": 10})
	require.Equal(t, http.StatusNotFound, w.StatusCode)

	// only the owner sees the bids
	_, w = bob.Do(http.MethodGet, "/api/bids/"+gigID, nil)
	require.Equal(t, http.StatusForbidden, w.StatusCode)

	resp, w = client.Do(http.MethodGet, "/api/bids/"+gigID, nil)
	require.Equal(t, http.StatusOK, w.StatusCode)
	bids := List(t, resp)
	require.Len(t, bids, 1)
	require.Equal(t, "bob@example.com", bids[0].(map[string]any)["freelancer"].(map[string]any)["email"])
}

func TestHireFlow(t *testing.T) {
	t.Parallel()
	app := SetupTestApp(t)

	client := app.Register(t, "Alice Client", "client@example.com")
	bob := app.Register(t, "Bob Freelancer", "bob@example.com")
	charlie := app.Register(t, "Charlie Dev", "charlie@example.com")

	resp, w := client.Do(http.MethodPost, "/api/gigs", map[string]any{"title": "Modern Logo Design", "description": "Minimalist", "budget": 500})
	require.Equal(t, http.StatusCreated, w.StatusCode)
	gigID := Data(t, resp)["id"].(string)

	resp, w = bob.Do(http.MethodPost, "/api/bids", map[string]any{"gigId": gigID, "message": "pick me", "price": 450})
	require.Equal(t, http.StatusCreated, w.StatusCode)
	bobBid := Data(t, resp)["id"].(string)

	resp, w = charlie.Do(http.MethodPost, "/api/bids", map[string]any{"gigId": gigID, "message": "or me", "price": 500})
	require.Equal(t, http.StatusCreated, w.StatusCode)
	charlieBid := Data(t, resp)["id"].(string)

	ws := bob.Dial()

	// freelancers cannot hire
	_, w = bob.Do(http.MethodPatch, "/api/bids/"+bobBid+"/hire", nil)
	require.Equal(t, http.StatusForbidden, w.StatusCode)

	resp, w = client.Do(http.MethodPatch, "/api/bids/"+bobBid+"/hire", nil)
	require.Equal(t, http.StatusOK, w.StatusCode)
	require.Equal(t, "Freelancer hired successfully", resp["message"])
	hired := Data(t, resp)
	require.Equal(t, "hired", hired["status"])
	require.Equal(t, "Bob Freelancer", hired["freelancer"].(map[string]any)["name"])

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := ws.ReadMessage()
	require.NoError(t, err)
	var event struct {
		Event string            `json:"event"`
		Data  map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(frame, &event))
	require.Equal(t, "hired", event.Event)
	require.Equal(t, gigID, event.Data["gigId"])
	require.Equal(t, "You have been hired for Modern Logo Design", event.Data["message"])

	resp, w = client.Do(http.MethodGet, "/api/bids/"+gigID, nil)
	require.Equal(t, http.StatusOK, w.StatusCode)
	statuses := map[string]string{}
	for _, b := range List(t, resp) {
		bid := b.(map[string]any)
		statuses[bid["id"].(string)] = bid["status"].(string)
	}
	require.Equal(t, map[string]string{bobBid: "hired", charlieBid: "rejected"}, statuses)

	// the gig left the open listing
	resp, w = app.NewSession(t).Do(http.MethodGet, "/api/gigs", nil)
	require.Equal(t, http.StatusOK, w.StatusCode)
	require.Empty(t, List(t, resp))

	// a gig is hired at most once
	_, w = client.Do(http.MethodPatch, "/api/bids/"+charlieBid+"/hire", nil)
	require.Equal(t, http.StatusBadRequest, w.StatusCode)
	_, w = client.Do(http.MethodPatch, "/api/bids/"+bobBid+"/hire", nil)
	require.Equal(t, http.StatusBadRequest, w.StatusCode)

	// and takes no more bids
	_, w = charlie.Do(http.MethodPost, "/api/bids", map[string]any{"gigId": gigID, "message": "late", "price": 100})
	require.Equal(t, http.StatusBadRequest, w.StatusCode)

	_, w = client.Do(http.MethodPatch, "/api/bids/not-a-bid/hire", nil)
	require.Equal(t, http.StatusBadRequest, w.StatusCode)
}

func TestHireOfflineFreelancerStillSucceeds(t *testing.T) {
	t.Parallel()
	app := SetupTestApp(t)

	client := app.Register(t, "Alice Client", "client@example.com")
	bob := app.Register(t, "Bob Freelancer", "bob@example.com")

	resp, _ := client.Do(http.MethodPost, "/api/gigs", map[string]any{"title": "SEO", "description": "Posts", "budget": 300})
	gigID := Data(t, resp)["id"].(string)
	resp, _ = bob.Do(http.MethodPost, "/api/bids", map[string]any{"gigId": gigID, "price": 250})
	bidID := Data(t, resp)["id"].(string)

	_, w := client.Do(http.MethodPatch, "/api/bids/"+bidID+"/hire", nil)
	require.Equal(t, http.StatusOK, w.StatusCode)

	gig, err := app.repo.GetGig(context.Background(), gigID)
	require.NoError(t, err)
	require.Equal(t, "assigned", string(gig.Status))
}
