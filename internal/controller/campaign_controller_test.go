package controller_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rishikeshydv/bulk-email-sender/internal/apperrors"
	"github.com/rishikeshydv/bulk-email-sender/internal/controller"
	"github.com/rishikeshydv/bulk-email-sender/internal/model"
)

type stubCampaignStore struct {
	mockCampaignRepo
	campaigns []model.Campaign
	stats     map[string]map[string]int
}

func (m *stubCampaignStore) List() ([]model.Campaign, error) { return m.campaigns, nil }

func (m *stubCampaignStore) Stats(id string) (map[string]int, error) {
	return m.stats[id], nil
}

func (m *stubCampaignStore) GetByID(id string) (*model.Campaign, error) {
	for i := range m.campaigns {
		if m.campaigns[i].ID == id {
			return &m.campaigns[i], nil
		}
	}
	return nil, apperrors.NewCampaignNotFound(id)
}

type stubDeliveryStore struct {
	mockDeliveryRepo
	byCampaign map[string][]model.Delivery
}

func (m *stubDeliveryStore) ListByCampaign(id string) ([]model.Delivery, error) {
	return m.byCampaign[id], nil
}

func newCampaignRouter() (*stubCampaignStore, http.Handler) {
	now := time.Now()
	repo := &stubCampaignStore{
		campaigns: []model.Campaign{
			{ID: "camp-2", Subject: "Second", Body: "b", CreatedAt: now},
			{ID: "camp-1", Subject: "First", Body: "b", CreatedAt: now.Add(-time.Hour)},
		},
		stats: map[string]map[string]int{
			"camp-2": {"SENT": 3, "FAILED": 1},
			"camp-1": {"SENT": 2},
		},
	}
	deliveries := &stubDeliveryStore{
		byCampaign: map[string][]model.Delivery{
			"camp-1": {
				{ID: "d1", CampaignID: "camp-1", RecipientID: "a", Status: model.StatusSent},
				{ID: "d2", CampaignID: "camp-1", RecipientID: "b", Status: model.StatusSent},
			},
		},
	}
	ctrl := &controller.CampaignController{
		CampaignRepo: repo,
		DeliveryRepo: deliveries,
		Logger:       zerolog.Nop(),
	}

	r := chi.NewRouter()
	r.Get("/campaigns", ctrl.List)
	r.Get("/campaigns/{id}", ctrl.Get)
	return repo, r
}

func TestListCampaignsWithStats(t *testing.T) {
	_, router := newCampaignRouter()

	req := httptest.NewRequest(http.MethodGet, "/campaigns", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var res struct {
		Data []struct {
			ID    string         `json:"id"`
			Stats map[string]int `json:"stats"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(res.Data) != 2 {
		t.Fatalf("campaigns = %d, want 2", len(res.Data))
	}
	if res.Data[0].ID != "camp-2" {
		t.Errorf("first campaign = %s, want camp-2", res.Data[0].ID)
	}
	if res.Data[0].Stats["SENT"] != 3 || res.Data[0].Stats["FAILED"] != 1 {
		t.Errorf("camp-2 stats = %v", res.Data[0].Stats)
	}
}

func TestGetCampaignWithDeliveries(t *testing.T) {
	_, router := newCampaignRouter()

	req := httptest.NewRequest(http.MethodGet, "/campaigns/camp-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var res struct {
		Campaign   model.Campaign   `json:"campaign"`
		Deliveries []model.Delivery `json:"deliveries"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Campaign.ID != "camp-1" {
		t.Errorf("campaign id = %s, want camp-1", res.Campaign.ID)
	}
	if len(res.Deliveries) != 2 {
		t.Errorf("deliveries = %d, want 2", len(res.Deliveries))
	}
}

func TestGetCampaignNotFound(t *testing.T) {
	_, router := newCampaignRouter()

	req := httptest.NewRequest(http.MethodGet, "/campaigns/ghost", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var errBody struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&errBody); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if errBody.Error == "" {
		t.Error("404 body must carry an error message")
	}
}
