package airdrop

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"airdrop-ledger/pkg/middleware"
	"airdrop-ledger/services/campaign"
	"airdrop-ledger/services/wallet"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type fakeSequence struct{}

func (fakeSequence) NextCampaignCode(context.Context) (string, error) {
	return "CMP-TEST", nil
}

func newTestRouter(t *testing.T, f *fixture) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	h := NewHandler(HandlerParams{
		Orchestrator: f.o,
		Calculator:   wallet.NewCalculator(wallet.Params{Transactions: f.txs}),
		Txs:          f.txs,
		Campaigns:    campaign.NewService(campaign.ServiceParams{Store: f.campaigns, Node: node, Seq: fakeSequence{}}),
		Views:        f.views,
	})

	r := gin.New()
	r.Use(middleware.Error())
	RegisterRoutes(r, h)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestHandlerClaimFlow(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(t, f)
	now := time.Now().UTC()

	w, created := do(t, r, http.MethodPost, "/v1/campaigns", map[string]any{
		"name":              "Verify mobile",
		"type":              "VERIFY_MOBILE",
		"start_date":        now.Add(-time.Hour),
		"end_date":          now.Add(time.Hour),
		"max_claims":        1,
		"rewards_per_claim": "5",
		"total_rewards":     "50",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := created["id"].(string)
	require.Equal(t, "DRAFT", created["visibility"])

	w, body := do(t, r, http.MethodPost, "/v1/airdrops/claim", map[string]any{"kind": "verifyMobile", "campaign": id, "user": "u-1"})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, ReasonCampaignNotFound, body["error"].(map[string]any)["reason"])

	w, _ = do(t, r, http.MethodPost, "/v1/campaigns/"+id+"/publish", nil)
	require.Equal(t, http.StatusOK, w.Code)

	f.person(t, person{id: "u-1", mobile: "866666666"})

	w, body = do(t, r, http.MethodPost, "/v1/airdrops/claim", map[string]any{"kind": "verifyMobile", "campaign": id, "user": "u-1"})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "PENDING", body["transaction"].(map[string]any)["status"])

	w, body = do(t, r, http.MethodPost, "/v1/airdrops/claim", map[string]any{"kind": "verifyMobile", "campaign": id, "user": "u-1"})
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, ReasonReachedMaxClaims, body["error"].(map[string]any)["reason"])

	w, body = do(t, r, http.MethodGet, "/v1/wallets/u-1/balance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "5", body["personal"])
	require.Equal(t, "5", body["total"])

	w, body = do(t, r, http.MethodGet, "/v1/wallets/u-1/transactions?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, body["data"], 1)

	w, body = do(t, r, http.MethodGet, "/v1/campaigns/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "45", body["reward_balance"])
}

func TestHandlerRejectsBadBodies(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(t, f)

	w, _ := do(t, r, http.MethodPost, "/v1/airdrops/claim", map[string]any{"kind": "referral"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPost, "/v1/content-views", map[string]any{"content_id": "post-1"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPost, "/v1/content-views", map[string]any{"content_id": "post-1", "viewer_id": "v-1"})
	require.Equal(t, http.StatusNoContent, w.Code)
}
