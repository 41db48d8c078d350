package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cinematickets/internal/shared/config"
	"cinematickets/internal/shared/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRepository struct{ fakeRepository }

func (f *failingRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]Charge, error) {
	return nil, errors.New("connection reset")
}

func newStatementEngine(repo Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "statement-secret"}}
	engine := gin.New()
	SetupPaymentRoutes(engine.Group("/api/v1"), NewController(repo), middleware.OptionalAuthWithConfig(cfg))
	return engine
}

func getCharges(t *testing.T, engine *gin.Engine, accountID int64, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/charges"+query, nil)
	if accountID > 0 {
		token, err := middleware.IssueAccessToken("statement-secret", accountID, time.Minute)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestListCharges(t *testing.T) {
	repo := &fakeRepository{}
	gw := NewLedgerGateway(repo, "GBP")
	require.NoError(t, gw.Charge(context.Background(), 7, 40))
	require.NoError(t, gw.Charge(context.Background(), 8, 20))

	engine := newStatementEngine(repo)

	w := getCharges(t, engine, 7, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			AccountID int64    `json:"account_id"`
			Charges   []Charge `json:"charges"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(7), body.Data.AccountID)
	require.Len(t, body.Data.Charges, 1)
	assert.Equal(t, 40, body.Data.Charges[0].Amount)
}

func TestListCharges_Errors(t *testing.T) {
	engine := newStatementEngine(&fakeRepository{})

	assert.Equal(t, http.StatusUnauthorized, getCharges(t, engine, 0, "").Code)
	assert.Equal(t, http.StatusBadRequest, getCharges(t, engine, 7, "?limit=0").Code)
	assert.Equal(t, http.StatusBadRequest, getCharges(t, engine, 7, "?limit=abc").Code)

	failing := newStatementEngine(&failingRepository{})
	assert.Equal(t, http.StatusInternalServerError, getCharges(t, failing, 7, "").Code)
}
