package risk

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	apperrors "github.com/leainsurance/travelrisk/internal/common/errors"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router, NewService(NewEngine(nil), zaptest.NewLogger(t)))
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleAnalyze(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, "POST", "/api/v1/risk/analyze",
		`{"destination":"JP","activities":["skiing"],"departure_date":"2025-01-15","age":30,"duration":7}`)

	require.Equal(t, http.StatusOK, w.Code)
	var analysis RiskAnalysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &analysis))
	assert.Equal(t, 5.88, analysis.RiskScore)
	assert.Equal(t, RiskLevelVeryHigh, analysis.RiskLevel)
	assert.Equal(t, 5, analysis.SimilarClaimsCount)
}

func TestHandleAnalyze_EmptyBodyUsesDefaults(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, "POST", "/api/v1/risk/analyze", "")

	require.Equal(t, http.StatusOK, w.Code)
	var analysis RiskAnalysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &analysis))
	assert.Equal(t, 1.0, analysis.RiskScore)
	assert.Equal(t, RiskLevelStandard, analysis.RiskLevel)
}

func TestHandleAnalyze_MalformedJSON(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, "POST", "/api/v1/risk/analyze", `{"destination":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.ErrInvalidTrip, resp.Error)
}

func TestHandlePersonaInsights(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, "POST", "/api/v1/risk/personas/adventure/insights",
		`{"destination":"JP","activities":["skiing"],"departure_date":"2025-01-15"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	// Base analysis fields sit alongside the persona fields.
	assert.Equal(t, 5.88, body["risk_score"])
	assert.Equal(t, "Very High", body["risk_level"])
	assert.Equal(t, "adventure", body["persona"])
	assert.Equal(t, true, body["has_high_risk_activity"])
	assert.Equal(t, "Platinum", body["recommended_coverage_level"])
	assert.Equal(t, "Your risk is 5.9x higher than average adventure travellers", body["risk_comparison"])
}

func TestHandlePersonaInsights_UnknownPersona(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, "POST", "/api/v1/risk/personas/astronaut/insights", `{}`)

	require.Equal(t, http.StatusOK, w.Code)
	var insights PersonaInsights
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &insights))
	assert.Equal(t, PersonaFamily, insights.Persona)
}

func TestHandleListPersonas(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, "GET", "/api/v1/risk/personas", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Personas []PersonaProfile `json:"personas"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Personas, 5)
}

func TestHandleRankPlans_WithTrip(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, "POST", "/api/v1/risk/plans/rank", `{
		"plans": [
			{"name": "Basic", "coverage": {"medical": 40000}},
			{"name": "Gold", "coverage": {"medical": 100000}, "score": 50}
		],
		"trip": {"destination": "JP", "activities": ["skiing"], "departure_date": "2025-01-15"}
	}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp RankResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Plans, 2)
	assert.Equal(t, "Gold", resp.Plans[0].Name)
	assert.Equal(t, 70.0, resp.Plans[0].RiskFitScore)
	assert.Equal(t, "Basic", resp.Plans[1].Name)
	assert.Equal(t, HighRiskWarning, resp.Plans[1].RiskWarning)
	assert.Equal(t, 5.88, resp.Analysis.RiskScore)
}

func TestHandleRankPlans_KeepsCallerFields(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, "POST", "/api/v1/risk/plans/rank", `{
		"plans": [{"name": "Gold", "provider": "LEA", "benefits": ["rescue"], "coverage": {"medical": 200000}, "score": 60}],
		"trip": {"destination": "JP", "activities": ["skiing"], "departure_date": "2025-01-15"}
	}`)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Plans []map[string]interface{} `json:"plans"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Plans, 1)
	got := body.Plans[0]
	assert.Equal(t, "LEA", got["provider"])
	assert.Equal(t, []interface{}{"rescue"}, got["benefits"])
	assert.Equal(t, "Gold", got["name"])
	assert.Equal(t, 80.0, got["risk_fit_score"])
	assert.Equal(t, AssessmentExcellent, got["risk_assessment"])
}

func TestHandleRankPlans_WithAnalysis(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, "POST", "/api/v1/risk/plans/rank", `{
		"plans": [{"name": "Lite", "coverage": {"medical": 30000}, "score": 80}],
		"analysis": {"risk_score": 1.2, "average_claim_amount": 40000}
	}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp RankResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 65.0, resp.Plans[0].RiskFitScore)
	assert.Equal(t, AssessmentInsufficient, resp.Plans[0].RiskAssessment)
	assert.Equal(t, 1.2, resp.Analysis.RiskScore)
}

func TestHandleRankPlans_Validation(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		name     string
		body     string
		wantCode apperrors.ErrorCode
	}{
		{"empty plan list", `{"plans": []}`, apperrors.ErrValidation},
		{"missing plans", `{"trip": {}}`, apperrors.ErrValidation},
		{"malformed", `{"plans": [`, apperrors.ErrInvalidPlans},
		{"empty body", ``, apperrors.ErrInvalidPlans},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, "POST", "/api/v1/risk/plans/rank", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			var resp apperrors.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error)
		})
	}
}

func TestHandleModel(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, "GET", "/api/v1/risk/model", "")

	require.Equal(t, http.StatusOK, w.Code)
	var summary Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, "SGD", summary.Currency)
	assert.Equal(t, 13, summary.ClaimCount)
	assert.Contains(t, summary.Destinations, "JP")
}
