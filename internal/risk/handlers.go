package risk

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leainsurance/travelrisk/internal/api"
	apperrors "github.com/leainsurance/travelrisk/internal/common/errors"
)

// RankRequest is the body of a plan ranking request. When Analysis is
// absent the trip is analyzed first; an absent trip is the default trip.
type RankRequest struct {
	Plans    []PlanCandidate `json:"plans"`
	Analysis *RiskAnalysis   `json:"analysis,omitempty"`
	Trip     TripInput       `json:"trip"`
}

// RankResponse is the result of a plan ranking request
type RankResponse struct {
	Plans    []PlanCandidate `json:"plans"`
	Analysis RiskAnalysis    `json:"analysis"`
}

// RegisterRoutes registers risk service routes
func RegisterRoutes(router gin.IRouter, svc *Service) {
	r := api.VersionRouteGroup(router, api.DefaultAPIVersion).Group("/risk")
	{
		r.POST("/analyze", svc.handleAnalyze)
		r.GET("/personas", svc.handleListPersonas)
		r.POST("/personas/:persona/insights", svc.handlePersonaInsights)
		r.POST("/plans/rank", svc.handleRankPlans)
		r.GET("/model", svc.handleModel)
	}
}

// bindOptionalJSON decodes the body into dst; an empty body leaves dst as is.
func bindOptionalJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *Service) handleAnalyze(c *gin.Context) {
	var trip TripInput
	if err := bindOptionalJSON(c, &trip); err != nil {
		apperrors.HandleError(c, apperrors.InvalidTrip(err))
		return
	}

	c.JSON(http.StatusOK, s.Analyze(c.Request.Context(), trip))
}

func (s *Service) handlePersonaInsights(c *gin.Context) {
	var trip TripInput
	if err := bindOptionalJSON(c, &trip); err != nil {
		apperrors.HandleError(c, apperrors.InvalidTrip(err))
		return
	}

	c.JSON(http.StatusOK, s.PersonaInsights(c.Request.Context(), c.Param("persona"), trip))
}

func (s *Service) handleListPersonas(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"personas": s.Personas()})
}

func (s *Service) handleRankPlans(c *gin.Context) {
	var req RankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleError(c, apperrors.InvalidPlans(err.Error()))
		return
	}
	if len(req.Plans) == 0 {
		apperrors.HandleError(c, apperrors.ValidationError("at least one plan is required").
			WithMetadata("field", "plans"))
		return
	}

	ranked, analysis := s.RankPlans(c.Request.Context(), req.Plans, req.Analysis, req.Trip)
	c.JSON(http.StatusOK, RankResponse{Plans: ranked, Analysis: analysis})
}

func (s *Service) handleModel(c *gin.Context) {
	c.JSON(http.StatusOK, s.Model())
}
