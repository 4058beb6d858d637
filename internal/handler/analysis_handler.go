package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Mohid710/AEO-Snippet-Optimizer/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AnalysisStore interface {
	GetAnalyses(ctx context.Context, limit, offset int) ([]model.Analysis, error)
	GetAnalysisTotal(ctx context.Context) (int, error)
	GetAnalysisByID(ctx context.Context, id string) (*model.Analysis, error)
}

type AnalysisHandler struct {
	repository AnalysisStore
}

func NewAnalysisHandler(repository AnalysisStore) *AnalysisHandler {
	return &AnalysisHandler{repository: repository}
}

func toAnalysisResponse(a model.Analysis) AnalysisResponse {
	return AnalysisResponse{
		ID:            a.ID,
		SnippetA:      a.SnippetA,
		SnippetB:      a.SnippetB,
		Provider:      a.Provider,
		Model:         a.ModelUsed,
		PromptVersion: a.PromptVersion,
		Result:        a.ResultText,
		HTML:          a.ResultHTML,
		Scores:        a.Scores,
		Shape:         a.Shape,
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
	}
}

func (h *AnalysisHandler) GetAnalyses(c *gin.Context) {
	limit := getQueryLimit(c)
	offset := getQueryOffset(c)
	ctx := c.Request.Context()

	analyses, err := h.repository.GetAnalyses(ctx, limit, offset)
	if err != nil {
		slog.Error("error fetching analyses", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
		return
	}

	total, err := h.repository.GetAnalysisTotal(ctx)
	if err != nil {
		slog.Error("error fetching analysis total", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
		return
	}

	res := AnalysesResponse{
		Items:  make([]AnalysisResponse, 0, len(analyses)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for _, a := range analyses {
		res.Items = append(res.Items, toAnalysisResponse(a))
	}

	c.JSON(http.StatusOK, res)
}

func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid analysis id"})
		return
	}

	analysis, err := h.repository.GetAnalysisByID(c.Request.Context(), id)
	if err != nil {
		slog.Error("error fetching analysis", "error", err, "analysis_id", id)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
		return
	}

	if analysis == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Analysis not found"})
		return
	}

	c.JSON(http.StatusOK, toAnalysisResponse(*analysis))
}

func getQueryInt(name string, defaultValue int, c *gin.Context) int {
	param := c.Query(name)

	if param == "" {
		return defaultValue
	}

	parsedValue, err := strconv.Atoi(param)
	if err != nil {
		slog.Warn("invalid query parameter, using default", "param", name, "value", param, "error", err)
		return defaultValue
	}

	return parsedValue
}

func getQueryLimit(c *gin.Context) int {
	const (
		defaultLimit = 10
		maxLimit     = 100
	)

	limit := getQueryInt("limit", defaultLimit, c)
	if limit < 1 {
		slog.Warn("invalid query parameter, using default", "param", "limit", "value", limit, "default", defaultLimit)
		return defaultLimit
	}

	if limit > maxLimit {
		slog.Warn("query parameter above maximum, clamping", "param", "limit", "value", limit, "max", maxLimit)
		return maxLimit
	}

	return limit
}

func getQueryOffset(c *gin.Context) int {
	offset := getQueryInt("offset", 0, c)
	if offset < 0 {
		slog.Warn("invalid query parameter, using default", "param", "offset", "value", offset, "default", 0)
		return 0
	}
	return offset
}
