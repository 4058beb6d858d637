package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Mohid710/AEO-Snippet-Optimizer/internal/cache"
	"github.com/Mohid710/AEO-Snippet-Optimizer/internal/metrics"
	"github.com/Mohid710/AEO-Snippet-Optimizer/internal/model"
	"github.com/Mohid710/AEO-Snippet-Optimizer/internal/repository"
	"github.com/Mohid710/AEO-Snippet-Optimizer/pkg/llm"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AnalyzeHandler struct {
	comparer llm.Comparer
	cache    cache.Cache
	recorder repository.Recorder
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewAnalyzeHandler(comparer llm.Comparer, c cache.Cache, recorder repository.Recorder, m *metrics.Metrics) *AnalyzeHandler {
	if c == nil {
		c = cache.NopCache{}
	}
	if recorder == nil {
		recorder = repository.NopRecorder{}
	}
	if m == nil {
		m = metrics.New()
	}
	return &AnalyzeHandler{
		comparer: comparer,
		cache:    c,
		recorder: recorder,
		metrics:  m,
		now:      time.Now,
	}
}

func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		MethodNotAllowed(c)
		return
	}

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"})
		return
	}

	if req.SnippetA == "" || req.SnippetB == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Both snippetA and snippetB are required"})
		return
	}

	ctx := c.Request.Context()
	provider := h.comparer.Provider()
	key := cache.Key(provider, h.comparer.Model(), llm.PromptVersion(), req.SnippetA, req.SnippetB)

	cached, ok, err := h.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("error reading result cache, calling upstream", "error", err)
	}
	if ok {
		h.metrics.ObserveAnalysis(provider, metrics.OutcomeCached)
		c.JSON(http.StatusOK, toAnalyzeResponse(cached, true))
		return
	}

	start := h.now()
	result, err := h.comparer.Compare(ctx, llm.CompareInput{
		SnippetA: req.SnippetA,
		SnippetB: req.SnippetB,
	})
	if err != nil {
		var missing *llm.MissingAPIKeyError
		if errors.As(err, &missing) {
			slog.Error("upstream credential missing", "env", missing.EnvVar)
			h.metrics.ObserveAnalysis(provider, metrics.OutcomeMissingKey)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Server missing API key (" + missing.EnvVar + ")"})
			return
		}

		slog.Error("error calling upstream model", "error", err, "provider", provider)
		h.metrics.ObserveUpstream(provider, h.now().Sub(start))
		h.metrics.ObserveAnalysis(provider, metrics.OutcomeUpstreamError)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "AI service error", Details: err.Error()})
		return
	}
	h.metrics.ObserveUpstream(provider, h.now().Sub(start))

	normalized := llm.Normalize(result.Reply)
	h.metrics.ObserveShape(string(normalized.Shape))

	analysis := &model.Analysis{
		ID:            uuid.NewString(),
		SnippetA:      req.SnippetA,
		SnippetB:      req.SnippetB,
		Provider:      result.Provider,
		ModelUsed:     result.ModelUsed,
		PromptVersion: result.PromptVersion,
		ResultText:    normalized.Text,
		ResultHTML:    normalized.HTML,
		Scores:        normalized.Scores,
		Shape:         string(normalized.Shape),
		Raw:           result.Reply,
		CreatedAt:     h.now().UTC(),
	}

	if err := h.cache.Set(ctx, key, analysis); err != nil {
		slog.Warn("error writing result cache", "error", err, "analysis_id", analysis.ID)
	}
	if err := h.recorder.Record(ctx, analysis); err != nil {
		slog.Error("error recording analysis", "error", err, "analysis_id", analysis.ID)
	}

	h.metrics.ObserveAnalysis(provider, metrics.OutcomeSuccess)
	slog.Info("analysis completed", "analysis_id", analysis.ID, "shape", analysis.Shape, "model", analysis.ModelUsed)

	c.JSON(http.StatusOK, toAnalyzeResponse(analysis, false))
}

// MethodNotAllowed answers any method other than the one a route accepts.
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, ErrorResponse{Error: "Method Not Allowed"})
}

func toAnalyzeResponse(a *model.Analysis, cached bool) AnalyzeResponse {
	return AnalyzeResponse{
		Success:  true,
		ID:       a.ID,
		Provider: a.Provider,
		Model:    a.ModelUsed,
		Result:   a.ResultText,
		HTML:     a.ResultHTML,
		Scores:   a.Scores,
		Shape:    a.Shape,
		Raw:      a.Raw,
		Cached:   cached,
	}
}
