package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Mohid710/AEO-Snippet-Optimizer/internal/model"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func (r *AnalysisRepository) SaveAnalysis(ctx context.Context, a *model.Analysis) error {
	var scores any
	if len(a.Scores) > 0 {
		scores = string(a.Scores)
	}

	return r.db.QueryRowContext(ctx, `
		INSERT INTO analysis(id, snippet_a, snippet_b, provider, model_used, prompt_version, result_text, result_html, scores, shape, raw, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING created_at
	`, a.ID, a.SnippetA, a.SnippetB, a.Provider, a.ModelUsed, a.PromptVersion, a.ResultText, a.ResultHTML, scores, a.Shape, a.Raw, a.CreatedAt).Scan(&a.CreatedAt)
}

// Record lets the repository act as a direct Recorder.
func (r *AnalysisRepository) Record(ctx context.Context, a *model.Analysis) error {
	return r.SaveAnalysis(ctx, a)
}

func (r *AnalysisRepository) GetAnalyses(ctx context.Context, limit, offset int) ([]model.Analysis, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, snippet_a, snippet_b, provider, model_used, prompt_version, result_text, result_html, scores, shape, raw, created_at
		FROM analysis
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []model.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return analyses, nil
}

func (r *AnalysisRepository) GetAnalysisTotal(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analysis`).Scan(&total)
	return total, err
}

func (r *AnalysisRepository) GetAnalysisByID(ctx context.Context, id string) (*model.Analysis, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, snippet_a, snippet_b, provider, model_used, prompt_version, result_text, result_html, scores, shape, raw, created_at
		FROM analysis
		WHERE id = $1
	`, id)

	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(s scanner) (*model.Analysis, error) {
	var a model.Analysis
	var html sql.NullString
	var scores []byte

	err := s.Scan(&a.ID, &a.SnippetA, &a.SnippetB, &a.Provider, &a.ModelUsed, &a.PromptVersion, &a.ResultText, &html, &scores, &a.Shape, &a.Raw, &a.CreatedAt)
	if err != nil {
		return nil, err
	}

	if html.Valid {
		a.ResultHTML = &html.String
	}
	if len(scores) > 0 {
		a.Scores = scores
	}
	return &a, nil
}
