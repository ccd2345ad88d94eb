package database

import (
	"fmt"
	"time"
)

// RunSummary is one durable record of a completed collection run.
type RunSummary struct {
	ID        int64
	Content   string
	Summary   string
	ContDate  string
	TopStock  string
	CreatedAt time.Time
}

type NewsRepository interface {
	InsertRunSummary(content, summary, contDate, topstock string) error
	GetRunSummaries(contDate string) ([]RunSummary, error)
}

type newsRepository struct {
	db *DB
}

func NewNewsRepository(db *DB) NewsRepository {
	return &newsRepository{db: db}
}

func (r *newsRepository) InsertRunSummary(content, summary, contDate, topstock string) error {
	_, err := r.db.Exec(`
		INSERT INTO news_summary (content, summary, cont_date, topstock)
		VALUES (?, ?, ?, ?)
	`, content, summary, contDate, topstock)
	if err != nil {
		return fmt.Errorf("failed to insert run summary: %w", err)
	}
	return nil
}

func (r *newsRepository) GetRunSummaries(contDate string) ([]RunSummary, error) {
	rows, err := r.db.Query(`
		SELECT id, content, summary, cont_date, topstock, created_at
		FROM news_summary
		WHERE cont_date = ?
		ORDER BY created_at DESC
	`, contDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get run summaries: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(&s.ID, &s.Content, &s.Summary, &s.ContDate, &s.TopStock, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}
