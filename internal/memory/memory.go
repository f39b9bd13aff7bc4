// Package memory persists steering outcomes for offline analysis. The
// engine itself stays ephemeral; this store is an optional collaborator
// wired in by the caller.
package memory

// #region imports
import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kereva-dev/attractor/internal/steer"
)

// #endregion imports

// #region schema

const outcomesSchema = `
CREATE TABLE IF NOT EXISTS steering_outcomes (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id          TEXT NOT NULL,
    prompt          TEXT NOT NULL,
    accepted_text   TEXT NOT NULL,
    attempts        INTEGER NOT NULL,
    is_attracted    INTEGER NOT NULL DEFAULT 0,
    keyword_score   REAL NOT NULL,
    embedding_score REAL NOT NULL,
    triggered_json  TEXT,
    skipped_json    TEXT,
    created_at      TEXT NOT NULL
);
`

const outcomesIndex = `
CREATE INDEX IF NOT EXISTS idx_steering_outcomes_created
ON steering_outcomes(created_at);
`

// #endregion schema

// #region store

// OutcomeStore persists steering outcomes in SQLite and answers
// decay-weighted attractor hit-rate queries.
type OutcomeStore struct {
	db *sql.DB
}

// Open opens (or creates) the outcome database at dbPath.
func Open(dbPath string) (*OutcomeStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	store, err := NewOutcomeStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewOutcomeStore initializes the steering_outcomes table over an
// existing connection.
func NewOutcomeStore(db *sql.DB) (*OutcomeStore, error) {
	if _, err := db.Exec(outcomesSchema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if _, err := db.Exec(outcomesIndex); err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	return &OutcomeStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *OutcomeStore) Close() error {
	return s.db.Close()
}

// #endregion store

// #region record

// Record persists one steering outcome and returns its run id.
func (s *OutcomeStore) Record(prompt string, out steer.Outcome) (string, error) {
	runID := uuid.New().String()

	triggeredJSON, err := json.Marshal(out.Result.TriggeredAttractors)
	if err != nil {
		return "", fmt.Errorf("marshal triggered: %w", err)
	}
	skippedJSON, err := json.Marshal(out.Result.Skipped)
	if err != nil {
		return "", fmt.Errorf("marshal skipped: %w", err)
	}

	attracted := 0
	if out.Result.IsAttracted {
		attracted = 1
	}

	_, err = s.db.Exec(`
		INSERT INTO steering_outcomes
		(run_id, prompt, accepted_text, attempts, is_attracted,
		 keyword_score, embedding_score, triggered_json, skipped_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		prompt,
		out.Text,
		out.Attempts,
		attracted,
		out.Result.KeywordScore,
		out.Result.EmbeddingScore,
		string(triggeredJSON),
		string(skippedJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert outcome: %w", err)
	}
	return runID, nil
}

// #endregion record

// #region recent

// OutcomeRow is one persisted steering outcome.
type OutcomeRow struct {
	RunID          string
	Prompt         string
	AcceptedText   string
	Attempts       int
	IsAttracted    bool
	KeywordScore   float32
	EmbeddingScore float32
	Triggered      []string
	CreatedAt      time.Time
}

// Recent returns the most recent outcomes, newest first.
func (s *OutcomeStore) Recent(limit int) ([]OutcomeRow, error) {
	rows, err := s.db.Query(`
		SELECT run_id, prompt, accepted_text, attempts, is_attracted,
		       keyword_score, embedding_score, triggered_json, created_at
		FROM steering_outcomes ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var out []OutcomeRow
	for rows.Next() {
		var row OutcomeRow
		var attracted int
		var triggeredJSON sql.NullString
		var createdStr string
		if err := rows.Scan(&row.RunID, &row.Prompt, &row.AcceptedText, &row.Attempts,
			&attracted, &row.KeywordScore, &row.EmbeddingScore, &triggeredJSON, &createdStr); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		row.IsAttracted = attracted != 0
		if triggeredJSON.Valid {
			if err := json.Unmarshal([]byte(triggeredJSON.String), &row.Triggered); err != nil {
				return nil, fmt.Errorf("unmarshal triggered: %w", err)
			}
		}
		row.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
		out = append(out, row)
	}
	return out, rows.Err()
}

// #endregion recent

// #region hit-rates

// HitRate is the decay-weighted trigger frequency of one attractor id.
type HitRate struct {
	AttractorID string
	Weight      float64
	Count       int
}

// HitRates aggregates triggered attractor ids across stored outcomes with
// an exponential time decay (7-day half-life), most-weighted first.
// Useful for spotting which attractors the generator keeps falling into.
func (s *OutcomeStore) HitRates() ([]HitRate, error) {
	rows, err := s.db.Query(`SELECT triggered_json, created_at FROM steering_outcomes`)
	if err != nil {
		return nil, fmt.Errorf("query hit rates: %w", err)
	}
	defer rows.Close()

	now := time.Now()
	halfLife := 7.0 * 24.0 // hours

	accum := make(map[string]*HitRate)
	for rows.Next() {
		var triggeredJSON sql.NullString
		var createdStr string
		if err := rows.Scan(&triggeredJSON, &createdStr); err != nil {
			return nil, fmt.Errorf("scan hit rate row: %w", err)
		}
		if !triggeredJSON.Valid {
			continue
		}
		var triggered []string
		if err := json.Unmarshal([]byte(triggeredJSON.String), &triggered); err != nil {
			continue
		}
		createdAt, err := time.Parse(time.RFC3339, createdStr)
		if err != nil {
			continue
		}
		weight := math.Exp(-now.Sub(createdAt).Hours() / halfLife)

		for _, id := range triggered {
			if _, ok := accum[id]; !ok {
				accum[id] = &HitRate{AttractorID: id}
			}
			accum[id].Weight += weight
			accum[id].Count++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]HitRate, 0, len(accum))
	for _, hr := range accum {
		out = append(out, *hr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	return out, nil
}

// #endregion hit-rates
