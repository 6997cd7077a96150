package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/debashis65/EkkalavyaAI-sub002/internal/room"
)

// Session is a recorded training session.
type Session struct {
	ID        string    `json:"id"`
	Sport     string    `json:"sport"`
	StartedAt time.Time `json:"started_at"`
}

// RoomAnalysis is one room analysis recorded for a session.
type RoomAnalysis struct {
	ID          int64            `json:"id"`
	SessionID   string           `json:"session_id"`
	AnalyzedAt  time.Time        `json:"analyzed_at"`
	Constraints room.Constraints `json:"constraints"`
}

// SessionRepository records training sessions and their room analyses.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now()
	}
	_, err := r.db.Exec(
		`INSERT INTO sessions (id, sport, started_at) VALUES (?, ?, ?)`,
		sess.ID, sess.Sport, sess.StartedAt,
	)
	return err
}

// Get retrieves a session by ID.
func (r *SessionRepository) Get(id string) (*Session, error) {
	sess := &Session{}
	err := r.db.QueryRow(
		`SELECT id, sport, started_at FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.Sport, &sess.StartedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}

// List returns the most recent sessions, newest first. A limit of zero or less
// returns every session.
func (r *SessionRepository) List(limit int) ([]Session, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT id, sport, started_at FROM sessions ORDER BY started_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Sport, &sess.StartedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Delete removes a session and its recorded analyses.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOne(result)
}

// RecordAnalysis stores a room analysis for an existing session.
func (r *SessionRepository) RecordAnalysis(sessionID string, at time.Time, c room.Constraints) (int64, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return 0, fmt.Errorf("encode constraints: %w", err)
	}

	result, err := r.db.Exec(
		`INSERT INTO room_analyses (session_id, analyzed_at, detected, is_room_mode, safety_score, constraints)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, at, c.Detected, c.IsRoomMode, c.SafetyScore, string(data),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// Analyses lists the analyses recorded for a session, oldest first.
func (r *SessionRepository) Analyses(sessionID string) ([]RoomAnalysis, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, analyzed_at, constraints FROM room_analyses
		 WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []RoomAnalysis
	for rows.Next() {
		var a RoomAnalysis
		var data string
		if err := rows.Scan(&a.ID, &a.SessionID, &a.AnalyzedAt, &data); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &a.Constraints); err != nil {
			return nil, fmt.Errorf("decode analysis %d: %w", a.ID, err)
		}
		analyses = append(analyses, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return analyses, nil
}

// LatestAnalysis returns the most recent analysis recorded for a session.
func (r *SessionRepository) LatestAnalysis(sessionID string) (*RoomAnalysis, error) {
	var a RoomAnalysis
	var data string
	err := r.db.QueryRow(
		`SELECT id, session_id, analyzed_at, constraints FROM room_analyses
		 WHERE session_id = ? ORDER BY id DESC LIMIT 1`,
		sessionID,
	).Scan(&a.ID, &a.SessionID, &a.AnalyzedAt, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &a.Constraints); err != nil {
		return nil, fmt.Errorf("decode analysis %d: %w", a.ID, err)
	}
	return &a, nil
}
