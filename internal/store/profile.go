package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/debashis65/EkkalavyaAI-sub002/internal/sport"
)

// StoredProfile is a sport profile persisted in the database.
type StoredProfile struct {
	Profile   sport.Profile
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileRepository provides CRUD operations for custom sport profiles.
type ProfileRepository struct {
	db *sql.DB
}

// Profiles returns the sport profile repository for this store.
func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{db: s.db}
}

// Upsert normalizes and validates a profile, then inserts it, replacing any
// stored profile with the same name.
func (r *ProfileRepository) Upsert(profile sport.Profile) error {
	raw, err := profile.Encode()
	if err != nil {
		return fmt.Errorf("encode profile %q: %w", profile.Name, err)
	}
	p, err := sport.ParseProfile(raw)
	if err != nil {
		return err
	}
	doc, err := p.Encode()
	if err != nil {
		return fmt.Errorf("encode profile %q: %w", p.Name, err)
	}

	now := time.Now()
	_, err = r.db.Exec(
		`INSERT INTO sport_profiles (name, rule, document, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   rule = excluded.rule,
		   document = excluded.document,
		   updated_at = excluded.updated_at`,
		p.Name, string(p.Rule), string(doc), now, now,
	)
	return err
}

// Get retrieves a profile by sport name.
func (r *ProfileRepository) Get(name string) (*StoredProfile, error) {
	var doc string
	sp := &StoredProfile{}

	err := r.db.QueryRow(
		`SELECT document, created_at, updated_at FROM sport_profiles WHERE name = ?`,
		sport.NormalizeName(name),
	).Scan(&doc, &sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if sp.Profile, err = sport.ParseProfile([]byte(doc)); err != nil {
		return nil, fmt.Errorf("stored profile %q: %w", name, err)
	}
	return sp, nil
}

// List retrieves all stored profiles ordered by name.
func (r *ProfileRepository) List() ([]sport.Profile, error) {
	rows, err := r.db.Query(`SELECT name, document FROM sport_profiles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []sport.Profile
	for rows.Next() {
		var name, doc string
		if err := rows.Scan(&name, &doc); err != nil {
			return nil, err
		}
		p, err := sport.ParseProfile([]byte(doc))
		if err != nil {
			return nil, fmt.Errorf("stored profile %q: %w", name, err)
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}

// Delete removes a profile by sport name.
func (r *ProfileRepository) Delete(name string) error {
	result, err := r.db.Exec(`DELETE FROM sport_profiles WHERE name = ?`, sport.NormalizeName(name))
	if err != nil {
		return err
	}
	return affectedOne(result)
}
