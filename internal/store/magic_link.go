package store

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/aduval/foyer/internal/model"
)

const (
	magicLinkTTL     = 15 * time.Minute
	maxCodeAttempts  = 5
	bcryptCodeCost   = bcrypt.DefaultCost
	magicLinkDigits  = 6
	magicLinkCodeMin = 100000
)

type MagicLinkStore struct {
	db *sql.DB
}

func NewMagicLinkStore(db *sql.DB) *MagicLinkStore {
	return &MagicLinkStore{db: db}
}

func scanMagicLink(scanner interface{ Scan(...any) error }) (*model.MagicLink, error) {
	var ml model.MagicLink
	var householdID sql.NullInt64
	var usedAt sql.NullTime

	err := scanner.Scan(
		&ml.ID, &ml.TokenHash, &ml.Email, &ml.Purpose, &householdID,
		&ml.ExpiresAt, &usedAt, &ml.Attempts, &ml.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	ml.HouseholdID = int64Ptr(householdID)
	if usedAt.Valid {
		ml.UsedAt = &usedAt.Time
	}
	return &ml, nil
}

const magicLinkCols = `id, token_hash, email, purpose, household_id, expires_at, used_at, attempts, created_at`

// generateCode returns a 6-digit numeric code (100000–999999).
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+magicLinkCodeMin), nil
}

// Create generates a login code, stores only its bcrypt hash, and returns
// the plaintext code for delivery by email. Previous pending codes for the
// same address are invalidated first.
func (s *MagicLinkStore) Create(email, purpose string, householdID *int64) (string, *model.MagicLink, error) {
	_, err := s.db.Exec(
		`UPDATE magic_links SET used_at = datetime('now') WHERE email = ? AND used_at IS NULL AND expires_at > datetime('now')`,
		email,
	)
	if err != nil {
		return "", nil, fmt.Errorf("invalidate previous codes: %w", err)
	}

	code, err := generateCode()
	if err != nil {
		return "", nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcryptCodeCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash code: %w", err)
	}
	expiresAt := time.Now().UTC().Add(magicLinkTTL)

	result, err := s.db.Exec(
		`INSERT INTO magic_links (token_hash, email, purpose, household_id, expires_at) VALUES (?, ?, ?, ?, ?)`,
		string(hash), email, purpose, nullInt64(householdID), expiresAt,
	)
	if err != nil {
		return "", nil, fmt.Errorf("insert magic link: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return "", nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+magicLinkCols+` FROM magic_links WHERE id = ?`, id)
	ml, err := scanMagicLink(row)
	if err != nil {
		return "", nil, fmt.Errorf("get magic link: %w", err)
	}
	return code, ml, nil
}

// Verify checks a submitted code against the pending link for the email.
// Each failed attempt is counted; the link dies after maxCodeAttempts.
// On success the link is marked used and returned.
func (s *MagicLinkStore) Verify(email, code string) (*model.MagicLink, error) {
	row := s.db.QueryRow(
		`SELECT `+magicLinkCols+` FROM magic_links
		 WHERE email = ? AND used_at IS NULL AND expires_at > datetime('now') AND attempts < ?
		 ORDER BY created_at DESC LIMIT 1`,
		email, maxCodeAttempts,
	)
	ml, err := scanMagicLink(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pending link: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(ml.TokenHash), []byte(code)) != nil {
		if _, err := s.db.Exec(`UPDATE magic_links SET attempts = attempts + 1 WHERE id = ?`, ml.ID); err != nil {
			return nil, fmt.Errorf("count attempt: %w", err)
		}
		return nil, nil
	}

	if _, err := s.db.Exec(`UPDATE magic_links SET used_at = datetime('now') WHERE id = ?`, ml.ID); err != nil {
		return nil, fmt.Errorf("mark used: %w", err)
	}
	return ml, nil
}

// DeleteExpired removes dead links and returns the number deleted.
func (s *MagicLinkStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM magic_links WHERE expires_at <= datetime('now') OR used_at IS NOT NULL`)
	if err != nil {
		return 0, fmt.Errorf("delete expired links: %w", err)
	}
	return result.RowsAffected()
}
