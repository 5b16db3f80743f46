package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
	"golang.org/x/oauth2"
)

// TokenRepository persists one OAuth token per account role.
//
// Saving a role's token replaces any previous one; the table never holds
// more than two rows (source, dest).
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Save upserts the token stored for a role.
func (r *TokenRepository) Save(role services.Role, token *oauth2.Token) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", shared.ErrInvalidArgument, role)
	}
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: token has no access token", shared.ErrInvalidArgument)
	}

	query := `
		INSERT INTO tokens (role, access_token, token_type, refresh_token, expiry, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(role) DO UPDATE SET
			access_token = excluded.access_token,
			token_type = excluded.token_type,
			refresh_token = excluded.refresh_token,
			expiry = excluded.expiry,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query, string(role), token.AccessToken, token.TokenType, token.RefreshToken, token.Expiry, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}

// Load retrieves the token stored for a role.
//
// Returns [shared.ErrNoToken] when the role has never logged in. An
// expired token is still returned; the oauth2 client refreshes it.
func (r *TokenRepository) Load(role services.Role) (*oauth2.Token, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", shared.ErrInvalidArgument, role)
	}

	query := `
		SELECT access_token, token_type, refresh_token, expiry
		FROM tokens
		WHERE role = ?
	`

	var (
		accessToken  string
		tokenType    string
		refreshToken sql.NullString
		expiry       sql.NullTime
	)

	err := r.db.QueryRow(query, string(role)).Scan(&accessToken, &tokenType, &refreshToken, &expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no stored token for role %q", shared.ErrNoToken, role)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query token: %w", err)
	}

	token := &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   tokenType,
	}
	if refreshToken.Valid {
		token.RefreshToken = refreshToken.String
	}
	if expiry.Valid {
		token.Expiry = expiry.Time
	}

	return token, nil
}

// Delete removes the token stored for a role.
func (r *TokenRepository) Delete(role services.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", shared.ErrInvalidArgument, role)
	}

	result, err := r.db.Exec("DELETE FROM tokens WHERE role = ?", string(role))
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: no stored token for role %q", shared.ErrNoToken, role)
	}

	return nil
}

// Roles lists the roles that currently have a stored token.
func (r *TokenRepository) Roles() ([]services.Role, error) {
	rows, err := r.db.Query("SELECT role FROM tokens ORDER BY role ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	var roles []services.Role
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, services.Role(role))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return roles, nil
}
