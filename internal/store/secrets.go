package store

import (
	"bytes"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"filippo.io/age"
	"github.com/predixlabs/predix-deploy/internal/constants"
)

// Secret holds an age-encrypted value. ENV_PRD and ENV_DEV (the full env
// file bodies for prod and dev) live here, as do registry credentials.
type Secret struct {
	Name           string    `json:"name"`
	EncryptedValue string    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Digest returns a short fingerprint of the encrypted value so the API can
// show that a secret changed without revealing anything.
func (s Secret) Digest() string {
	sum := sha256.Sum256([]byte(s.EncryptedValue))
	return hex.EncodeToString(sum[:8])
}

func (s *Store) createSecretsTable() error {
	schema := `
CREATE TABLE IF NOT EXISTS secrets (
    name TEXT PRIMARY KEY,
    encrypted_value TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`
	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create secrets table: %w", err)
	}
	return nil
}

// SetSecret upserts a secret, encrypting the value with the age identity.
func (s *Store) SetSecret(name, value string) error {
	if name == "" {
		return errors.New("secret name cannot be empty")
	}
	if value == "" {
		return errors.New("secret value cannot be empty")
	}

	identity, err := getAgeIdentity()
	if err != nil {
		return fmt.Errorf("failed to get encryption key: %w", err)
	}
	encryptedValue, err := encryptSecret(value, identity.Recipient())
	if err != nil {
		return fmt.Errorf("failed to encrypt secret value: %w", err)
	}

	now := time.Now()
	query := `
        INSERT INTO secrets (name, encrypted_value, created_at, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(name) DO UPDATE SET
            encrypted_value = excluded.encrypted_value,
            updated_at = excluded.updated_at
    `
	if _, err := s.db.Exec(query, name, encryptedValue, now, now); err != nil {
		return fmt.Errorf("failed to save secret: %w", err)
	}
	return nil
}

// GetSecretValue returns the decrypted value of a secret.
func (s *Store) GetSecretValue(name string) (string, error) {
	if name == "" {
		return "", errors.New("secret name cannot be empty")
	}

	var encryptedValue string
	query := `SELECT encrypted_value FROM secrets WHERE name = ?`
	err := s.db.QueryRow(query, name).Scan(&encryptedValue)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("secret '%s': %w", name, ErrNotFound)
		}
		return "", fmt.Errorf("failed to get secret '%s': %w", name, err)
	}

	identity, err := getAgeIdentity()
	if err != nil {
		return "", fmt.Errorf("failed to get encryption key: %w", err)
	}
	decrypted, err := decryptSecret(encryptedValue, identity)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt secret '%s': %w", name, err)
	}
	return decrypted, nil
}

func (s *Store) ListSecrets() ([]Secret, error) {
	query := `SELECT name, encrypted_value, created_at, updated_at FROM secrets ORDER BY updated_at DESC`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list secrets: %w", err)
	}
	defer rows.Close()

	var secrets []Secret
	for rows.Next() {
		var secret Secret
		if err := rows.Scan(&secret.Name, &secret.EncryptedValue, &secret.CreatedAt, &secret.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan secret: %w", err)
		}
		secrets = append(secrets, secret)
	}
	return secrets, rows.Err()
}

func (s *Store) DeleteSecret(name string) error {
	result, err := s.db.Exec(`DELETE FROM secrets WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete secret: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("secret '%s': %w", name, ErrNotFound)
	}
	return nil
}

func (s *Store) SecretExists(name string) (bool, error) {
	if name == "" {
		return false, errors.New("secret name cannot be empty")
	}
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM secrets WHERE name = ?)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check if secret exists: %w", err)
	}
	return exists, nil
}

func getAgeIdentity() (*age.X25519Identity, error) {
	identityStr := os.Getenv(constants.EnvVarAgeIdentity)
	if identityStr == "" {
		return nil, fmt.Errorf("environment variable %s is not set", constants.EnvVarAgeIdentity)
	}
	identity, err := age.ParseX25519Identity(identityStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse age identity from %s: %w", constants.EnvVarAgeIdentity, err)
	}
	return identity, nil
}

// encryptSecret encrypts a plain-text value with the age recipient and
// returns it base64-encoded for storage.
func encryptSecret(value string, recipient age.Recipient) (string, error) {
	var rawBuffer bytes.Buffer
	encryptWriter, err := age.Encrypt(&rawBuffer, recipient)
	if err != nil {
		return "", fmt.Errorf("failed to initialize encryptor: %w", err)
	}
	if _, err = io.WriteString(encryptWriter, value); err != nil {
		return "", fmt.Errorf("failed to write value to encryption writer: %w", err)
	}
	if err := encryptWriter.Close(); err != nil {
		return "", fmt.Errorf("failed to close encryption writer: %w", err)
	}
	return base64.StdEncoding.EncodeToString(rawBuffer.Bytes()), nil
}

// decryptSecret decrypts a base64-encoded secret with the age identity.
func decryptSecret(secret string, identity age.Identity) (string, error) {
	encryptedBytes, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64 secret: %w", err)
	}

	decryptReader, err := age.Decrypt(bytes.NewReader(encryptedBytes), identity)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt value: %w", err)
	}

	var decryptedBuf bytes.Buffer
	if _, err := io.Copy(&decryptedBuf, decryptReader); err != nil {
		return "", fmt.Errorf("failed to read decrypted value: %w", err)
	}
	return decryptedBuf.String(), nil
}
