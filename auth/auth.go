// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Key roles
const (
	RolePolitician = "politician"
	RoleVoter      = "voter"
)

var (
	ErrInvalidKey      = errors.New("invalid access key")
	ErrInvalidAdminKey = errors.New("invalid admin key")
)

// NewID returns a random UUID for a database record.
func NewID() string {
	return uuid.NewString()
}

// GenerateKey creates an HMAC-based access key for a politician or voter.
// This is deterministic and verifiable, so keys are never stored.
func GenerateKey(role, subjectID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(role))
	h.Write([]byte{0})
	h.Write([]byte(subjectID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateKey checks that key was issued for role and subjectID.
func ValidateKey(role, subjectID, key, salt string) error {
	if key == "" {
		return ErrInvalidKey
	}
	expected := GenerateKey(role, subjectID, salt)
	if !hmac.Equal([]byte(key), []byte(expected)) {
		return ErrInvalidKey
	}
	return nil
}

// ValidateAdminKey compares key against the configured admin key.
// An empty configured key rejects everything.
func ValidateAdminKey(key, expected string) error {
	if expected == "" || !hmac.Equal([]byte(key), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}
