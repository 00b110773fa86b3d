// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

const (
	shortIDChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	ShortIDLength = 12

	userTokenBytes = 16
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateShortID creates a 12 character alphanumeric ID for events and surveys
func GenerateShortID() (string, error) {
	result := make([]byte, 0, ShortIDLength)
	buf := make([]byte, ShortIDLength*2)

	// 62 does not divide 256; reject bytes >= 248 so every char is equally likely
	const limit = 256 - 256%len(shortIDChars)

	for len(result) < ShortIDLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate short ID: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			result = append(result, shortIDChars[int(b)%len(shortIDChars)])
			if len(result) == ShortIDLength {
				break
			}
		}
	}

	return string(result), nil
}

// GenerateUserToken creates a random token handed back to respondents
// that did not bring their own
func GenerateUserToken() (string, error) {
	t, err := GenerateID(userTokenBytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate user token: %w", err)
	}
	return t, nil
}

// NewRowID returns a random UUID string for option and response rows
func NewRowID() string {
	return uuid.NewString()
}
