// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package token generates the opaque identifiers used by the service.

# Event and Survey IDs

Events and surveys are addressed by short alphanumeric IDs that fit in a QR
code and can be typed by hand:

	eventID, err := token.GenerateShortID()  // 12 chars, [A-Za-z0-9]

Characters are drawn from crypto/rand without modulo bias. Callers must treat
the result as an opaque key and never parse structure from it.

# Row IDs

Options and responses use random UUIDs:

	id := token.NewRowID()

# User Tokens

When a respondent does not supply a token, ingestion generates one:

	userToken, err := token.GenerateUserToken()  // 32 hex characters

User tokens are NOT identities. They let a client recognise its own vote and
are never used to reject a second submission.

# Random Hex

	id, err := token.GenerateID(16)  // 32 hex characters
*/
package token
