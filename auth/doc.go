// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides record IDs and access-key utilities.

# Access Keys

Politicians and voters receive a key when they register. Keys use
HMAC-SHA256 over the role and record ID:

	key := auth.GenerateKey(auth.RoleVoter, voterID, salt)
	err := auth.ValidateKey(auth.RoleVoter, voterID, key, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same role, ID and salt always produce the same key. This allows validation
without storing the key in the database. The role is part of the MAC input,
so a voter key never validates as a politician key for the same ID.

Handlers read keys from the X-Politician-Key and X-Voter-Key headers.

# Admin Key

Admin endpoints compare X-Admin-Key against the configured ADMIN_KEY in
constant time:

	err := auth.ValidateAdminKey(r.Header.Get("X-Admin-Key"), cfg.AdminKey)

# ID Generation

Random UUIDs for database records:

	id := auth.NewID()
*/
package auth
