// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package catalog holds the fixed table of policy categories.

# Data

The table lives in categories.yaml, embedded into the binary and parsed once:

	cat := catalog.Default()

Each category has an id (1-10), a name, the 3 questions the scoring oracle
answers for a proposal, and the 3 questions voters answer at registration.

# Lookup

Names compare case-insensitively and otherwise exactly:

	c, err := cat.Lookup("salud")      // Salud, id 3
	id, err := cat.CategoryID("SALUD") // 3
	_, err = cat.Lookup("Salud ")      // models.ErrCategoryNotFound

Returned categories are copies; the catalog cannot be mutated after Parse.

Adding or renaming a category means editing categories.yaml and redeploying.
*/
package catalog
