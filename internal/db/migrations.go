package db

import (
	"context"
	"fmt"
)

// FixLegacyTimeFormats rewrites fetched_at values stored with a zone suffix.
// modernc.org/sqlite stores a bound time.Time as "2006-01-02 15:04:05 +0000 UTC",
// which sqlite's date functions and string comparisons do not understand.
func (db *DB) FixLegacyTimeFormats() error {
	queries := []string{
		`UPDATE range_snapshots
		 SET fetched_at = SUBSTR(fetched_at, 1, 19)
		 WHERE length(fetched_at) > 19 AND fetched_at LIKE '% UTC'`,

		`UPDATE page_totals
		 SET fetched_at = SUBSTR(fetched_at, 1, 19)
		 WHERE length(fetched_at) > 19 AND fetched_at LIKE '% UTC'`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(context.Background(), query); err != nil {
			return fmt.Errorf("failed to fix legacy time formats: %w", err)
		}
	}

	return nil
}
