package db

// SQL fragments shared by the history queries.
const (
	// timeLayout is the format fetched_at is stored in, compatible with
	// sqlite's date and time functions.
	timeLayout = "2006-01-02 15:04:05"

	// sqlSinceClause filters rows fetched at or after a bound.
	sqlSinceClause = "AND fetched_at >= ?"
)
