package db

import (
	"strings"

	"github.com/teranos/atomspace/errors"
)

// ErrDatabaseClosed is returned when operations are attempted on a closed database.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed checks if an error indicates the database connection is
// closed, either as a wrapped ErrDatabaseClosed or as the raw driver error.
// The driver returns its own error values, hence the message fallback.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}

	return strings.Contains(err.Error(), "database is closed")
}

// IsMissingSchema reports whether err comes from querying a database that
// was never migrated.
func IsMissingSchema(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
