package grapherror

// Category is the main error category for graph operations
type Category string

const (
	// CategoryParse indicates the query text could not be parsed
	CategoryParse Category = "parse"

	// CategoryQuery indicates the query parsed but could not be answered
	CategoryQuery Category = "query"

	// CategoryGraph indicates a failure while assembling the graph
	CategoryGraph Category = "graph"

	// CategoryWebSocket indicates a failure on a graph WebSocket connection
	CategoryWebSocket Category = "websocket"
)

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// Parse subcategories
const (
	// SubcategoryParseInvalidSyntax indicates a malformed query line
	SubcategoryParseInvalidSyntax = "invalid_syntax"

	// SubcategoryParseInvalidValue indicates an unknown atom type or a bad number
	SubcategoryParseInvalidValue = "invalid_value"
)

// Query subcategories
const (
	// SubcategoryQueryUnknownAtom indicates the start atom does not exist
	SubcategoryQueryUnknownAtom = "unknown_atom"

	// SubcategoryQueryDatabase indicates the store failed during a chase
	SubcategoryQueryDatabase = "database"

	// SubcategoryQueryTimeout indicates the caller's context ended first
	SubcategoryQueryTimeout = "timeout"
)

// Graph subcategories
const (
	// SubcategoryGraphTruncated indicates the node limit cut expansion short
	SubcategoryGraphTruncated = "truncated"
)

// WebSocket subcategories
const (
	// SubcategoryWSUpgrade indicates the HTTP upgrade failed
	SubcategoryWSUpgrade = "upgrade"

	// SubcategoryWSRead indicates reading from the connection failed
	SubcategoryWSRead = "read"

	// SubcategoryWSWrite indicates writing to the connection failed
	SubcategoryWSWrite = "write"
)
