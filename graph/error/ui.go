package grapherror

import (
	"fmt"
	"sort"
)

var defaultMessages = map[Category]string{
	CategoryParse:     "Invalid query - expected: forward|backward|chase <atom> <LinkType> [from to] [depth]",
	CategoryQuery:     "Query could not be answered",
	CategoryGraph:     "Failed to build graph",
	CategoryWebSocket: "Connection error - attempting to reconnect...",
}

// ToUIMessage returns the user message, falling back to a per-category default
func (e *GraphError) ToUIMessage() string {
	if e.UserMessage != "" {
		return e.UserMessage
	}
	if msg, ok := defaultMessages[e.Category]; ok {
		return msg
	}
	return "An error occurred"
}

// ToGraphMeta formats the error for Meta.Config of the empty graph returned
// alongside it.
func (e *GraphError) ToGraphMeta() map[string]string {
	meta := map[string]string{
		"error":       e.Error(),
		"category":    string(e.Category),
		"description": e.ToUIMessage(),
		"timestamp":   e.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
	}
	if e.Subcategory != "" {
		meta["subcategory"] = e.Subcategory
	}
	if len(e.Context) > 0 {
		meta["context"] = fmt.Sprintf("%v", e.Context)
	}
	return meta
}

// ToLogFields converts the error to key-value pairs for a SugaredLogger.
// Context keys are emitted in sorted order.
func (e *GraphError) ToLogFields() []interface{} {
	fields := []interface{}{
		"error_category", e.Category,
		"error_message", e.Error(),
		"user_message", e.UserMessage,
	}
	if e.Subcategory != "" {
		fields = append(fields, "error_subcategory", e.Subcategory)
	}

	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, k, e.Context[k])
	}
	return fields
}

// IsCategory reports whether the error has category cat
func (e *GraphError) IsCategory(cat Category) bool {
	return e.Category == cat
}

// IsSubcategory reports whether the error has subcategory sub
func (e *GraphError) IsSubcategory(sub string) bool {
	return e.Subcategory == sub
}
