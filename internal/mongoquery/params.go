package mongoquery

// BuilderParameters is the uniform query request shape passed from
// route handlers into every manager's Iterate. Criteria is either a
// bson.M match document or a pre-built list of pipeline stages.
type BuilderParameters struct {
	Criteria interface{} `json:"criteria"`
	Limit    int64       `json:"limit"` // 0 means unlimited
	Skip     int64       `json:"skip"`
	Sort     string      `json:"sort"`
	Order    int         `json:"order"` // 1 ascending, -1 descending
}

// NewBuilderParameters returns parameters with the given criteria and
// defaults: no pagination, sorted by public_id ascending.
func NewBuilderParameters(criteria interface{}) BuilderParameters {
	return BuilderParameters{
		Criteria: criteria,
		Limit:    0,
		Skip:     0,
		Sort:     "public_id",
		Order:    1,
	}
}

// IterationResult is the uniform paginated-response envelope. Total is
// the pre-pagination count, computed by a separate round-trip and
// therefore possibly stale relative to Results under concurrent writes.
type IterationResult[T any] struct {
	Results []T   `json:"results"`
	Total   int64 `json:"total"`
}
