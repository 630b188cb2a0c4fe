package types

// GetMemoryArgs uses pointers so a missing argument can be told apart from an
// empty string; only the former is rejected.
type GetMemoryArgs struct {
	Query *string `json:"query" validate:"required"`
}

type StoreMemoryArgs struct {
	Query   *string `json:"query" validate:"required"`
	Context *string `json:"context" validate:"required"`
}
