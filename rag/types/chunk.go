package types

// Candidate is a single record returned by a vector index for one query.
// Distance follows the cosine-distance convention, so similarity is 1 - Distance.
type Candidate struct {
	Document string
	Metadata map[string]string
	Distance float32
}

// Chunk is one retrievable article excerpt with its similarity score
// relative to the query. Chunks are transient and do not persist beyond
// a single retrieval call; display ranks are assigned by the caller.
type Chunk struct {
	Text     string  `json:"text"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
	Link     string  `json:"link"`
	Score    float32 `json:"score"`
}

// Article is one row of the prepared news table: the text that gets
// embedded plus the metadata stored alongside it. Date is kept as an
// opaque string and never parsed.
type Article struct {
	Text     string
	Category string
	Date     string
	Link     string
}
