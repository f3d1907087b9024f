package domain

// VectorConfig holds vectorization settings shared by the embedder and the index bootstrap.
type VectorConfig struct {
	Model            string
	Dimensions       int
	DistanceMetric   string
	Algorithm        string
	QueryInstruction string
}

// DefaultVectorConfig returns the defaults for OpenAI text-embedding-3-small.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:            "text-embedding-3-small",
		Dimensions:       1536,
		DistanceMetric:   "cosine",
		Algorithm:        "hnsw",
		QueryInstruction: "",
	}
}
