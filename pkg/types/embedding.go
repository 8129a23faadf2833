package types

// EmbeddingTaskType hints at how an embedding will be used, letting
// providers that support task-conditioned embeddings (Gemini, Vertex)
// specialize the vector.
type EmbeddingTaskType string

const (
	EmbeddingTaskRetrievalQuery    EmbeddingTaskType = "retrieval-query"
	EmbeddingTaskRetrievalDocument EmbeddingTaskType = "retrieval-document"
	EmbeddingTaskSemanticSimilarity EmbeddingTaskType = "semantic-similarity"
	EmbeddingTaskClassification    EmbeddingTaskType = "classification"
	EmbeddingTaskClustering        EmbeddingTaskType = "clustering"
	EmbeddingTaskQuestionAnswering EmbeddingTaskType = "question-answering"
	EmbeddingTaskFactVerification  EmbeddingTaskType = "fact-verification"
	EmbeddingTaskCodeRetrievalQuery EmbeddingTaskType = "code-retrieval-query"
	EmbeddingTaskUnspecified       EmbeddingTaskType = "unspecified"
)

// EmbeddingRequest is the canonical embedding request shape.
type EmbeddingRequest struct {
	Input           []string
	Model           string
	Dimensions      *int64
	TaskType        *EmbeddingTaskType
	Title           string
	ProviderOptions map[string]map[string]any
}

// EmbeddingResponse is the canonical embedding result.
type EmbeddingResponse struct {
	Embeddings [][]float32
	Model      string
	Usage      *EmbeddingUsage
}
