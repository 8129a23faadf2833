package types

// FilePurpose restricts what a file upload may be used for. Vendors that
// only accept a subset (MiniMaxi) validate against this at upload time.
type FilePurpose string

const (
	FilePurposeAssistants FilePurpose = "assistants"
	FilePurposeFineTune   FilePurpose = "fine-tune"
	FilePurposeBatch      FilePurpose = "batch"
	FilePurposeRetrieval  FilePurpose = "retrieval"

	// MiniMaxi's file-management API only accepts this restricted purpose
	// set, validated by providers/minimaxi at upload time.
	FilePurposeVoiceClone    FilePurpose = "voice_clone"
	FilePurposePromptAudio   FilePurpose = "prompt_audio"
	FilePurposeT2AAsyncInput FilePurpose = "t2a_async_input"
)

// FileUploadRequest uploads a file to a provider's file store.
type FileUploadRequest struct {
	Name     string
	Content  []byte
	Purpose  FilePurpose
}

// FileObject describes a previously uploaded file.
type FileObject struct {
	ID        string
	Name      string
	Bytes     int64
	Purpose   FilePurpose
	CreatedAt int64
	Status    string
}

// FileListRequest filters a file listing.
type FileListRequest struct {
	Purpose FilePurpose
	Limit   int
}
