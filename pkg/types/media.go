package types

// ImageRequest asks a provider to generate one or more images from a text
// prompt.
type ImageRequest struct {
	Prompt         string
	Model          string
	N              int
	Size           string
	Quality        string
	ResponseFormat string
}

// ImageResponse is the canonical image generation result.
type ImageResponse struct {
	Images []ImageArtifact
	Usage  *ImageUsage
}

// ImageArtifact is one generated image, either as a URL or inline base64.
type ImageArtifact struct {
	URL       string
	Base64    string
	MediaType string
}

// SpeechRequest asks a provider to synthesize audio from text.
type SpeechRequest struct {
	Text   string
	Model  string
	Voice  string
	Format string
	Speed  float64
}

// SpeechResponse is the canonical text-to-speech result.
type SpeechResponse struct {
	Audio     []byte
	MediaType string
	Usage     *SpeechUsage
}

// TranscriptionRequest asks a provider to transcribe audio to text.
type TranscriptionRequest struct {
	Audio     []byte
	MediaType string
	Model     string
	Language  string
	Prompt    string
}

// TranscriptionResponse is the canonical speech-to-text result.
type TranscriptionResponse struct {
	Text     string
	Language string
	Duration float64
	Usage    *TranscriptionUsage
}
