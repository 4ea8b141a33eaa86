package domain

// Recommendation modes.
const (
	ModeChat  = "chat"
	ModePhoto = "photo"
)

// ChatMessage is one turn of the client-held conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RecommendRequest is the body of the recommend endpoint.
type RecommendRequest struct {
	Mode        string        `json:"mode"`
	Messages    []ChatMessage `json:"messages"`
	ImageBase64 string        `json:"imageBase64"`
	ImageMime   string        `json:"imageMime"`
}

// Prompt is what the generator receives.
type Prompt struct {
	Text      string
	Image     []byte
	ImageMIME string
}

// HasImage reports whether the prompt carries inline image data.
func (p *Prompt) HasImage() bool { return len(p.Image) > 0 }
