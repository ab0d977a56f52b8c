package models

// Document is one unit of raw source text produced by the corpus loader.
// Plain-text files load as a single document; PDF files load as one
// document per page.
type Document struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Page   int    `json:"page,omitempty"`
	Text   string `json:"text"`
}

// Chunk is a bounded slice of a document's text, the unit of embedding
// and retrieval. Offset is the starting rune position within the parent
// document.
type Chunk struct {
	ChunkID    string `json:"chunk_id"`
	DocumentID string `json:"document_id"`
	Source     string `json:"source"`
	Page       int    `json:"page,omitempty"`
	Index      int    `json:"index"`
	Offset     int    `json:"offset"`
	Text       string `json:"text"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged message in a conversation. Histories are
// ordered slices of turns owned by a single user id.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	UserID      string `json:"userId"`
	Message     string `json:"message"`
	ChatHistory []Turn `json:"chatHistory,omitempty"`
}

type ChatResponse struct {
	Response string `json:"response"`
}
