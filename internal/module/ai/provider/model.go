package provider

// RoleUser is the role of end-user turns.
const RoleUser = "user"

// Message is one turn of a chat completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserMessage returns a single-turn user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// ImageOptions are the fixed generation parameters sent with every image request.
type ImageOptions struct {
	Size           string `json:"size,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"` // url or b64_json
	Watermark      bool   `json:"watermark"`
}
