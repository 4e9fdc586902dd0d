package llm

// Response is a completion result normalized across providers. Content is the
// raw model output; callers that surface answers to users run it through
// StripThinkingTags first. Token counts feed the request metrics and may be
// zero for providers that do not report usage.
type Response struct {
	Content      string `json:"content"`
	Model        string `json:"model,omitempty"`
	InputTokens  int    `json:"input_tokens,omitempty"`
	OutputTokens int    `json:"output_tokens,omitempty"`
	StopReason   string `json:"stop_reason,omitempty"`
}
