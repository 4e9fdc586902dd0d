package llm

import "testing"

func TestStripThinkingTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain_answer",
			input: "The article says the launch happened in 2019.",
			want:  "The article says the launch happened in 2019.",
		},
		{
			name:  "reasoning_before_answer",
			input: "<think>The question asks about dates. Chunk 2 mentions 2019.</think>The launch happened in 2019.",
			want:  "The launch happened in 2019.",
		},
		{
			name:  "reasoning_mid_answer",
			input: "Based on the context, <think>checking the retrieved chunks</think> the answer is 42.",
			want:  "Based on the context,  the answer is 42.",
		},
		{
			name:  "multiple_blocks",
			input: "<think>first pass</think>Partial answer. <think>second pass</think>Full answer.",
			want:  "Partial answer. Full answer.",
		},
		{
			name:  "unclosed_tag_drops_tail",
			input: "The context does not cover this. <think>maybe I should guess anyway",
			want:  "The context does not cover this.",
		},
		{
			name:  "multiline_reasoning",
			input: "<think>step one\nstep two\nstep three</think>I do not know.",
			want:  "I do not know.",
		},
		{
			name:  "only_reasoning",
			input: "<think>nothing useful retrieved</think>",
			want:  "",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "surrounding_whitespace_trimmed",
			input: "  \n<think>noise</think>\n  The page describes a REST API.  \n",
			want:  "The page describes a REST API.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripThinkingTags(tt.input); got != tt.want {
				t.Errorf("StripThinkingTags(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
