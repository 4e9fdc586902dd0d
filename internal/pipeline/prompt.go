package pipeline

import (
	"fmt"
	"strings"

	"github.com/efebarandurmaz/ragpipe/internal/llm"
	"github.com/efebarandurmaz/ragpipe/internal/vector"
)

const answerSystemPrompt = "You are a question answering assistant. " +
	"Answer using only the information in the provided context. " +
	"If the context does not contain the answer, say that you do not know."

// BuildPrompt assembles the fixed answering prompt: the instruction, the
// retrieved context blocks, and the literal question text. An empty context
// set produces a prompt with an empty context section.
func BuildPrompt(question string, contexts []vector.SearchResult) *llm.Prompt {
	var b strings.Builder
	b.WriteString("Context:\n")
	for i, c := range contexts {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, c.Content)
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)

	return &llm.Prompt{
		SystemPrompt: answerSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: b.String()},
		},
	}
}
