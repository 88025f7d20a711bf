package llm

import (
	"context"
	"fmt"
)

const answerSystemPrompt = `You are a helpful martial-arts knowledge assistant. Answer the user's question based ONLY on the provided context.
If the context doesn't contain enough information to answer the question, say so.
Be concise and cite specific information from the context where relevant.`

// SynthesizeAnswer generates an answer from retrieved context. When onToken
// is non-nil the answer is additionally streamed chunk by chunk. Returns the
// full answer text and the token count.
func (m *Model) SynthesizeAnswer(ctx context.Context, query, searchContext string, onToken func(string) error) (string, int, error) {
	userPrompt := fmt.Sprintf(`Context:
%s

Question: %s

Answer:`, searchContext, query)

	return m.GenerateWithSystem(ctx, answerSystemPrompt, userPrompt, onToken)
}
