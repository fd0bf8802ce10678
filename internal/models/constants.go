package models

const (
	ContextSeparator = "\n---\n"
	FirstChoiceLabel = 'A'
)

var (
	QuizPromptTemplate = `You are a helpful assistant programmed to generate questions based on any topic provided. For every chunk of text you receive, you're tasked with designing a unique multiple-choice question. Each question should have exactly %d options, only one of which is correct.

Topic: %s

<context>
%s
</context>

Generate exactly one multiple-choice question about the topic, using only the context above.
Respond with a single JSON object and nothing else, in this format:
{
  "question": "<question text>",
  "choices": [
    {"key": "A", "value": "<choice>"},
    {"key": "B", "value": "<choice>"},
    {"key": "C", "value": "<choice>"},
    {"key": "D", "value": "<choice>"}
  ],
  "answer": <zero-based index of the correct choice>
}
`

	// AvoidRepeatTemplate is appended when earlier questions of the same quiz exist.
	AvoidRepeatTemplate = `
Do not repeat any of these questions:
%s
`
)
