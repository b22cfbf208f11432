package chat

import "fmt"

const answerPromptTemplate = `You are a helpful assistant answering questions about the user's voice notes.

Here is the relevant content from the user's notes:

%s

Question: %s

Answer the question using only the content above. Be specific and mention which event the information came from. If the content does not contain the answer, say so.`

const noContextPromptTemplate = `You are a helpful assistant for a voice note app. The user asked:

%s

No relevant notes were found for this question. Briefly tell the user that nothing in their notes matches, and suggest they record a note about it or rephrase the question. Do not invent content.`

func buildAnswerPrompt(contextText, question string) string {
	return fmt.Sprintf(answerPromptTemplate, contextText, question)
}

func buildNoContextPrompt(question string) string {
	return fmt.Sprintf(noContextPromptTemplate, question)
}
