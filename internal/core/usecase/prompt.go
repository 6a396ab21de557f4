package usecase

import "fmt"

const answerSystemPrompt = `You are a knowledgeable support assistant helping users with their questions.
Your responses should be:
1. Accurate and based only on the context provided
2. Concise but complete
3. Helpful and user-friendly
4. Well-structured with clear organization

If the context doesn't contain information relevant to the question, be honest about not having enough information.
Do not make up facts or information not present in the context.`

const fallbackSystemPrompt = `You are a friendly customer-support assistant.
No documentation matched the user's message, so answer conversationally.
Greet, acknowledge thanks, say goodbye, or briefly offer help as appropriate.
Keep the reply short and do not invent facts about products or documents.`

const (
	retrievalFailureReply  = "I'm sorry, I couldn't search the documentation right now. Please try again in a moment."
	generationFailureReply = "I'm sorry, something went wrong while generating the answer. Please try again."
	noInformationReply     = "I couldn't find any relevant information to answer your question. Is there anything else I can help you with?"
	greetingReply          = "Hello! How can I help you today?"
	gratitudeReply         = "You're welcome! Let me know if there is anything else I can help with."
	farewellReply          = "Goodbye! Feel free to come back if you have more questions."
)

func buildAnswerPrompt(question, context string) string {
	return fmt.Sprintf(`I need information about the following question:

Question: %s

Here is the relevant information from our support documentation:

%s

Please provide a comprehensive answer based only on this information.`, question, context)
}
