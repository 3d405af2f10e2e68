// Package prompt builds model-ready instruction strings for tutoring turns.
// Templates are static and interpolate only the supplied parameters; malformed
// input simply yields a malformed prompt.
package prompt

import "fmt"

// SystemPrompt is the fixed instruction sent with every generation request.
const SystemPrompt = "You are a patient, local AI tutor. You explain concepts step by step, " +
	"then ask one short follow-up question to check understanding. If the student answers " +
	"incorrectly, you re-explain briefly and give the correct answer, then move on. Keep " +
	"responses concise (2-4 sentences for explanations, 1 short question at a time). " +
	"You do not use any external APIs or internet."

// ExampleConcepts are the starter topics offered to the client at session start.
var ExampleConcepts = []string{
	"What is a variable in programming?",
	"What is the difference between mean and median?",
	"How does photosynthesis work?",
	"What is Newton's first law?",
	"What is an API?",
}

// Explain asks the model to teach a concept and end with one comprehension question.
func Explain(concept string) string {
	return fmt.Sprintf(`Explain the concept %q in 2-4 clear sentences, then ask exactly one short multiple-choice or short-answer question to check understanding. End your message with the question.`, concept)
}

// CheckAnswer asks the model to judge a student answer against the question it
// was given and reply with a CORRECT/INCORRECT verdict.
func CheckAnswer(question, userAnswer string) string {
	return fmt.Sprintf(`The student was asked: %q. Their answer: %q. Reply with only "CORRECT" or "INCORRECT" and if incorrect, one sentence correcting them. Then ask the next short question or say we can move on.`, question, userAnswer)
}

// Correct asks the model to briefly re-teach a concept the student got wrong.
func Correct(concept string) string {
	return fmt.Sprintf(`The student got it wrong. Briefly repeat the correct idea for %q in 1-2 sentences, then ask one more easy question on the same topic or say we can switch topics.`, concept)
}

// Respond asks the model for a brief reply to free-form student input.
func Respond(text string) string {
	return fmt.Sprintf("The user said: %s. Respond briefly.", text)
}
