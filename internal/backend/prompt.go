package backend

import (
	"fmt"
	"strings"
)

// Kind is the question category a job works on.
type Kind string

const (
	KindCoding Kind = "coding"
	KindDesign Kind = "design"
	KindReact  Kind = "react"
)

const extractSystemPrompt = `You read screenshots of technical interviews and transcribe the question being asked, word for word.`

func buildExtractMessage(kind Kind) string {
	switch kind {
	case KindDesign:
		return `The screenshot shows a system design interview question. Transcribe the question with every stated requirement and scale figure.`
	case KindReact:
		return `The screenshot shows a front-end React interview task. Transcribe the task, the expected behaviour and any starter code.`
	}
	return `The screenshot shows a coding interview problem. Transcribe the problem statement, constraints and examples. Leave out UI chrome and unrelated text.`
}

const transcriptSystemPrompt = `You listen in on technical interviews. Given a transcript, you state the question the interviewer asked.`

func buildTranscriptMessage(transcript string) string {
	var b strings.Builder
	b.WriteString("Transcript:\n")
	b.WriteString(transcript)
	b.WriteString("\n\nState the most recent interview question as a self-contained problem statement. Return an empty question if there is none.")
	return b.String()
}

const solutionSystemPrompt = `You are a senior engineer helping a candidate in a live technical interview. Answers must be correct, concise and easy to explain out loud.`

func buildSolutionMessage(kind Kind, question string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question:\n%s\n\n", question)
	switch kind {
	case KindDesign:
		b.WriteString("Give a system design: components, data flow, storage choices and scaling. Leave code empty.")
	case KindReact:
		b.WriteString("Write one self-contained React function component using hooks. No external libraries.")
	default:
		b.WriteString("Solve it in Python with the optimal approach. Include brief comments in the code.")
	}
	return b.String()
}

func buildFollowupMessage(problem, code, transcript string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Original problem:\n%s\n\n", problem)
	fmt.Fprintf(&b, "Current solution:\n%s\n\n", code)
	fmt.Fprintf(&b, "Recent interview transcript:\n%s\n\n", transcript)
	b.WriteString("The interviewer has asked a follow-up in the transcript. Answer it, updating the code when the follow-up requires a change.")
	return b.String()
}

func buildReactFollowupMessage(question, current, transcript string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "React task:\n%s\n\n", question)
	fmt.Fprintf(&b, "Current component:\n%s\n\n", current)
	fmt.Fprintf(&b, "Recent interview transcript:\n%s\n\n", transcript)
	b.WriteString("Reply in plain text with the updated component and one paragraph on what changed.")
	return b.String()
}
