package app

import (
	"fmt"
	"strings"
)

const promptPreamble = `You are a helpful assistant for parents concerned about their child's neurological development.
Analyze the following information and provide a gentle, reassuring, and clear summary.
DO NOT PROVIDE A DIAGNOSIS.
Instead, identify potential areas of concern based on the input, suggest if the behavior could be normal,
and recommend whether they should consider speaking to a pediatrician.`

const attachmentInstruction = `The parent has attached an image or video. Describe what is visible in it and relate
it to their concerns, without drawing any medical conclusions from it.`

// promptInput is everything a prompt may carry besides the fixed instructions.
type promptInput struct {
	Concerns       string
	HasAttachment  bool
	ChildAgeMonths int
}

// buildPrompt concatenates the fixed instructions with the parent's literal text.
func buildPrompt(in promptInput) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n")
	if in.HasAttachment {
		b.WriteString(attachmentInstruction)
		b.WriteString("\n")
	}
	if in.ChildAgeMonths > 0 {
		fmt.Fprintf(&b, "\nChild's age: %d months\n", in.ChildAgeMonths)
	}
	b.WriteString("\nParent's Concern: \"")
	b.WriteString(in.Concerns)
	b.WriteString("\"\n")
	return b.String()
}
