package scoring

import (
	"strings"

	"manomitra/internal/domain"
)

const noneNarrative = "Your responses show your child is meeting the developmental milestones we asked about. " +
	"Keep enjoying everyday play, talking and reading together, and continue regular check-ups with your pediatrician."

const mildIntro = "A few of your responses may be worth keeping an eye on:"

const mildOutro = "Every child develops at their own pace, and one or two of these on their own is often not a cause for alarm. " +
	"Consider mentioning them at your next pediatric visit, and try the at-home activities for these areas in the meantime."

const significantIntro = "Several of your responses point to areas where your child may benefit from extra support:"

const significantOutro = "This is not a diagnosis. We recommend scheduling an appointment with your pediatrician or a " +
	"developmental specialist to talk through these observations. Early support makes a real difference."

// Narrative renders the fixed template for a tier. Only mild and significant tiers list concerns.
func Narrative(tier domain.Tier, concerns []string) string {
	switch tier {
	case domain.TierMild:
		return mildIntro + "\n" + bullets(concerns) + "\n" + mildOutro
	case domain.TierSignificant:
		return significantIntro + "\n" + bullets(concerns) + "\n" + significantOutro
	default:
		return noneNarrative
	}
}

func bullets(items []string) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	return b.String()
}
