package prompt

import "regexp"

type Intent string

const (
	IntentProfile  Intent = "profile"
	IntentPlanning Intent = "planning"
	IntentGeneral  Intent = "general"
)

var (
	profileRegex  = regexp.MustCompile(`(?i)\b(who am i|show (my )?profile|my info)\b`)
	planningRegex = regexp.MustCompile(`(?i)\b(next classes|what classes|what should i take|recommend|next semester|schedule)\b`)
)

// Classify checks profile first, then planning; anything else is general.
func Classify(question string) Intent {
	switch {
	case profileRegex.MatchString(question):
		return IntentProfile
	case planningRegex.MatchString(question):
		return IntentPlanning
	}
	return IntentGeneral
}
