package navigator

import (
	"fmt"
	"strings"
)

// DefaultFormURL is the address of the play-log form. Config, PLAYLOG_FORM_URL
// and --form-url override it.
const DefaultFormURL = "https://docs.google.com/forms/d/e/1FAIpQLSf-mc-play-log/viewform"

// Profile holds the form's wording: question texts used to scope controls
// and the labels of buttons and fixed answers.
type Profile struct {
	HeroQuestion     string
	AspectQuestion   string
	ScenarioQuestion string
	CampaignQuestion string
	ModularQuestion  string
	OutcomeQuestion  string
	// AltDifficultyQuestion is the coarse standard/expert question.
	AltDifficultyQuestion string
	StandardQuestion      string
	ExpertQuestion        string
	HeroicQuestion        string
	// AnotherHeroQuestions are indexed by the number of heroes entered so
	// far minus one: "second hero", "third hero", "fourth hero".
	AnotherHeroQuestions []string

	Yes    string
	No     string
	Win    string
	Loss   string
	Next   string
	Submit string
}

// DefaultProfile returns the wording of the live form.
func DefaultProfile() Profile {
	return Profile{
		HeroQuestion:          "Which hero did you play",
		AspectQuestion:        "Which aspect",
		ScenarioQuestion:      "Which scenario",
		CampaignQuestion:      "campaign mode",
		ModularQuestion:       "modular",
		OutcomeQuestion:       "Did you win",
		AltDifficultyQuestion: "Which difficulty",
		StandardQuestion:      "Standard set",
		ExpertQuestion:        "Expert set",
		HeroicQuestion:        "Heroic level",
		AnotherHeroQuestions: []string{
			"play a second hero",
			"play a third hero",
			"play a fourth hero",
		},
		Yes:    "Yes",
		No:     "No",
		Win:    "Win",
		Loss:   "Loss",
		Next:   "Next",
		Submit: "Submit",
	}
}

// WithLabels returns a copy of p with wording overridden by key, such as
// "hero-question", "third-hero-question" or "submit".
func (p Profile) WithLabels(labels map[string]string) (Profile, error) {
	p.AnotherHeroQuestions = append([]string(nil), p.AnotherHeroQuestions...)
	for key, value := range labels {
		if strings.TrimSpace(value) == "" {
			return Profile{}, fmt.Errorf("form label %q is empty", key)
		}
		if target := p.field(key); target != nil {
			*target = value
			continue
		}
		return Profile{}, fmt.Errorf("unknown form label %q", key)
	}
	return p, nil
}

func (p *Profile) field(key string) *string {
	switch key {
	case "hero-question":
		return &p.HeroQuestion
	case "aspect-question":
		return &p.AspectQuestion
	case "scenario-question":
		return &p.ScenarioQuestion
	case "campaign-question":
		return &p.CampaignQuestion
	case "modular-question":
		return &p.ModularQuestion
	case "outcome-question":
		return &p.OutcomeQuestion
	case "alt-difficulty-question":
		return &p.AltDifficultyQuestion
	case "standard-question":
		return &p.StandardQuestion
	case "expert-question":
		return &p.ExpertQuestion
	case "heroic-question":
		return &p.HeroicQuestion
	case "yes":
		return &p.Yes
	case "no":
		return &p.No
	case "win":
		return &p.Win
	case "loss":
		return &p.Loss
	case "next":
		return &p.Next
	case "submit":
		return &p.Submit
	}
	for i, ordinal := range []string{"second", "third", "fourth"} {
		if key == ordinal+"-hero-question" && i < len(p.AnotherHeroQuestions) {
			return &p.AnotherHeroQuestions[i]
		}
	}
	return nil
}
