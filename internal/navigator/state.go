package navigator

// State is a page of the form.
type State int

// Form pages in traversal order. StateHero and StateAspect repeat once per
// extra hero.
const (
	StateLoad State = iota
	StateHero
	StateAspect
	StateScenario
	StateCampaign
	StateModulars
	StateOutcome
	StateSubmit
	StateDone
)

var stateNames = [...]string{
	StateLoad:     "load",
	StateHero:     "hero",
	StateAspect:   "aspect",
	StateScenario: "scenario",
	StateCampaign: "campaign",
	StateModulars: "modulars",
	StateOutcome:  "outcome",
	StateSubmit:   "submit",
	StateDone:     "done",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
