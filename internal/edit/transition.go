package edit

import "strings"

// TransitionKind classifies a user-supplied transition name.
type TransitionKind int

const (
	// TransitionNone means no transition object is emitted (cut, none, empty).
	TransitionNone TransitionKind = iota
	// TransitionKnown means the name resolved to an engine effect.
	TransitionKnown
	// TransitionUnknown means the name was not recognized and fell back to fade.
	TransitionUnknown
)

func (k TransitionKind) String() string {
	switch k {
	case TransitionNone:
		return "none"
	case TransitionKnown:
		return "known"
	case TransitionUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Transition holds the in and out effects of a clip.
type Transition struct {
	In  TransitionEffect `json:"in,omitempty"`
	Out TransitionEffect `json:"out,omitempty"`
}

// Short names users type that map onto one engine effect.
var transitionAliases = map[string]TransitionEffect{
	"dissolve":  TransitionFade,
	"crossfade": TransitionFade,
	"wipe":      TransitionWipeRight,
	"slide":     TransitionSlideLeft,
	"carousel":  TransitionCarouselLeft,
	"shuffle":   TransitionShuffleTopRight,
}

var transitionLookup = func() map[string]TransitionEffect {
	lookup := make(map[string]TransitionEffect, len(baseTransitions)*3+len(transitionAliases))
	for _, base := range baseTransitions {
		for _, effect := range []TransitionEffect{base, base.Slow(), base.Fast()} {
			lookup[foldTransitionName(string(effect))] = effect
		}
	}
	for alias, effect := range transitionAliases {
		lookup[alias] = effect
	}
	return lookup
}()

func foldTransitionName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(name)
}

// ParseTransition resolves a transition name. "cut", "none" and the empty
// string yield TransitionNone. Engine effect names match case-insensitively
// with hyphen, underscore or space separators ("wipe-left", "slide_up").
// Anything else yields TransitionUnknown with a fade so compilation never
// fails on a typo.
func ParseTransition(name string) (TransitionEffect, TransitionKind) {
	folded := foldTransitionName(name)
	switch folded {
	case "", "cut", "none":
		return "", TransitionNone
	}
	if effect, ok := transitionLookup[folded]; ok {
		return effect, TransitionKnown
	}
	return TransitionFade, TransitionUnknown
}
