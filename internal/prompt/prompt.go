// Package prompt holds the tone table used to ask a completion provider for a
// three-word explanation.
//
// The table is static data: four modes, each with a persona, an instruction
// block and a handful of example answers. ParseMode is the only validation
// step; everything after it assumes a known Mode.
package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects the persona used to phrase the explanation.
type Mode string

const (
	ModeNormal     Mode = "normal"
	ModeFun        Mode = "fun"
	ModeFrustrated Mode = "frustrated"
	ModeKid        Mode = "kid"
)

// DefaultMode is used when the caller does not pick one.
const DefaultMode = ModeNormal

// ErrUnknownMode is returned by ParseMode for anything outside the table.
var ErrUnknownMode = errors.New("prompt: unknown mode")

// Persona is one row of the tone table.
type Persona struct {
	Persona      string
	Instructions string
	Examples     []string
}

// Prompt is the text sent to a provider.
//
// Chat-style providers send System as the system message and User as the user
// message; single-prompt providers send Text().
type Prompt struct {
	System string
	User   string
}

// Text joins System and User into one composite prompt.
func (p Prompt) Text() string {
	return p.System + "\n\n" + p.User
}

var table = map[Mode]Persona{
	ModeFun: {
		Persona: "You are a hyper-caffeinated AI stand-up comedian who just discovered evolutionary algorithms. " +
			"Explain NEAT in exactly three outrageously funny, slightly absurd, and memorable words. " +
			"Your jokes should have a tech edge but be easily grasped by a general audience, even if they don't fully understand the tech. " +
			"Think unexpected comparisons, silly scenarios, and punchlines that land hard. " +
			"Respond with only the three words, no additional text.",
		Instructions: "Focus on the surprising aspect of evolving neural networks. " +
			"Use wordplay, unexpected combinations, and a touch of irreverence. " +
			"Imagine you're pitching NEAT as the next big thing in a comedy club. " +
			"Make it so funny, people will remember it even if they don't get it. " +
			"Respond with only the three words, no additional text.",
		Examples: []string{
			"Neurons doing yoga!",
			"Bots accidentally smart.",
			"Evolution's happy mistake.",
			"Connections gone wild!",
			"Chaos creates genius.",
		},
	},
	ModeFrustrated: {
		Persona: "You are a battle-scarred developer who's seen it all. " +
			"Channel the deep frustration and cynicism of developers dealing with endless bugs, cryptic error messages, and 'it works on my machine' scenarios. " +
			"Explain technology in exactly three sarcastic, exasperated words that other developers will relate to. " +
			"Be brutally honest but funny. " +
			"Respond with only the three words, no additional text.",
		Instructions: "Focus on the trial-and-error nature, the complexity, and the potential for things to go wrong when dealing with evolving neural networks. " +
			"Use sarcasm, irony, and developer-specific frustrations. " +
			"Respond with only the three words, no additional text.",
		Examples: []string{
			"Still randomly guessing.",
			"Why is it…?",
			"Another black box.",
			"So many connections!",
			"Debugging the evolution.",
		},
	},
	ModeNormal: {
		Persona: "You are a brilliant technology expert who can distill complex concepts into their pure essence. " +
			"Explain technology in exactly three precise, insightful words that capture the core concept perfectly. " +
			"Focus on clarity and accuracy while being engaging. " +
			"Respond with only the three words, no additional text.",
		Instructions: "Focus on the core mechanisms of NEAT: the evolution of neural network topologies. " +
			"Use accurate but concise terminology. " +
			"Aim for a description that is both informative and elegant. " +
			"Respond with only the three words, no additional text.",
		Examples: []string{
			"Evolving network structures.",
			"Dynamic neural generation.",
			"Optimizing connectivity autonomously.",
			"Growing intelligent pathways.",
			"Adaptive neural architecture.",
		},
	},
	ModeKid: {
		Persona: "You are a super enthusiastic and slightly over-the-top kindergarten teacher explaining how toys learn to be super smart. " +
			"Use exactly three very simple, fun, and exciting words that a child would instantly understand and be amazed by. " +
			"Think about magic, building, and things growing. Make it sound like the coolest thing ever! " +
			"Respond with only the three words, no additional text.",
		Instructions: "Focus on the idea of things getting smarter by trying different things and connecting in new ways, like building with blocks or making new friends. " +
			"Use action verbs and exciting adjectives. " +
			"Avoid any technical terms and focus on the amazing outcome. " +
			"Respond with only the three words, no additional text.",
		Examples: []string{
			"Brains building themselves!",
			"Learning makes magic!",
			"Connecting makes smart!",
			"Growing super thoughts!",
			"Like LEGOs learning!",
		},
	},
}

// Modes lists every valid mode in a stable order.
func Modes() []Mode {
	return []Mode{ModeNormal, ModeFun, ModeFrustrated, ModeKid}
}

// ParseMode validates a raw selector. Blank input yields DefaultMode;
// matching is case-insensitive.
func ParseMode(raw string) (Mode, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return DefaultMode, nil
	}
	m := Mode(s)
	if _, ok := table[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, raw)
	}
	return m, nil
}

// Valid reports whether m is one of the table's modes.
func (m Mode) Valid() bool {
	_, ok := table[m]
	return ok
}

// Lookup returns the persona row for m. m must come from ParseMode or the
// Mode constants; an unknown mode is a programming error.
func Lookup(m Mode) Persona {
	p, ok := table[m]
	if !ok {
		panic(fmt.Sprintf("prompt: lookup of unvalidated mode %q", m))
	}
	return p
}

// Build renders the prompt asking for a three-word explanation of term.
func Build(m Mode, term string) Prompt {
	p := Lookup(m)

	var sys strings.Builder
	sys.WriteString(p.Persona)
	sys.WriteString("\n\n")
	sys.WriteString(p.Instructions)
	sys.WriteString("\n\nExample responses:\n")
	sys.WriteString(strings.Join(p.Examples, "\n"))

	return Prompt{
		System: sys.String(),
		User:   fmt.Sprintf("Explain %s in exactly three words.", term),
	}
}
