package render

import (
	"fmt"
	"strings"
)

// Style is one of the four listening styles, in canonical order.
type Style int

const (
	People Style = iota
	Action
	Time
	Message
)

// styleNames are the wire names of the styles.
var styleNames = [...]string{"PESSOAS", "ACAO", "TEMPO", "MENSAGEM"}

// Styles returns all styles in canonical order.
func Styles() []Style {
	return []Style{People, Action, Time, Message}
}

// String returns the wire name of the style.
func (s Style) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Style(%d)", int(s))
	}
	return styleNames[s]
}

// Valid reports whether s is one of the four styles.
func (s Style) Valid() bool {
	return s >= People && s <= Message
}

// ParseStyle parses a wire name such as "PESSOAS". Matching ignores case and
// surrounding whitespace.
func ParseStyle(name string) (Style, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for i, n := range styleNames {
		if n == name {
			return Style(i), nil
		}
	}
	return 0, fmt.Errorf("unknown style %q (want one of %s)", name, strings.Join(styleNames[:], ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (s Style) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid style %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Style) UnmarshalText(text []byte) error {
	v, err := ParseStyle(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Scores holds one score per style.
type Scores struct {
	People  int
	Action  int
	Time    int
	Message int
}

// Of returns the score of style s, or 0 for an invalid style.
func (sc Scores) Of(s Style) int {
	if !s.Valid() {
		return 0
	}
	return sc.Values()[s]
}

// Values returns the scores in canonical order.
func (sc Scores) Values() [4]int {
	return [4]int{sc.People, sc.Action, sc.Time, sc.Message}
}

// Request is the data substituted into one cover template.
type Request struct {
	ParticipantName string
	Scores          Scores
	Dominant        Style
	LeastDeveloped  Style
}
