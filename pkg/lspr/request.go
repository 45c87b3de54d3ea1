package lspr

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/lspr-report/lspr/pkg/lspr/render"
)

// Score bounds of a single style.
const (
	MinScore = 0
	MaxScore = 60
)

// ReportRequest is one report order as read from JSON or YAML. Field names
// follow the Portuguese wire format of the report service.
type ReportRequest struct {
	Participant string `json:"participante" yaml:"participante"`
	// Scores maps style wire names (PESSOAS, ACAO, TEMPO, MENSAGEM) to scores.
	Scores         map[string]int `json:"pontuacoes" yaml:"pontuacoes"`
	Dominant       string         `json:"predominante" yaml:"predominante"`
	LeastDeveloped string         `json:"menosDesenvolvido" yaml:"menosDesenvolvido"`
	// Variant names the template pair. Empty derives it from the two styles.
	Variant string `json:"arquivo,omitempty" yaml:"arquivo,omitempty"`
}

// Resolve validates the request and returns the substitution request and
// the template variant. Every problem is reported in one ValidationError.
func (r *ReportRequest) Resolve() (render.Request, string, error) {
	var out render.Request
	v := &ValidationError{}
	if r == nil {
		v.Add("request", "must not be empty")
		return out, "", v
	}

	out.ParticipantName = normalize(strings.TrimSpace(r.Participant))
	if out.ParticipantName == "" {
		v.Add("participante", "must not be empty")
	}

	dominant, domErr := render.ParseStyle(r.Dominant)
	if domErr != nil {
		v.Add("predominante", "%v", domErr)
	}
	least, leastErr := render.ParseStyle(r.LeastDeveloped)
	if leastErr != nil {
		v.Add("menosDesenvolvido", "%v", leastErr)
	}
	if domErr == nil && leastErr == nil && dominant == least {
		v.Add("menosDesenvolvido", "must differ from predominante (both %s)", dominant)
	}
	out.Dominant = dominant
	out.LeastDeveloped = least

	out.Scores = r.resolveScores(v)

	variant := strings.TrimSpace(r.Variant)
	switch {
	case variant != "":
		variant = normalize(variant)
		if !IsVariant(variant) {
			v.Add("arquivo", "unknown template %q", variant)
		}
	case domErr == nil && leastErr == nil && dominant != least:
		variant = VariantFor(dominant, least)
	}

	if err := v.Err(); err != nil {
		return render.Request{}, "", err
	}
	return out, variant, nil
}

func (r *ReportRequest) resolveScores(v *ValidationError) render.Scores {
	var values [4]int
	seen := make(map[render.Style]bool, len(r.Scores))

	keys := make([]string, 0, len(r.Scores))
	for k := range r.Scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		score := r.Scores[k]
		s, err := render.ParseStyle(k)
		if err != nil {
			v.Add("pontuacoes."+k, "unknown style")
			continue
		}
		if seen[s] {
			v.Add("pontuacoes."+k, "duplicate score for %s", s)
			continue
		}
		seen[s] = true
		if score < MinScore || score > MaxScore {
			v.Add("pontuacoes."+s.String(), "must be between %d and %d, got %d", MinScore, MaxScore, score)
		}
		values[s] = score
	}
	for _, s := range render.Styles() {
		if !seen[s] {
			v.Add("pontuacoes."+s.String(), "missing")
		}
	}
	return render.Scores{People: values[0], Action: values[1], Time: values[2], Message: values[3]}
}

// NewReportRequest builds a request from typed values.
func NewReportRequest(participant string, scores render.Scores, dominant, least render.Style) *ReportRequest {
	values := scores.Values()
	m := make(map[string]int, len(values))
	for _, s := range render.Styles() {
		m[s.String()] = values[s]
	}
	return &ReportRequest{
		Participant:    participant,
		Scores:         m,
		Dominant:       dominant.String(),
		LeastDeveloped: least.String(),
	}
}

func (r *ReportRequest) String() string {
	return fmt.Sprintf("%s (%s/%s)", r.Participant, r.Dominant, r.LeastDeveloped)
}

// normalize returns s in Unicode NFC so decomposed input matches the
// composed text of the templates.
func normalize(s string) string {
	return norm.NFC.String(s)
}
