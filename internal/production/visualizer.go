package production

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/comalice/lsystemx/internal/primitives"
)

// DefaultVisualizer renders a grammar's rule graph.
type DefaultVisualizer struct{}

// Edge is one subject -> produced-symbol link contributed by a rule.
type Edge struct {
	From  string
	To    string
	Label string
}

// ExportDOT generates Graphviz DOT source for the grammar. Variables (symbols with
// rules) are boxes, constants are plaintext, and the axiom's symbols are bold.
func (v *DefaultVisualizer) ExportDOT(config *primitives.GrammarConfig) (string, error) {
	alpha, err := config.Alphabet(nil)
	if err != nil {
		return "", err
	}
	edges, err := collectEdges(config, alpha)
	if err != nil {
		return "", err
	}

	variables := make(map[string]bool)
	for _, r := range config.Rules {
		if sym, err := alpha.Get(r.Subject); err == nil {
			variables[sym.Name()] = true
		}
	}
	inAxiom := make(map[string]bool)
	if raws, err := primitives.ScanModules(config.Axiom); err == nil {
		for _, raw := range raws {
			if sym, ok := alpha.Symbol(raw.Glyph); ok {
				inAxiom[sym.Name()] = true
			}
		}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %s {\n", strconv.Quote(config.ID))
	buf.WriteString(`  rankdir=LR;
  node [fontsize=10];
  edge [fontsize=9];
`)
	for _, sym := range alpha.Symbols() {
		shape := "plaintext"
		if variables[sym.Name()] {
			shape = "box, style=rounded"
		}
		attrs := fmt.Sprintf("shape=%s, label=%s", shape, strconv.Quote(nodeLabel(sym)))
		if inAxiom[sym.Name()] {
			attrs += ", penwidth=2"
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", strconv.Quote(sym.Name()), attrs)
	}
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %s -> %s [label=%s];\n", strconv.Quote(e.From), strconv.Quote(e.To), strconv.Quote(e.Label))
	}
	buf.WriteString("}\n")
	return buf.String(), nil
}

// ExportJSON serializes the grammar config to JSON.
func (v *DefaultVisualizer) ExportJSON(config *primitives.GrammarConfig) ([]byte, error) {
	return json.MarshalIndent(config, "", "  ")
}

// collectEdges links each rule's subject to every distinct symbol it produces, sorted
// for stable output.
func collectEdges(config *primitives.GrammarConfig, alpha *primitives.Alphabet) ([]Edge, error) {
	var edges []Edge
	for i, r := range config.Rules {
		subject, err := alpha.Get(r.Subject)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		raws, err := primitives.ScanModules(r.Produce)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		label := ruleLabel(i, r)
		seen := make(map[string]bool)
		for _, raw := range raws {
			sym, ok := alpha.Symbol(raw.Glyph)
			if !ok || seen[sym.Name()] {
				continue
			}
			seen[sym.Name()] = true
			edges = append(edges, Edge{From: subject.Name(), To: sym.Name(), Label: label})
		}
	}
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges, nil
}

func nodeLabel(sym *primitives.Symbol) string {
	label := string(sym.Glyph())
	if params := sym.Params(); len(params) > 0 {
		names := make([]string, len(params))
		for i, p := range params {
			names[i] = p.String()
		}
		label += "(" + strings.Join(names, ",") + ")"
	}
	if sym.Name() != string(sym.Glyph()) {
		label += " " + sym.Name()
	}
	return label
}

func ruleLabel(i int, r primitives.RuleConfig) string {
	parts := []string{r.Name}
	if r.Name == "" {
		parts[0] = "#" + strconv.Itoa(i)
	}
	if r.Weight != nil {
		parts = append(parts, "p="+strconv.FormatFloat(*r.Weight, 'g', -1, 64))
	}
	if r.Condition != "" {
		parts = append(parts, "["+r.Condition+"]")
	}
	return strings.Join(parts, " ")
}
