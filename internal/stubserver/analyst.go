package stubserver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/plantquery/plantquery/internal/graphml"
)

// analyst answers questions about a parsed diagram without a language
// model behind it. Replies are deterministic: keyword routing over the
// question, numbers and tags taken from the actual graph. It stands in
// for the production model the same way the backend's own mock
// responder does when no API key is configured.
type analyst struct {
	doc *graphml.Document
}

func (a analyst) reply(question string) string {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "valve"):
		return a.typeReport("valve")
	case strings.Contains(q, "pump"):
		return a.typeReport("pump")
	case strings.Contains(q, "tank") || strings.Contains(q, "vessel"):
		return a.typeReport("tank", "vessel")
	case strings.Contains(q, "instrument") || strings.Contains(q, "sensor"):
		return a.typeReport("instrument", "indicator", "sensor")
	case strings.Contains(q, "flow") || strings.Contains(q, "connect") || strings.Contains(q, "pipe"):
		return a.flowReport()
	case strings.Contains(q, "subsystem") || strings.Contains(q, "isolat"):
		return a.topologyReport()
	case strings.Contains(q, "component") || strings.Contains(q, "equipment"):
		return a.inventoryReport()
	default:
		return a.overview()
	}
}

// typeReport lists the nodes whose type matches any of the given
// kinds, by substring.
func (a analyst) typeReport(kinds ...string) string {
	var matches []graphml.Node
	for _, n := range a.doc.Nodes {
		t := strings.ToLower(n.Type)
		for _, kind := range kinds {
			if strings.Contains(t, kind) {
				matches = append(matches, n)
				break
			}
		}
	}

	label := kinds[0]
	if len(matches) == 0 {
		return fmt.Sprintf("The diagram contains no %ss.", label)
	}

	tags := make([]string, len(matches))
	for i, n := range matches {
		if n.Name != "" && n.Name != n.ID {
			tags[i] = fmt.Sprintf("%s (%s)", n.Name, n.ID)
		} else {
			tags[i] = n.ID
		}
	}
	if len(matches) == 1 {
		return fmt.Sprintf("The diagram contains 1 %s: %s.", label, tags[0])
	}
	return fmt.Sprintf("The diagram contains %d %ss: %s.", len(matches), label, strings.Join(tags, ", "))
}

func (a analyst) flowReport() string {
	stats := a.doc.Stats()
	if stats.Connections == 0 {
		return "The diagram defines no connections between components."
	}
	return fmt.Sprintf(
		"The diagram has %d connections across %d components (graph density %.3f). "+
			"The process splits into %d connected subsystem(s).",
		stats.Connections, stats.Components, stats.Density, stats.Subsystems)
}

func (a analyst) topologyReport() string {
	stats := a.doc.Stats()
	if stats.Components == 0 {
		return "The diagram contains no components to analyze."
	}
	report := fmt.Sprintf("The diagram forms %d connected subsystem(s).", stats.Subsystems)
	if stats.Isolated > 0 {
		report += fmt.Sprintf(" %d component(s) are isolated with no connections, worth reviewing.", stats.Isolated)
	}
	return report
}

func (a analyst) inventoryReport() string {
	counts := a.doc.TypeCounts()
	if len(counts) == 0 {
		return "The diagram contains no components."
	}

	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)

	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = fmt.Sprintf("%d %s", counts[t], t)
	}
	return fmt.Sprintf("The diagram contains %d components: %s.", len(a.doc.Nodes), strings.Join(parts, ", "))
}

func (a analyst) overview() string {
	stats := a.doc.Stats()
	return fmt.Sprintf(
		"This P&ID has %d components and %d connections in %d subsystem(s). "+
			"Ask about valves, pumps, vessels, instruments, flow paths, or the component inventory.",
		stats.Components, stats.Connections, stats.Subsystems)
}
