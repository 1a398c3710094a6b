package scenario

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const ungated = "-"

// FormatText renders run results for a terminal. Failing cases are grouped
// under the gate that decided them, with the reason fragment the case
// expected next to the reason it got.
func FormatText(results []*RunResult) string {
	var b strings.Builder
	var passed, total, failedFiles int
	byGate := map[string]int{}

	for _, r := range results {
		passed += r.Passed
		total += r.Total
		mark := "ok  "
		if r.Failed > 0 {
			mark = "FAIL"
			failedFiles++
		}
		fmt.Fprintf(&b, "%s  %s  %d/%d\n", mark, r.Name, r.Passed, r.Total)

		groups := failuresByGate(r.Cases)
		for _, gate := range sortedGates(groups) {
			cases := groups[gate]
			byGate[gate] += len(cases)
			fmt.Fprintf(&b, "      gate %s\n", gate)
			for _, c := range cases {
				writeFailure(&b, c)
			}
		}
	}

	fmt.Fprintf(&b, "\n%d/%d cases passed", passed, total)
	if failedFiles > 0 {
		fmt.Fprintf(&b, ", %d of %d scenarios failing", failedFiles, len(results))
		parts := make([]string, 0, len(byGate))
		for _, g := range sortedGates(byGate) {
			parts = append(parts, fmt.Sprintf("%s×%d", g, byGate[g]))
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}
	b.WriteString("\n")
	return b.String()
}

func writeFailure(b *strings.Builder, c CaseResult) {
	fmt.Fprintf(b, "        #%d %s %s: %s\n", c.Index, c.Tool, preview(c.Resource), c.Problem)
	if c.Want != "" {
		fmt.Fprintf(b, "           want: %q\n", c.Want)
	}
	if c.Reason != "" {
		fmt.Fprintf(b, "           got:  %q\n", c.Reason)
	}
}

func failuresByGate(cases []CaseResult) map[string][]CaseResult {
	groups := map[string][]CaseResult{}
	for _, c := range cases {
		if c.Passed {
			continue
		}
		g := c.Gate
		if g == "" {
			g = ungated
		}
		groups[g] = append(groups[g], c)
	}
	return groups
}

// sortedGates orders gate keys G1..G9 numerically with ungated last.
func sortedGates[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if (keys[i] == ungated) != (keys[j] == ungated) {
			return keys[j] == ungated
		}
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

func preview(s string) string {
	r := []rune(s)
	if len(r) > 40 {
		return string(r[:37]) + "..."
	}
	return s
}

// FormatJSON renders run results as JSON.
func FormatJSON(results []*RunResult) (string, error) {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}
	return string(data), nil
}
