package generator

import (
	"regexp"
	"sort"
	"strings"
)

var hrefPattern = regexp.MustCompile(`(?:href|src)="([^"#?]+)`)

// validateLinks scans rendered HTML for internal references and reports the
// ones pointing at routes this build did not produce. External links and
// anchors are ignored.
func validateLinks(pages []RenderedPage, baseURL string, knownOutputs map[string]struct{}) []BrokenReference {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")

	var broken []BrokenReference
	seen := map[string]struct{}{}

	for _, page := range pages {
		for _, match := range hrefPattern.FindAllStringSubmatch(page.HTML, -1) {
			target := strings.TrimSpace(match[1])
			if target == "" {
				continue
			}
			if base != "" && strings.HasPrefix(target, base) {
				target = strings.TrimPrefix(target, base)
				if target == "" {
					target = "/"
				}
			}
			if !strings.HasPrefix(target, "/") {
				// Relative and external references are out of scope.
				continue
			}
			if strings.HasPrefix(target, "//") {
				continue
			}
			if _, ok := knownOutputs[outputPathForRoute(target)]; ok {
				continue
			}
			key := page.Route + "->" + target
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			broken = append(broken, BrokenReference{Source: page.Route, Target: target})
		}
	}

	sort.Slice(broken, func(i, j int) bool {
		if broken[i].Source == broken[j].Source {
			return broken[i].Target < broken[j].Target
		}
		return broken[i].Source < broken[j].Source
	})
	return broken
}
