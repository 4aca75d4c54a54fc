package curriculum

import (
	"fmt"
	"strings"
)

// validateModules performs all structural checks on the given modules.
// Returns a combined error describing all problems found, or nil if valid.
func validateModules(modules []Module) error {
	var errs []string
	var items []Item

	for _, m := range modules {
		if strings.TrimSpace(m.Title) == "" {
			errs = append(errs, "module with empty title")
		}
		items = append(items, m.Items...)
	}
	if len(items) == 0 {
		return fmt.Errorf("curriculum validation failed:\n  no items declared")
	}

	idSet := make(map[string]bool, len(items))

	// Check for duplicate IDs
	for _, it := range items {
		if it.ID == "" {
			errs = append(errs, "item with empty ID")
			continue
		}
		if idSet[it.ID] {
			errs = append(errs, fmt.Sprintf("duplicate item ID: %q", it.ID))
		}
		idSet[it.ID] = true
	}

	// Check for dangling and repeated prerequisites
	for _, it := range items {
		listed := make(map[string]bool, len(it.Prerequisites))
		for _, prereqID := range it.Prerequisites {
			if listed[prereqID] {
				errs = append(errs, fmt.Sprintf("item %q lists prerequisite %q more than once", it.ID, prereqID))
			}
			listed[prereqID] = true
			if !idSet[prereqID] {
				errs = append(errs, fmt.Sprintf("item %q references nonexistent prerequisite %q", it.ID, prereqID))
			}
			if prereqID == it.ID {
				errs = append(errs, fmt.Sprintf("item %q lists itself as a prerequisite", it.ID))
			}
		}
	}

	// Check for cycles using Kahn's algorithm
	if cycle := cycleNodes(items, idSet); len(cycle) > 0 {
		errs = append(errs, fmt.Sprintf("cycle detected involving items: %s", strings.Join(cycle, ", ")))
	}

	// Check at least one root
	hasRoot := false
	for _, it := range items {
		if len(it.Prerequisites) == 0 {
			hasRoot = true
			break
		}
	}
	if !hasRoot {
		errs = append(errs, "no root items found (at least one item must have no prerequisites)")
	}

	// Check rewards and quiz definitions
	for _, it := range items {
		if it.XP <= 0 {
			errs = append(errs, fmt.Sprintf("item %q: xp must be > 0, got %d", it.ID, it.XP))
		}
		switch it.Kind {
		case KindLesson:
			if len(it.Questions) > 0 {
				errs = append(errs, fmt.Sprintf("lesson %q must not declare questions", it.ID))
			}
		case KindQuiz:
			if len(it.Questions) == 0 {
				errs = append(errs, fmt.Sprintf("quiz %q has no questions", it.ID))
			}
			for qi, q := range it.Questions {
				if len(q.Choices) < 2 {
					errs = append(errs, fmt.Sprintf("quiz %q question %d: needs at least 2 choices", it.ID, qi))
				}
				if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Choices) {
					errs = append(errs, fmt.Sprintf("quiz %q question %d: answer index %d out of range", it.ID, qi, q.CorrectIndex))
				}
			}
		default:
			errs = append(errs, fmt.Sprintf("item %q: unknown kind %q", it.ID, it.Kind))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("curriculum validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// cycleNodes returns the IDs left with a positive in-degree after Kahn's
// algorithm, in declaration order. Dangling prerequisites are ignored here
// since they are reported separately.
func cycleNodes(items []Item, idSet map[string]bool) []string {
	inDegree := make(map[string]int, len(items))
	adjList := make(map[string][]string)
	for _, it := range items {
		for _, prereqID := range it.Prerequisites {
			if !idSet[prereqID] {
				continue
			}
			inDegree[it.ID]++
			adjList[prereqID] = append(adjList[prereqID], it.ID)
		}
	}

	var queue []string
	for _, it := range items {
		if inDegree[it.ID] == 0 {
			queue = append(queue, it.ID)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, depID := range adjList[id] {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	var cycle []string
	seen := make(map[string]bool)
	for _, it := range items {
		if inDegree[it.ID] > 0 && !seen[it.ID] {
			seen[it.ID] = true
			cycle = append(cycle, it.ID)
		}
	}
	return cycle
}
