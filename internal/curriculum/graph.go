package curriculum

import "slices"

// Graph holds the curriculum DAG with precomputed indices. A Graph is
// immutable after construction and safe for concurrent use.
type Graph struct {
	modules    []Module
	items      []Item
	byID       map[string]int
	dependents map[string][]string
	totalXP    int
}

// New validates the modules and builds a graph from them.
func New(modules []Module) (*Graph, error) {
	if err := validateModules(modules); err != nil {
		return nil, err
	}
	return buildGraph(modules), nil
}

// buildGraph constructs the graph and its indices from validated modules.
func buildGraph(modules []Module) *Graph {
	g := &Graph{
		modules:    make([]Module, len(modules)),
		byID:       make(map[string]int),
		dependents: make(map[string][]string),
	}

	for mi, m := range modules {
		mod := Module{Title: m.Title, Items: make([]Item, len(m.Items))}
		for ii, it := range m.Items {
			it.Module = m.Title
			it.Prerequisites = slices.Clone(it.Prerequisites)
			it.Questions = cloneQuestions(it.Questions)
			mod.Items[ii] = it
			g.byID[it.ID] = len(g.items)
			g.items = append(g.items, it)
			g.totalXP += it.XP
		}
		g.modules[mi] = mod
	}

	// Build reverse edges (dependents)
	for _, it := range g.items {
		for _, prereqID := range it.Prerequisites {
			g.dependents[prereqID] = append(g.dependents[prereqID], it.ID)
		}
	}

	return g
}

func cloneQuestions(qs []Question) []Question {
	if qs == nil {
		return nil
	}
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = Question{Prompt: q.Prompt, Choices: slices.Clone(q.Choices), CorrectIndex: q.CorrectIndex}
	}
	return out
}

// Item returns the item with the given ID.
func (g *Graph) Item(id string) (Item, bool) {
	i, ok := g.byID[id]
	if !ok {
		return Item{}, false
	}
	return g.items[i], true
}

// Has reports whether id names a curriculum item.
func (g *Graph) Has(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// AllItems returns every item in declaration order.
func (g *Graph) AllItems() []Item {
	return slices.Clone(g.items)
}

// Modules returns the modules in declaration order.
func (g *Graph) Modules() []Module {
	out := make([]Module, len(g.modules))
	for i, m := range g.modules {
		out[i] = Module{Title: m.Title, Items: slices.Clone(m.Items)}
	}
	return out
}

// Lessons returns all lesson items in declaration order.
func (g *Graph) Lessons() []Item {
	return g.byKind(KindLesson)
}

// Quizzes returns all quiz items in declaration order.
func (g *Graph) Quizzes() []Item {
	return g.byKind(KindQuiz)
}

func (g *Graph) byKind(k Kind) []Item {
	var out []Item
	for _, it := range g.items {
		if it.Kind == k {
			out = append(out, it)
		}
	}
	return out
}

// TotalXP is the sum of every item's reward.
func (g *Graph) TotalXP() int { return g.totalXP }

// PrerequisitesOf returns the prerequisite IDs of an item.
func (g *Graph) PrerequisitesOf(id string) ([]string, bool) {
	it, ok := g.Item(id)
	if !ok {
		return nil, false
	}
	return slices.Clone(it.Prerequisites), true
}

// Dependents returns items that directly depend on the given item ID.
func (g *Graph) Dependents(id string) []Item {
	depIDs := g.dependents[id]
	result := make([]Item, 0, len(depIDs))
	for _, depID := range depIDs {
		if it, ok := g.Item(depID); ok {
			result = append(result, it)
		}
	}
	return result
}

// IsUnlocked returns true if every prerequisite of id is in the completed set.
// Unknown IDs are never unlocked.
func (g *Graph) IsUnlocked(id string, completed map[string]bool) bool {
	return g.Has(id) && len(g.MissingPrerequisites(id, completed)) == 0
}

// MissingPrerequisites returns the prerequisites of id not in the completed
// set, in declaration order.
func (g *Graph) MissingPrerequisites(id string, completed map[string]bool) []Item {
	it, ok := g.Item(id)
	if !ok {
		return nil
	}
	wanted := make(map[string]bool, len(it.Prerequisites))
	for _, prereqID := range it.Prerequisites {
		if !completed[prereqID] {
			wanted[prereqID] = true
		}
	}
	if len(wanted) == 0 {
		return nil
	}
	var missing []Item
	for _, p := range g.items {
		if wanted[p.ID] {
			missing = append(missing, p)
		}
	}
	return missing
}

// Next returns the item declared immediately after id.
func (g *Graph) Next(id string) (Item, bool) {
	i, ok := g.byID[id]
	if !ok || i+1 >= len(g.items) {
		return Item{}, false
	}
	return g.items[i+1], true
}

// FirstIncomplete returns the first item in declaration order that is
// unlocked but not yet completed.
func (g *Graph) FirstIncomplete(completed map[string]bool) (Item, bool) {
	for _, it := range g.items {
		if !completed[it.ID] && g.IsUnlocked(it.ID, completed) {
			return it, true
		}
	}
	return Item{}, false
}
