package resolve

import "github.com/callscape/callscape/pkg/graph"

// RootName is the qualified name of the synthetic project root.
const RootName = "root"

// AddFileHierarchy augments a resolved graph with its containment skeleton:
// one synthetic project root, one file node per distinct source file, and
// contains edges root -> file -> symbol. File order follows the declaration
// order of the first symbol seen in each file.
//
// A file node inherits a diff status when its contents agree: all contained
// symbols added means the file is added, all removed means removed, anything
// mixed stays unchanged.
func AddFileHierarchy(g *graph.Graph) {
	files := make(map[string][]*graph.Symbol)
	var fileOrder []string
	for _, s := range g.Symbols() {
		if s.File == "" || s.IsSynthetic() {
			continue
		}
		if _, seen := files[s.File]; !seen {
			fileOrder = append(fileOrder, s.File)
		}
		files[s.File] = append(files[s.File], s)
	}
	if len(fileOrder) == 0 {
		return
	}

	if !g.Has(RootName) {
		_ = g.AddSymbol(graph.Symbol{Name: RootName, Kind: graph.KindProject})
	}

	for _, file := range fileOrder {
		members := files[file]
		if !g.Has(file) {
			_ = g.AddSymbol(graph.Symbol{
				Name:   file,
				File:   file,
				Kind:   graph.KindFile,
				Status: fileStatus(members),
				Meta:   graph.Metadata{graph.MetaFuncCount: len(members)},
			})
		}
		_ = g.AddEdge(graph.CallEdge{Source: RootName, Target: file, Type: graph.EdgeContains})
		for _, s := range members {
			_ = g.AddEdge(graph.CallEdge{Source: file, Target: s.Name, Type: graph.EdgeContains, Status: s.Status})
		}
	}
}

func fileStatus(members []*graph.Symbol) graph.Status {
	allAdded, allRemoved := true, true
	for _, s := range members {
		if s.Status != graph.StatusAdded {
			allAdded = false
		}
		if s.Status != graph.StatusRemoved {
			allRemoved = false
		}
	}
	switch {
	case allAdded:
		return graph.StatusAdded
	case allRemoved:
		return graph.StatusRemoved
	default:
		return graph.StatusUnchanged
	}
}
