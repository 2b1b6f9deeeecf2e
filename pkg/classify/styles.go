package classify

import "github.com/callscape/callscape/pkg/graph"

// styleTable maps each physical layer to its fill and border colors. The
// palette follows Material Design tones so neighboring stages stay visually
// distinct at a glance.
var styleTable = map[string]graph.Style{
	LayerInputSource: {Color: "#E3F2FD", Border: "#2196F3"},
	LayerProcessing:  {Color: "#E0F7FA", Border: "#00BCD4"},
	LayerComputation: {Color: "#E8F5E9", Border: "#4CAF50"},
	LayerOutput:      {Color: "#F3E5F5", Border: "#9C27B0"},
	LayerOther:       {Color: "#F5F5F5", Border: "#9E9E9E"},
}

// Style returns the visual style for a physical layer key. Unknown keys
// (manual overrides outside the fixed enumeration) fall back to the OTHER
// style so every node renders with a valid palette entry.
func Style(physicalLayer string) graph.Style {
	if st, ok := styleTable[physicalLayer]; ok {
		return st
	}
	return styleTable[LayerOther]
}
