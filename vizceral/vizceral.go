// vizceral.go
package vizceral

import (
	"time"

	"github.com/jshaughn/bloodline/tree"
)

// OriginNode is the synthetic source every original vampire connects from.
const OriginNode = "ORIGIN"

type Metadata struct {
}

type Metrics struct {
	Normal float64 `json:"normal,omitempty"`
}

type Connection struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Metadata Metadata `json:"metadata,omitempty"`
	Metrics  Metrics  `json:"metrics,omitempty"`
}

type Notice struct {
	Title string `json:"title"`
	Link  string `json:"link,omitempty"`
}

type Node struct {
	Renderer    string       `json:"renderer,omitempty"`
	Name        string       `json:"name"`
	DisplayName string       `json:"displayName,omitempty"`
	Updated     int64        `json:"updated,omitempty"`
	MaxVolume   float64      `json:"maxVolume,omitempty"`
	Metadata    Metadata     `json:"metadata,omitempty"`
	Nodes       []Node       `json:"nodes,omitempty"`
	Connections []Connection `json:"connections,omitempty"`
	Notices     []Notice     `json:"notices,omitempty"`
}

type Config Node

// NewConfig renders one region named name holding every vampire of ts. The
// volume of a connection is the size of the bloodline it leads to. Each
// entry of ts connects from OriginNode, even when it has a creator.
func NewConfig(name string, ts []*tree.Tree) (result Config) {
	originNode := Node{
		Renderer: "focusedChild",
		Name:     OriginNode,
	}
	regionNodes := []Node{originNode}
	var regionConnections []Connection
	var maxVolume float64

	for _, t := range ts {
		walk(t, OriginNode, &regionNodes, &regionConnections, &maxVolume)
	}

	region := Node{
		Renderer:    "region",
		Name:        name,
		Updated:     time.Now().Unix(),
		MaxVolume:   maxVolume,
		Nodes:       regionNodes,
		Connections: regionConnections,
	}

	result = Config{
		Renderer: "global",
		Name:     "edge",
		Nodes:    []Node{region},
	}
	return result
}

func walk(t *tree.Tree, source string, nodes *[]Node, connections *[]Connection, volume *float64) {
	name := t.String()

	n := Node{
		Renderer:    "focusedChild",
		Name:        name,
		DisplayName: t.Name,
	}
	if link, ok := t.Metadata["link_prom_graph"].(string); ok {
		n.Notices = []Notice{{Title: "Prometheus Graph", Link: link}}
	}
	*nodes = append(*nodes, n)

	c := Connection{
		Source: source,
		Target: name,
		Metrics: Metrics{
			Normal: float64(1 + t.CountDescendants()),
		},
	}
	*connections = append(*connections, c)

	*volume += 1

	for _, c := range t.Children {
		walk(c, name, nodes, connections, volume)
	}
}
