// cytoscope.go
package cytoscope

import (
	"fmt"

	"github.com/jshaughn/bloodline/tree"
)

type NodeData struct {
	Id            string `json:"id"`
	Name          string `json:"name"`
	Year          int    `json:"year"`
	Depth         int    `json:"depth"`
	LinkPromGraph string `json:"link_prom_graph,omitempty"`
}

type EdgeData struct {
	Id     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type NodeWrapper struct {
	Data NodeData `json:"data"`
}

type EdgeWrapper struct {
	Data EdgeData `json:"data"`
}

type Elements struct {
	Nodes []NodeWrapper `json:"nodes"`
	Edges []EdgeWrapper `json:"edges"`
}

type Config struct {
	Elements Elements `json:"elements"`
}

func NewConfig(t *tree.Tree) (result Config) {
	nodes := []NodeWrapper{}
	edges := []EdgeWrapper{}
	var edgeIdSequence int

	walk(t, t.DepthFromRoot(), &nodes, &edges, &edgeIdSequence)

	elements := Elements{nodes, edges}
	result = Config{elements}
	return result
}

func walk(t *tree.Tree, depth int, nodes *[]NodeWrapper, edges *[]EdgeWrapper, edgeIdSequence *int) {
	nodeId := t.String()
	nd := NodeData{
		Id:    nodeId,
		Name:  t.Name,
		Year:  t.Year,
		Depth: depth,
	}
	if link, ok := t.Metadata["link_prom_graph"].(string); ok {
		nd.LinkPromGraph = link
	}
	*nodes = append(*nodes, NodeWrapper{Data: nd})

	for _, c := range t.Children {
		edgeId := fmt.Sprintf("%v", *edgeIdSequence)
		*edgeIdSequence++
		ed := EdgeData{
			Id:     edgeId,
			Source: nodeId,
			Target: c.String(),
		}
		*edges = append(*edges, EdgeWrapper{Data: ed})
		walk(c, depth+1, nodes, edges, edgeIdSequence)
	}
}
