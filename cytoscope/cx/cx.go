// cx.go
package cx

import (
	"fmt"
	"time"

	"github.com/jshaughn/bloodline/tree"
)

type AspectMetadata struct {
	Name      string `json:"name"`
	Version   int64  `json:"version"`
	IdCounter int    `json:"idCounter"`
}

type Node struct {
	Id         int    `json:"@id"`
	Name       string `json:"n"`
	Represents string `json:"r"`
}

type NodeAttribute struct {
	NodeId int      `json:"po"`
	Name   string   `json:"n"`
	Values []string `json:"v"`
}

type Edge struct {
	Id     int `json:"@id"`
	Source int `json:"s"`
	Target int `json:"t"`
}

type EdgeAttribute struct {
	EdgeId int      `json:"po"`
	Name   string   `json:"n"`
	Values []string `json:"v"`
}

type Config struct {
	NodesAspect AspectMetadata  `json:"nodesAspect"`
	EdgesAspect AspectMetadata  `json:"edgesAspect"`
	Nodes       []Node          `json:"nodes"`
	Edges       []Edge          `json:"edges"`
	NodeAttrs   []NodeAttribute `json:"nodeAttributes"`
	EdgeAttrs   []EdgeAttribute `json:"edgeAttributes"`
}

func NewConfig(t *tree.Tree) (result Config) {
	return newConfig(t, time.Now())
}

func newConfig(t *tree.Tree, now time.Time) (result Config) {
	nodesAspect := AspectMetadata{
		Name:    "nodes",
		Version: now.Unix(),
	}
	edgesAspect := AspectMetadata{
		Name:    "edges",
		Version: now.Unix(),
	}
	nodes := []Node{}
	nodeAttrs := []NodeAttribute{}
	edges := []Edge{}
	edgeAttrs := []EdgeAttribute{}

	var nodeIdSequence int
	var edgeIdSequence int

	walk(t, &nodes, &nodeAttrs, &edges, &edgeAttrs, -1, &nodeIdSequence, &edgeIdSequence)
	nodesAspect.IdCounter = nodeIdSequence
	edgesAspect.IdCounter = edgeIdSequence

	result = Config{
		NodesAspect: nodesAspect,
		EdgesAspect: edgesAspect,
		Nodes:       nodes,
		Edges:       edges,
		NodeAttrs:   nodeAttrs,
		EdgeAttrs:   edgeAttrs,
	}
	return result
}

func walk(t *tree.Tree, nodes *[]Node, nodeAttrs *[]NodeAttribute, edges *[]Edge, edgeAttrs *[]EdgeAttribute, parentNodeId int, nodeIdSequence, edgeIdSequence *int) {
	nodeId := *nodeIdSequence
	*nodeIdSequence++
	n := Node{
		Id:         nodeId,
		Name:       t.Name,
		Represents: t.String(),
	}
	*nodes = append(*nodes, n)

	*nodeAttrs = append(*nodeAttrs,
		NodeAttribute{NodeId: nodeId, Name: "year", Values: []string{fmt.Sprintf("%d", t.Year)}},
		NodeAttribute{NodeId: nodeId, Name: "descendants", Values: []string{fmt.Sprintf("%d", t.CountDescendants())}},
	)
	if link, ok := t.Metadata["link_prom_graph"].(string); ok {
		*nodeAttrs = append(*nodeAttrs, NodeAttribute{NodeId: nodeId, Name: "Prometheus Graph", Values: []string{link}})
	}

	if parentNodeId >= 0 {
		edgeId := *edgeIdSequence
		*edgeIdSequence++
		e := Edge{
			Id:     edgeId,
			Source: parentNodeId,
			Target: nodeId,
		}
		*edges = append(*edges, e)
		ea := EdgeAttribute{
			EdgeId: edgeId,
			Name:   "converted_after_years",
			Values: []string{fmt.Sprintf("%d", t.Year-t.Parent.Year)},
		}
		*edgeAttrs = append(*edgeAttrs, ea)
	}

	for _, c := range t.Children {
		walk(c, nodes, nodeAttrs, edges, edgeAttrs, nodeId, nodeIdSequence, edgeIdSequence)
	}
}
