// promsource.go

// Package promsource builds lineage trees from Prometheus series.
//
// Each series describes one vampire: the vampire label holds its name, the
// creator label the name of the vampire that converted it (absent or empty
// for an original vampire), and the sample value is the conversion year.
//
//	vampire_converted_year{vampire="Ansel",creator="Original"} 1100
package promsource

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/jshaughn/bloodline/tree"
)

const (
	DefaultMetric = "vampire_converted_year"

	VampireLabel model.LabelName = "vampire"
	CreatorLabel model.LabelName = "creator"

	// LinkKey is the Metadata key holding a node's Prometheus graph link.
	LinkKey = "link_prom_graph"
)

var (
	ErrUnknownCreator = errors.New("creator has no series of its own")
	ErrCycle          = errors.New("creator chain does not reach an original vampire")
	ErrNotVector      = errors.New("query did not return an instant vector")
)

// Querier is the part of the Prometheus HTTP API used by Source. v1.API
// satisfies it.
type Querier interface {
	Query(ctx context.Context, query string, ts time.Time, opts ...v1.Option) (model.Value, v1.Warnings, error)
}

type Source struct {
	Server string
	API    Querier
}

func NewSource(server string) (*Source, error) {
	client, err := api.NewClient(api.Config{Address: server})
	if err != nil {
		return nil, errors.Wrapf(err, "creating prometheus client for %s", server)
	}
	return &Source{
		Server: server,
		API:    v1.NewAPI(client),
	}, nil
}

// Fetch queries metric at the given time and returns one tree per original
// vampire found. Every node carries a Prometheus graph link for its series.
func (s *Source) Fetch(ctx context.Context, metric string, at time.Time) ([]*tree.Tree, error) {
	log := logrus.WithField("metric", metric)
	log.Debugf("Executing query at %v", at.Format(time.RFC3339))

	value, warnings, err := s.API.Query(ctx, metric, at)
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s", metric)
	}
	for _, w := range warnings {
		log.Warnf("Prometheus warning: %s", w)
	}

	vector, ok := value.(model.Vector)
	if !ok {
		return nil, errors.Wrapf(ErrNotVector, "got %v", value.Type())
	}

	roots, err := FromVector(vector)
	if err != nil {
		return nil, err
	}
	for _, r := range roots {
		r.Walk(func(n *tree.Tree) bool {
			n.Metadata[LinkKey] = Link(s.Server, metric, n.Name)
			return true
		})
	}
	log.Infof("Found [%v] original vampires", len(roots))
	return roots, nil
}

// FromVector converts an instant vector into lineage trees, ordered by the
// original vampire's name. Offspring are attached in name order.
func FromVector(vector model.Vector) ([]*tree.Tree, error) {
	nodes := make(map[string]*tree.Tree)
	creators := make(map[string]string)

	for _, s := range vector {
		name, ok := s.Metric[VampireLabel]
		if !ok || name == "" {
			logrus.WithField("series", s.Metric.String()).Warn("Skipping series without vampire label")
			continue
		}
		if year := float64(s.Value); math.IsNaN(year) || math.IsInf(year, 0) {
			logrus.WithField("vampire", name).Warnf("Skipping series with non-finite year %v", s.Value)
			continue
		}
		if _, dup := nodes[string(name)]; dup {
			logrus.WithField("vampire", name).Warn("Skipping duplicate series")
			continue
		}
		nodes[string(name)] = tree.New(string(name), int(s.Value))
		creators[string(name)] = string(s.Metric[CreatorLabel])
	}

	names := lo.Keys(nodes)
	sort.Strings(names)

	for _, name := range names {
		if err := checkChain(name, creators); err != nil {
			return nil, err
		}
	}

	var roots []*tree.Tree
	for _, name := range names {
		creator := creators[name]
		if creator == "" {
			roots = append(roots, nodes[name])
			continue
		}
		parent, ok := nodes[creator]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownCreator, "%q created %q", creator, name)
		}
		logrus.WithFields(logrus.Fields{"vampire": name, "creator": creator}).Debug("Linking offspring")
		parent.AddChild(nodes[name])
	}
	return roots, nil
}

// checkChain follows creators from name and fails when it revisits a vampire.
// Unknown creators are left for the linking pass to report.
func checkChain(name string, creators map[string]string) error {
	visited := map[string]bool{name: true}
	for curr := creators[name]; curr != ""; curr = creators[curr] {
		if visited[curr] {
			return errors.Wrapf(ErrCycle, "starting at %q", name)
		}
		visited[curr] = true
	}
	return nil
}

// Link returns a Prometheus graph URL for the series of one vampire.
func Link(server, metric, name string) string {
	expr := fmt.Sprintf("%v{%v=%q}", metric, VampireLabel, name)
	return fmt.Sprintf("%v/graph?g0.range_input=1h&g0.tab=0&g0.expr=%v", server, url.QueryEscape(expr))
}
