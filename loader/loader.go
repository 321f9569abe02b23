// loader.go

// Package loader reads and writes lineage documents.
//
// A document is YAML (or JSON) describing the original vampire and, nested
// under offspring, everyone it created:
//
//	name: Original
//	year: 1000
//	offspring:
//	  - name: Ansel
//	    year: 1100
package loader

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jshaughn/bloodline/tree"
)

var (
	ErrEmpty         = errors.New("lineage document is empty")
	ErrUnnamed       = errors.New("vampire has no name")
	ErrDuplicateName = errors.New("duplicate vampire name")
)

// Vampire is the document form of one lineage entry.
type Vampire struct {
	Name      string     `yaml:"name" json:"name"`
	Year      int        `yaml:"year" json:"year"`
	Offspring []*Vampire `yaml:"offspring,omitempty" json:"offspring,omitempty"`
}

func Load(path string) (*tree.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading lineage %s", path)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing lineage %s", path)
	}
	return t, nil
}

// Parse builds a lineage tree from a document. Names must be present and
// unique so that lookups by name are unambiguous.
func Parse(data []byte) (*tree.Tree, error) {
	var doc Vampire
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decoding document")
	}
	if doc.Name == "" && doc.Year == 0 && len(doc.Offspring) == 0 {
		return nil, ErrEmpty
	}

	seen := make(map[string]bool)
	return build(&doc, "", seen)
}

func build(v *Vampire, creator string, seen map[string]bool) (*tree.Tree, error) {
	if v.Name == "" {
		if creator == "" {
			return nil, ErrUnnamed
		}
		return nil, errors.Wrapf(ErrUnnamed, "offspring of %q", creator)
	}
	if seen[v.Name] {
		return nil, errors.Wrapf(ErrDuplicateName, "%q", v.Name)
	}
	seen[v.Name] = true

	t := tree.New(v.Name, v.Year)
	for _, o := range v.Offspring {
		if o == nil {
			continue
		}
		child, err := build(o, v.Name, seen)
		if err != nil {
			return nil, err
		}
		t.AddChild(child)
	}
	return t, nil
}

// ToDocument converts a lineage tree back to its document form.
func ToDocument(t *tree.Tree) *Vampire {
	v := &Vampire{
		Name: t.Name,
		Year: t.Year,
	}
	for _, c := range t.Children {
		v.Offspring = append(v.Offspring, ToDocument(c))
	}
	return v
}

func Marshal(t *tree.Tree) ([]byte, error) {
	b, err := yaml.Marshal(ToDocument(t))
	if err != nil {
		return nil, errors.Wrapf(err, "encoding lineage of %s", t.Name)
	}
	return b, nil
}
