package rules

import (
	"sync"

	"github.com/c360studio/crossref/canonical"
	"github.com/c360studio/crossref/corpus"
	"github.com/c360studio/crossref/refgraph"
)

// Bounds is the inclusive word-count range chapters are measured against.
// A count exactly at Min or Max is compliant.
type Bounds struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Contains reports whether count falls inside the closed interval.
func (b Bounds) Contains(count int) bool {
	return count >= b.Min && count <= b.Max
}

// Input is the immutable snapshot every rule reads. Rules never mutate it,
// which is what makes rule evaluation order-commutative and parallelizable.
type Input struct {
	// Corpus is the loaded document set.
	Corpus *corpus.Corpus

	// Graph is the extracted reference graph.
	Graph *refgraph.Graph

	// Resolver answers canonical-mapping lookups.
	Resolver *canonical.Resolver

	// Bounds is the chapter word-count range.
	Bounds Bounds

	// RequiredHeadings lists heading patterns every chapter must carry.
	RequiredHeadings []string

	// AssetsDir is the directory asset references are checked against.
	AssetsDir string

	// AssetsPrefix is the path segment that marks asset targets, used to
	// normalize document-relative asset paths before the existence check.
	AssetsPrefix string
}

// Rule is one validator: a pure function of the shared input. Rules do not
// read each other's output.
type Rule interface {
	// Name identifies the rule; by convention it matches the category of the
	// findings it emits.
	Name() string

	// Check evaluates the rule and returns its findings.
	Check(in *Input) []Finding
}

// Registry manages the rule set.
type Registry struct {
	mu    sync.RWMutex
	rules []Rule
}

// NewRegistry creates a registry preloaded with the default rule set.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(&BrokenLinkRule{})
	r.Register(&WrongNumberRule{})
	r.Register(&MissingSectionRule{})
	r.Register(&WordCountRule{})
	r.Register(&MissingAssetRule{})
	return r
}

// Register adds a rule to the registry.
func (r *Registry) Register(rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule)
}

// Rules returns the registered rules in registration order.
func (r *Registry) Rules() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}
