package join

import (
	"github.com/colvex/hashjoin/internal/config"
)

// KeyPair names one equi-join key column on each side by its index into
// that side's schema.
type KeyPair struct {
	LeftIndex  int
	RightIndex int
}

// Filter is a residual predicate applied after the equi-join. It is
// evaluated over its own intermediate batch — built by projecting
// LeftColumns from the build side and RightColumns from the probe side, in
// that order — which is independent of the final output batch's
// projection (per §3: the filter's column references are a separate
// structure from the output's column-index vector). A predicate may
// reference a build or probe column the final output never selects, e.g.
// filtering on a join key that isn't part of the projected result.
type Filter struct {
	Predicate    ResidualPredicate
	LeftColumns  []int // build-batch column indices forming the intermediate batch, in order
	RightColumns []int // probe-batch column indices forming the intermediate batch, in order
}

// Config fully describes one join operator instance.
type Config struct {
	Type    Type
	Mode    Mode
	Keys    []KeyPair
	Filter  *Filter // nil means no residual predicate
	Options config.Options
}

// Validate checks the parts of Config a JoinStream cannot safely ignore,
// returning a Plan error describing the first problem found.
func (c Config) Validate() error {
	if len(c.Keys) == 0 {
		return PlanError("join: at least one key pair is required")
	}
	for i, k := range c.Keys {
		if k.LeftIndex < 0 || k.RightIndex < 0 {
			return PlanError("join: key pair %d has a negative column index", i)
		}
	}
	return nil
}
