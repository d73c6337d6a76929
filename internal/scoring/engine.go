// Package scoring implements the How3 scoring engine: a deterministic,
// stateless pipeline that turns monthly revenue and user metric tables into
// normalized 0-100 sub-scores (EQS, UGS, FVS) and a weighted composite.
// The engine performs no I/O; metric tables arrive via internal/contracts
// and scores leave the same way.
package scoring

// Engine evaluates protocol scores under one immutable weight regime.
// All methods are pure functions of their inputs; recomputing a score for
// the same inputs always yields the same output.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine after validating the configuration
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine's configuration
func (e *Engine) Config() Config {
	return e.cfg
}
