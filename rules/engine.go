package rules

import (
	"log/slog"
	"sync"
)

// Engine evaluates every registered rule against one input snapshot.
type Engine struct {
	registry *Registry
	logger   *slog.Logger
}

// NewEngine creates an Engine over the given registry.
func NewEngine(registry *Registry, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{registry: registry, logger: logger}
}

// Run evaluates all rules in parallel and concatenates their findings in
// registration order. Rules are order-commutative over the immutable input,
// so parallel evaluation and any registration order produce the same finding
// set; the fixed concatenation order only keeps the raw output stable before
// aggregation.
func (e *Engine) Run(in *Input) []Finding {
	rules := e.registry.Rules()
	results := make([][]Finding, len(rules))

	var wg sync.WaitGroup
	for i, rule := range rules {
		wg.Add(1)
		go func(i int, rule Rule) {
			defer wg.Done()
			results[i] = rule.Check(in)
		}(i, rule)
	}
	wg.Wait()

	var findings []Finding
	for i, rule := range rules {
		e.logger.Debug("rule evaluated",
			slog.String("rule", rule.Name()),
			slog.Int("findings", len(results[i])))
		findings = append(findings, results[i]...)
	}
	return findings
}
