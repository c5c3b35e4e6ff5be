// Package simulation runs the score propagation engine over a design network.
//
// A run has three phases:
//
//  1. Initial scoring: every node whose function identifier resolves in the
//     model registry is handed to its scorer once. Unresolved identifiers are
//     skipped and reported, never fatal.
//  2. Propagation: a fixed number of synchronous rounds. In each round, for
//     every node N and label L carried by an incoming edge of a family,
//
//     incoming(N, L) = sum of edge.Weight * prior(edge.Source, L)
//     next(N, L)     = d * prior(N, L) + (1 - d) * incoming(N, L)
//
//     where d is Alpha for functionality edges and Beta for value edges. All
//     reads come from the previous round's snapshot; next-round maps replace
//     the node maps only once the round is complete.
//  3. Meta-score: a weighted linear reduction over configured (node, label)
//     pairs of the final scores.
//
// Usage:
//
//	net, err := graph.Build(desc)
//	if err != nil { ... }
//	eng := simulation.NewEngine(net, models.DefaultRegistry())
//	result, err := eng.Run(ctx, "Sandwich Panel", simulation.DefaultConfig())
package simulation
