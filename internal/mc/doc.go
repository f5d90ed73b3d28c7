// Package mc implements the Metropolis Monte-Carlo sampler.
//
// A run is built from three parts:
//
//   - [Evaluator]: images positions into the box and scores them on a
//     compute backend
//   - [TrialGenerator]: displaces every particle of the current state
//   - [Sampler]: proposes, scores and accepts or rejects, one iteration at a
//     time, until NMax moves are accepted or TotalIt are attempted
//
// # Example
//
//	rng := rand.New(rand.NewSource(seed))
//	eval := mc.NewEvaluator(pot, backend)
//	gen := mc.NewTrialGenerator(rng, params.MaxDeviation, params.TrialMode)
//	s, _ := mc.NewSampler(eval, gen, rng, params, lattice)
//	result, _ := s.Run(ctx)
//
// # Acceptance
//
// The default [AcceptLiteral] rule accepts a non-improving trial when
// exp((u1-u2)/T) <= r, which is the comparison the reference program makes.
// [AcceptMetropolis] selects r <= exp((u1-u2)/T).
//
// # Thread Safety
//
// Sampler instances are NOT thread-safe. Parallelism lives inside each
// energy evaluation on the backend.
package mc
