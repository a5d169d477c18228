// Package analysis inspects closed-loop behavior of a synthesized gain.
//
//   - [ClosedLoop]: the matrix F − GK
//   - [Spectrum]: its eigenvalues, abscissa and stability margin
//   - [SettlingTime]: when a simulated trajectory enters and stays in a band
//
// A gain stabilizes the plant when every closed-loop eigenvalue has negative
// real part:
//
//	sp, err := analysis.Spectrum(analysis.ClosedLoop(sys.F, sys.G, d.K))
//	if err == nil && sp.Hurwitz() {
//	    // stable
//	}
package analysis
