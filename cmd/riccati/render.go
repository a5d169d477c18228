package main

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/riccati/internal/analysis"
	"github.com/san-kum/riccati/internal/care"
	"github.com/san-kum/riccati/internal/control"
	"github.com/san-kum/riccati/internal/dynamo"
	"github.com/san-kum/riccati/internal/linsys"
	"github.com/san-kum/riccati/internal/physics"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	matStyle   = lipgloss.NewStyle().PaddingLeft(2)
)

const maxPlots = 6

var stateNames = map[string][]string{
	"pendulum":    {"angle", "angular rate"},
	"cartpole":    {"cart position", "cart velocity", "pole angle", "pole angular rate"},
	"spring_mass": {"position", "velocity"},
}

func formatMatrix(a mat.Matrix) string {
	return matStyle.Render(fmt.Sprintf("%.6g", mat.Formatted(a, mat.Squeeze())))
}

func formatPoles(p analysis.Poles) string {
	parts := make([]string, len(p))
	for i, v := range p {
		if imag(v) == 0 {
			parts[i] = fmt.Sprintf("%.4g", real(v))
		} else {
			parts[i] = fmt.Sprintf("%.4g%+.4gi", real(v), imag(v))
		}
	}
	return strings.Join(parts, ", ")
}

func statusText(s string) string {
	if s == care.Converged.String() {
		return okStyle.Render(s)
	}
	return warnStyle.Render(s)
}

func printSolution(sol *care.Solution) {
	fmt.Printf("%s %s after %d iterations\n", labelStyle.Render("status:"), statusText(sol.Status.String()), sol.Iterations)
	fmt.Printf("%s %.3e\n", labelStyle.Render("residual:"), sol.Residual)
	for _, st := range sol.Steps {
		fmt.Println(dimStyle.Render(fmt.Sprintf("  iter %2d  residual %.3e  step %.4f", st.Iteration, st.Residual, st.StepSize)))
	}
}

func printDesign(name string, sys *linsys.System, d *control.Design) {
	fmt.Println(titleStyle.Render("lqr design: " + name))
	printSolution(d.Solution)
	for _, w := range d.Warnings {
		fmt.Println(warnStyle.Render("warning: " + w.Error()))
	}
	fmt.Println()
	fmt.Println(labelStyle.Render("K ="))
	fmt.Println(formatMatrix(d.K))
	fmt.Println(labelStyle.Render("X ="))
	fmt.Println(formatMatrix(d.X))

	printClosedLoop(sys, d.K)
}

func printClosedLoop(sys *linsys.System, k mat.Matrix) {
	p, err := analysis.Spectrum(analysis.ClosedLoop(sys.F, sys.G, k))
	if err != nil {
		fmt.Println(warnStyle.Render("closed-loop spectrum: " + err.Error()))
		return
	}
	fmt.Printf("%s %s\n", labelStyle.Render("closed-loop poles:"), formatPoles(p))
	if p.Hurwitz() {
		fmt.Println(okStyle.Render(fmt.Sprintf("stable, min damping %.3f", p.Damping())))
	} else {
		fmt.Println(warnStyle.Render("closed loop is not stable"))
	}
}

// printModel shows the nonlinear plant's parameters and its linearization
// at the origin, closed with the designed gain.
func printModel(name string, plant dynamo.System, sys, lin *linsys.System, d *control.Design) {
	fmt.Println(titleStyle.Render("nonlinear model: " + name))
	if tun, ok := plant.(physics.Tunable); ok {
		printValues("params:", tun.GetParams())
	}
	fmt.Println(labelStyle.Render("linearized F ="))
	fmt.Println(formatMatrix(lin.F))
	fmt.Println(labelStyle.Render("linearized G ="))
	fmt.Println(formatMatrix(lin.G))
	fmt.Printf("%s %.3e\n", labelStyle.Render("max deviation from design model:"),
		math.Max(maxAbsDiff(lin.F, sys.F), maxAbsDiff(lin.G, sys.G)))
	printClosedLoop(lin, d.K)
}

func maxAbsDiff(a, b mat.Matrix) float64 {
	var diff mat.Dense
	diff.Sub(a, b)
	return floats.Norm(diff.RawMatrix().Data, math.Inf(1))
}

func printResult(res *dynamo.Result) {
	fmt.Printf("%s %d\n", labelStyle.Render("steps:"), res.StepsTaken)
	if ts, ok := analysis.SettlingTime(res, 0.02); ok {
		fmt.Printf("%s %.2fs\n", labelStyle.Render("settling (2%):"), ts)
	} else {
		fmt.Println(warnStyle.Render("does not settle within the run"))
	}
	for _, err := range res.Errors {
		fmt.Println(warnStyle.Render("error: " + err.Error()))
	}
	printMetrics(res.Metrics)
}

func printMetrics(m map[string]float64) {
	printValues("metrics:", m)
}

func printValues(label string, m map[string]float64) {
	if len(m) == 0 {
		return
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println(labelStyle.Render(label))
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func plotStates(res *dynamo.Result, problem string) {
	if len(res.States) < 2 {
		return
	}
	n := min(len(res.States[0]), maxPlots)
	for i := 0; i < n; i++ {
		data := res.Column(i)
		if allFinite(data) {
			fmt.Println()
			fmt.Println(asciigraph.Plot(data,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(caption(problem, i)),
			))
		}
	}
}

func caption(problem string, i int) string {
	if names, ok := stateNames[problem]; ok && i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("x%d vs time", i)
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
