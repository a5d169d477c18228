package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/san-kum/riccati/internal/analysis"
	"github.com/san-kum/riccati/internal/care"
	"github.com/san-kum/riccati/internal/config"
	"github.com/san-kum/riccati/internal/control"
	"github.com/san-kum/riccati/internal/dynamo"
	"github.com/san-kum/riccati/internal/integrators"
	"github.com/san-kum/riccati/internal/linsys"
	"github.com/san-kum/riccati/internal/logging"
	"github.com/san-kum/riccati/internal/metrics"
	"github.com/san-kum/riccati/internal/physics"
	"github.com/san-kum/riccati/internal/storage"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	logLevel   string
	logFormat  string

	tolerance float64
	maxIter   int
	noCheck   bool
	save      bool

	duration  float64
	dt        float64
	openLoop  bool
	nonlinear bool
	params    map[string]string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "riccati",
		Short:        "LQR synthesis via Newton-Kleinman Riccati iteration",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".riccati", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, disabled)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (console, json)")

	lqrCmd := &cobra.Command{
		Use:   "lqr [preset]",
		Short: "synthesize an LQR gain",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLQR,
	}
	solverFlags(lqrCmd)
	lqrCmd.Flags().BoolVar(&save, "save", false, "store the design under the data directory")

	careCmd := &cobra.Command{
		Use:   "care",
		Short: "solve the raw riccati equation from the config file",
		Args:  cobra.NoArgs,
		RunE:  runCARE,
	}
	solverFlags(careCmd)

	ctrbCmd := &cobra.Command{
		Use:   "ctrb [preset]",
		Short: "controllability report",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCtrb,
	}

	simulateCmd := &cobra.Command{
		Use:   "simulate [preset]",
		Short: "synthesize a gain and simulate the closed loop",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulate,
	}
	solverFlags(simulateCmd)
	simulateCmd.Flags().Float64Var(&duration, "time", 0, "duration (0 keeps the config value)")
	simulateCmd.Flags().Float64Var(&dt, "dt", 0, "timestep (0 keeps the config value)")
	simulateCmd.Flags().BoolVar(&openLoop, "open-loop", false, "also run with zero input for comparison")
	simulateCmd.Flags().BoolVar(&nonlinear, "nonlinear", false, "simulate the nonlinear model behind the preset")
	simulateCmd.Flags().StringToStringVar(&params, "param", nil, "nonlinear model parameter override, name=value")
	simulateCmd.Flags().BoolVar(&save, "save", false, "store the design and trajectory")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list models, or the presets of a model",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored designs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored design",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	rootCmd.AddCommand(lqrCmd, careCmd, ctrbCmd, simulateCmd, presetsCmd, listCmd, showCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func solverFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&tolerance, "tol", 0, "residual tolerance (0 keeps the config value)")
	cmd.Flags().IntVar(&maxIter, "max-iter", 0, "newton iteration cap (0 keeps the config value)")
	cmd.Flags().BoolVar(&noCheck, "no-check", false, "skip the weighting positivity check")
}

// loadConfig resolves the config file, then the preset argument, then the
// defaults, and applies flag overrides on top.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case configFile != "":
		cfg, err = config.Load(configFile)
	case len(args) > 0:
		cfg, err = config.Lookup(args[0])
	default:
		cfg = config.DefaultConfig()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("tol") {
		cfg.Solver.Tolerance = tolerance
	}
	if flags.Changed("max-iter") {
		cfg.Solver.MaxIterations = maxIter
	}
	if flags.Changed("no-check") {
		cfg.Solver.Check = !noCheck
	}
	if flags.Changed("time") {
		cfg.Simulation.Duration = duration
	}
	if flags.Changed("dt") {
		cfg.Simulation.Dt = dt
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func synthesize(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*linsys.System, *control.Design, error) {
	sys, err := cfg.Problem.System()
	if err != nil {
		return nil, nil, err
	}
	w, err := cfg.Problem.Weights()
	if err != nil {
		return nil, nil, err
	}
	if !sys.IsControllable() {
		log.Warn().Str("problem", cfg.Problem.Name).Msg("plant is not controllable")
	}
	d, err := control.Synthesize(ctx, sys, w, cfg.Solver.ControlOptions(log))
	if err != nil {
		return nil, nil, err
	}
	return sys, d, nil
}

func runLQR(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	log := logging.New(cfg.Logging)

	sys, d, err := synthesize(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}

	printDesign(cfg.Problem.Name, sys, d)

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg.Problem.Name, d, nil)
		if err != nil {
			return err
		}
		fmt.Printf("\n%s %s\n", labelStyle.Render("run id:"), runID)
	}
	return nil
}

func runCARE(cmd *cobra.Command, args []string) error {
	if configFile == "" {
		return errors.New("care needs --config with a riccati section")
	}
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if cfg.Riccati.Empty() {
		return fmt.Errorf("%s has no riccati section", configFile)
	}
	a, b, c, err := cfg.Riccati.Matrices()
	if err != nil {
		return err
	}

	log := logging.New(cfg.Logging)
	sol, err := care.New(cfg.Solver.CAREOptions(log)).Solve(cmd.Context(), a, b, c)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("riccati solution"))
	printSolution(sol)
	fmt.Println()
	fmt.Println(labelStyle.Render("X ="))
	fmt.Println(formatMatrix(sol.X))
	return sol.Err()
}

func runCtrb(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	sys, err := cfg.Problem.System()
	if err != nil {
		return err
	}

	n, m := sys.Dims()
	fmt.Println(titleStyle.Render("controllability: " + cfg.Problem.Name))
	fmt.Printf("%s %d  %s %d\n\n", labelStyle.Render("states:"), n, labelStyle.Render("inputs:"), m)
	fmt.Println(labelStyle.Render("[G FG … F^(n-1)G] ="))
	fmt.Println(formatMatrix(sys.ControllabilityMatrix()))

	p, err := analysis.Spectrum(sys.F)
	if err == nil {
		fmt.Printf("\n%s %s\n", labelStyle.Render("open-loop poles:"), formatPoles(p))
	}

	if sys.IsControllable() {
		fmt.Println(okStyle.Render("controllable"))
	} else {
		fmt.Println(warnStyle.Render("not controllable"))
	}
	return nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	log := logging.New(cfg.Logging)
	ctx := cmd.Context()

	sys, d, err := synthesize(ctx, cfg, log)
	if err != nil {
		return err
	}
	w, _ := cfg.Problem.Weights()

	var (
		plant dynamo.System = sys
		lin   *linsys.System
	)
	if nonlinear {
		if plant = physics.ForProblem(cfg.Problem.Name); plant == nil {
			return fmt.Errorf("no nonlinear model for problem %q", cfg.Problem.Name)
		}
		overrides, err := parseParams(params)
		if err != nil {
			return err
		}
		if err := physics.ApplyParams(plant, overrides); err != nil {
			return err
		}
		lin, err = physics.Linearize(plant, make(dynamo.State, plant.StateDim()), make(dynamo.Control, plant.ControlDim()))
		if err != nil {
			return err
		}
	} else if len(params) > 0 {
		return errors.New("--param needs --nonlinear")
	}

	// One trace record per simulated second.
	traceEvery := int(1/cfg.Simulation.Dt + 0.5)
	run := func(ctrl dynamo.Controller) (*dynamo.Result, error) {
		sim := dynamo.New(plant, integrators.New(cfg.Simulation.Integrator), ctrl)
		for _, m := range metrics.Standard(w.Q, w.R, w.M, cfg.Simulation.Dt, cfg.Simulation.Bound) {
			sim.AddMetric(m)
		}
		sim.AddObserver(dynamo.NewTrace(log, traceEvery))
		return sim.Run(ctx, dynamo.State(cfg.Simulation.InitialState), cfg.Simulation.DynamoConfig())
	}

	result, err := run(d.Controller(dynamo.State(cfg.Simulation.Target)))
	if err != nil {
		return err
	}

	printDesign(cfg.Problem.Name, sys, d)
	fmt.Println()
	if lin != nil {
		printModel(cfg.Problem.Name, plant, sys, lin, d)
		fmt.Println()
	}
	if nonlinear {
		fmt.Println(titleStyle.Render("closed loop (nonlinear " + cfg.Problem.Name + ")"))
	} else {
		fmt.Println(titleStyle.Render("closed loop"))
	}
	printResult(result)
	plotStates(result, cfg.Problem.Name)

	if openLoop {
		_, m := sys.Dims()
		ol, err := run(control.NewNone(m))
		if err != nil {
			return err
		}
		fmt.Println(titleStyle.Render("open loop"))
		printResult(ol)
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg.Problem.Name, d, result)
		if err != nil {
			return err
		}
		fmt.Printf("\n%s %s\n", labelStyle.Render("run id:"), runID)
	}
	return nil
}

// parseParams converts --param name=value pairs.
func parseParams(raw map[string]string) (map[string]float64, error) {
	out := make(map[string]float64, len(raw))
	for name, v := range raw {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", name, err)
		}
		out[name] = f
	}
	return out, nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Println(titleStyle.Render("models"))
		for _, model := range config.Models() {
			fmt.Printf("  %s  %s\n", model, dimStyle.Render(strings.Join(config.ListPresets(model), ", ")))
		}
		return nil
	}
	presets := config.ListPresets(args[0])
	if len(presets) == 0 {
		fmt.Printf("no presets for model: %s\n", args[0])
		return nil
	}
	fmt.Printf("presets for %s:\n", args[0])
	for _, p := range presets {
		fmt.Printf("  %s/%s\n", args[0], p)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROBLEM\tTIME\tN\tM\tSTATUS\tITER\tRESIDUAL")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%d\t%.2e\n",
			run.ID,
			run.Problem,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.States,
			run.Inputs,
			run.Status,
			run.Iterations,
			run.Residual,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	k, err := st.LoadMatrix(runID, storage.Gain)
	if err != nil {
		return err
	}
	x, err := st.LoadMatrix(runID, storage.Riccati)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("run " + meta.ID))
	fmt.Printf("%s %s\n", labelStyle.Render("problem:"), meta.Problem)
	fmt.Printf("%s %s\n", labelStyle.Render("saved:"), meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("%s %s after %d iterations, residual %.3e\n", labelStyle.Render("status:"), statusText(meta.Status), meta.Iterations, meta.Residual)
	for _, w := range meta.Warnings {
		fmt.Println(warnStyle.Render("warning: " + w))
	}
	fmt.Println()
	fmt.Println(labelStyle.Render("K ="))
	fmt.Println(formatMatrix(k))
	fmt.Println(labelStyle.Render("X ="))
	fmt.Println(formatMatrix(x))
	printMetrics(meta.Metrics)

	states, times, err := st.LoadStates(runID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	res := &dynamo.Result{Times: times}
	for _, s := range states {
		res.States = append(res.States, dynamo.State(s))
	}
	plotStates(res, meta.Problem)
	return nil
}
