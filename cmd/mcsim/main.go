package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mcsim/internal/analysis"
	"github.com/san-kum/mcsim/internal/automation"
	"github.com/san-kum/mcsim/internal/config"
	"github.com/san-kum/mcsim/internal/experiment"
	"github.com/san-kum/mcsim/internal/logging"
	"github.com/san-kum/mcsim/internal/mc"
	"github.com/san-kum/mcsim/internal/optim"
	"github.com/san-kum/mcsim/internal/particles"
	"github.com/san-kum/mcsim/internal/storage"
	"github.com/san-kum/mcsim/internal/tui"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logFile  string
	logLevel string

	// Simulation flags, applied over preset and config file only when set.
	boxSize      float64
	distToEdge   float64
	step         float64
	numParticles int
	temperature  float64
	maxDeviation float64
	nmax         int
	totalIt      int
	cutoff       float64
	potentialArg string
	coulomb      bool
	backendArg   string
	deviceArg    string
	workers      int
	seed         int64
	trialMode    string
	acceptance   string

	configFile string
	preset     string

	noSave    bool
	progress  bool
	frameRate int
	repeat    int
	jsonOut   string
	plotOut   string

	blocks     int
	target     float64
	devMin     float64
	devMax     float64
	devSteps   int
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	replicas   int
)

// main registers the commands and exits with status 1 if one fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "mcsim",
		Short:         "metropolis monte carlo for particles in a periodic box",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mcsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "mcsim.log", "log file (empty disables)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the sampler to completion",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().BoolVar(&progress, "progress", false, "show a progress line on stderr")
	runCmd.Flags().IntVar(&frameRate, "fps", 10, "progress refresh rate")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the sampler with a live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time one energy evaluation on every backend",
		Args:  cobra.NoArgs,
		RunE:  benchBackends,
	}
	addSimFlags(benchCmd)
	benchCmd.Flags().IntVar(&repeat, "repeat", 10, "evaluations per backend")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the accepted energy of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and energy history to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&jsonOut, "out", "o", "", "output file (default stdout)")

	exportPlotCmd := &cobra.Command{
		Use:   "export-plot [run_id]",
		Short: "render the energy trace to an image",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPlot,
	}
	exportPlotCmd.Flags().StringVarP(&plotOut, "out", "o", "energy.png", "output image (.png, .svg, .pdf)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "autocorrelation and block-average error of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&blocks, "blocks", 20, "number of blocks")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "pick max_deviation for a target acceptance ratio",
		Args:  cobra.NoArgs,
		RunE:  tuneDeviation,
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().Float64Var(&target, "target", 0.5, "target acceptance ratio")
	tuneCmd.Flags().Float64Var(&devMin, "min", 0.001, "smallest candidate")
	tuneCmd.Flags().Float64Var(&devMax, "max", 0.5, "largest candidate")
	tuneCmd.Flags().IntVar(&devSteps, "steps", 10, "number of candidates")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run across a range of one parameter",
		Args:  cobra.NoArgs,
		RunE:  sweepParameter,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "temperature", "parameter: temperature, max_deviation, rc, box_size")
	sweepCmd.Flags().Float64Var(&sweepMin, "from", 0.5, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "to", 2.0, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 4, "number of values")

	replicasCmd := &cobra.Command{
		Use:   "replicas",
		Short: "repeat a run with consecutive seeds",
		Args:  cobra.NoArgs,
		RunE:  runReplicas,
	}
	addSimFlags(replicasCmd)
	replicasCmd.Flags().IntVar(&replicas, "count", 4, "number of replicas")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of runs from YAML",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")

	rootCmd.AddCommand(runCmd, liveCmd, benchCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, exportPlotCmd, presetsCmd,
		analyzeCmd, tuneCmd, sweepCmd, replicasCmd, scenarioCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()
	f.Float64Var(&boxSize, "box", d.BoxSize, "box edge length")
	f.Float64Var(&distToEdge, "edge", d.DistToEdge, "initial distance to the box edge")
	f.Float64Var(&step, "step", d.Step, "initial lattice spacing")
	f.IntVarP(&numParticles, "particles", "n", d.Particles, "number of particles")
	f.Float64VarP(&temperature, "temperature", "T", d.Temperature, "temperature")
	f.Float64Var(&maxDeviation, "max-deviation", d.MaxDeviation, "full width of the trial displacement")
	f.IntVar(&nmax, "nmax", d.NMax, "stop after this many accepted moves")
	f.IntVar(&totalIt, "total-it", d.TotalIt, "stop after this many attempts")
	f.Float64Var(&cutoff, "rc", d.Cutoff, "lennard-jones cutoff radius")
	f.StringVar(&potentialArg, "potential", d.Potential, "potential: lj, coulomb")
	f.BoolVar(&coulomb, "coulomb", false, "use the coulomb potential")
	f.StringVar(&backendArg, "backend", d.Backend, "backend: cpu, device")
	f.StringVar(&deviceArg, "device", d.Device, "device for the device backend: host, cuda")
	f.IntVar(&workers, "workers", d.Workers, "worker count")
	f.Int64Var(&seed, "seed", 0, "random seed (0 seeds from the clock)")
	f.StringVar(&trialMode, "trial-mode", d.TrialMode, "trial displacement: independent, shared")
	f.StringVar(&acceptance, "acceptance", d.Acceptance, "acceptance rule: literal, metropolis")
	f.StringVar(&configFile, "config", "", "config file (.yaml, .toml, .ini)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig layers defaults, preset, config file and explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("box") {
		cfg.BoxSize = boxSize
	}
	if changed("edge") {
		cfg.DistToEdge = distToEdge
	}
	if changed("step") {
		cfg.Step = step
	}
	if changed("particles") {
		cfg.Particles = numParticles
	}
	if changed("temperature") {
		cfg.Temperature = temperature
	}
	if changed("max-deviation") {
		cfg.MaxDeviation = maxDeviation
	}
	if changed("nmax") {
		cfg.NMax = nmax
	}
	if changed("total-it") {
		cfg.TotalIt = totalIt
	}
	if changed("rc") {
		cfg.Cutoff = cutoff
	}
	if changed("potential") {
		cfg.Potential = potentialArg
	}
	if coulomb {
		cfg.Potential = "coulomb"
	}
	if changed("backend") {
		cfg.Backend = backendArg
	}
	if changed("device") {
		cfg.Device = deviceArg
	}
	if changed("workers") {
		cfg.Workers = workers
	}
	if changed("seed") {
		cfg.Seed = seed
	}
	if changed("trial-mode") {
		cfg.TrialMode = trialMode
	}
	if changed("acceptance") {
		cfg.Acceptance = acceptance
	}

	return cfg, cfg.Validate()
}

func openLogger() (logging.Logger, func(), error) {
	if logFile == "" {
		return logging.Nop{}, func() {}, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return logging.New(f, logLevel), func() { f.Close() }, nil
}

func setup(cmd *cobra.Command) (*experiment.Experiment, logging.Logger, func(), error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	log, closeLog, err := openLogger()
	if err != nil {
		return nil, nil, nil, err
	}

	exp := experiment.New(cfg, log)
	if err := exp.Setup(); err != nil {
		closeLog()
		return nil, nil, nil, err
	}
	return exp, log, func() {
		exp.Close()
		closeLog()
	}, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	exp, log, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := exp.Sampler()
	n := float64(s.ParticleCount())
	fmt.Printf("running %s on %s, %d particles, seed %d\n", exp.Potential().Kind(), exp.Backend().Name(), s.ParticleCount(), exp.Seed())
	fmt.Printf("initial energy per particle: %f\n", s.InitialEnergy()/n)

	var bar *tui.Progress
	if progress {
		bar = tui.NewProgress(os.Stderr, frameRate, s.Params().TotalIt, s.ParticleCount())
		s.AddObserver(bar)
		bar.Start()
	}

	res, err := exp.Run(ctx)
	if bar != nil {
		bar.Stop()
	}
	if err != nil {
		return err
	}

	printResult(res)
	return saveRun(exp, log, res)
}

func runLive(cmd *cobra.Command, args []string) error {
	exp, log, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	title := fmt.Sprintf("%s · %d particles · %s", exp.Potential().Kind(), exp.Sampler().ParticleCount(), exp.Backend().Name())
	res, err := tui.Run(exp.Sampler(), title)
	if err != nil {
		log.Errorf("live run: %v", err)
		return err
	}

	log.Infof("energy is %f, good iters percent %f", res.EnergyPerParticle, res.AcceptanceRatio)
	log.Infof("total time %v, device time %v", res.WallTime, res.DeviceTime)
	printResult(res)
	return saveRun(exp, log, res)
}

func printResult(res *mc.Result) {
	fmt.Printf("energy per particle: %f\n", res.EnergyPerParticle)
	fmt.Printf("accepted: %d/%d (ratio %f)\n", res.Accepted, res.Attempts, res.AcceptanceRatio)
	fmt.Printf("total time: %v\n", res.WallTime)
	fmt.Printf("device time: %v\n", res.DeviceTime)
	if len(res.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		for _, name := range []string{"acceptance", "energy_mean", "energy_stddev", "energy_drift"} {
			if val, ok := res.Metrics[name]; ok {
				fmt.Printf("  %s: %.6f\n", name, val)
			}
		}
	}
}

func saveRun(exp *experiment.Experiment, log logging.Logger, res *mc.Result) error {
	if noSave {
		return nil
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(exp.Metadata(res), res.History, res.Final)
	if err != nil {
		log.Errorf("save run: %v", err)
		return err
	}

	log.Infof("saved run %s", runID)
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

func benchBackends(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	box, err := cfg.Box()
	if err != nil {
		return err
	}
	pot, err := cfg.NewPotential()
	if err != nil {
		return err
	}
	sys, err := particles.NewLattice(box, cfg.Lattice(), pot.NeedsCharges())
	if err != nil {
		return err
	}
	if repeat < 1 {
		repeat = 1
	}

	fmt.Printf("benchmarking %s, %d particles, %d evaluations\n\n", pot.Kind(), sys.Len(), repeat)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tNAME\tENERGY\tENERGY/N\tTIME/EVAL\tDEVICE/EVAL")

	registry := experiment.NewRegistry()
	for _, name := range registry.ListBackends() {
		backend, err := registry.GetBackend(name, cfg.Workers)
		if err != nil {
			fmt.Fprintf(w, "%s\t-\tunavailable: %v\t\t\t\n", name, err)
			continue
		}

		eval := mc.NewEvaluator(pot, backend)
		var energy float64
		start := time.Now()
		for i := 0; i < repeat; i++ {
			if energy, err = eval.Energy(sys); err != nil {
				break
			}
		}
		elapsed := time.Since(start)
		deviceTime := backend.DeviceTime()
		backend.Cleanup()

		if err != nil {
			fmt.Fprintf(w, "%s\t%s\tfailed: %v\t\t\t\n", name, backend.Name(), err)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%.6f\t%.6f\t%v\t%v\n",
			name, backend.Name(), energy, energy/float64(sys.Len()),
			elapsed/time.Duration(repeat), deviceTime/time.Duration(repeat))
	}

	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPOTENTIAL\tTIME\tN\tT\tACCEPTED\tRATIO\tENERGY/N")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.3f\t%d/%d\t%.4f\t%.6f\n",
			run.ID,
			run.Potential,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Temperature,
			run.Accepted,
			run.Attempts,
			run.AcceptanceRatio,
			run.EnergyPerParticle,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	energies, err := st.LoadEnergies(runID)
	if err != nil {
		return err
	}

	if len(energies) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("potential: %s\n", meta.Potential)
	fmt.Printf("accepted: %d\n\n", len(energies))

	data := make([]float64, len(energies))
	for i, e := range energies {
		data[i] = e / float64(meta.Particles)
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("accepted energy per particle"),
	)
	fmt.Println(graph)

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	energies, err := st.LoadEnergies(runID)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if jsonOut != "" {
		f, err := os.Create(jsonOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if err := storage.ExportJSON(w, meta, energies); err != nil {
		return err
	}
	if jsonOut != "" {
		fmt.Printf("exported to %s\n", jsonOut)
	}
	return nil
}

func exportPlot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	energies, err := st.LoadEnergies(runID)
	if err != nil {
		return err
	}

	if err := storage.PlotEnergies(plotOut, energies, meta.Particles); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", plotOut)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tPOTENTIAL\tN\tBOX\tT\tNMAX\tTOTAL_IT\tBACKEND")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%g\t%d\t%d\t%s\n",
			name, p.Potential, p.Particles, p.BoxSize, p.Temperature, p.NMax, p.TotalIt, p.Backend)
	}
	return w.Flush()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	energies, err := st.LoadEnergies(runID)
	if err != nil {
		return err
	}

	data := make([]float64, len(energies))
	for i, e := range energies {
		data[i] = e / float64(meta.Particles)
	}

	s, err := analysis.Summarize(data, blocks)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", s.Samples)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "mean energy/N\t%.6f\n", s.Mean)
	fmt.Fprintf(w, "std dev\t%.6f\n", s.StdDev)
	fmt.Fprintf(w, "autocorrelation time\t%.2f\n", s.Tau)
	fmt.Fprintf(w, "effective samples\t%.0f\n", s.Effective)
	fmt.Fprintf(w, "naive std error\t%.6f\n", s.NaiveStdErr)
	fmt.Fprintf(w, "block std error (%d)\t%.6f\n", blocks, s.BlockStdErr)
	if err := w.Flush(); err != nil {
		return err
	}

	rho, err := analysis.Autocorrelation(data, min(len(data)-1, 200))
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(rho,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("autocorrelation"),
	))
	return nil
}

func tuneDeviation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log, closeLog, err := openLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	candidates := optim.Geometric(devMin, devMax, devSteps)
	fmt.Printf("tuning max_deviation over %d candidates for acceptance %.2f\n", len(candidates), target)

	best, dist, err := optim.TuneDeviation(ctx, cfg, candidates, target, log)
	if err != nil {
		return err
	}
	fmt.Printf("max_deviation: %g (acceptance off by %.4f)\n", best, dist)
	return nil
}

func sweepParameter(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log, closeLog, err := openLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweep := &automation.ParameterSweep{
		Base:      cfg,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
	}
	results, err := automation.RunSweep(ctx, sweep, log, os.Stderr)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFINAL E/N\tMEAN E/N\tSTDERR\tRATIO\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%.6f\t%.6f\t%.6f\t%.4f\n",
			r.ParamValue, r.EnergyPerParticle, r.MeanEnergy, r.StdErr, r.AcceptanceRatio)
	}
	return w.Flush()
}

func runReplicas(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log, closeLog, err := openLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := automation.RunReplicas(ctx, cfg, replicas, cfg.Seed, log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tE/N\tRATIO")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.6f\t%.4f\n", r.Seed, r.EnergyPerParticle, r.AcceptanceRatio)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if mean, spread, ok := automation.Spread(results); ok {
		fmt.Printf("\nmean %.6f, spread %.6f\n", mean, spread)
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	log, closeLog, err := openLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if sc.Description != "" {
		fmt.Printf("%s: %s\n", sc.Name, sc.Description)
	}
	results, err := automation.RunScenario(ctx, sc, log, os.Stdout)
	for _, r := range results {
		if serr := saveRun(r.Experiment, log, r.Result); serr != nil {
			return serr
		}
	}
	return err
}
