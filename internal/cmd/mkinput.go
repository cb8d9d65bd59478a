package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chemflow/orcakit/internal/config"
	"github.com/chemflow/orcakit/internal/observability"
	"github.com/chemflow/orcakit/pkg/discover"
	"github.com/chemflow/orcakit/pkg/manifest"
	"github.com/chemflow/orcakit/pkg/orca"
	"github.com/chemflow/orcakit/pkg/output"
)

// maxNumberedSteps is the number of --jobN/--methodN/... flag groups.
const maxNumberedSteps = 4

// Document layouts reported in input records.
const (
	layoutSingle   = "single"
	layoutCompound = "compound"
	layoutNEB      = "neb"
)

var mkinputCmd = &cobra.Command{
	Use:   "mkinput",
	Short: "Generate ORCA input files",
	Long: `Generate ORCA input files from XYZ geometries.

Three document shapes are produced:
  single    one directive line (default)
  compound  a %compound chain, from numbered step flags or --stages <manifest>
  neb       a nudged-elastic-band run, when --job is neb/nebci/nebts or --neb-mode is set

Existing .inp files are skipped unless --overwrite is given.

Examples:
  # Single point with implicit solvent
  orcakit mkinput --xyz benzene.xyz --job sp --smd water

  # Every geometry in a folder, outputs next to the inputs
  orcakit mkinput --folder mols --pattern "**/*.xyz" --job optfreq

  # Two-step compound job from a manifest
  orcakit mkinput --xyz benzene.xyz --stages stages.yaml

  # Compound from numbered flags
  orcakit mkinput --xyz benzene.xyz --job1 opt --basis1 def2-SVP --job2 sp --method2 wB97M-V

  # Climbing-image NEB
  orcakit mkinput --xyz reactant.xyz --job nebci --neb-product product.xyz`,
	RunE: runMkinput,
}

// stepFlags holds one group of numbered compound-step flags.
type stepFlags struct {
	job, method, basis, grid, cpcm, smd, moinp string
	nstates                                    int
	extra, blocks                              []string
}

var (
	mkXYZ        string
	mkFolder     string
	mkPattern    string
	mkOutdir     string
	mkName       string
	mkCharge     int
	mkMult       int
	mkMethod     string
	mkBasis      string
	mkJob        string
	mkNStates    int
	mkCPCM       string
	mkSMD        string
	mkGrid       string
	mkMOInp      string
	mkExtra      []string
	mkExtraBlock []string
	mkOverwrite  bool
	mkPal        int
	mkMaxCoreMB  int
	mkPalStyle   string
	mkStages     string
	mkDryRun     bool
	mkJSON       bool

	mkNEBMode    string
	mkNEBProduct string
	mkNEBTS      string
	mkNEBSpring  float64
	mkNEBMaxIter int
	mkNImages    int

	mkSteps [maxNumberedSteps]stepFlags
)

// numberedFields are the per-step flags whose presence selects compound mode.
var numberedFields = []string{"job", "method", "basis", "grid", "cpcm", "smd", "extra", "moinp"}

var hiddenStepFlags = append(append([]string{}, numberedFields...), "nstates", "extra-block")

func init() {
	rootCmd.AddCommand(mkinputCmd)
	f := mkinputCmd.Flags()

	f.StringVar(&mkXYZ, "xyz", "", "Input XYZ file (single or compound)")
	f.StringVar(&mkFolder, "folder", "", "Folder with XYZ files (batch mode)")
	f.StringVar(&mkPattern, "pattern", "", "Glob pattern for --folder (default: input.pattern, *.xyz)")
	f.StringVar(&mkOutdir, "outdir", "", "Directory for outputs (default: next to each XYZ)")
	f.StringVar(&mkName, "name", "", "Output basename without extension (default: XYZ stem)")
	f.IntVar(&mkCharge, "charge", 0, "Molecular charge")
	f.IntVar(&mkMult, "mult", 1, "Spin multiplicity")

	f.StringVar(&mkMethod, "method", "", "DFT/ab initio method (default: input.method)")
	f.StringVar(&mkBasis, "basis", "", "Basis set (default: input.basis)")
	f.StringVar(&mkJob, "job", "", "Job type ("+strings.Join(orca.JobKindNames(), "|")+")")
	f.IntVar(&mkNStates, "nstates", orca.DefaultNStates, "TDDFT nroots (single-step)")
	f.StringVar(&mkCPCM, "cpcm", "", "CPCM solvent (e.g. water)")
	f.StringVar(&mkSMD, "smd", "", "SMD solvent (e.g. water)")
	f.StringVar(&mkGrid, "grid", "", "Grid token (default: input.grid)")
	f.StringVar(&mkMOInp, "moinp", "", "Read MOs from a GBW file (adds %moinp and MORead)")
	f.StringArrayVar(&mkExtra, "extra", nil, "Extra directive tokens (comma/space separated, repeatable)")
	f.StringArrayVar(&mkExtraBlock, "extra-block", nil, "Text file injected verbatim (repeatable)")
	f.BoolVar(&mkOverwrite, "overwrite", false, "Overwrite existing .inp files")

	f.IntVar(&mkPal, "pal", 0, "Number of cores (default: input.pal)")
	f.IntVar(&mkMaxCoreMB, "maxcore-mb", 0, "MaxCore per core in MB (default: input.maxcore_mb)")
	f.StringVar(&mkPalStyle, "pal-style", "", "Parallel directive style (block|bang)")

	f.StringVar(&mkStages, "stages", "", "Compound stage manifest (YAML or JSON)")
	f.BoolVar(&mkDryRun, "dry-run", false, "Print documents instead of writing them")
	f.BoolVar(&mkJSON, "json", false, "Emit JSONL records on stdout")

	f.StringVar(&mkNEBMode, "neb-mode", "", "NEB flavor (neb|neb-ci|neb-ts)")
	f.StringVar(&mkNEBProduct, "neb-product", "", "Product geometry XYZ (NEB_END_XYZFILE)")
	f.StringVar(&mkNEBTS, "neb-ts", "", "Optional TS guess XYZ (NEB_TS_XYZFILE)")
	f.Float64Var(&mkNEBSpring, "neb-springconst", orca.DefaultSpringConst, "NEB spring constant")
	f.IntVar(&mkNEBMaxIter, "neb-maxiter", orca.DefaultNEBMaxIter, "Max NEB iterations")
	f.IntVar(&mkNImages, "nimages", orca.DefaultNEBImages, "NEB images without fixed endpoints")

	for i := range mkSteps {
		k := strconv.Itoa(i + 1)
		s := &mkSteps[i]
		f.StringVar(&s.job, "job"+k, "", "Step "+k+" job")
		f.StringVar(&s.method, "method"+k, "", "Step "+k+" method")
		f.StringVar(&s.basis, "basis"+k, "", "Step "+k+" basis")
		f.StringVar(&s.grid, "grid"+k, "", "Step "+k+" grid (default: inherit --grid)")
		f.StringVar(&s.cpcm, "cpcm"+k, "", "Step "+k+" CPCM solvent")
		f.StringVar(&s.smd, "smd"+k, "", "Step "+k+" SMD solvent")
		f.StringVar(&s.moinp, "moinp"+k, "", "Step "+k+" %moinp file")
		f.IntVar(&s.nstates, "nstates"+k, orca.DefaultNStates, "Step "+k+" TDDFT nroots")
		f.StringArrayVar(&s.extra, "extra"+k, nil, "Step "+k+" extra directive tokens")
		f.StringArrayVar(&s.blocks, "extra-block"+k, nil, "Step "+k+" injected text file")
		for _, name := range hiddenStepFlags {
			_ = f.MarkHidden(name + k)
		}
	}
}

// mkinputPlan is one document to emit.
type mkinputPlan struct {
	geometry string
	path     string
	layout   string
	doc      orca.Document
	jobs     []string
}

// mkinputSettings are the flag values merged over the config defaults.
type mkinputSettings struct {
	charge, mult int
	method       string
	basis        string
	job          orca.JobKind
	grid         string
	resources    orca.ResourceSpec
	extra        []string
	blocks       []string
	pattern      string
}

func runMkinput(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	cfg, err := currentConfig(ctx)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Failed to load configuration", err)
	}
	settings, err := resolveMkinputSettings(cmd, cfg)
	if err != nil {
		return documentExitError("Invalid mkinput options", err)
	}

	plans, err := planMkinput(cmd, cfg, settings)
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		return nil
	}

	var w *output.JSONLWriter
	if mkJSON {
		w = output.NewJSONLWriter(cmd.OutOrStdout(), "")
		defer func() { _ = w.Close() }()
	}

	summary := output.SummaryRecord{}
	var firstErr error
	for _, p := range plans {
		if err := ctx.Err(); err != nil {
			return exitError(foundry.ExitSignalInt, "mkinput cancelled", err)
		}
		written, err := emitPlan(ctx, cmd.OutOrStdout(), w, p, len(plans) > 1)
		switch {
		case err != nil:
			summary.Errors++
			if firstErr == nil {
				firstErr = err
			}
			observability.CLILogger.Error("Failed to generate input", zap.String("path", p.path), zap.Error(err))
			if w != nil {
				_ = w.WriteError(ctx, &output.ErrorRecord{Code: errorCodeFor(err), Message: err.Error(), Path: p.path})
			}
		case written:
			summary.Generated++
		default:
			summary.Skipped++
		}
	}

	if w != nil && len(plans) > 1 {
		summary.Duration = time.Since(start)
		summary.DurationHuman = summary.Duration.Round(time.Millisecond).String()
		_ = w.WriteSummary(ctx, &summary)
	}
	if len(plans) > 1 {
		observability.CLILogger.Info("Batch complete",
			zap.Int("generated", summary.Generated),
			zap.Int("skipped", summary.Skipped),
			zap.Int("errors", summary.Errors))
	}

	if firstErr != nil {
		return documentExitError("Input generation failed", firstErr)
	}
	return nil
}

// emitPlan writes (or prints) one document. It reports false when an
// existing output was skipped.
func emitPlan(ctx context.Context, stdout io.Writer, w *output.JSONLWriter, p mkinputPlan, batch bool) (bool, error) {
	if !mkDryRun && !mkOverwrite {
		if _, err := os.Stat(p.path); err == nil {
			observability.CLILogger.Warn("Output exists, skipping (use --overwrite to replace)", zap.String("path", p.path))
			if w != nil {
				_ = w.WriteSkip(ctx, &output.SkipRecord{Path: p.path, Reason: output.SkipReasonExists})
			}
			return false, nil
		}
	}

	text, err := p.doc.Render()
	if err != nil {
		return false, err
	}

	if mkDryRun {
		if w == nil {
			if batch {
				_, _ = fmt.Fprintf(stdout, "# %s\n", p.path)
			}
			_, _ = io.WriteString(stdout, text)
		}
	} else {
		if err := orca.WriteDocument(p.path, p.doc); err != nil {
			return false, err
		}
		observability.CLILogger.Info("Wrote input",
			zap.String("path", p.path),
			zap.String("layout", p.layout),
			zap.Strings("jobs", p.jobs))
	}

	if w != nil {
		if err := w.WriteInput(ctx, &output.InputRecord{
			Geometry: p.geometry,
			Path:     p.path,
			Layout:   p.layout,
			Jobs:     p.jobs,
			Bytes:    len(text),
			DryRun:   mkDryRun,
		}); err != nil {
			return true, err
		}
	}
	return true, nil
}

func resolveMkinputSettings(cmd *cobra.Command, cfg *config.Config) (mkinputSettings, error) {
	in := cfg.Input
	s := mkinputSettings{
		charge:  intFlagOr(cmd, "charge", mkCharge, in.Charge),
		mult:    intFlagOr(cmd, "mult", mkMult, in.Mult),
		method:  stringFlagOr(cmd, "method", mkMethod, in.Method),
		basis:   stringFlagOr(cmd, "basis", mkBasis, in.Basis),
		grid:    stringFlagOr(cmd, "grid", mkGrid, in.Grid),
		pattern: stringFlagOr(cmd, "pattern", mkPattern, in.Pattern),
		extra:   orca.ParseExtras(mkExtra),
	}

	job, err := orca.ParseJobKind(stringFlagOr(cmd, "job", mkJob, in.Job))
	if err != nil {
		return s, err
	}
	s.job = job

	style, err := orca.ParsePalStyle(stringFlagOr(cmd, "pal-style", mkPalStyle, in.PalStyle))
	if err != nil {
		return s, err
	}
	s.resources = orca.ResourceSpec{
		Procs:     intFlagOr(cmd, "pal", mkPal, in.Procs),
		MaxCoreMB: intFlagOr(cmd, "maxcore-mb", mkMaxCoreMB, in.MaxCoreMB),
		Style:     style,
	}
	if err := s.resources.Validate(); err != nil {
		return s, err
	}

	blocks, err := orca.ReadBlocks(mkExtraBlock)
	if err != nil {
		return s, err
	}
	s.blocks = blocks
	return s, nil
}

// planMkinput decides the document shape and the output paths.
func planMkinput(cmd *cobra.Command, cfg *config.Config, s mkinputSettings) ([]mkinputPlan, error) {
	if s.job.IsNEB() || cmd.Flags().Changed("neb-mode") {
		p, err := planNEB(cmd, cfg, s)
		if err != nil {
			return nil, err
		}
		return []mkinputPlan{p}, nil
	}

	if mkXYZ != "" && mkFolder != "" {
		return nil, exitError(foundry.ExitInvalidArgument, "Invalid mkinput options", errors.New("--xyz and --folder are mutually exclusive"))
	}
	if mkFolder != "" && mkName != "" {
		return nil, exitError(foundry.ExitInvalidArgument, "Invalid mkinput options", errors.New("--name cannot be used with --folder (would overwrite files)"))
	}

	build, err := documentBuilder(cmd, cfg, s)
	if err != nil {
		return nil, err
	}

	if mkFolder != "" {
		files, err := discover.FindPattern(mkFolder, s.pattern)
		if err != nil {
			if errors.Is(err, discover.ErrNotDirectory) {
				return nil, exitError(foundry.ExitFileNotFound, "Invalid --folder", err)
			}
			return nil, documentExitError("Invalid --pattern", err)
		}
		if len(files) == 0 {
			observability.CLILogger.Warn("No files matched",
				zap.String("folder", mkFolder),
				zap.String("pattern", s.pattern))
			return nil, nil
		}
		plans := make([]mkinputPlan, 0, len(files))
		sources := make(map[string]string, len(files))
		for _, xyz := range files {
			p := build(filepath.Base(xyz))
			p.geometry = xyz
			p.path = discover.OutputPath(xyz, mkOutdir, ".inp")
			if prev, dup := sources[p.path]; dup {
				return nil, exitError(foundry.ExitInvalidArgument, "Conflicting output paths",
					fmt.Errorf("%w: %s and %s both map to %s", orca.ErrConfiguration, prev, xyz, p.path))
			}
			sources[p.path] = xyz
			plans = append(plans, p)
		}
		return plans, nil
	}

	if mkXYZ == "" {
		return nil, exitError(foundry.ExitInvalidArgument, "Missing geometry", errors.New("provide --xyz (or --folder) unless using a NEB job"))
	}
	if _, err := os.Stat(mkXYZ); err != nil {
		return nil, exitError(foundry.ExitFileNotFound, "XYZ not found", err)
	}
	if !compoundRequested(cmd) && !cmd.Flags().Changed("job") && !cmd.Flags().Changed("method") && !cmd.Flags().Changed("basis") {
		return nil, exitError(foundry.ExitInvalidArgument, "Nothing to generate",
			errors.New("give --job (and optionally --method/--basis), numbered step flags, or --stages"))
	}

	p := build(filepath.Base(mkXYZ))
	p.geometry = mkXYZ
	path := discover.OutputPath(mkXYZ, mkOutdir, ".inp")
	if mkName != "" {
		path = filepath.Join(filepath.Dir(path), mkName+".inp")
	}
	p.path = path
	return []mkinputPlan{p}, nil
}

// documentBuilder returns a function producing the document for one
// geometry reference, with stages and blocks resolved once up front.
func documentBuilder(cmd *cobra.Command, cfg *config.Config, s mkinputSettings) (func(ref string) mkinputPlan, error) {
	if mkStages != "" && numberedStepsPresent(cmd) {
		return nil, exitError(foundry.ExitInvalidArgument, "Invalid mkinput options", errors.New("--stages cannot be combined with numbered step flags"))
	}

	if mkStages != "" {
		m, err := manifest.Load(mkStages)
		if err != nil {
			return nil, documentExitError("Invalid stage manifest", err)
		}
		dir := filepath.Dir(mkStages)
		stages, err := m.BuildStages(dir)
		if err != nil {
			return nil, documentExitError("Invalid stage manifest", err)
		}
		globals, err := m.GlobalBlocks(dir)
		if err != nil {
			return nil, documentExitError("Invalid stage manifest", err)
		}
		res, err := m.ResourceSpec(s.resources)
		if err != nil {
			return nil, documentExitError("Invalid stage manifest", err)
		}
		blocks := append(append([]string{}, s.blocks...), globals...)
		return func(ref string) mkinputPlan {
			return mkinputPlan{
				layout: layoutCompound,
				jobs:   stageJobs(stages),
				doc: orca.Compound{
					Stages:    stages,
					Geometry:  m.GeometryFor(ref, s.charge, s.mult),
					Resources: res,
					Blocks:    blocks,
				},
			}
		}, nil
	}

	if numberedStepsPresent(cmd) {
		stages, err := stagesFromFlags(cmd, cfg, s)
		if err != nil {
			return nil, documentExitError("Invalid compound step options", err)
		}
		return func(ref string) mkinputPlan {
			return mkinputPlan{
				layout: layoutCompound,
				jobs:   stageJobs(stages),
				doc: orca.Compound{
					Stages:    stages,
					Geometry:  orca.Geometry{Path: ref, Charge: s.charge, Mult: s.mult},
					Resources: s.resources,
					Blocks:    s.blocks,
				},
			}
		}, nil
	}

	stage := orca.Stage{
		Spec: orca.JobSpec{
			Method:  s.method,
			Basis:   s.basis,
			Kind:    s.job,
			Grid:    s.grid,
			CPCM:    mkCPCM,
			SMD:     mkSMD,
			Extra:   s.extra,
			MOInput: mkMOInp,
		},
		NStates: intFlagOr(cmd, "nstates", mkNStates, cfg.Input.NStates),
		Blocks:  s.blocks,
	}
	return func(ref string) mkinputPlan {
		return mkinputPlan{
			layout: layoutSingle,
			jobs:   []string{string(s.job)},
			doc: orca.Single{
				Stage:     stage,
				Geometry:  orca.Geometry{Path: ref, Charge: s.charge, Mult: s.mult},
				Resources: s.resources,
			},
		}
	}, nil
}

func planNEB(cmd *cobra.Command, cfg *config.Config, s mkinputSettings) (mkinputPlan, error) {
	mode := orca.NEBModeForKind(s.job)
	if cmd.Flags().Changed("neb-mode") {
		m, err := orca.ParseNEBMode(mkNEBMode)
		if err != nil {
			return mkinputPlan{}, documentExitError("Invalid --neb-mode", err)
		}
		mode = m
	}
	if mkXYZ == "" {
		return mkinputPlan{}, exitError(foundry.ExitInvalidArgument, "Missing reactant", errors.New("NEB requires --xyz for the reactant structure"))
	}
	if mkNEBProduct == "" {
		return mkinputPlan{}, exitError(foundry.ExitInvalidArgument, "Missing product", errors.New("NEB requires --neb-product <product.xyz>"))
	}

	name := mkName
	if name == "" {
		name = string(mode)
	}
	outdir := mkOutdir
	if outdir == "" {
		outdir = "."
	}

	// NEB has its own method default and no basis default.
	method := stringFlagOr(cmd, "method", mkMethod, cfg.Input.NEBMethod)
	basis := ""
	if cmd.Flags().Changed("basis") {
		basis = mkBasis
	}

	return mkinputPlan{
		geometry: mkXYZ,
		path:     filepath.Join(outdir, name+".inp"),
		layout:   layoutNEB,
		jobs:     []string{string(mode.Kind())},
		doc: orca.NEB{
			Spec: orca.JobSpec{
				Method: method,
				Basis:  basis,
				Kind:   mode.Kind(),
				Grid:   s.grid,
				CPCM:   mkCPCM,
				SMD:    mkSMD,
				Extra:  s.extra,
			},
			Mode:        mode,
			Geometry:    orca.Geometry{Path: filepath.Base(mkXYZ), Charge: s.charge, Mult: s.mult},
			Resources:   s.resources,
			EndXYZ:      mkNEBProduct,
			TSGuessXYZ:  mkNEBTS,
			SpringConst: mkNEBSpring,
			MaxIter:     mkNEBMaxIter,
			Images:      mkNImages,
		},
	}, nil
}

// stagesFromFlags assembles compound stages from the numbered flags. A
// step exists when any of its selecting flags is set; gaps are skipped.
func stagesFromFlags(cmd *cobra.Command, cfg *config.Config, s mkinputSettings) ([]orca.Stage, error) {
	stageMethod, stageBasis := manifest.DefaultStageMethod, manifest.DefaultStageBasis
	if cfg != nil {
		stageMethod, stageBasis = cfg.Input.StageMethod, cfg.Input.StageBasis
	}

	var stages []orca.Stage
	for i, sf := range mkSteps {
		if !stepPresent(cmd, i+1) {
			continue
		}
		k := i + 1

		job := sf.job
		if job == "" {
			job = manifest.DefaultStageJob
		}
		kind, err := orca.ParseJobKind(job)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", k, err)
		}
		if kind.IsNEB() {
			return nil, fmt.Errorf("step %d: %w: NEB jobs cannot be compound steps", k, orca.ErrConfiguration)
		}
		blocks, err := orca.ReadBlocks(sf.blocks)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", k, err)
		}

		stages = append(stages, orca.Stage{
			Spec: orca.JobSpec{
				Method:  firstNonEmpty(sf.method, flagValueIfChanged(cmd, "method", mkMethod), stageMethod),
				Basis:   firstNonEmpty(sf.basis, flagValueIfChanged(cmd, "basis", mkBasis), stageBasis),
				Kind:    kind,
				Grid:    firstNonEmpty(sf.grid, s.grid),
				CPCM:    sf.cpcm,
				SMD:     sf.smd,
				Extra:   orca.ParseExtras(sf.extra),
				MOInput: sf.moinp,
			},
			NStates: sf.nstates,
			Blocks:  blocks,
		})
	}
	if len(stages) == 0 {
		return nil, fmt.Errorf("%w: numbered options detected but no steps assembled", orca.ErrConfiguration)
	}
	return stages, nil
}

func compoundRequested(cmd *cobra.Command) bool {
	return mkStages != "" || numberedStepsPresent(cmd)
}

func numberedStepsPresent(cmd *cobra.Command) bool {
	for k := 1; k <= maxNumberedSteps; k++ {
		if stepPresent(cmd, k) {
			return true
		}
	}
	return false
}

func stepPresent(cmd *cobra.Command, k int) bool {
	suffix := strconv.Itoa(k)
	for _, field := range numberedFields {
		if cmd.Flags().Changed(field + suffix) {
			return true
		}
	}
	return false
}

func stageJobs(stages []orca.Stage) []string {
	jobs := make([]string, len(stages))
	for i, st := range stages {
		jobs[i] = string(st.Spec.Kind)
	}
	return jobs
}

// documentExitError maps assembler errors onto exit codes.
func documentExitError(msg string, err error) error {
	var ee *ExitError
	if errors.As(err, &ee) {
		return err
	}
	switch {
	case orca.IsBlockNotFound(err), errors.Is(err, os.ErrNotExist):
		return exitError(foundry.ExitFileNotFound, msg, err)
	case orca.IsWriteError(err):
		return exitError(foundry.ExitFileWriteError, msg, err)
	default:
		return exitError(foundry.ExitInvalidArgument, msg, err)
	}
}

func errorCodeFor(err error) string {
	switch {
	case orca.IsBlockNotFound(err):
		return output.ErrCodeNotFound
	case orca.IsWriteError(err):
		return output.ErrCodeWrite
	case orca.IsConfiguration(err):
		return output.ErrCodeInvalidInput
	default:
		return output.ErrCodeInternal
	}
}

func stringFlagOr(cmd *cobra.Command, name, value, fallback string) string {
	if cmd.Flags().Changed(name) {
		return value
	}
	return fallback
}

func intFlagOr(cmd *cobra.Command, name string, value, fallback int) int {
	if cmd.Flags().Changed(name) {
		return value
	}
	return fallback
}

func flagValueIfChanged(cmd *cobra.Command, name, value string) string {
	if cmd.Flags().Changed(name) {
		return value
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
