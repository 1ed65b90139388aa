// Package configure implements ConfigureBuild, the top-level orchestrator
// that discovers sources, runs DepScanner and TestProbe over them, and
// assembles the in-memory Graph through core.GraphBuilder.
package configure

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/cabinbuild/cabin/src/cli/logging"
	"github.com/cabinbuild/cabin/src/core"
	"github.com/cabinbuild/cabin/src/depscan"
	"github.com/cabinbuild/cabin/src/fs"
	"github.com/cabinbuild/cabin/src/metrics"
	"github.com/cabinbuild/cabin/src/process"
	"github.com/cabinbuild/cabin/src/testprobe"
)

var log = logging.Log

// Configurer runs one configure pass against a fixed project context and
// compiler. It is not safe for concurrent ConfigureBuild calls against the
// same instance: when modules are enabled, each call adds the module flags
// to Ctx.CompilerOpts.
type Configurer struct {
	Ctx         core.ProjectContext
	Compiler    core.Compiler
	Scanner     *depscan.Scanner
	Prober      *testprobe.Probe
	Parallelism int
}

// New builds a Configurer sharing one process.Executor across its scanner
// and prober, as a real configure pass would.
func New(ctx core.ProjectContext, compiler core.Compiler, executor *process.Executor, parallelism int) *Configurer {
	return &Configurer{
		Ctx:         ctx,
		Compiler:    compiler,
		Scanner:     depscan.New(compiler, executor),
		Prober:      testprobe.New(compiler, executor),
		Parallelism: parallelism,
	}
}

// ConfigureBuild runs the full flow of §4.6 and returns the assembled Graph.
func (c *Configurer) ConfigureBuild(ctx context.Context) (*core.Graph, error) {
	start := time.Now()
	graph, err := c.configureBuild(ctx)
	unitCount := 0
	if graph != nil {
		unitCount = len(graph.CompileUnits)
	}
	metrics.RecordConfigure(time.Since(start), unitCount, err == nil)
	return graph, err
}

func (c *Configurer) configureBuild(ctx context.Context) (*core.Graph, error) {
	srcDir := path.Join(fs.ToSlash(c.Ctx.RootPath), "src")
	if info, err := os.Stat(srcDir); err != nil || !info.IsDir() {
		return nil, &core.MissingSourceRootError{Root: srcDir}
	}

	mainPaths, libPaths, err := discoverTopLevelEntries(srcDir)
	if err != nil {
		return nil, &core.IoError{Op: "readdir", Path: srcDir, Err: err}
	}
	if len(mainPaths) > 1 {
		return nil, &core.AmbiguousEntryError{Kind: "main", Paths: mainPaths}
	}
	if len(libPaths) > 1 {
		return nil, &core.AmbiguousEntryError{Kind: "lib", Paths: libPaths}
	}
	hasBinary := len(mainPaths) == 1
	hasLibrary := len(libPaths) == 1
	if !hasBinary && !hasLibrary {
		return nil, &core.NoEntryError{}
	}

	if err := os.MkdirAll(c.Ctx.OutBasePath, 0o755); err != nil {
		return nil, &core.IoError{Op: "mkdir", Path: c.Ctx.OutBasePath, Err: err}
	}

	graph := core.NewGraph()
	graph.HasBinary = hasBinary
	graph.HasLibrary = hasLibrary
	builder := core.NewGraphBuilder(graph)

	var moduleInfo core.ModuleInfo
	if c.Ctx.UsesModules {
		moduleInfo, err = core.EnableModules(builder, &c.Ctx.CompilerOpts, c.Ctx.BuildOutPath, c.Compiler)
		if err != nil {
			return nil, err
		}
	}

	sources, err := fs.ListSourcesSorted(srcDir)
	if err != nil {
		return nil, &core.IoError{Op: "walk", Path: srcDir, Err: err}
	}
	for _, src := range sources {
		warnMisplacedEntry(srcDir, src)
	}

	buildObjTargets := map[string]struct{}{}
	sourceToObj := map[string]string{}
	var mu sync.Mutex
	scanStart := time.Now()
	var scannedBytes int

	scanOne := func(src string) error {
		objTarget, deps, rawBytes, scanErr := c.Scanner.Scan(ctx, c.Ctx.CompilerOpts, c.Ctx.OutBasePath, src, false)
		if scanErr != nil {
			return scanErr
		}
		mapped := fs.ObjectPathForSource(c.Ctx.RootPath, c.Ctx.BuildOutPath, c.Ctx.OutBasePath, src, objTarget)

		mu.Lock()
		buildObjTargets[mapped] = struct{}{}
		sourceToObj[src] = mapped
		scannedBytes += rawBytes
		builder.RegisterCompileUnit(mapped, src, deps, false)
		mu.Unlock()
		return nil
	}
	if err := c.runRange(sources, scanOne); err != nil {
		return nil, err
	}
	log.Debug("scanned %d sources in %s, %s of dependency output", len(sources), time.Since(scanStart), humanize.Bytes(uint64(scannedBytes)))

	if hasBinary {
		mainSrc := mainPaths[0]
		mainObj := sourceToObj[mainSrc]
		mainUnit := graph.UnitOrDie(mainObj)

		accum := map[string]struct{}{mainObj: {}}
		core.CollectBinDepObjs(accum, c.Ctx.RootPath, c.Ctx.BuildOutPath, c.Ctx.OutBasePath, fs.Stem(mainSrc), mainUnit.HeaderDeps, buildObjTargets, graph)

		linkEdge := core.Edge{
			Outputs: []string{c.Ctx.PackageName},
			Rule:    core.RuleCxxLink,
			Inputs:  sortedKeys(accum),
		}
		if extra, binding, ok := clangModuleLinkExtras(moduleInfo); ok {
			linkEdge.Inputs = append(linkEdge.Inputs, extra)
			linkEdge.Bindings = append(linkEdge.Bindings, binding)
		}
		builder.AddEdge(linkEdge)
		builder.AddDefaultTarget(c.Ctx.PackageName)
	}

	if hasLibrary {
		libSrc := libPaths[0]
		libObj := sourceToObj[libSrc]
		libUnit := graph.UnitOrDie(libObj)

		accum := map[string]struct{}{libObj: {}}
		core.CollectBinDepObjs(accum, c.Ctx.RootPath, c.Ctx.BuildOutPath, c.Ctx.OutBasePath, fs.Stem(libSrc), libUnit.HeaderDeps, buildObjTargets, graph)

		archive := archiveName(c.Ctx.PackageName)
		builder.AddEdge(core.Edge{
			Outputs: []string{archive},
			Rule:    core.RuleArArchive,
			Inputs:  sortedKeys(accum),
		})
		builder.AddDefaultTarget(archive)
	}

	testOne := func(src string) error {
		hasTest, probeErr := c.Prober.ContainsTestCode(ctx, c.Ctx.CompilerOpts, c.Ctx.OutBasePath, src)
		if probeErr != nil {
			return probeErr
		}
		if !hasTest {
			return nil
		}
		objTarget, deps, _, scanErr := c.Scanner.Scan(ctx, c.Ctx.CompilerOpts, c.Ctx.OutBasePath, src, true)
		if scanErr != nil {
			return scanErr
		}
		testObj := fs.ObjectPathForSource(c.Ctx.RootPath, c.Ctx.UnittestOutPath, c.Ctx.OutBasePath, src, objTarget)
		testLink := path.Join(fs.ToSlash(c.Ctx.UnittestOutPath), filepath.Base(src)) + ".test"

		// CollectBinDepObjs walks graph.CompileUnits, which sibling testOne
		// goroutines mutate via RegisterCompileUnit below; both must happen
		// under mu to avoid a concurrent map read/write.
		mu.Lock()
		accum := map[string]struct{}{testObj: {}}
		core.CollectBinDepObjs(accum, c.Ctx.RootPath, c.Ctx.BuildOutPath, c.Ctx.OutBasePath, fs.Stem(src), deps, buildObjTargets, graph)
		builder.RegisterCompileUnit(testObj, src, deps, true)
		builder.AddEdge(core.Edge{
			Outputs: []string{testLink},
			Rule:    core.RuleCxxLink,
			Inputs:  sortedKeys(accum),
		})
		builder.AddTestTarget(testLink)
		mu.Unlock()
		return nil
	}
	if err := c.runRange(sources, testOne); err != nil {
		return nil, err
	}
	builder.SortTestTargets()

	return graph, nil
}

// runRange implements the §5 scheduling model: sequential when Parallelism
// is 1 or less, otherwise a work-stealing pool capped at Parallelism.
// Failures are collected per-task and aggregated into one error once the
// whole range finishes running — no task is cancelled by another's failure.
func (c *Configurer) runRange(items []string, fn func(string) error) error {
	if c.Parallelism <= 1 {
		var result error
		for _, item := range items {
			if err := fn(item); err != nil {
				result = multierror.Append(result, err)
			}
		}
		return result
	}

	var g errgroup.Group
	g.SetLimit(c.Parallelism)
	var errMu sync.Mutex
	var errs error
	for _, item := range items {
		item := item
		g.Go(func() error {
			if err := fn(item); err != nil {
				errMu.Lock()
				errs = multierror.Append(errs, err)
				errMu.Unlock()
			}
			return nil
		})
	}
	g.Wait()
	return errs
}
