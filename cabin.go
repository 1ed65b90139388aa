package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/cabinbuild/cabin/src/cli"
	"github.com/cabinbuild/cabin/src/cli/logging"
	"github.com/cabinbuild/cabin/src/configure"
	"github.com/cabinbuild/cabin/src/core"
	"github.com/cabinbuild/cabin/src/driver"
	"github.com/cabinbuild/cabin/src/emit"
	"github.com/cabinbuild/cabin/src/fs"
	"github.com/cabinbuild/cabin/src/metrics"
	"github.com/cabinbuild/cabin/src/process"
	"github.com/cabinbuild/cabin/src/toolchain"
)

var log = logging.Log

// version is overridden at link time.
var version = "dev"

var opts struct {
	Usage string `usage:"cabin generates a Ninja build graph for a C++ project by scanning its sources for header dependencies and test code.\n\nSee the manifest in the project root for flags that govern compilation itself; the options here govern how cabin runs."`

	BuildFlags struct {
		RepoRoot    cli.Filepath `short:"r" long:"repo_root" description:"Root of the project to configure. Defaults to the current directory." env:"CABIN_REPO_ROOT"`
		Cxx         string       `long:"cxx" description:"Compiler to drive dependency scans and preprocesses with." default:"c++"`
		NumThreads  int          `short:"n" long:"num_threads" description:"Number of concurrent scan operations. Default is number of CPUs."`
		OutBasePath cli.Filepath `long:"out" description:"Directory to write the generated Ninja files into." default:"cabin-out"`
		Modules     bool         `long:"modules" description:"Enable standard-library module precompilation."`
	} `group:"Options controlling how the build graph is generated"`

	OutputFlags struct {
		Verbosity cli.Verbosity `short:"v" long:"verbosity" description:"Verbosity of output (error, warning, notice, info, debug)" default:"warning"`
	} `group:"Options controlling output & logging"`

	MetricsFlags struct {
		PushGatewayURL cli.URL `long:"metrics_push_gateway" description:"Prometheus push-gateway URL to report configure metrics to. Disabled if unset."`
	} `group:"Options controlling metrics"`

	HelpFlags struct {
		Version bool `long:"version" description:"Print the version of cabin"`
	} `group:"Help Options"`

	Build struct {
		Driver  string `long:"driver" description:"Build driver binary to invoke." default:"ninja"`
		DryRun  bool   `long:"dry_run" description:"After configuring, ask the driver if work remains without building anything."`
		Quiet   bool   `long:"quiet" description:"Pass --quiet to the build driver."`
		Verbose bool   `long:"verbose" description:"Pass --verbose to the build driver."`
		Compdb  bool   `long:"compdb" description:"Also write compile_commands.json via the driver's compdb tool."`
	} `command:"build" description:"Configures the build graph and invokes the build driver"`

	Configure struct {
	} `command:"configure" description:"Only configures the build graph; does not invoke the build driver"`
}

func main() {
	parser := cli.ParseFlagsOrDie("cabin", version, &opts)
	if opts.HelpFlags.Version {
		fmt.Printf("cabin version %s\n", version)
		os.Exit(0)
	}
	cli.InitLogging(opts.OutputFlags.Verbosity)

	if _, err := maxprocs.Set(maxprocs.Logger(log.Debugf)); err != nil {
		log.Warning("Could not set GOMAXPROCS: %s", err)
	}

	rootPath := string(opts.BuildFlags.RepoRoot)
	if rootPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			log.Fatalf("Could not determine working directory: %s", err)
		}
		rootPath = wd
	}
	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		log.Fatalf("Could not resolve repo root %s: %s", rootPath, err)
	}

	parallelism := opts.BuildFlags.NumThreads
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	outBasePath := string(opts.BuildFlags.OutBasePath)
	if !filepath.IsAbs(outBasePath) {
		outBasePath = filepath.Join(absRoot, outBasePath)
	}

	ctx := core.ProjectContext{
		RootPath:        absRoot,
		BuildOutPath:    "objs",
		UnittestOutPath: "unittests",
		OutBasePath:     outBasePath,
		ManifestPath:    filepath.Join(absRoot, "manifest.toml"),
		PackageName:     filepath.Base(absRoot),
		UsesModules:     opts.BuildFlags.Modules,
		Metrics: core.MetricsConfig{
			PushGatewayURL: string(opts.MetricsFlags.PushGatewayURL),
		},
	}
	metrics.InitFromConfig(ctx)
	defer metrics.Stop()

	if fs.IsUpToDate(ctx.OutBasePath, "targets.ninja", filepath.Join(ctx.RootPath, "src"), ctx.ManifestPath) {
		log.Notice("Build graph is up to date, nothing to configure")
	} else if err := runConfigure(ctx, parallelism); err != nil {
		log.Fatalf("%s", err)
	}

	if parser.Active == nil || parser.Active.Name != "configure" {
		if err := runDriver(ctx, parallelism); err != nil {
			log.Fatalf("%s", err)
		}
	}
}

func runConfigure(ctx core.ProjectContext, parallelism int) error {
	executor := process.New()
	compiler, err := toolchain.Detect(executor, opts.BuildFlags.Cxx)
	if err != nil {
		return err
	}

	configurer := configure.New(ctx, compiler, executor, parallelism)
	graph, err := configurer.ConfigureBuild(context.Background())
	if err != nil {
		return err
	}

	log.Info("Configured %d compile units (binary=%v, library=%v, tests=%d)",
		len(graph.CompileUnits), graph.HasBinary, graph.HasLibrary, len(graph.TestTargets))

	return emit.New(ctx.OutBasePath).EmitAll(configurer.Ctx.CompilerOpts, compiler.Cxx(), graph)
}

func runDriver(ctx core.ProjectContext, parallelism int) error {
	d := driver.New(opts.Build.Driver, process.New())
	mode := driver.Normal
	if opts.Build.Quiet {
		mode = driver.Quiet
	}
	if opts.Build.Verbose {
		mode = driver.Verbose
	}

	if opts.Build.DryRun {
		workRemains, err := d.DryRun(context.Background(), ctx.OutBasePath, parallelism)
		if err != nil {
			return err
		}
		if workRemains {
			fmt.Println("work remains")
			os.Exit(1)
		}
		fmt.Println("ninja: no work to do.")
		return nil
	}

	if err := d.Build(context.Background(), ctx.OutBasePath, parallelism, mode); err != nil {
		return err
	}

	if opts.Build.Compdb {
		return d.WriteCompileCommands(context.Background(), ctx.OutBasePath)
	}
	return nil
}
