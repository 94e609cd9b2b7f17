// geomtool is a CLI utility for inspecting and normalizing mesh geometry.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	geom3d "github.com/flywave/go-geom3d"
	"github.com/flywave/go-geom3d/internal/config"
	"github.com/flywave/go-geom3d/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "stats":
		err = cmdStats(args)
	case "bbox":
		err = cmdBBox(args)
	case "normals":
		err = cmdNormals(args)
	case "weld":
		err = cmdRewrite("weld", args, func(ms geom3d.MeshSet) {
			for _, g := range ms {
				g.CombineSimilarVerts()
			}
		})
	case "flatten":
		err = cmdRewrite("flatten", args, func(ms geom3d.MeshSet) {
			for _, g := range ms {
				g.BreakApartTriangles()
			}
		})
	case "triangulate":
		err = cmdRewrite("triangulate", args, func(ms geom3d.MeshSet) {
			for _, g := range ms {
				g.ConvertToTriangles()
			}
		})
	case "backfaces":
		err = cmdRewrite("backfaces", args, func(ms geom3d.MeshSet) {
			for _, g := range ms {
				g.AddBackFaces()
			}
		})
	case "dump":
		err = cmdDump(args)
	case "export":
		err = cmdExport(args)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`geomtool - mesh geometry utility

Usage:
  geomtool <command> [options] <input> [output]

Inputs are geometry snapshots (.g3d) or glTF files (.gltf, .glb).

Commands:
  stats <in>...                        Print vertex, index and triangle counts
  bbox <in>...                         Print the bounding box
  normals [-mode m] [-min-dot d] <in> <out.g3d>
                                       Recalculate normals
  weld <in> <out.g3d>                  Merge identical vertices
  flatten <in> <out.g3d>               Give every triangle its own vertices
  triangulate <in> <out.g3d>           Convert fans and strips to triangle lists
  backfaces <in> <out.g3d>             Append reversed back faces
  dump <in> <out.txt>                  Write a plain text listing for diffing
  export [-textures dir] <in> <out>    Export to glTF (.glb or .gltf)

Global options (before the input):
  -config <file>                       Config file (default ./geomtool.yaml)
  -debug                               Enable debug logging`)
}

// commonFlags registers the options every command accepts.
type commonFlags struct {
	configPath string
	debug      bool
}

func newFlagSet(name string) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	cf := &commonFlags{}
	fs.StringVar(&cf.configPath, "config", "", "Path to config file")
	fs.BoolVar(&cf.debug, "debug", false, "Enable debug logging")
	return fs, cf
}

// setup loads the config and starts logging.
func setup(cf *commonFlags) (*config.Config, error) {
	cfg, err := config.Load(cf.configPath)
	if err != nil {
		return nil, err
	}
	if cf.debug {
		cfg.Logging.Level = "debug"
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(path string) (geom3d.MeshSet, error) {
	var ms geom3d.MeshSet
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		ms, err = geom3d.OpenGltf(path)
	default:
		ms, err = geom3d.MeshSetReadFrom(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	logger.Debug("loaded meshes", zap.String("path", path), zap.Int("meshes", len(ms)),
		zap.String("stats", ms.Stats()))
	return ms, nil
}

func loadAll(paths []string) (geom3d.MeshSet, error) {
	var all geom3d.MeshSet
	for _, p := range paths {
		ms, err := load(p)
		if err != nil {
			return nil, err
		}
		all = append(all, ms...)
	}
	return all, nil
}

func cmdStats(args []string) error {
	fs, cf := newFlagSet("stats")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: geomtool stats <in>...")
	}
	if _, err := setup(cf); err != nil {
		return err
	}
	ms, err := loadAll(fs.Args())
	if err != nil {
		return err
	}
	for i, g := range ms {
		name := g.Name()
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		fmt.Printf("%-24s %s\n", name, g.Stats())
	}
	fmt.Printf("%-24s %s\n", "total", ms.Stats())
	fmt.Printf("%-24s %d bytes\n", "estimated size", ms.SizeInBytes())
	return nil
}

func cmdBBox(args []string) error {
	fs, cf := newFlagSet("bbox")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: geomtool bbox <in>...")
	}
	if _, err := setup(cf); err != nil {
		return err
	}
	ms, err := loadAll(fs.Args())
	if err != nil {
		return err
	}
	if ms.StatsCounts().VertCount == 0 {
		return fmt.Errorf("no vertices")
	}
	min, max := ms.GetMinMax()
	fmt.Printf("min: %g %g %g\n", min[0], min[1], min[2])
	fmt.Printf("max: %g %g %g\n", max[0], max[1], max[2])
	return nil
}

func cmdNormals(args []string) error {
	fs, cf := newFlagSet("normals")
	mode := fs.String("mode", "", "None, CalculateFaceNormals, CalculateVertexNormals or CalculateAdaptiveNormals")
	minDot := fs.Float64("min-dot", 0, "Adaptive normal cosine threshold")
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: geomtool normals [-mode m] [-min-dot d] <in> <out.g3d>")
	}
	cfg, err := setup(cf)
	if err != nil {
		return err
	}
	if *mode == "" {
		*mode = cfg.Normals.Mode
	}
	dot := cfg.Normals.MinDot
	if flagPassed(fs, "min-dot") {
		dot = float32(*minDot)
	}
	m := geom3d.NormalCalculationModeFromString(*mode)
	if m.String() != *mode {
		logger.Warn("unknown normal mode, leaving normals untouched", zap.String("mode", *mode))
	}

	ms, err := load(fs.Arg(0))
	if err != nil {
		return err
	}
	for _, g := range ms {
		g.CalculateNormals(m, dot)
	}
	logger.Info("calculated normals", zap.Stringer("mode", m), zap.Float32("minDot", dot),
		zap.String("stats", ms.Stats()))
	return geom3d.MeshSetWriteTo(fs.Arg(1), ms)
}

// flagPassed reports whether name was set on the command line.
func flagPassed(fs *flag.FlagSet, name string) bool {
	passed := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			passed = true
		}
	})
	return passed
}

// exportBinary picks GLB or glTF JSON output. The .glb and .gltf extensions decide on
// their own, anything else follows the config.
func exportBinary(out string, binaryDefault bool) bool {
	switch strings.ToLower(filepath.Ext(out)) {
	case ".gltf":
		return false
	case ".glb":
		return true
	}
	return binaryDefault
}

func cmdRewrite(name string, args []string, apply func(geom3d.MeshSet)) error {
	fs, cf := newFlagSet(name)
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: geomtool %s <in> <out.g3d>", name)
	}
	if _, err := setup(cf); err != nil {
		return err
	}
	ms, err := load(fs.Arg(0))
	if err != nil {
		return err
	}
	before := ms.Stats()
	apply(ms)
	logger.Info(name, zap.String("before", before), zap.String("after", ms.Stats()))
	return geom3d.MeshSetWriteTo(fs.Arg(1), ms)
}

func cmdDump(args []string) error {
	fs, cf := newFlagSet("dump")
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: geomtool dump <in> <out.txt>")
	}
	if _, err := setup(cf); err != nil {
		return err
	}
	ms, err := load(fs.Arg(0))
	if err != nil {
		return err
	}
	return geom3d.PrintDataToFile(ms, fs.Arg(1))
}

func cmdExport(args []string) error {
	fs, cf := newFlagSet("export")
	textures := fs.String("textures", "", "Directory holding material textures")
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: geomtool export [-textures dir] <in> <out>")
	}
	cfg, err := setup(cf)
	if err != nil {
		return err
	}
	if *textures != "" {
		cfg.Export.TextureDir = *textures
	}
	ms, err := load(fs.Arg(0))
	if err != nil {
		return err
	}
	doc, err := geom3d.ToGltf(ms, &geom3d.ExportOptions{
		TextureDir:  cfg.Export.TextureDir,
		DoubleSided: cfg.Export.DoubleSided,
	})
	if err != nil {
		return err
	}

	out := fs.Arg(1)
	if !exportBinary(out, cfg.Export.Binary) {
		return geom3d.SaveGltf(doc, out)
	}
	data, err := geom3d.GetGltfBinary(doc, cfg.Export.Padding)
	if err != nil {
		return err
	}
	logger.Info("exported glTF", zap.String("path", out), zap.Int("bytes", len(data)))
	return os.WriteFile(out, data, 0644)
}
