// mac-simplifier - Quadric-error-metric triangle mesh simplifier
//
// Reduces the triangle count of glTF/GLB, OBJ, and STL models by a target
// ratio while preserving geometric boundaries, welding disjoint sub-meshes
// into a watertight topology before decimation and writing the result back
// into the original sub-mesh partitioning.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/Magical1-zyz/MAC-Simplifier/internal/config"
	"github.com/Magical1-zyz/MAC-Simplifier/internal/logger"
	"github.com/Magical1-zyz/MAC-Simplifier/pkg/scene"
	"github.com/Magical1-zyz/MAC-Simplifier/pkg/simplify"
)

var (
	configPath string
	logLevel   string
	logFile    string

	ratio        float64
	wGeo         float64
	wNorm        float64
	wUV          float64
	wBoundary    float64
	weldScale    float64
	attrQuadrics bool
)

func main() {
	cmd := &cobra.Command{
		Use:   "mac-simplifier <input> <output>",
		Short: "QEM triangle mesh simplifier",
		Long: `mac-simplifier - Quadric-error-metric triangle mesh simplifier

Reduces the triangle count of a model by the requested ratio while
preserving geometric boundaries. Sub-meshes are welded into a watertight
topology before decimation and written back individually.

Supported formats: .gltf, .glb, .obj, .stl (by extension).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimplify(cmd, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to YAML config file")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Optional rotating log file")
	cmd.Flags().Float64Var(&ratio, "ratio", 0.5, "Fraction of faces to remove (0..1)")
	cmd.Flags().Float64Var(&wGeo, "w-geo", 1.0, "Face-plane quadric weight")
	cmd.Flags().Float64Var(&wNorm, "w-norm", 0.1, "Normal attribute penalty weight")
	cmd.Flags().Float64Var(&wUV, "w-uv", 0.1, "Base UV attribute penalty weight")
	cmd.Flags().Float64Var(&wBoundary, "w-boundary", 10000.0, "Boundary anchor weight")
	cmd.Flags().Float64Var(&weldScale, "weld-scale", 10000.0, "Weld quantization scale (positions rounded to 1/scale)")
	cmd.Flags().BoolVar(&attrQuadrics, "attribute-quadrics", true, "Fold normal/UV penalties into the error metric")

	infoCmd := &cobra.Command{
		Use:   "info <model>",
		Short: "Display model information",
		Long:  "Display information about a model file: triangle and vertex counts, bounding box, and per-sub-mesh breakdown.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args[0])
		},
	}
	cmd.AddCommand(infoCmd)

	if err := fang.Execute(context.Background(), cmd); err != nil {
		os.Exit(1)
	}
}

func runSimplify(cmd *cobra.Command, inputPath, outputPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	sc, err := scene.LoadAny(inputPath)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	logger.Sugar.Infow("model loaded",
		"file", filepath.Base(inputPath),
		"sub_meshes", len(sc.Meshes),
		"vertices", sc.VertexCount(),
		"triangles", sc.TriangleCount(),
	)

	opts := simplify.Options{
		GeoWeight:         cfg.Simplify.GeoWeight,
		NormWeight:        cfg.Simplify.NormWeight,
		UVWeight:          cfg.Simplify.UVWeight,
		BoundaryWeight:    cfg.Simplify.BoundaryWeight,
		WeldScale:         cfg.Simplify.WeldScale,
		AttributeQuadrics: cfg.Simplify.AttributeQuadrics,
		Logger:            logger.Sugar,
	}
	stats := simplify.Simplify(sc, cfg.Simplify.Ratio, opts)
	if stats.InputFaces == 0 {
		return fmt.Errorf("no geometry found in %s", inputPath)
	}

	if err := scene.SaveAny(sc, outputPath); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	logger.Sugar.Infow("model saved",
		"file", outputPath,
		"faces", stats.OutputFaces,
		"reduction", fmt.Sprintf("%.1f%%", 100*(1-float64(stats.OutputFaces)/float64(stats.InputFaces))),
	)
	return nil
}

// applyFlags overlays explicitly set CLI flags on top of the file config.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("ratio") {
		cfg.Simplify.Ratio = ratio
	}
	if flags.Changed("w-geo") {
		cfg.Simplify.GeoWeight = wGeo
	}
	if flags.Changed("w-norm") {
		cfg.Simplify.NormWeight = wNorm
	}
	if flags.Changed("w-uv") {
		cfg.Simplify.UVWeight = wUV
	}
	if flags.Changed("w-boundary") {
		cfg.Simplify.BoundaryWeight = wBoundary
	}
	if flags.Changed("weld-scale") {
		cfg.Simplify.WeldScale = weldScale
	}
	if flags.Changed("attribute-quadrics") {
		cfg.Simplify.AttributeQuadrics = attrQuadrics
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("log-file") {
		cfg.Logging.LogFile = logFile
	}
}

func runInfo(modelPath string) error {
	info, err := os.Stat(modelPath)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	sc, err := scene.LoadAny(modelPath)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	boundsMin, boundsMax := sc.Bounds()
	size := boundsMax.Sub(boundsMin)
	center := boundsMin.Add(boundsMax).Mul(0.5)
	ext := strings.ToUpper(strings.TrimPrefix(strings.ToLower(filepath.Ext(modelPath)), "."))

	fmt.Printf("File:       %s\n", filepath.Base(modelPath))
	fmt.Printf("Format:     %s\n", ext)
	fmt.Printf("Size:       %.2f KB\n", float64(info.Size())/1024)
	fmt.Println()
	fmt.Printf("Sub-meshes: %d\n", len(sc.Meshes))
	fmt.Printf("Vertices:   %d\n", sc.VertexCount())
	fmt.Printf("Triangles:  %d\n", sc.TriangleCount())
	fmt.Println()
	fmt.Printf("Bounds Min: (%.3f, %.3f, %.3f)\n", boundsMin.X(), boundsMin.Y(), boundsMin.Z())
	fmt.Printf("Bounds Max: (%.3f, %.3f, %.3f)\n", boundsMax.X(), boundsMax.Y(), boundsMax.Z())
	fmt.Printf("Dimensions: %.3f x %.3f x %.3f\n", size.X(), size.Y(), size.Z())
	fmt.Printf("Center:     (%.3f, %.3f, %.3f)\n", center.X(), center.Y(), center.Z())

	for _, m := range sc.Meshes {
		name := m.Name
		if name == "" {
			name = "(unnamed)"
		}
		attrs := "P"
		if m.HasNormals() {
			attrs += "N"
		}
		if m.HasUV() {
			attrs += "T"
		}
		fmt.Println()
		fmt.Printf("  %s: %d vertices, %d triangles [%s]\n", name, m.VertexCount(), m.TriangleCount(), attrs)
	}

	return nil
}
