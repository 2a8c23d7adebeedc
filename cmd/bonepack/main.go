// bonepack is a CLI utility that compiles keyframed glTF scenes into
// compact fixed-point skeletal animation clips.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/halfgrid/bonepack/internal/anim"
	"github.com/halfgrid/bonepack/internal/config"
	"github.com/halfgrid/bonepack/internal/emit"
	"github.com/halfgrid/bonepack/internal/logger"
	"github.com/halfgrid/bonepack/internal/scene"
	"github.com/halfgrid/bonepack/internal/skeleton"
	"github.com/halfgrid/bonepack/pkg/clip"
)

var flagOut = flag.String("o", "", "Output path (default: input name with new extension)")

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "convert", "c":
		cmdConvert(args)
	case "info":
		cmdInfo(args)
	case "init":
		cmdInit(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`bonepack - skeletal animation clip compiler

Usage:
  bonepack <command> [options]

Commands:
  convert <scene.gltf|glb>   Compile animations to C data or a BPAK container
  info <scene.gltf|glb>      Show skeleton and animation summary
  init [path]                Write a default bonepack.yaml
  help                       Show this help

Convert options:
  -o <path>                  Output path (default: input with .c or .bpak)
  -format c|bin              Output format (default: c)
  -name <symbol>             Model name for emitted symbols
  -tps <n>                   Target ticks per second
  -scale <f>                 Uniform model scale
  -fixed-point-scale <f>     Fixed-point position scale
  -config <path>             Config file
  -debug                     Debug logging

Examples:
  bonepack convert character.glb
  bonepack convert -format bin -tps 30 character.glb
  bonepack info character.glb`)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func loadSetup(args []string, usage string) (*config.Config, string) {
	flag.CommandLine.Parse(args)
	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("%v", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fatal("initializing logger: %v", err)
	}

	return cfg, flag.Arg(0)
}

func cmdConvert(args []string) {
	cfg, input := loadSetup(args, "Usage: bonepack convert [options] <scene.gltf|glb>")
	defer logger.Sync()

	sc, err := scene.LoadGLTF(input)
	if err != nil {
		fatal("%v", err)
	}

	skel := skeleton.BuildFromScene(sc)
	if skel.BoneCount() == 0 {
		fatal("%s has no skin bindings or animated nodes", input)
	}

	settings := settingsFrom(cfg)
	modelName := cfg.Output.Name
	if modelName == "" {
		modelName = emit.Sanitize(strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)))
	}

	logger.Info("converting scene",
		zap.String("input", input),
		zap.Int("nodes", sc.NodeCount()),
		zap.Int("bones", skel.BoneCount()),
		zap.Int("animations", len(sc.Animations)))

	switch cfg.Output.Format {
	case "c":
		convertToC(sc, skel, settings, modelName, outPath(input, ".c"))
	case "bin":
		convertToBinary(sc, skel, settings, outPath(input, ".bpak"))
	default:
		fatal("unknown output format %q (want c or bin)", cfg.Output.Format)
	}
}

func outPath(input, ext string) string {
	if *flagOut != "" {
		return *flagOut
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}

func settingsFrom(cfg *config.Config) anim.Settings {
	deg := cfg.Convert.RotateModelDeg
	return anim.Settings{
		TicksPerSecond:  cfg.Convert.TicksPerSecond,
		FixedPointScale: cfg.Convert.FixedPointScale,
		ModelScale:      cfg.Convert.ModelScale,
		ModelRotation: mgl32.AnglesToQuat(
			mgl32.DegToRad(deg[0]),
			mgl32.DegToRad(deg[1]),
			mgl32.DegToRad(deg[2]),
			mgl32.XYZ,
		),
	}
}

func convertToC(sc *scene.Scene, skel *skeleton.Skeleton, settings anim.Settings, modelName, sourcePath string) {
	file := emit.NewFile()

	result, err := anim.GenerateCatalog(sc, skel, settings, modelName, file)
	if err != nil {
		fatal("%v", err)
	}

	src, err := os.Create(sourcePath)
	if err != nil {
		fatal("%v", err)
	}
	defer src.Close()
	if err := file.WriteSource(src); err != nil {
		fatal("writing %s: %v", sourcePath, err)
	}

	headerPath := strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath)) + ".h"
	hdr, err := os.Create(headerPath)
	if err != nil {
		fatal("%v", err)
	}
	defer hdr.Close()
	guard := "__" + strings.ToUpper(emit.Sanitize(modelName)) + "_ANIM_H__"
	if err := file.WriteHeader(hdr, guard); err != nil {
		fatal("writing %s: %v", headerPath, err)
	}

	logger.Info("wrote C output",
		zap.String("source", sourcePath),
		zap.String("header", headerPath),
		zap.Int("clips", len(result.Clips)))
	fmt.Printf("Wrote %s and %s (%d clips, %d bones)\n",
		sourcePath, headerPath, len(result.Clips), skel.BoneCount())
}

func convertToBinary(sc *scene.Scene, skel *skeleton.Skeleton, settings anim.Settings, path string) {
	parents, err := skel.ParentTable()
	if err != nil {
		fatal("%v", err)
	}

	clips := anim.BuildClips(sc, skel, settings)

	out := &clip.File{Version: clip.Current, BoneParents: parents}
	for _, c := range clips {
		out.Animations = append(out.Animations, clip.Animation{
			Name:           c.Name,
			FrameCount:     uint16(c.FrameCount),
			BoneCount:      uint16(c.BoneCount),
			TicksPerSecond: c.TicksPerSecond,
			MaxTicks:       c.MaxTicks,
			Frames:         packFrames(c.Frames),
		})
	}

	if err := out.WriteFile(path); err != nil {
		fatal("writing %s: %v", path, err)
	}

	logger.Info("wrote clip container",
		zap.String("path", path),
		zap.Int("clips", len(clips)))
	fmt.Printf("Wrote %s (%d clips, %d bones)\n", path, len(clips), skel.BoneCount())
}

func packFrames(frames []anim.BoneFrame) []clip.BoneFrame {
	out := make([]clip.BoneFrame, len(frames))
	for i, f := range frames {
		out[i] = clip.BoneFrame{Pos: f.Pos, Rot: f.Rot}
	}
	return out
}

func cmdInfo(args []string) {
	cfg, input := loadSetup(args, "Usage: bonepack info <scene.gltf|glb>")
	defer logger.Sync()

	sc, err := scene.LoadGLTF(input)
	if err != nil {
		fatal("%v", err)
	}

	skel := skeleton.BuildFromScene(sc)

	fmt.Printf("Scene:      %s\n", input)
	fmt.Printf("Nodes:      %d\n", sc.NodeCount())
	fmt.Printf("Meshes:     %d skinned\n", len(sc.Meshes))
	fmt.Printf("Bones:      %d\n", skel.BoneCount())
	fmt.Printf("Animations: %d\n", len(sc.Animations))
	fmt.Println()

	if skel.BoneCount() > 0 {
		fmt.Println("Skeleton:")
		for i := 0; i < skel.BoneCount(); i++ {
			bone := skel.ByIndex(i)
			parent := "-"
			if bone.Parent != nil {
				parent = fmt.Sprintf("%d (%s)", bone.Parent.Index, bone.Parent.Name)
			}
			marker := ""
			if strings.HasPrefix(bone.Name, anim.AttachmentPrefix) {
				marker = "  [attachment]"
			}
			fmt.Printf("  %3d  %-24s parent: %s%s\n", i, bone.Name, parent, marker)
		}
		fmt.Println()
	}

	animated := skeleton.AnimatedNames(sc, skel)
	collapsed := skeleton.Collapse(sc, animated, cfg.Convert.ModelScale, settingsFrom(cfg).ModelRotation)
	fmt.Printf("Animated nodes (after collapsing): %d\n", len(collapsed))

	for i := range sc.Animations {
		a := &sc.Animations[i]
		frames := anim.FrameCount(a, cfg.Convert.TicksPerSecond)
		fmt.Printf("  %-24s %6.0f ticks, %d channels, %d frames at %d tps\n",
			a.Name, a.Duration, len(a.Channels), frames, cfg.Convert.TicksPerSecond)
	}
}

func cmdInit(args []string) {
	path := "bonepack.yaml"
	if len(args) > 0 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil {
		fatal("%s already exists", path)
	}

	if err := config.Default().SaveTo(path); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Wrote %s\n", path)
}
