package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"asepack/internal/asset"
	"asepack/internal/atlas"
	"asepack/internal/bytesource"
	"asepack/internal/catalog"
	"asepack/internal/config"
	"asepack/internal/logging"
	"asepack/internal/materialize"
	"asepack/internal/pipeline"
	"asepack/internal/spriteset"
	"asepack/internal/store"
)

func newPackCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pack <sprite-set>...",
		Short: "Process sprite sets into atlases and catalog entries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runPack(cmd, cfg, args)
		},
	}
}

func runPack(cmd *cobra.Command, cfg *config.Config, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}

	manifests, err := resolveManifests(args)
	if err != nil {
		return err
	}

	cat, err := catalog.Open(cfg.Paths.CatalogPath)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer cat.Close()

	targets := &materialize.Targets{
		Textures:   store.NewAssets[*image.NRGBA](),
		Atlases:    store.NewAssets[*asset.Atlas](),
		Animations: store.NewAssets[*asset.Animation](),
		Tilesets:   store.NewAssets[*asset.Tileset](),
		Slices:     store.NewAssets[*asset.Slice](),
		Index:      asset.NewFileMap(),
	}

	source := bytesource.NewFileSource()
	pipe := pipeline.New(pipeline.Config{
		Workers: cfg.Workflow.Workers,
		Atlas: atlas.Options{
			MaxWidth:  cfg.Packing.MaxAtlasWidth,
			MaxHeight: cfg.Packing.MaxAtlasHeight,
			Padding:   cfg.Packing.Padding,
		},
	}, source, spriteset.New(), targets, cat, logger)

	for _, manifest := range manifests {
		pipe.Submit(source.Load(manifest))
	}

	interval := time.Duration(cfg.Workflow.PollIntervalMS) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for !pipe.IsIdle() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			pipe.Poll(ctx)
		}
	}

	written, err := writeAtlases(targets, cfg.Paths.OutputDir)
	if err != nil {
		return err
	}

	return renderPackSummary(cmd, cat, written)
}

// resolveManifests expands each argument to an absolute manifest path. A
// directory argument refers to the sprite set manifest inside it.
func resolveManifests(args []string) ([]string, error) {
	manifests := make([]string, 0, len(args))
	for _, arg := range args {
		path, err := config.ExpandPath(arg)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat sprite set %s: %w", arg, err)
		}
		if info.IsDir() {
			path = filepath.Join(path, spriteset.ManifestName)
		}
		manifests = append(manifests, path)
	}
	return manifests, nil
}

// writeAtlases dumps every distinct atlas sheet to the output directory.
// Files that shared a sheet produced separate atlas entries backed by the
// same image, so sheets are deduplicated by image identity before writing.
func writeAtlases(targets *materialize.Targets, outputDir string) (int, error) {
	handles := make([]store.Handle, 0, targets.Atlases.Len())
	targets.Atlases.Range(func(h store.Handle, _ *asset.Atlas) bool {
		handles = append(handles, h)
		return true
	})
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	seen := make(map[*image.NRGBA]struct{})
	written := 0
	for _, h := range handles {
		entry, ok := targets.Atlases.Get(h)
		if !ok {
			continue
		}
		img, ok := targets.Textures.Get(entry.Texture)
		if !ok {
			continue
		}
		if _, dup := seen[img]; dup {
			continue
		}
		seen[img] = struct{}{}

		written++
		path := filepath.Join(outputDir, fmt.Sprintf("atlas_%04d.png", written))
		if err := writePNG(path, img); err != nil {
			return written, err
		}
	}
	return written, nil
}

func writePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create atlas %s: %w", path, err)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("encode atlas %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("write atlas %s: %w", path, err)
	}
	return nil
}

func renderPackSummary(cmd *cobra.Command, cat *catalog.Store, atlases int) error {
	files, err := cat.ListFiles(cmd.Context())
	if err != nil {
		return fmt.Errorf("list catalog: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, packSummaryTable(files))
	fmt.Fprintf(out, "Wrote %d atlas sheet(s)\n", atlases)
	return nil
}
