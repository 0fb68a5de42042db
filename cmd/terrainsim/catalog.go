package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	getter "github.com/hashicorp/go-getter"

	"voxelterrain/internal/block"
)

// loadRegistry builds the block registry from src. An empty src selects the
// built-in catalog. Anything else is handed to go-getter, so local paths as
// well as http::, git:: and s3:: sources work; the file is fetched into dir.
func loadRegistry(ctx context.Context, src, dir string, log *slog.Logger) (*block.Registry, error) {
	if src == "" {
		log.Debug("using built-in block catalog")
		return block.NewRegistry(block.DefaultBlocks())
	}

	pwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create catalog directory: %w", err)
	}
	dst := filepath.Join(dir, "catalog.yaml")

	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: getter.ClientModeFile,
	}
	log.Info("fetching block catalog", "source", src)
	if err := client.Get(); err != nil {
		return nil, fmt.Errorf("fetch catalog %q: %w", src, err)
	}

	reg, err := block.LoadCatalog(dst)
	if err != nil {
		return nil, err
	}
	log.Info("block catalog loaded", "source", src, "blocks", reg.Len())
	return reg, nil
}
