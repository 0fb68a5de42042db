package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"voxelterrain/internal/block"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestLoadRegistryBuiltIn(t *testing.T) {
	reg, err := loadRegistry(context.Background(), "", t.TempDir(), quietLogger())
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	if reg.Len() != len(block.DefaultBlocks()) {
		t.Fatalf("expected the built-in catalog, got %d blocks", reg.Len())
	}
}

func TestLoadRegistryFetchesLocalCatalog(t *testing.T) {
	defs := append(block.DefaultBlocks(), block.Definition{
		ID:       block.ID(len(block.DefaultBlocks())),
		Name:     "glowstone",
		Model:    block.ModelFull,
		Emission: [3]uint8{12, 12, 6},
	})
	src := filepath.Join(t.TempDir(), "blocks.yaml")
	if err := block.WriteCatalog(src, defs); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	reg, err := loadRegistry(context.Background(), src, t.TempDir(), quietLogger())
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	id, ok := reg.Lookup("glowstone")
	if !ok || !reg.Emits(id) {
		t.Fatalf("expected the fetched catalog to define an emitting glowstone")
	}
}

func TestLoadRegistryMissingSource(t *testing.T) {
	src := filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := loadRegistry(context.Background(), src, t.TempDir(), quietLogger()); err == nil {
		t.Fatalf("expected an error for a missing catalog")
	}
}
