package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Document is a supplier quote read from disk.
type Document struct {
	Path       string
	SupplierID string
	Data       []byte
}

type FileResult struct {
	Path       string
	SupplierID string
	Err        string
}

type DirStats struct {
	Scanned   uint32
	Matched   uint32
	Succeeded uint32
	Unmatched uint32
	Failed    uint32
}

// ScanDirectory walks root, keeps accepted quote documents, resolves each to
// a supplier with SupplierFor and reads it. Files that belong to no supplier
// are reported with an error in the results and skipped.
func ScanDirectory(ctx context.Context, root string, supplierIDs []string, skipHidden bool) ([]Document, []FileResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, nil, DirStats{}, errors.New("root_path is required")
	}

	var (
		docs    []Document
		results []FileResult
		stats   DirStats
	)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil // continue walking
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		supplierID, ok := SupplierFor(path, supplierIDs)
		if !ok {
			results = append(results, FileResult{Path: path, Err: "no supplier matches file name"})
			stats.Unmatched++
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			results = append(results, FileResult{Path: path, SupplierID: supplierID, Err: err.Error()})
			stats.Failed++
			return nil
		}

		docs = append(docs, Document{Path: path, SupplierID: supplierID, Data: data})
		results = append(results, FileResult{Path: path, SupplierID: supplierID})
		stats.Succeeded++
		return nil
	})

	if err != nil {
		return docs, results, stats, fmt.Errorf("walk: %w", err)
	}
	return docs, results, stats, nil
}
