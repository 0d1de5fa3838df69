package generator

import (
	"bytes"
	"context"
	"io/fs"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/goliatone/go-press/pkg/interfaces"
)

const themeAssetDir = "assets"

type assetCopySummary struct {
	Built   int
	Skipped int
}

// copyThemeAssets mirrors the theme's assets directory into the output tree
// under /assets, honoring the incremental manifest.
func (s *service) copyThemeAssets(
	ctx context.Context,
	writer artifactWriter,
	themeFS fs.FS,
	manifest *buildManifest,
	baseDir string,
	force bool,
	now time.Time,
) (assetCopySummary, error) {
	summary := assetCopySummary{}
	if themeFS == nil {
		return summary, nil
	}

	if _, err := fs.Stat(themeFS, themeAssetDir); err != nil {
		// A theme without assets is fine.
		return summary, nil
	}

	dirCache := map[string]struct{}{}
	err := fs.WalkDir(themeFS, themeAssetDir, func(assetPath string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := fs.ReadFile(themeFS, assetPath)
		if err != nil {
			return err
		}

		fullPath := joinOutputPath(baseDir, assetPath)
		checksum := computeHash(data)
		if !force && manifest != nil && manifest.shouldSkipAsset(assetPath, checksum, fullPath) {
			summary.Skipped++
			return nil
		}
		if err := ensureDir(ctx, writer, dirCache, path.Dir(fullPath)); err != nil {
			return err
		}

		req := interfaces.WriteRequest{
			Path:        fullPath,
			Content:     bytes.NewReader(data),
			Size:        int64(len(data)),
			Category:    categoryAsset,
			ContentType: detectAssetContentType(assetPath),
			Checksum:    checksum,
			Metadata:    map[string]string{"asset": assetPath},
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			return err
		}
		summary.Built++
		if manifest != nil {
			manifest.setAsset(manifestAsset{
				Source:   assetPath,
				Output:   fullPath,
				Checksum: checksum,
				Size:     int64(len(data)),
				CopiedAt: now,
			})
		}
		return nil
	})
	return summary, err
}

func detectAssetContentType(assetPath string) string {
	ext := strings.ToLower(path.Ext(assetPath))
	if ext == "" {
		return "application/octet-stream"
	}
	if detected := mime.TypeByExtension(ext); detected != "" {
		return detected
	}
	return "application/octet-stream"
}
