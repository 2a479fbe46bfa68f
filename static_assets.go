package server

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var errClientAssetsMissing = errors.New("client assets directory not found")

// ResolveClientAssetsDir locates the viewer's static files relative to the
// working directory, then relative to the executable.
func ResolveClientAssetsDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve client assets: %w", err)
	}
	if dir, ok := resolveClientAssetsDirFrom(cwd); ok {
		return dir, nil
	}
	exePath, err := os.Executable()
	if err == nil {
		if dir, ok := resolveClientAssetsDirFrom(filepath.Dir(exePath)); ok {
			return dir, nil
		}
	}
	return "", errClientAssetsMissing
}

func resolveClientAssetsDirFrom(base string) (string, bool) {
	candidates := []string{
		filepath.Join(base, "client"),
		filepath.Join(base, "..", "client"),
	}
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err != nil || !info.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(candidate, "index.html")); err != nil {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		return abs, true
	}
	return "", false
}
