package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

const (
	// DefaultTailwindVersion is the standalone CLI release fetched by new
	// applications; the generated tailwind.config.js targets v3.
	DefaultTailwindVersion = "v3.4.17"

	// TailwindBinary is the CLI path relative to the application root
	TailwindBinary = "tailwindcss"

	tailwindReleases = "https://github.com/tailwindlabs/tailwindcss/releases/download"
)

// TailwindAsset returns the release asset name for a platform
func TailwindAsset(goos, goarch string) (string, error) {
	var platform string
	switch goos {
	case "darwin":
		platform = "macos"
	case "linux", "windows":
		platform = goos
	default:
		return "", fmt.Errorf("tailwind has no standalone build for %s", goos)
	}

	var arch string
	switch goarch {
	case "amd64":
		arch = "x64"
	case "arm64":
		arch = "arm64"
	case "arm":
		if goos != "linux" {
			return "", fmt.Errorf("tailwind has no standalone build for %s/%s", goos, goarch)
		}
		arch = "armv7"
	default:
		return "", fmt.Errorf("tailwind has no standalone build for %s/%s", goos, goarch)
	}

	name := "tailwindcss-" + platform + "-" + arch
	if goos == "windows" {
		name += ".exe"
	}
	return name, nil
}

// TailwindURL returns the download URL of a release for a platform
func TailwindURL(version, goos, goarch string) (string, error) {
	asset, err := TailwindAsset(goos, goarch)
	if err != nil {
		return "", err
	}
	return tailwindReleases + "/" + version + "/" + asset, nil
}

// Download fetches url into dest as an executable. The file is written to a
// temporary sibling first so a failed transfer leaves nothing behind.
func Download(ctx context.Context, client *http.Client, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download %s: %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0755); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
