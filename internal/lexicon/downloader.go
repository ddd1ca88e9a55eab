package lexicon

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	repoOwner = "scriptin"
	repoName  = "jmdict-simplified"
)

// EnsureJMdict downloads a jmdict-simplified release asset to path if
// nothing already lives there.
func EnsureJMdict(ctx context.Context, path string) error {
	return ensureAsset(ctx, path, repoOwner, repoName, "jmdict-eng-common", "readerer-cli")
}

// EnsureMeCabDict downloads a *-dict.tar.gz release asset from owner/repo
// to path if nothing already lives there — the MeCab-family
// dictionary tarball a from-scratch LatticeTokenizer compiles against.
func EnsureMeCabDict(ctx context.Context, path, owner, repo string) error {
	return ensureAsset(ctx, path, owner, repo, "-dict.tar.gz", "suzuri-cli")
}

func ensureAsset(ctx context.Context, path, owner, repo, namePattern, userAgent string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	fmt.Printf("%s not found. Attempting auto-download...\n", path)

	downloadURL, err := latestReleaseAssetURL(ctx, owner, repo, namePattern, userAgent)
	if err != nil {
		return fmt.Errorf("lexicon: find latest release: %w", err)
	}

	fmt.Printf("Downloading %s...\n", downloadURL)
	return downloadAndExtract(ctx, downloadURL, path)
}

func latestReleaseAssetURL(ctx context.Context, owner, repo, namePattern, userAgent string) (string, error) {
	apiURL := fmt.Sprintf("https://api.github.com/repos/%s/%s/releases/latest", owner, repo)
	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github api returned status: %s", resp.Status)
	}

	var release struct {
		Assets []struct {
			Name               string `json:"name"`
			BrowserDownloadURL string `json:"browser_download_url"`
		} `json:"assets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", err
	}

	for _, asset := range release.Assets {
		if strings.Contains(asset.Name, namePattern) &&
			(strings.HasSuffix(asset.Name, ".json.tgz") ||
				strings.HasSuffix(asset.Name, ".json.gz") ||
				strings.HasSuffix(asset.Name, ".tar.gz")) {
			return asset.BrowserDownloadURL, nil
		}
	}
	return "", fmt.Errorf("no asset matching %q found in latest release", namePattern)
}

func downloadAndExtract(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 30 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s", resp.Status)
	}

	gzReader, err := gzip.NewReader(resp.Body)
	if err != nil {
		return fmt.Errorf("lexicon: gzip reader: %w", err)
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)

	var found bool
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("lexicon: read tar archive: %w", err)
		}

		if header.Typeflag == tar.TypeReg && isWantedMember(header.Name) {
			outFile, err := os.Create(destPath)
			if err != nil {
				return fmt.Errorf("lexicon: create output file: %w", err)
			}
			defer outFile.Close()

			if _, err := io.Copy(outFile, tarReader); err != nil {
				return fmt.Errorf("lexicon: write output file: %w", err)
			}
			found = true
			break
		}
	}

	if !found {
		return fmt.Errorf("lexicon: no matching file found in downloaded archive")
	}
	return nil
}

func isWantedMember(name string) bool {
	return strings.HasSuffix(name, ".json") ||
		strings.HasSuffix(name, ".dic") ||
		strings.HasSuffix(name, ".csv")
}
