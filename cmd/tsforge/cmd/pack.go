package cmd

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

// Manifest is the tsforge.yaml package manifest (SPEC_FULL.md §2.3):
// name/version identify the package, main names the entry script relative
// to the manifest's directory.
type Manifest struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Main    string `yaml:"main"`
}

var (
	packPackageID string
	packVersion   string
	packOut       string
)

var packCmd = &cobra.Command{
	Use:   "pack <dir>",
	Short: "Package a tsforge assembly (manifest + sources) into a distributable archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runPack,
}

func init() {
	packCmd.Flags().StringVar(&packPackageID, "package-id", "", "override the manifest's package name")
	packCmd.Flags().StringVar(&packVersion, "version", "", "override the manifest's version")
	packCmd.Flags().StringVarP(&packOut, "out", "o", "", "output archive path (default <name>-<version>.tsfpkg)")
	rootCmd.AddCommand(packCmd)
}

func runPack(c *cobra.Command, args []string) error {
	dir := args[0]
	manifest, err := loadManifest(filepath.Join(dir, "tsforge.yaml"))
	if err != nil {
		exitWithError("tsforge pack: %v", err)
		return err
	}
	if packPackageID != "" {
		manifest.Name = packPackageID
	}
	if packVersion != "" {
		manifest.Version = packVersion
	}
	if manifest.Name == "" {
		exitWithError("tsforge pack: manifest has no name (set --package-id or tsforge.yaml's name field)")
		return fmt.Errorf("missing package name")
	}
	if _, err := os.Stat(filepath.Join(dir, manifest.Main)); err != nil {
		exitWithError("tsforge pack: entry %q: %v", manifest.Main, err)
		return err
	}

	out := packOut
	if out == "" {
		out = fmt.Sprintf("%s-%s.tsfpkg", manifest.Name, manifest.Version)
	}
	if err := writeArchive(dir, out); err != nil {
		exitWithError("tsforge pack: %v", err)
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "packed %s@%s -> %s\n", manifest.Name, manifest.Version, out)
	}
	return nil
}

func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Main == "" {
		m.Main = "index.ts"
	}
	return &m, nil
}

// writeArchive zips every .ts/.tsx source file under dir plus the manifest
// itself into a single distributable archive, walking the tree the way a
// package-pack step typically does (source files + manifest, no build
// artifacts).
func writeArchive(dir, out string) error {
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	defer zw.Close()

	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		base := filepath.Base(path)
		if ext != ".ts" && ext != ".tsx" && base != "tsforge.yaml" {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(rel)
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(w, src)
		return err
	})
}
