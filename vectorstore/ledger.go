package vectorstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
)

const ledgerFileName = "processed_files.json"

// LoadProcessedFiles reads the per-tenant ledger of filenames already
// embedded into the current index. A missing ledger file yields an empty
// list, not an error.
func LoadProcessedFiles(dir string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(dir, ledgerFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []string
	if err := json.Unmarshal(data, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// SaveProcessedFiles overwrites the ledger with the full filename set.
// The write is atomic so a crashed save never leaves a truncated ledger
// next to an already-updated index.
func SaveProcessedFiles(dir string, files []string) error {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	data, err := json.MarshalIndent(sorted, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ledgerFileName+".tmp*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), filepath.Join(dir, ledgerFileName))
}
