package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/quotation-tracker/constants"
)

// AllowedExt checks if a file extension is an accepted quote document format.
func AllowedExt(ext string) bool {
	return constants.MapExtToFormat(ext) != ""
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}

// SupplierFor resolves which supplier a quote file belongs to. The file's
// base name must equal a supplier id, or start with one followed by '_', '-'
// or a space ("forn-02_orcamento.pdf" belongs to "forn-02"). The longest
// matching id wins; matching ignores case.
func SupplierFor(path string, supplierIDs []string) (string, bool) {
	name := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	best := ""
	for _, id := range supplierIDs {
		lid := strings.ToLower(id)
		if lid == "" || !strings.HasPrefix(name, lid) {
			continue
		}
		if len(name) > len(lid) && !strings.ContainsRune("_- ", rune(name[len(lid)])) {
			continue
		}
		if len(id) > len(best) {
			best = id
		}
	}
	return best, best != ""
}
