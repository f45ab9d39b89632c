// Package orthodb reads per-genus orthogroup datasets.
//
// A genus dataset is a directory under the data root named after the genus,
// holding an OrthoFinder-style Orthogroups.tsv: a header row of
// "Orthogroup" followed by one column per species, then one row per
// orthogroup where each species cell is a ", "-joined list of gene IDs.
// An optional orthogroups.db sqlite mirror of the same table may sit next
// to it and is preferred for lookups when present.
package orthodb

import (
	"errors"
	"fmt"
	"path"

	"github.com/yumyai/homoindex/internal/util"
)

// Defining possible error
var (
	ErrGenusNotFound = errors.New("genus directory does not exist")
	ErrTableNotFound = errors.New("Orthogroups.tsv does not exist")
)

const (
	TableFile = "Orthogroups.tsv"
	DBFile    = "orthogroups.db"
)

// Genus is a handle on one validated genus dataset directory.
type Genus struct {
	Name string
	Dir  string
}

// OpenGenus checks that the genus directory and its orthogroup table exist.
func OpenGenus(root, name string) (*Genus, error) {
	dir := path.Join(root, name)

	if !util.DirExists(dir) {
		return nil, fmt.Errorf("%w: %s", ErrGenusNotFound, dir)
	}

	g := &Genus{Name: name, Dir: dir}

	if !util.FileExists(g.TablePath()) {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, g.TablePath())
	}

	return g, nil
}

func (g *Genus) TablePath() string {
	return path.Join(g.Dir, TableFile)
}

func (g *Genus) DBPath() string {
	return path.Join(g.Dir, DBFile)
}

// HasDB reports whether a prebuilt sqlite mirror is available.
func (g *Genus) HasDB() bool {
	return util.FileExists(g.DBPath())
}

// Open returns the query backend for this genus: the sqlite mirror when one
// has been built (and noDB is false), otherwise the in-memory TSV table.
func (g *Genus) Open(noDB bool) (Backend, error) {
	if !noDB && g.HasDB() {
		return OpenDB(g.DBPath())
	}
	return LoadTable(g.TablePath())
}

// ListGenera returns the sorted genus names available under the data root.
func ListGenera(root string) ([]string, error) {
	return util.ListDirs(root)
}

// Stats are dataset-wide counts, reported at the top of every gene report.
type Stats struct {
	Species     int
	Orthogroups int
}

// Orthogroup is one resolved group: the species that have members in it
// (in table column order) and their gene IDs.
type Orthogroup struct {
	ID      string
	Species []string
	Members map[string][]string
}

// GeneCount is the number of genes across all species in the group,
// including the queried gene itself.
func (og *Orthogroup) GeneCount() int {
	n := 0
	for _, genes := range og.Members {
		n += len(genes)
	}
	return n
}

// Backend answers gene lookups against one genus dataset.
type Backend interface {
	Stats() Stats
	// Lookup resolves a gene ID to its orthogroup. A gene absent from the
	// dataset returns ok == false with a nil error.
	Lookup(geneID string) (og *Orthogroup, ok bool, err error)
	Close() error
}
