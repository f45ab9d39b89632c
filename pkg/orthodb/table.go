package orthodb

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yumyai/homoindex/logger"
	"go.uber.org/zap"
)

// Table is an Orthogroups.tsv loaded into memory, with a gene index for
// repeated lookups.
type Table struct {
	SpeciesNames []string
	Rows         []TableRow

	geneIndex map[string]int // gene ID -> row offset, first occurrence wins
}

// TableRow is one orthogroup: its ID plus the tokenized gene list of every
// species column, in header order. Species with no members hold a nil slice.
type TableRow struct {
	ID    string
	Genes [][]string
}

// LoadTable parses an Orthogroups.tsv.
func LoadTable(tablePath string) (*Table, error) {

	f, err := os.Open(tablePath)
	if err != nil {
		return nil, fmt.Errorf("open orthogroup table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1 // trailing empty cells are routinely dropped
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read orthogroup header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("orthogroup table %s has no species columns", tablePath)
	}

	t := &Table{
		SpeciesNames: header[1:],
		geneIndex:    make(map[string]int),
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read orthogroup row: %w", err)
		}
		if len(record) == 0 || record[0] == "" {
			continue
		}

		row := TableRow{
			ID:    record[0],
			Genes: make([][]string, len(t.SpeciesNames)),
		}

		for col := range t.SpeciesNames {
			if col+1 >= len(record) {
				break
			}
			row.Genes[col] = splitGenes(record[col+1])
		}

		offset := len(t.Rows)
		t.Rows = append(t.Rows, row)

		for _, genes := range row.Genes {
			for _, gene := range genes {
				if prev, seen := t.geneIndex[gene]; seen {
					logger.Warn("Gene appears in more than one orthogroup, keeping first",
						zap.String("gene", gene),
						zap.String("kept", t.Rows[prev].ID),
						zap.String("ignored", row.ID))
					continue
				}
				t.geneIndex[gene] = offset
			}
		}
	}

	return t, nil
}

func (t *Table) Stats() Stats {
	return Stats{
		Species:     len(t.SpeciesNames),
		Orthogroups: len(t.Rows),
	}
}

func (t *Table) Lookup(geneID string) (*Orthogroup, bool, error) {
	offset, ok := t.geneIndex[geneID]
	if !ok {
		return nil, false, nil
	}
	return t.orthogroupAt(offset), true, nil
}

func (t *Table) Close() error {
	return nil
}

func (t *Table) orthogroupAt(offset int) *Orthogroup {
	row := t.Rows[offset]

	og := &Orthogroup{
		ID:      row.ID,
		Members: make(map[string][]string),
	}

	for col, species := range t.SpeciesNames {
		genes := row.Genes[col]
		if len(genes) == 0 {
			continue
		}
		og.Species = append(og.Species, species)
		og.Members[species] = genes
	}

	return og
}

// splitGenes tokenizes a ", "-joined species cell into gene IDs.
func splitGenes(cell string) []string {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}

	parts := strings.Split(cell, ",")
	genes := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			genes = append(genes, p)
		}
	}
	return genes
}
