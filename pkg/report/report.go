// Package report renders the per-gene result files and the summary table.
package report

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/yumyai/homoindex/pkg/orthodb"
)

// MissingMark fills the orthogroup column of genes absent from the dataset.
const MissingMark = "NA"

// GeneReport is everything needed to render one <gene_id>.txt file.
// Group is nil when the gene was not found.
type GeneReport struct {
	GeneID string
	Stats  orthodb.Stats
	Group  *orthodb.Orthogroup
}

// SummaryRow is one line of summary.tsv plus the path of the per-gene file
// it accounts for.
type SummaryRow struct {
	GeneID       string
	OrthogroupID string
	SpeciesCount int
	GeneCount    int
	SpeciesList  []string
	OutFile      string
}

// NewSummaryRow derives a summary row from a rendered gene report.
func NewSummaryRow(r GeneReport, outFile string) SummaryRow {
	row := SummaryRow{
		GeneID:       r.GeneID,
		OrthogroupID: MissingMark,
		OutFile:      outFile,
	}

	if r.Group != nil {
		row.OrthogroupID = r.Group.ID
		row.SpeciesCount = len(r.Group.Species)
		row.GeneCount = r.Group.GeneCount()
		row.SpeciesList = r.Group.Species
	}

	return row
}

// WriteGeneReport writes one per-gene result file. The file is created even
// when the gene has no orthogroup, so every queried gene leaves an artifact.
func WriteGeneReport(outFile string, r GeneReport) error {

	f, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("create gene report: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	fmt.Fprintf(w, "Total species: %d\n", r.Stats.Species)
	fmt.Fprintf(w, "Total orthogroups: %d\n\n", r.Stats.Orthogroups)

	if r.Group == nil {
		fmt.Fprintf(w, "Gene '%s' not found in any orthogroup.\n", r.GeneID)
		return w.Flush()
	}

	fmt.Fprintf(w, "Gene '%s' belongs to Orthogroup: %s\n", r.GeneID, r.Group.ID)
	fmt.Fprintf(w, "Homologous genes in the same orthogroup:\n\n")

	for _, species := range r.Group.Species {
		fmt.Fprintf(w, "%s: %s\n", species, strings.Join(r.Group.Members[species], ", "))
	}

	fmt.Fprintf(w, "\n---\n")

	return w.Flush()
}

// WriteSummary writes summary.tsv, one row per queried gene in query order.
func WriteSummary(outFile string, rows []SummaryRow) error {

	f, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("create summary table: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	fmt.Fprintln(w, "Gene_ID\tOrthogroup_ID\tSpecies_Count\tGene_Count\tSpecies_List")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			row.GeneID, row.OrthogroupID, row.SpeciesCount, row.GeneCount,
			strings.Join(row.SpeciesList, "; "))
	}

	return w.Flush()
}
