// Package runner drives one batch of gene queries against a genus dataset.
package runner

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/yumyai/homoindex/logger"
	"github.com/yumyai/homoindex/pkg/orthodb"
	"github.com/yumyai/homoindex/pkg/report"
	"go.uber.org/zap"
)

// Request describes one invocation: which genus, which genes, where the
// artifacts go.
type Request struct {
	Genus    string
	DataRoot string
	Genes    []string
	OutDir   string
	NoDB     bool
}

// Result reports what a run produced.
type Result struct {
	RunID       string
	Rows        []report.SummaryRow
	SummaryFile string
}

// Run processes every requested gene sequentially: lookup, per-gene file,
// summary row. A gene absent from the dataset still gets both artifacts
// (marked NA) and never aborts the batch.
func Run(req Request) (*Result, error) {

	runID := "run-" + uuid.New().String()
	log := func(fields ...zap.Field) []zap.Field {
		return append([]zap.Field{zap.String("run_id", runID)}, fields...)
	}

	genus, err := orthodb.OpenGenus(req.DataRoot, req.Genus)
	if err != nil {
		return nil, err
	}

	backend, err := genus.Open(req.NoDB)
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	if len(req.Genes) == 0 {
		return nil, fmt.Errorf("no gene IDs to query")
	}

	if err := os.MkdirAll(req.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	stats := backend.Stats()
	logger.Info("Querying genus", log(
		zap.String("genus", req.Genus),
		zap.Int("species", stats.Species),
		zap.Int("orthogroups", stats.Orthogroups),
		zap.Int("genes", len(req.Genes)))...)

	res := &Result{
		RunID:       runID,
		Rows:        make([]report.SummaryRow, 0, len(req.Genes)),
		SummaryFile: path.Join(req.OutDir, "summary.tsv"),
	}

	// On a mid-batch failure the rows finished so far are still flushed to
	// summary.tsv, so partial output always carries its summary.
	abort := func(err error) (*Result, error) {
		if len(res.Rows) > 0 {
			if werr := report.WriteSummary(res.SummaryFile, res.Rows); werr != nil {
				logger.Error("Cannot write partial summary", log(zap.Error(werr))...)
			} else {
				logger.Warn("Run aborted, partial summary written", log(
					zap.String("file", res.SummaryFile),
					zap.Int("genes", len(res.Rows)))...)
			}
		}
		return nil, err
	}

	for _, gene := range req.Genes {

		group, found, err := backend.Lookup(gene)
		if err != nil {
			return abort(fmt.Errorf("lookup %s: %w", gene, err))
		}

		r := report.GeneReport{
			GeneID: gene,
			Stats:  stats,
			Group:  group,
		}

		outFile := path.Join(req.OutDir, gene+".txt")
		if err := report.WriteGeneReport(outFile, r); err != nil {
			return abort(err)
		}

		res.Rows = append(res.Rows, report.NewSummaryRow(r, outFile))

		if found {
			logger.Info("Result written", log(
				zap.String("gene", gene),
				zap.String("orthogroup", group.ID),
				zap.String("file", outFile))...)
		} else {
			logger.Info("Gene not found", log(
				zap.String("gene", gene),
				zap.String("file", outFile))...)
		}
	}

	if err := report.WriteSummary(res.SummaryFile, res.Rows); err != nil {
		return nil, err
	}

	return res, nil
}

// Defining possible error
var ErrGeneArgs = errors.New("please provide either --gene or --gene_list")

// ResolveGenes turns the mutually exclusive single-gene / gene-list
// arguments into the list of IDs to query. Giving both, or neither, is
// rejected with ErrGeneArgs.
func ResolveGenes(gene, listPath string) ([]string, error) {
	switch {
	case gene != "" && listPath != "":
		return nil, fmt.Errorf("%w, not both", ErrGeneArgs)
	case gene != "":
		return []string{strings.TrimSpace(gene)}, nil
	case listPath != "":
		return ReadGeneList(listPath)
	}
	return nil, ErrGeneArgs
}

// ReadGeneList reads a newline-delimited gene ID file. Blank lines and
// '#' comment lines are skipped; surrounding whitespace is trimmed.
func ReadGeneList(listPath string) ([]string, error) {

	f, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open gene list: %w", err)
	}
	defer f.Close()

	var genes []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		genes = append(genes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read gene list: %w", err)
	}

	return genes, nil
}
