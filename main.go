package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/yumyai/homoindex/logger"
	"github.com/yumyai/homoindex/pkg/orthodb"
	"github.com/yumyai/homoindex/pkg/runner"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	flagGenus    string
	flagGene     string
	flagGeneList string
	flagOutdir   = "results"
	flagData     string
	flagBuildDB  bool
	flagNoDB     bool
	flagVerbose  bool
)

func init() {
	flag.StringVar(&flagGenus, "genus", "", "Genus name under the data root directory (required)")
	flag.StringVar(&flagGenus, "G", "", "Shorthand for --genus")
	flag.StringVar(&flagGene, "gene", "", "Single gene ID to query")
	flag.StringVar(&flagGene, "g", "", "Shorthand for --gene")
	flag.StringVar(&flagGeneList, "gene_list", "", "Text file containing multiple gene IDs (one per line)")
	flag.StringVar(&flagGeneList, "l", "", "Shorthand for --gene_list")
	flag.StringVar(&flagOutdir, "outdir", flagOutdir, "Output directory")
	flag.StringVar(&flagOutdir, "o", flagOutdir, "Shorthand for --outdir")
	flag.StringVar(&flagData, "data", "", "Data root holding one directory per genus (default ./genus, or HOMOINDEX_DATA)")
	flag.BoolVar(&flagBuildDB, "build_db", false, "Build orthogroups.db from Orthogroups.tsv for the given genus, then exit")
	flag.BoolVar(&flagNoDB, "no_db", false, "Ignore orthogroups.db and scan Orthogroups.tsv directly")
	flag.BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
}

func main() {

	VERSION := "0.1.0"

	flag.Parse()

	LOG_LEVEL := zapcore.InfoLevel
	if flagVerbose {
		LOG_LEVEL = zapcore.DebugLevel
	}

	if err := logger.InitLogger(LOG_LEVEL); err != nil {
		panic(err)
	}

	defer logger.Sync() // Make sure that the buffered is flushed.

	// Try load env
	dotenvErr := godotenv.Load()

	if dotenvErr != nil {
		logger.Debug("No .env found, using local environment")
	}

	dataRoot := flagData
	if dataRoot == "" {
		dataRoot = os.Getenv("HOMOINDEX_DATA")
	}
	if dataRoot == "" {
		logger.Debug("No local environment (HOMOINDEX_DATA), using default value (./genus)")
		dataRoot = "genus"
	}

	logger.Info("Start:", zap.String("Version", VERSION))

	if flagGenus == "" {
		usageError("--genus is required")
	}

	genus, err := orthodb.OpenGenus(dataRoot, flagGenus)
	if err != nil {
		if errors.Is(err, orthodb.ErrGenusNotFound) {
			fmt.Fprintf(os.Stderr, "Genus '%s' directory not found!\n", flagGenus)
			printAvailableGenera(dataRoot)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		logger.Sync()
		os.Exit(1)
	}

	if flagBuildDB {
		buildDB(genus)
		return
	}

	genes, genesErr := runner.ResolveGenes(flagGene, flagGeneList)
	if genesErr != nil {
		if errors.Is(genesErr, runner.ErrGeneArgs) {
			usageError(genesErr.Error())
		}
		logger.Error("Cannot read gene list", zap.String("file", flagGeneList), zap.Error(genesErr))
		logger.Sync()
		os.Exit(1)
	}

	req := runner.Request{
		Genus:    flagGenus,
		DataRoot: dataRoot,
		Genes:    genes,
		OutDir:   flagOutdir,
		NoDB:     flagNoDB,
	}

	res, runErr := runner.Run(req)
	if runErr != nil {
		logger.Error("Query run failed", zap.Error(runErr))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("Summary table saved",
		zap.String("file", res.SummaryFile),
		zap.Int("genes", len(res.Rows)))
}

func buildDB(genus *orthodb.Genus) {
	table, err := orthodb.LoadTable(genus.TablePath())
	if err != nil {
		logger.Error("Cannot load orthogroup table", zap.String("file", genus.TablePath()), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	dbPath := genus.DBPath()
	if err := orthodb.BuildDB(table, dbPath); err != nil {
		logger.Error("Cannot build sqlite database", zap.String("file", dbPath), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("Database built",
		zap.String("file", dbPath),
		zap.Int("orthogroups", table.Stats().Orthogroups),
		zap.Int("species", table.Stats().Species))
}

func printAvailableGenera(dataRoot string) {
	available, err := orthodb.ListGenera(dataRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Data root '%s' not found in current path.\n", dataRoot)
		return
	}
	fmt.Fprintln(os.Stderr, "Available genus names:")
	for _, g := range available {
		fmt.Fprintf(os.Stderr, "  - %s\n", g)
	}
}

func usageError(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	fmt.Fprintf(os.Stderr, "Usage: %s --genus GENUS [--gene GENE | --gene_list FILE] [--outdir OUTDIR]\n", os.Args[0])
	logger.Sync()
	os.Exit(1)
}
