package orthodb

import (
	"os"
	"path"
	"testing"

	"github.com/yumyai/homoindex/logger"
	"go.uber.org/zap/zapcore"
)

func TestMain(m *testing.M) {
	if err := logger.InitLogger(zapcore.ErrorLevel); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

const fixtureTSV = "Orthogroup\tOryza_sativa\tOryza_glaberrima\tZea_mays\n" +
	"OG0000000\tGWHPCBHR067821, GWHPCBHR067999\tOGL000123\tZM001, ZM002\n" +
	"OG0000001\t\tOGL000456\tZM010\n" +
	"OG0000002\tGWHPCBHR068000\n" // ragged row, trailing cells dropped

// writeFixtureGenus lays out <root>/<genus>/Orthogroups.tsv and returns root.
func writeFixtureGenus(t *testing.T, genus string) string {
	t.Helper()

	root := t.TempDir()
	dir := path.Join(root, genus)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create genus dir: %v", err)
	}
	if err := os.WriteFile(path.Join(dir, TableFile), []byte(fixtureTSV), 0644); err != nil {
		t.Fatalf("Failed to write fixture table: %v", err)
	}
	return root
}

func TestLoadTableStats(t *testing.T) {
	root := writeFixtureGenus(t, "Oryza")

	table, err := LoadTable(path.Join(root, "Oryza", TableFile))
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}

	stats := table.Stats()
	if stats.Species != 3 {
		t.Errorf("Species = %d, want 3", stats.Species)
	}
	if stats.Orthogroups != 3 {
		t.Errorf("Orthogroups = %d, want 3", stats.Orthogroups)
	}
}

func TestTableLookup(t *testing.T) {
	root := writeFixtureGenus(t, "Oryza")

	table, err := LoadTable(path.Join(root, "Oryza", TableFile))
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}

	og, ok, err := table.Lookup("GWHPCBHR067821")
	if err != nil || !ok {
		t.Fatalf("Lookup(GWHPCBHR067821) = ok %v, err %v", ok, err)
	}
	if og.ID != "OG0000000" {
		t.Errorf("orthogroup = %s, want OG0000000", og.ID)
	}
	if len(og.Species) != 3 {
		t.Errorf("species count = %d, want 3", len(og.Species))
	}
	if og.GeneCount() != 5 {
		t.Errorf("gene count = %d, want 5", og.GeneCount())
	}
	if og.Species[0] != "Oryza_sativa" || og.Species[2] != "Zea_mays" {
		t.Errorf("species order wrong: %v", og.Species)
	}
}

func TestTableLookupEmptyCell(t *testing.T) {
	root := writeFixtureGenus(t, "Oryza")

	table, err := LoadTable(path.Join(root, "Oryza", TableFile))
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}

	// OG0000001 has no Oryza_sativa member; its cell must not show up.
	og, ok, _ := table.Lookup("ZM010")
	if !ok {
		t.Fatal("ZM010 should be found")
	}
	if og.ID != "OG0000001" {
		t.Errorf("orthogroup = %s, want OG0000001", og.ID)
	}
	if len(og.Species) != 2 {
		t.Errorf("species = %v, want [Oryza_glaberrima Zea_mays]", og.Species)
	}
	if og.GeneCount() != 2 {
		t.Errorf("gene count = %d, want 2", og.GeneCount())
	}
}

func TestTableLookupRaggedRow(t *testing.T) {
	root := writeFixtureGenus(t, "Oryza")

	table, err := LoadTable(path.Join(root, "Oryza", TableFile))
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}

	og, ok, _ := table.Lookup("GWHPCBHR068000")
	if !ok || og.ID != "OG0000002" {
		t.Fatalf("Lookup(GWHPCBHR068000) = %v, ok %v", og, ok)
	}
	if og.GeneCount() != 1 || len(og.Species) != 1 {
		t.Errorf("singleton group misread: %d genes, %d species", og.GeneCount(), len(og.Species))
	}
}

func TestTableLookupMissing(t *testing.T) {
	root := writeFixtureGenus(t, "Oryza")

	table, err := LoadTable(path.Join(root, "Oryza", TableFile))
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}

	og, ok, err := table.Lookup("NOSUCHGENE")
	if err != nil {
		t.Fatalf("missing gene should not error: %v", err)
	}
	if ok || og != nil {
		t.Errorf("Lookup(NOSUCHGENE) = %v, ok %v, want nil, false", og, ok)
	}
}

func TestTableDuplicateGeneKeepsFirst(t *testing.T) {
	dir := t.TempDir()

	dup := "Orthogroup\tSpA\tSpB\n" +
		"OG01\tGENE1\t\n" +
		"OG02\tGENE1\tGENE2\n"
	tablePath := path.Join(dir, TableFile)
	if err := os.WriteFile(tablePath, []byte(dup), 0644); err != nil {
		t.Fatalf("Failed to write table: %v", err)
	}

	table, err := LoadTable(tablePath)
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}

	og, ok, _ := table.Lookup("GENE1")
	if !ok || og.ID != "OG01" {
		t.Errorf("duplicate gene should resolve to first row, got %v", og)
	}
}
