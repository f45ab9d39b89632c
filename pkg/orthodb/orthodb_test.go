package orthodb

import (
	"errors"
	"os"
	"path"
	"testing"
)

func TestOpenGenusMissingDir(t *testing.T) {
	root := t.TempDir()

	_, err := OpenGenus(root, "Oryza")
	if !errors.Is(err, ErrGenusNotFound) {
		t.Errorf("err = %v, want ErrGenusNotFound", err)
	}
}

func TestOpenGenusMissingTable(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(path.Join(root, "Oryza"), 0755); err != nil {
		t.Fatal(err)
	}

	_, err := OpenGenus(root, "Oryza")
	if !errors.Is(err, ErrTableNotFound) {
		t.Errorf("err = %v, want ErrTableNotFound", err)
	}
}

func TestOpenGenus(t *testing.T) {
	root := writeFixtureGenus(t, "Oryza")

	g, err := OpenGenus(root, "Oryza")
	if err != nil {
		t.Fatalf("OpenGenus failed: %v", err)
	}
	if g.Name != "Oryza" {
		t.Errorf("Name = %s, want Oryza", g.Name)
	}
	if g.HasDB() {
		t.Error("HasDB should be false before build_db")
	}
}

func TestGenusOpenPrefersDB(t *testing.T) {
	root := writeFixtureGenus(t, "Oryza")

	g, err := OpenGenus(root, "Oryza")
	if err != nil {
		t.Fatalf("OpenGenus failed: %v", err)
	}

	// Without a db file, Open falls back to the TSV table.
	backend, err := g.Open(false)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, isTable := backend.(*Table); !isTable {
		t.Errorf("backend = %T, want *Table", backend)
	}
	backend.Close()

	table, _ := LoadTable(g.TablePath())
	if err := BuildDB(table, g.DBPath()); err != nil {
		t.Fatalf("BuildDB failed: %v", err)
	}

	backend, err = g.Open(false)
	if err != nil {
		t.Fatalf("Open failed after build: %v", err)
	}
	if _, isDB := backend.(*DB); !isDB {
		t.Errorf("backend = %T, want *DB", backend)
	}
	backend.Close()

	// no_db forces the TSV scan even when the mirror exists.
	backend, err = g.Open(true)
	if err != nil {
		t.Fatalf("Open(noDB) failed: %v", err)
	}
	if _, isTable := backend.(*Table); !isTable {
		t.Errorf("backend = %T, want *Table with noDB", backend)
	}
	backend.Close()
}

func TestListGenera(t *testing.T) {
	root := t.TempDir()
	for _, g := range []string{"Zea", "Arabidopsis", "Oryza"} {
		if err := os.MkdirAll(path.Join(root, g), 0755); err != nil {
			t.Fatal(err)
		}
	}
	// A stray file must not be listed as a genus.
	if err := os.WriteFile(path.Join(root, "README.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ListGenera(root)
	if err != nil {
		t.Fatalf("ListGenera failed: %v", err)
	}

	want := []string{"Arabidopsis", "Oryza", "Zea"}
	if len(got) != len(want) {
		t.Fatalf("genera = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("genera = %v, want %v", got, want)
			break
		}
	}
}
