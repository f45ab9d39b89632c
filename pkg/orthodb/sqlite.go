package orthodb

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// DB answers lookups from an orthogroups.db sqlite mirror. For large genera
// queried repeatedly this avoids re-parsing the TSV on every invocation.
type DB struct {
	sqldb *sql.DB
	stats Stats
}

// OpenDB opens an existing orthogroups.db and caches the dataset counts.
func OpenDB(dbPath string) (*DB, error) {

	sqldb, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	ctx := context.TODO()

	var stats Stats
	if err := sqldb.QueryRowContext(ctx, `SELECT COUNT(*) FROM species`).Scan(&stats.Species); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("count species: %w", err)
	}
	if err := sqldb.QueryRowContext(ctx, `SELECT COUNT(*) FROM orthogroups`).Scan(&stats.Orthogroups); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("count orthogroups: %w", err)
	}

	return &DB{sqldb: sqldb, stats: stats}, nil
}

func (d *DB) Stats() Stats {
	return d.stats
}

func (d *DB) Lookup(geneID string) (*Orthogroup, bool, error) {

	ctx := context.TODO()

	var orthogroupID string
	err := d.sqldb.QueryRowContext(ctx,
		`SELECT orthogroup_id FROM gene_members WHERE gene_id == ? LIMIT 1`,
		geneID).Scan(&orthogroupID)

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup gene %s: %w", geneID, err)
	}

	og, err := d.getOrthogroup(ctx, orthogroupID)
	if err != nil {
		return nil, false, err
	}

	return og, true, nil
}

func (d *DB) Close() error {
	return d.sqldb.Close()
}

// getOrthogroup fetches every member of one group, species kept in the
// original table column order.
func (d *DB) getOrthogroup(ctx context.Context, orthogroupID string) (*Orthogroup, error) {

	qstring := `
		SELECT gm.species_name, gm.gene_id
		FROM gene_members gm
		JOIN species s ON gm.species_name = s.species_name
		WHERE gm.orthogroup_id == ?
		ORDER BY s.species_ord, gm.rowid
	`

	stm, err := d.sqldb.PrepareContext(ctx, qstring)
	if err != nil {
		return nil, err
	}
	defer stm.Close()

	rows, err := stm.QueryContext(ctx, orthogroupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	og := &Orthogroup{
		ID:      orthogroupID,
		Members: make(map[string][]string),
	}

	for rows.Next() {
		var species, gene string
		if err := rows.Scan(&species, &gene); err != nil {
			return nil, fmt.Errorf("scan member row: %w", err)
		}

		if _, seen := og.Members[species]; !seen {
			og.Species = append(og.Species, species)
		}
		og.Members[species] = append(og.Members[species], gene)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("member rows error: %w", err)
	}

	return og, nil
}

// BuildDB writes the sqlite mirror of a loaded table. The mirror is built
// in a temp file and renamed over dbPath only on success, so a failed build
// never clobbers a previous database or leaves an empty one behind.
func BuildDB(t *Table, dbPath string) error {

	tmpPath := dbPath + ".tmp"
	os.Remove(tmpPath)

	if err := buildDBFile(t, tmpPath); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, dbPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace database file: %w", err)
	}

	return nil
}

func buildDBFile(t *Table, dbPath string) error {

	sqldb, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open sqlite database: %w", err)
	}
	defer sqldb.Close()

	ctx := context.TODO()

	schema := `
		CREATE TABLE species (
			species_ord  INTEGER PRIMARY KEY,
			species_name TEXT NOT NULL
		);
		CREATE TABLE orthogroups (
			orthogroup_id TEXT PRIMARY KEY
		) WITHOUT ROWID;
		CREATE TABLE gene_members (
			orthogroup_id TEXT NOT NULL,
			species_name  TEXT NOT NULL,
			gene_id       TEXT NOT NULL
		);
		CREATE INDEX idx_members_gene ON gene_members (gene_id);
		CREATE INDEX idx_members_group ON gene_members (orthogroup_id);
	`
	if _, err := sqldb.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := sqldb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("fail to begin tx %w", err)
	}
	defer tx.Rollback()

	for ord, species := range t.SpeciesNames {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO species (species_ord, species_name) VALUES (?, ?)`,
			ord, species); err != nil {
			return fmt.Errorf("populate species: %w", err)
		}
	}

	insGroup, err := tx.PrepareContext(ctx, `INSERT INTO orthogroups (orthogroup_id) VALUES (?)`)
	if err != nil {
		return err
	}
	defer insGroup.Close()

	insMember, err := tx.PrepareContext(ctx,
		`INSERT INTO gene_members (orthogroup_id, species_name, gene_id) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insMember.Close()

	for _, row := range t.Rows {
		if _, err := insGroup.ExecContext(ctx, row.ID); err != nil {
			return fmt.Errorf("populate orthogroups: %w", err)
		}
		for col, genes := range row.Genes {
			species := t.SpeciesNames[col]
			for _, gene := range genes {
				if _, err := insMember.ExecContext(ctx, row.ID, species, gene); err != nil {
					return fmt.Errorf("populate gene_members: %w", err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}
