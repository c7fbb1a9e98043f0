// Package catalog indexes the annotations of transcriptions in a SQLite
// database so they can be searched across a corpus.
//
// The pure Go driver (modernc.org/sqlite) is used by default; building
// with -tags cgo_sqlite switches to mattn/go-sqlite3.
//
// Each transcription is stored as a document keyed by its path, with one
// row per annotation and one row per tag, alternatives included. A document
// whose content hash has not changed is not indexed again.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/FocuswithJustin/annokit/core/ann"
	apperrors "github.com/FocuswithJustin/annokit/core/errors"
	"github.com/FocuswithJustin/annokit/internal/logging"
	"github.com/FocuswithJustin/annokit/internal/snapshot"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id INTEGER PRIMARY KEY,
	path TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	trs_id TEXT NOT NULL,
	sha256 TEXT NOT NULL,
	blake3 TEXT NOT NULL,
	tiers INTEGER NOT NULL,
	indexed_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS annotations (
	id INTEGER PRIMARY KEY,
	document_id INTEGER NOT NULL,
	tier TEXT NOT NULL,
	ann_id TEXT NOT NULL,
	start_time REAL NOT NULL,
	end_time REAL NOT NULL,
	label TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tags (
	annotation_id INTEGER NOT NULL,
	tag TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_annotations_document ON annotations(document_id);
CREATE INDEX IF NOT EXISTS idx_tags_tag ON tags(tag);
`

// Catalog is an annotation index backed by SQLite.
type Catalog struct {
	db  *sql.DB
	sep string
}

// Document is an indexed transcription.
type Document struct {
	Path      string          `json:"path"`
	Name      string          `json:"name"`
	ID        string          `json:"id"`
	Digest    snapshot.Digest `json:"digest"`
	Tiers     int             `json:"tiers"`
	IndexedAt time.Time       `json:"indexed_at"`
}

// Hit is one annotation matching a query.
type Hit struct {
	Path         string  `json:"path"`
	Tier         string  `json:"tier"`
	AnnotationID string  `json:"annotation_id"`
	Begin        float64 `json:"begin"`
	End          float64 `json:"end"`
	Label        string  `json:"label"`
}

// Query selects annotations. Empty fields do not filter.
type Query struct {
	// Tag matches any tag of the annotation, alternatives included.
	Tag string
	// Contains matches a substring of the label text.
	Contains string
	Tier     string
	Path     string
	// From and To select annotations overlapping [From, To]; To <= 0 means
	// no upper bound.
	From  float64
	To    float64
	Limit int
}

// AddResult reports what Add did.
type AddResult struct {
	Annotations int
	Unchanged   bool
}

// Open opens or creates the catalog at path. sep joins the labels of an
// annotation in its text form.
func Open(path, sep string) (*Catalog, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, apperrors.NewIO("open", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperrors.NewIO("create schema", path, err)
	}
	if sep == "" {
		sep = " "
	}
	return &Catalog{db: db, sep: sep}, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Add indexes trs under path, replacing any previous content for path.
func (c *Catalog) Add(ctx context.Context, path string, trs *ann.Transcription) (*AddResult, error) {
	digest, err := snapshot.Hash(trs)
	if err != nil {
		return nil, err
	}

	var current string
	err = c.db.QueryRowContext(ctx, "SELECT blake3 FROM documents WHERE path = ?", path).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("catalog: lookup %s: %w", path, err)
	}
	if current == digest.BLAKE3 {
		logging.CatalogEvent("unchanged", path)
		return &AddResult{Unchanged: true}, nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: begin: %w", err)
	}
	defer tx.Rollback()

	if err := deleteDocument(ctx, tx, path); err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO documents (path, name, trs_id, sha256, blake3, tiers, indexed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		path, trs.Name(), trs.ID(), digest.SHA256, digest.BLAKE3, trs.Len(),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("catalog: insert document: %w", err)
	}
	docID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("catalog: insert document: %w", err)
	}

	n, err := c.insertAnnotations(ctx, tx, docID, trs)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("catalog: commit: %w", err)
	}
	logging.CatalogEvent("indexed", path, "annotations", n, "tiers", trs.Len())
	return &AddResult{Annotations: n}, nil
}

func (c *Catalog) insertAnnotations(ctx context.Context, tx *sql.Tx, docID int64, trs *ann.Transcription) (int, error) {
	annStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO annotations (document_id, tier, ann_id, start_time, end_time, label)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("catalog: prepare: %w", err)
	}
	defer annStmt.Close()
	tagStmt, err := tx.PrepareContext(ctx, "INSERT INTO tags (annotation_id, tag) VALUES (?, ?)")
	if err != nil {
		return 0, fmt.Errorf("catalog: prepare: %w", err)
	}
	defer tagStmt.Close()

	n := 0
	for _, t := range trs.Tiers() {
		for _, a := range t.Annotations() {
			res, err := annStmt.ExecContext(ctx, docID, t.Name(), a.ID(),
				a.LowestLocalization().Midpoint(), a.HighestLocalization().Midpoint(),
				a.SerializeLabels(c.sep, "", false))
			if err != nil {
				return 0, fmt.Errorf("catalog: insert annotation: %w", err)
			}
			rowID, err := res.LastInsertId()
			if err != nil {
				return 0, fmt.Errorf("catalog: insert annotation: %w", err)
			}
			seen := make(map[string]bool)
			for _, l := range a.Labels() {
				for _, tag := range l.Tags() {
					if seen[tag.Content()] {
						continue
					}
					seen[tag.Content()] = true
					if _, err := tagStmt.ExecContext(ctx, rowID, tag.Content()); err != nil {
						return 0, fmt.Errorf("catalog: insert tag: %w", err)
					}
				}
			}
			n++
		}
	}
	return n, nil
}

func deleteDocument(ctx context.Context, tx *sql.Tx, path string) error {
	stmts := []string{
		`DELETE FROM tags WHERE annotation_id IN (
			SELECT a.id FROM annotations a JOIN documents d ON a.document_id = d.id WHERE d.path = ?)`,
		`DELETE FROM annotations WHERE document_id IN (SELECT id FROM documents WHERE path = ?)`,
		`DELETE FROM documents WHERE path = ?`,
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s, path); err != nil {
			return fmt.Errorf("catalog: delete %s: %w", path, err)
		}
	}
	return nil
}

// Remove drops path from the catalog.
func (c *Catalog) Remove(ctx context.Context, path string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: begin: %w", err)
	}
	defer tx.Rollback()

	var id int64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM documents WHERE path = ?", path).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewNotFound("document", path)
		}
		return fmt.Errorf("catalog: lookup %s: %w", path, err)
	}
	if err := deleteDocument(ctx, tx, path); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("catalog: commit: %w", err)
	}
	logging.CatalogEvent("removed", path)
	return nil
}

// Documents lists the indexed documents by path.
func (c *Catalog) Documents(ctx context.Context) ([]Document, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT path, name, trs_id, sha256, blake3, tiers, indexed_at FROM documents ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("catalog: list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var indexed string
		if err := rows.Scan(&d.Path, &d.Name, &d.ID, &d.Digest.SHA256, &d.Digest.BLAKE3, &d.Tiers, &indexed); err != nil {
			return nil, fmt.Errorf("catalog: scan document: %w", err)
		}
		d.IndexedAt, _ = time.Parse(time.RFC3339, indexed)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Search returns the annotations matching q, ordered by document, tier
// and time.
func (c *Catalog) Search(ctx context.Context, q Query) ([]Hit, error) {
	var where []string
	var args []any
	if q.Tag != "" {
		where = append(where, "a.id IN (SELECT annotation_id FROM tags WHERE tag = ?)")
		args = append(args, q.Tag)
	}
	if q.Contains != "" {
		where = append(where, "instr(a.label, ?) > 0")
		args = append(args, q.Contains)
	}
	if q.Tier != "" {
		where = append(where, "a.tier = ?")
		args = append(args, q.Tier)
	}
	if q.Path != "" {
		where = append(where, "d.path = ?")
		args = append(args, q.Path)
	}
	if q.From > 0 {
		where = append(where, "a.end_time >= ?")
		args = append(args, q.From)
	}
	if q.To > 0 {
		where = append(where, "a.start_time <= ?")
		args = append(args, q.To)
	}

	var sb strings.Builder
	sb.WriteString(`SELECT d.path, a.tier, a.ann_id, a.start_time, a.end_time, a.label
		FROM annotations a JOIN documents d ON a.document_id = d.id`)
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY d.path, a.tier, a.start_time, a.id")
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	rows, err := c.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: search: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.Path, &h.Tier, &h.AnnotationID, &h.Begin, &h.End, &h.Label); err != nil {
			return nil, fmt.Errorf("catalog: scan hit: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
