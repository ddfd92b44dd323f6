/*
Package metadata implements the sprite metadata store that sliced sheets
are applied to.

Each sheet is keyed by its path and owns an ordered list of sprites. Applying
a new slicing replaces every sprite of the sheet in a single transaction so
readers never see a partial result.
*/
package metadata

import (
	"database/sql"
	"fmt"

	"github.com/bodgit/spriteslice"
	_ "github.com/mattn/go-sqlite3" // database/sql driver
	"github.com/pkg/errors"
)

// Filename is the default database filename
const Filename = "spriteslice.db"

// DB is the sprite metadata database
type DB struct {
	db *sql.DB
}

// Sheet is a summary of one sheet held in the database
type Sheet struct {
	Path    string
	Width   int
	Height  int
	Sprites int
}

// New opens, creating if necessary, the database in file
func New(file string) (*DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS sheet (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE, width INTEGER NOT NULL, height INTEGER NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS sprite (sheet_id INTEGER NOT NULL, position INTEGER NOT NULL, name TEXT NOT NULL, x INTEGER NOT NULL, y INTEGER NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, pivot_x REAL NOT NULL, pivot_y REAL NOT NULL, alignment INTEGER NOT NULL, border_left INTEGER NOT NULL, border_bottom INTEGER NOT NULL, border_right INTEGER NOT NULL, border_top INTEGER NOT NULL, PRIMARY KEY (sheet_id, position), UNIQUE (sheet_id, name), FOREIGN KEY(sheet_id) REFERENCES sheet(id) ON DELETE CASCADE)"); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{
		db: db,
	}, nil
}

// Close closes the database
func (db *DB) Close() error {
	return db.db.Close()
}

// Apply replaces the sprites of the sheet at path with sprites, keeping
// their order
func (db *DB) Apply(path string, width, height int, sprites []spriteslice.SpriteDescriptor) (err error) {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var id int64
	switch err = tx.QueryRow("SELECT id FROM sheet WHERE path = ?", path).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := tx.Exec("INSERT INTO sheet (path, width, height) VALUES (?, ?, ?)", path, width, height)
		if err != nil {
			return errors.Wrapf(err, "adding sheet %s", path)
		}
		if id, err = result.LastInsertId(); err != nil {
			return err
		}
	case nil:
		if _, err = tx.Exec("UPDATE sheet SET width = ?, height = ? WHERE id = ?", width, height, id); err != nil {
			return err
		}
		if _, err = tx.Exec("DELETE FROM sprite WHERE sheet_id = ?", id); err != nil {
			return err
		}
	default:
		return err
	}

	stmt, err := tx.Prepare("INSERT INTO sprite (sheet_id, position, name, x, y, width, height, pivot_x, pivot_y, alignment, border_left, border_bottom, border_right, border_top) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, s := range sprites {
		if _, err = stmt.Exec(id, i, s.Name, s.Rect.X, s.Rect.Y, s.Rect.Width, s.Rect.Height, s.Pivot.X, s.Pivot.Y, int(s.Alignment), s.Border.Left, s.Border.Bottom, s.Border.Right, s.Border.Top); err != nil {
			return errors.Wrapf(err, "adding sprite %s", s.Name)
		}
	}

	return tx.Commit()
}

// Sprites returns the sprites stored for the sheet at path in the order they
// were applied. A sheet that has never been applied returns nil.
func (db *DB) Sprites(path string) ([]spriteslice.SpriteDescriptor, error) {
	rows, err := db.db.Query("SELECT s.name, s.x, s.y, s.width, s.height, s.pivot_x, s.pivot_y, s.alignment, s.border_left, s.border_bottom, s.border_right, s.border_top FROM sprite AS s JOIN sheet AS h ON s.sheet_id = h.id WHERE h.path = ? ORDER BY s.position", path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sprites []spriteslice.SpriteDescriptor
	for rows.Next() {
		var s spriteslice.SpriteDescriptor
		var alignment int
		if err := rows.Scan(&s.Name, &s.Rect.X, &s.Rect.Y, &s.Rect.Width, &s.Rect.Height, &s.Pivot.X, &s.Pivot.Y, &alignment, &s.Border.Left, &s.Border.Bottom, &s.Border.Right, &s.Border.Top); err != nil {
			return nil, err
		}
		s.Alignment = spriteslice.Alignment(alignment)
		sprites = append(sprites, s)
	}
	return sprites, rows.Err()
}

// Sheets returns every sheet in the database ordered by path
func (db *DB) Sheets() ([]Sheet, error) {
	rows, err := db.db.Query("SELECT h.path, h.width, h.height, COUNT(s.position) FROM sheet AS h LEFT JOIN sprite AS s ON s.sheet_id = h.id GROUP BY h.id ORDER BY h.path")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sheets []Sheet
	for rows.Next() {
		var s Sheet
		if err := rows.Scan(&s.Path, &s.Width, &s.Height, &s.Sprites); err != nil {
			return nil, err
		}
		sheets = append(sheets, s)
	}
	return sheets, rows.Err()
}
