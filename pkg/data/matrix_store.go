package data

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const (
	fileMode = 0600
	dirMode  = 0700

	extJSON   = ".json"
	extDB     = ".db"
	extSQLite = ".sqlite"

	// maxMatrixCells caps the dense allocation made for a stored shape.
	maxMatrixCells = 1 << 30
)

const (
	selectShapeSQL  = `SELECT n_rows, n_cols FROM shape WHERE id = 1`
	selectLabelsSQL = `SELECT row_idx, col_idx, value FROM label`
	insertShapeSQL  = `INSERT INTO shape (id, n_rows, n_cols) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET n_rows = excluded.n_rows, n_cols = excluded.n_cols`
	deleteLabelsSQL = `DELETE FROM label`
	insertLabelSQL  = `INSERT INTO label (row_idx, col_idx, value) VALUES (?, ?, ?)`
)

// MatrixExt returns the normalized matrix file extension for path.
func MatrixExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case extDB, extSQLite:
		return extDB
	default:
		return extJSON
	}
}

// LoadMatrix reads a label matrix. Files ending in .db or .sqlite are
// read as sparse sqlite stores; everything else as a JSON array of rows.
func LoadMatrix(path string) (*LabelMatrix, error) {
	if path == "" {
		return nil, loadErr("labels", errors.New("path not specified"))
	}

	if _, err := os.Stat(path); err != nil {
		return nil, loadErr(path, errors.Wrap(err, "error accessing labels file"))
	}

	var (
		m   *LabelMatrix
		err error
	)
	if MatrixExt(path) == extDB {
		m, err = loadMatrixDB(path)
	} else {
		m, err = loadMatrixJSON(path)
	}
	if err != nil {
		return nil, loadErr(path, err)
	}
	return m, nil
}

// SaveMatrix writes the matrix in the format selected by the file extension.
func SaveMatrix(m *LabelMatrix, path string) error {
	if m == nil {
		return errors.New("matrix required")
	}
	if path == "" {
		return errors.New("path required")
	}

	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return errors.Wrapf(err, "failed to create dir for: %s", path)
	}

	if MatrixExt(path) == extDB {
		return saveMatrixDB(m, path)
	}
	return saveMatrixJSON(m, path)
}

func loadMatrixJSON(path string) (*LabelMatrix, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "error reading labels file")
	}

	var rows [][]float32
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, errors.Wrap(err, "error decoding labels")
	}

	return MatrixFromRows(rows)
}

func saveMatrixJSON(m *LabelMatrix, path string) error {
	b, err := json.Marshal(m.ToRows())
	if err != nil {
		return errors.Wrap(err, "failed to marshal labels")
	}
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return errors.Wrapf(err, "failed to write labels file: %s", path)
	}
	return nil
}

func loadMatrixDB(path string) (*LabelMatrix, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var rows, cols int
	if err := db.QueryRow(selectShapeSQL).Scan(&rows, &cols); err != nil {
		return nil, errors.Wrap(err, "failed to read matrix shape")
	}
	if err := checkShape(rows, cols); err != nil {
		return nil, err
	}

	m := NewLabelMatrix(rows, cols)

	res, err := db.Query(selectLabelsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query labels")
	}
	defer res.Close()

	for res.Next() {
		var (
			r, c int
			v    float64
		)
		if err := res.Scan(&r, &c, &v); err != nil {
			return nil, errors.Wrap(err, "failed to scan label row")
		}
		if r < 0 || r >= rows || c < 0 || c >= cols {
			return nil, errors.Errorf("label (%d, %d) outside of %dx%d matrix", r, c, rows, cols)
		}
		m.Set(r, c, float32(v))
	}

	if err := res.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate labels")
	}

	return m, nil
}

func checkShape(rows, cols int) error {
	if rows < 0 || cols < 0 {
		return errors.Errorf("invalid matrix shape %dx%d", rows, cols)
	}
	if cols > 0 && rows > maxMatrixCells/cols {
		return errors.Errorf("matrix shape %dx%d exceeds %d cells", rows, cols, maxMatrixCells)
	}
	return nil
}

func saveMatrixDB(m *LabelMatrix, path string) error {
	db, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()

	b, err := f.ReadFile("sql/matrix.sql")
	if err != nil {
		return errors.Wrap(err, "failed to read the schema creation file")
	}
	if _, err := db.Exec(string(b)); err != nil {
		return errors.Wrapf(err, "failed to create matrix schema in: %s", path)
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	if err := writeMatrix(tx, m); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrapf(rbErr, "failed to rollback transaction after: %v", err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	return nil
}

func writeMatrix(tx *sql.Tx, m *LabelMatrix) error {
	if _, err := tx.Exec(insertShapeSQL, m.Rows(), m.Cols()); err != nil {
		return errors.Wrap(err, "failed to save matrix shape")
	}
	if _, err := tx.Exec(deleteLabelsSQL); err != nil {
		return errors.Wrap(err, "failed to clear labels")
	}

	stmt, err := tx.Prepare(insertLabelSQL)
	if err != nil {
		return errors.Wrap(err, "failed to prepare label insert statement")
	}
	defer stmt.Close()

	for r := 0; r < m.Rows(); r++ {
		for c := 0; c < m.Cols(); c++ {
			v := m.At(r, c)
			if v == 0 {
				continue
			}
			if _, err := stmt.Exec(r, c, float64(v)); err != nil {
				return errors.Wrapf(err, "failed to insert label (%d, %d)", r, c)
			}
		}
	}
	return nil
}
