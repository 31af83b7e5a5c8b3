package data

import (
	"github.com/pkg/errors"
)

// MembershipThreshold is the strength above which a record carries a category.
const MembershipThreshold = 0.5

// LabelMatrix is a dense record x category matrix of membership strengths.
type LabelMatrix struct {
	rows   int
	cols   int
	values []float32
}

// NewLabelMatrix creates a zeroed matrix.
func NewLabelMatrix(rows, cols int) *LabelMatrix {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return &LabelMatrix{
		rows:   rows,
		cols:   cols,
		values: make([]float32, rows*cols),
	}
}

// MatrixFromRows builds a matrix from row slices. All rows must have the
// same length.
func MatrixFromRows(rows [][]float32) (*LabelMatrix, error) {
	if len(rows) == 0 {
		return NewLabelMatrix(0, 0), nil
	}

	cols := len(rows[0])
	m := NewLabelMatrix(len(rows), cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, errors.Errorf("row %d has %d columns, expected %d", i, len(r), cols)
		}
		copy(m.values[i*cols:(i+1)*cols], r)
	}
	return m, nil
}

func (m *LabelMatrix) Rows() int { return m.rows }

func (m *LabelMatrix) Cols() int { return m.cols }

// At returns the strength at (row, col).
func (m *LabelMatrix) At(row, col int) float32 {
	return m.values[row*m.cols+col]
}

// Set assigns the strength at (row, col).
func (m *LabelMatrix) Set(row, col int, v float32) {
	m.values[row*m.cols+col] = v
}

// Has reports whether the record at row carries the category at col.
func (m *LabelMatrix) Has(row, col int) bool {
	return m.At(row, col) > MembershipThreshold
}

// Count returns the number of records carrying the category at col.
func (m *LabelMatrix) Count(col int) int {
	n := 0
	for r := 0; r < m.rows; r++ {
		if m.Has(r, col) {
			n++
		}
	}
	return n
}

// Clone returns an independent copy.
func (m *LabelMatrix) Clone() *LabelMatrix {
	c := &LabelMatrix{
		rows:   m.rows,
		cols:   m.cols,
		values: make([]float32, len(m.values)),
	}
	copy(c.values, m.values)
	return c
}

// ToRows returns the matrix as row slices.
func (m *LabelMatrix) ToRows() [][]float32 {
	list := make([][]float32, m.rows)
	for r := 0; r < m.rows; r++ {
		row := make([]float32, m.cols)
		copy(row, m.values[r*m.cols:(r+1)*m.cols])
		list[r] = row
	}
	return list
}
