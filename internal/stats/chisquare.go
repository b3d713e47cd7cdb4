package stats

import "math"

// ChiSquareResult holds the chi-square test of independence outcome.
type ChiSquareResult struct {
	Statistic float64
	DOF       int
	PValue    float64
}

// ChiSquareIndependence tests whether the row and column factors of an
// observed count table are independent. Expected counts come from the table
// margins; Yates continuity correction is applied when dof == 1.
//
// Rows and columns whose totals are zero carry no information and are
// dropped before testing; ErrDegenerateTable is returned when fewer than two
// informative rows or columns remain (or the table is ragged).
func ChiSquareIndependence(observed [][]int64) (ChiSquareResult, error) {
	table, err := compact(observed)
	if err != nil {
		return ChiSquareResult{}, err
	}

	rows := len(table)
	cols := len(table[0])
	rowTotals := make([]float64, rows)
	colTotals := make([]float64, cols)
	var grand float64
	for i, row := range table {
		for j, o := range row {
			v := float64(o)
			rowTotals[i] += v
			colTotals[j] += v
			grand += v
		}
	}

	dof := (rows - 1) * (cols - 1)
	yates := dof == 1

	var statistic float64
	for i, row := range table {
		for j, o := range row {
			expected := rowTotals[i] * colTotals[j] / grand
			diff := math.Abs(float64(o) - expected)
			if yates {
				diff -= 0.5
				if diff < 0 {
					diff = 0
				}
			}
			statistic += diff * diff / expected
		}
	}

	return ChiSquareResult{
		Statistic: statistic,
		DOF:       dof,
		PValue:    chiSquareSurvival(statistic, dof),
	}, nil
}

// compact drops zero-total rows and columns and validates the table shape.
func compact(observed [][]int64) ([][]int64, error) {
	if len(observed) == 0 || len(observed[0]) == 0 {
		return nil, ErrDegenerateTable
	}
	cols := len(observed[0])
	for _, row := range observed {
		if len(row) != cols {
			return nil, ErrDegenerateTable
		}
		for _, o := range row {
			if o < 0 {
				return nil, ErrDegenerateTable
			}
		}
	}

	keepRow := make([]bool, len(observed))
	keepCol := make([]bool, cols)
	for i, row := range observed {
		for j, o := range row {
			if o > 0 {
				keepRow[i] = true
				keepCol[j] = true
			}
		}
	}

	var table [][]int64
	for i, row := range observed {
		if !keepRow[i] {
			continue
		}
		var kept []int64
		for j, o := range row {
			if keepCol[j] {
				kept = append(kept, o)
			}
		}
		table = append(table, kept)
	}
	if len(table) < 2 || len(table[0]) < 2 {
		return nil, ErrDegenerateTable
	}
	return table, nil
}
