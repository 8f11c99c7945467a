package forecast

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// rankTolerance is the relative singular value (and centred column norm)
// below which a feature counts as dependent and is dropped from the fit.
const rankTolerance = 1e-9

// fitOLS fits y = intercept + x·coef by least squares. Features that are
// constant, or a linear combination of earlier ones, get a zero coefficient.
func fitOLS(x [][]float64, y []float64) (float64, []float64) {
	n := len(y)
	p := len(x[0])

	yMean := stat.Mean(y, nil)
	yCentred := make([]float64, n)
	copy(yCentred, y)
	floats.AddConst(-yMean, yCentred)

	xMean := make([]float64, p)
	columns := make([][]float64, p)
	scales := make([]float64, p)
	for j := 0; j < p; j++ {
		col := make([]float64, n)
		for i := range x {
			col[i] = x[i][j]
		}
		scales[j] = floats.Norm(col, 2)
		xMean[j] = stat.Mean(col, nil)
		floats.AddConst(-xMean[j], col)
		columns[j] = col
	}

	coef := make([]float64, p)
	kept := independentColumns(columns, scales)
	if len(kept) > 0 {
		design := mat.NewDense(n, len(kept), nil)
		for k, j := range kept {
			design.SetCol(k, columns[j])
		}

		var qr mat.QR
		qr.Factorize(design)
		var beta mat.Dense
		if err := qr.SolveTo(&beta, false, mat.NewVecDense(n, yCentred)); err == nil {
			for k, j := range kept {
				coef[j] = beta.At(k, 0)
			}
		}
	}

	return yMean - floats.Dot(coef, xMean), coef
}

// independentColumns returns, in order, the indexes of the centred columns
// that add a new direction to the ones kept before them. scales holds the
// norm of each column before centring.
func independentColumns(columns [][]float64, scales []float64) []int {
	var (
		kept  []int
		basis [][]float64
	)
	for j, col := range columns {
		norm := floats.Norm(col, 2)
		if norm == 0 || norm <= rankTolerance*scales[j] {
			continue
		}
		unit := make([]float64, len(col))
		floats.ScaleTo(unit, 1/norm, col)

		candidate := append(basis[:len(basis):len(basis)], unit)
		if matrixRank(candidate) == len(candidate) {
			basis = candidate
			kept = append(kept, j)
		}
	}
	return kept
}

func matrixRank(columns [][]float64) int {
	m := mat.NewDense(len(columns[0]), len(columns), nil)
	for k, col := range columns {
		m.SetCol(k, col)
	}
	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDNone) {
		return 0
	}
	return svd.Rank(rankTolerance)
}
