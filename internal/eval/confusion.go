// Package eval computes classification agreement statistics: the confusion
// matrix, overall accuracy, and Cohen's kappa.
package eval

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a K x K confusion matrix over a fixed ordered code set. Rows are
// true classes, columns predicted classes.
type Matrix struct {
	codes []int
	index map[int]int
	m     *mat.Dense
}

// Confusion tallies true vs. predicted labels into a confusion matrix over
// the given ordered class codes. Labels outside the code set are a data
// error.
func Confusion(truth, pred []int, codes []int) (*Matrix, error) {
	if len(truth) != len(pred) {
		return nil, eris.Errorf("eval: %d true labels vs %d predictions", len(truth), len(pred))
	}
	if len(truth) == 0 {
		return nil, eris.New("eval: no labels to evaluate")
	}
	if len(codes) == 0 {
		return nil, eris.New("eval: empty code set")
	}

	index := make(map[int]int, len(codes))
	for i, c := range codes {
		if _, dup := index[c]; dup {
			return nil, eris.Errorf("eval: duplicate code %d", c)
		}
		index[c] = i
	}

	k := len(codes)
	m := mat.NewDense(k, k, nil)
	for i := range truth {
		ti, ok := index[truth[i]]
		if !ok {
			return nil, eris.Errorf("eval: true label %d not in code set", truth[i])
		}
		pi, ok := index[pred[i]]
		if !ok {
			return nil, eris.Errorf("eval: predicted label %d not in code set", pred[i])
		}
		m.Set(ti, pi, m.At(ti, pi)+1)
	}
	return &Matrix{codes: codes, index: index, m: m}, nil
}

// Total returns the number of evaluated label pairs.
func (cm *Matrix) Total() float64 {
	return mat.Sum(cm.m)
}

// At returns the count of records with the given true and predicted codes.
func (cm *Matrix) At(trueCode, predCode int) float64 {
	return cm.m.At(cm.index[trueCode], cm.index[predCode])
}

// Accuracy is the fraction of correctly classified records: trace over total.
func (cm *Matrix) Accuracy() float64 {
	return mat.Trace(cm.m) / cm.Total()
}

// Kappa is Cohen's chance-corrected agreement coefficient,
// (po - pe) / (1 - pe), where pe is the expected agreement from the row and
// column marginals. Returns 1 when chance agreement is already perfect.
func (cm *Matrix) Kappa() float64 {
	n := cm.Total()
	po := mat.Trace(cm.m) / n

	k := len(cm.codes)
	pe := 0.0
	for i := 0; i < k; i++ {
		rowSum := mat.Sum(cm.m.RowView(i))
		colSum := mat.Sum(cm.m.ColView(i))
		pe += (rowSum / n) * (colSum / n)
	}
	if pe == 1 {
		return 1
	}
	return (po - pe) / (1 - pe)
}

// String renders the matrix with code headers, for logging.
func (cm *Matrix) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%8s", "true\\pred")
	for _, c := range cm.codes {
		fmt.Fprintf(&b, "%8d", c)
	}
	b.WriteByte('\n')
	for i, c := range cm.codes {
		fmt.Fprintf(&b, "%8d", c)
		for j := range cm.codes {
			fmt.Fprintf(&b, "%8.0f", cm.m.At(i, j))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Counts returns the matrix as a K x K slice of counts in code order.
func (cm *Matrix) Counts() [][]int {
	k := len(cm.codes)
	out := make([][]int, k)
	for i := 0; i < k; i++ {
		out[i] = make([]int, k)
		for j := 0; j < k; j++ {
			out[i][j] = int(cm.m.At(i, j))
		}
	}
	return out
}

// Codes returns the ordered code set the matrix is indexed by.
func (cm *Matrix) Codes() []int { return cm.codes }
