// Command polyproj projects a polytope described in a JSON file onto the
// plane and prints the resulting polygon.
//
// The input file holds the halfspace description and the affine map:
//
//	{
//	  "A": [[1, 0], [-1, 0], [0, 1], [0, -1]],
//	  "b": [1, 1, 1, 1],
//	  "C": [[1, -1]],
//	  "d": [0],
//	  "E": [[1, 0], [0, 1]],
//	  "f": [0, 0]
//	}
//
// C, d and f are optional. E defaults to the identity when the polytope is
// already two-dimensional.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/akmonengine/polyproj"
	"github.com/akmonengine/polyproj/draw"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/logrusorgru/aurora"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	input     = kingpin.Arg("input", "JSON file with the polytope and projection.").Required().String()
	tolerance = kingpin.Flag("tolerance", "Pending-area bound for convergence.").Default("1e-5").Float64()
	maxIter   = kingpin.Flag("max-iter", "Cap on refinement insertions.").Default("1000").Int()
	maxRadius = kingpin.Flag("max-radius", "Bounding box half-width for unbounded inputs (0 disables).").Default("0").Float64()
	workers   = kingpin.Flag("workers", "Concurrency of the initialization probes.").Default("1").Int()
	pngPath   = kingpin.Flag("png", "Write the polygon to this PNG file.").String()
)

type inputFile struct {
	A [][]float64 `json:"A"`
	B []float64   `json:"b"`
	C [][]float64 `json:"C"`
	D []float64   `json:"d"`
	E [][]float64 `json:"E"`
	F []float64   `json:"f"`
}

func main() {
	kingpin.Parse()

	polytope, projection, err := readInput(*input)
	if err != nil {
		fatal(err)
	}

	result, err := polyproj.Project(polytope, projection, polyproj.Options{
		Tolerance:     *tolerance,
		MaxIterations: *maxIter,
		MaxRadius:     *maxRadius,
		Workers:       *workers,
	})
	if err != nil {
		fatal(err)
	}

	report(result)

	if *pngPath != "" {
		if err := draw.SavePNG(*pngPath, result.Vertices, draw.DefaultStyle()); err != nil {
			fatal(err)
		}
		fmt.Printf("wrote %s\n", *pngPath)
	}
}

func readInput(path string) (polyproj.Polytope, polyproj.ProjectionMap, error) {
	var polytope polyproj.Polytope
	var projection polyproj.ProjectionMap

	raw, err := os.ReadFile(path)
	if err != nil {
		return polytope, projection, err
	}
	var in inputFile
	if err := json.Unmarshal(raw, &in); err != nil {
		return polytope, projection, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(in.A) == 0 {
		return polytope, projection, fmt.Errorf("%s: field A must have at least one row", path)
	}

	polytope.A, err = denseFromRows(in.A, "A")
	if err != nil {
		return polytope, projection, err
	}
	polytope.B = in.B
	if len(in.C) > 0 {
		polytope.C, err = denseFromRows(in.C, "C")
		if err != nil {
			return polytope, projection, err
		}
		polytope.D = in.D
	}

	if len(in.E) == 0 {
		n := len(in.A[0])
		if n != 2 {
			return polytope, projection, fmt.Errorf("%s: E is required for %d-dimensional input", path, n)
		}
		projection.E = mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	} else {
		projection.E, err = denseFromRows(in.E, "E")
		if err != nil {
			return polytope, projection, err
		}
	}
	if len(in.F) == 2 {
		projection.F = mgl64.Vec2{in.F[0], in.F[1]}
	} else if len(in.F) != 0 {
		return polytope, projection, fmt.Errorf("%s: f must have exactly two entries", path)
	}

	return polytope, projection, nil
}

func denseFromRows(rows [][]float64, name string) (*mat.Dense, error) {
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("matrix %s: row %d has %d entries, want %d", name, i, len(row), cols)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}

func report(result *polyproj.Result) {
	switch result.Status {
	case polyproj.Converged:
		fmt.Println(aurora.Green(result.Status))
	case polyproj.IterationCapped:
		fmt.Println(aurora.Yellow(result.Status))
	default:
		fmt.Println(aurora.Cyan(result.Status))
	}
	fmt.Printf("%d vertices, %d insertions, residual area %.3g\n",
		len(result.Vertices), result.Iterations, result.TotalPending)
	for _, v := range result.Vertices {
		fmt.Printf("  % .9g % .9g\n", v[0], v[1])
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, aurora.Red("error:"), err)
	os.Exit(1)
}
