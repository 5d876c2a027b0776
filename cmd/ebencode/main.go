// Command ebencode reads a triangle mesh in OFF format from standard input
// and writes a compressed EB file to standard output.
//
// Grounded on original_source/src/encode_mesh.cpp's flag contract (-x/-y/-z
// step sizes, -b uniform bits, -d duplicate removal, -s scaling, -r result
// file) and the teacher's cmd/gwebp/main.go's "read stdin, write stdout,
// diagnostics to stderr" shape, reimplemented with cobra per
// oisee-z80-optimizer/cmd/z80opt/main.go's Command+Flags() pattern.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	eb "github.com/uvic-aurora/edgebreaker-sub000"
	"github.com/uvic-aurora/edgebreaker-sub000/internal/halfedge"
	"github.com/uvic-aurora/edgebreaker-sub000/internal/offio"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		stepX, stepY, stepZ float64
		bits                int
		scale               float64
		dedup               bool
		resultPath          string
	)

	cmd := &cobra.Command{
		Use:           "ebencode",
		Short:         "Compress an OFF triangle mesh into an EB file",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			return encode(encodeConfig{
				stdin:      cmd.InOrStdin(),
				stdout:     cmd.OutOrStdout(),
				stepX:      stepX,
				stepY:      stepY,
				stepZ:      stepZ,
				bits:       bits,
				scale:      scale,
				dedup:      dedup,
				resultPath: resultPath,
			})
		},
	}
	cmd.Flags().Float64Var(&stepX, "x", 0, "x quantization step size (0 = (xmax-xmin)/256)")
	cmd.Flags().Float64Var(&stepY, "y", 0, "y quantization step size (0 = (ymax-ymin)/256)")
	cmd.Flags().Float64Var(&stepZ, "z", 0, "z quantization step size (0 = (zmax-zmin)/256)")
	cmd.Flags().IntVar(&bits, "b", 16, "uniform per-axis bit width")
	cmd.Flags().Float64Var(&scale, "s", 1, "scaling factor applied to every vertex coordinate")
	cmd.Flags().BoolVar(&dedup, "d", false, "remove duplicated vertices instead of failing")
	cmd.Flags().StringVar(&resultPath, "r", "", "write compression result information to this file")

	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		if isUsageError(err) {
			fmt.Fprintf(os.Stderr, "ebencode: %v\n", err)
			return 2
		}
		fmt.Fprintf(os.Stderr, "ebencode: %v\n", err)
		return 1
	}
	return 0
}

type encodeConfig struct {
	stdin                io.Reader
	stdout               io.Writer
	stepX, stepY, stepZ  float64
	bits                 int
	scale                float64
	dedup                bool
	resultPath           string
}

// usageError marks a fault caused by bad CLI input rather than I/O or codec
// failure, so main can choose exit code 2 instead of 1.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func isUsageError(err error) bool {
	_, ok := err.(usageError)
	return ok
}

func encode(cfg encodeConfig) error {
	if cfg.bits < 2 {
		return usageError{fmt.Errorf("bit width %d must be >= 2", cfg.bits)}
	}
	if cfg.scale <= 0 {
		return usageError{fmt.Errorf("scaling factor %g must be positive", cfg.scale)}
	}

	mesh, err := offio.Read(cfg.stdin)
	if err != nil {
		return fmt.Errorf("reading OFF mesh: %w", err)
	}

	if cfg.scale != 1 {
		for i, v := range mesh.Vertices {
			mesh.Vertices[i] = halfedge.Point3{X: v.X * cfg.scale, Y: v.Y * cfg.scale, Z: v.Z * cfg.scale}
		}
	}

	if cfg.dedup {
		mesh = dedupVertices(mesh)
	}

	steps := [3]float64{cfg.stepX, cfg.stepY, cfg.stepZ}
	fillDefaultSteps(mesh, &steps)

	opts := eb.EncodeOptions{
		Steps:     steps,
		BitWidths: [3]int{cfg.bits, cfg.bits, cfg.bits},
	}

	data, err := eb.Encode(eb.Mesh{Vertices: mesh.Vertices, Faces: mesh.Faces}, opts)
	if err != nil {
		return fmt.Errorf("encoding mesh: %w", err)
	}

	if _, err := cfg.stdout.Write(data); err != nil {
		return fmt.Errorf("writing EB file: %w", err)
	}

	if cfg.resultPath != "" {
		if err := writeResult(cfg.resultPath, mesh, opts, len(data)); err != nil {
			return fmt.Errorf("writing result file: %w", err)
		}
	}
	return nil
}

// dedupVertices collapses exactly-coincident vertices, remapping face
// indices and dropping any face that degenerates to fewer than 3 distinct
// vertices, mirroring encode_mesh.cpp's duplicate-vertex pass.
func dedupVertices(m offio.Mesh) offio.Mesh {
	firstIndex := make(map[halfedge.Point3]int, len(m.Vertices))
	remap := make([]int, len(m.Vertices))
	var unique []halfedge.Point3
	for i, v := range m.Vertices {
		if j, ok := firstIndex[v]; ok {
			remap[i] = j
			continue
		}
		j := len(unique)
		firstIndex[v] = j
		unique = append(unique, v)
		remap[i] = j
	}

	faces := make([][3]int, 0, len(m.Faces))
	for _, f := range m.Faces {
		a, b, c := remap[f[0]], remap[f[1]], remap[f[2]]
		if a == b || b == c || a == c {
			continue
		}
		faces = append(faces, [3]int{a, b, c})
	}
	return offio.Mesh{Vertices: unique, Faces: faces}
}

// fillDefaultSteps sets any zero step entry to (max-min)/256 along that
// axis, matching encode_mesh.cpp's default when -x/-y/-z are unspecified.
func fillDefaultSteps(m offio.Mesh, steps *[3]float64) {
	if len(m.Vertices) == 0 {
		return
	}
	min := m.Vertices[0]
	max := m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		if v.X < min.X {
			min.X = v.X
		}
		if v.Y < min.Y {
			min.Y = v.Y
		}
		if v.Z < min.Z {
			min.Z = v.Z
		}
		if v.X > max.X {
			max.X = v.X
		}
		if v.Y > max.Y {
			max.Y = v.Y
		}
		if v.Z > max.Z {
			max.Z = v.Z
		}
	}
	ranges := [3]float64{max.X - min.X, max.Y - min.Y, max.Z - min.Z}
	for i, r := range ranges {
		if steps[i] == 0 {
			if r == 0 {
				r = 1
			}
			steps[i] = r / 256
		}
	}
}

func writeResult(path string, m offio.Mesh, opts eb.EncodeOptions, outBytes int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%d %d %d %d %d %g %g %g\n",
		len(m.Vertices), len(m.Faces), opts.BitWidths[0], opts.BitWidths[1], outBytes,
		opts.Steps[0], opts.Steps[1], opts.Steps[2])
	return err
}
