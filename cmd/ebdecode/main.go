// Command ebdecode reads a compressed EB file from standard input and
// writes the reconstructed triangle mesh in OFF format to standard output.
//
// Grounded on original_source/src/decode_mesh.cpp's "read EB from stdin,
// write OFF to stdout, -r result file" contract, reimplemented with cobra
// per oisee-z80-optimizer/cmd/z80opt/main.go's Command+Flags() pattern.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	eb "github.com/uvic-aurora/edgebreaker-sub000"
	"github.com/uvic-aurora/edgebreaker-sub000/internal/offio"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var resultPath string

	cmd := &cobra.Command{
		Use:           "ebdecode",
		Short:         "Decompress an EB file into an OFF triangle mesh",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			return decode(decodeConfig{
				stdin:      cmd.InOrStdin(),
				stdout:     cmd.OutOrStdout(),
				resultPath: resultPath,
			})
		},
	}
	cmd.Flags().StringVar(&resultPath, "r", "", "write decompression result information to this file")

	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ebdecode: %v\n", err)
		return 1
	}
	return 0
}

type decodeConfig struct {
	stdin      io.Reader
	stdout     io.Writer
	resultPath string
}

func decode(cfg decodeConfig) error {
	data, err := io.ReadAll(cfg.stdin)
	if err != nil {
		return fmt.Errorf("reading EB file: %w", err)
	}

	mesh, err := eb.Decode(data)
	if err != nil {
		return fmt.Errorf("decoding mesh: %w", err)
	}

	if err := offio.Write(cfg.stdout, offio.Mesh{Vertices: mesh.Vertices, Faces: mesh.Faces}); err != nil {
		return fmt.Errorf("writing OFF mesh: %w", err)
	}

	if cfg.resultPath != "" {
		if err := writeResult(cfg.resultPath, mesh, len(data)); err != nil {
			return fmt.Errorf("writing result file: %w", err)
		}
	}
	return nil
}

func writeResult(path string, mesh eb.Mesh, inBytes int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%d %d %d\n", len(mesh.Vertices), len(mesh.Faces), inBytes)
	return err
}
