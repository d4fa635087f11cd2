package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/c360studio/dicom2rdf/archive"
	"github.com/c360studio/dicom2rdf/document"
)

func peekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "peek [file]",
		Short: "Print the attribute tree of a DICOM file or tar.zst archive",
		Long: `Prints every attribute of a DICOM document with its tag, VR and value,
indenting sequence items. Reads standard input when no file is given.
Input starting with the zstd magic is treated as a tar.zst archive and the
first file inside it is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return peek(in, cmd.OutOrStdout())
		},
	}
}

func peek(in io.Reader, out io.Writer) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if archive.IsZstd(data) {
		if _, data, err = archive.ReadFirst(bytes.NewReader(data)); err != nil {
			return err
		}
	}

	node, err := document.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return err
	}
	return document.Dump(out, node)
}
