package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fzft/go-resp/resp"
)

var (
	decodeTree   bool
	encodeEscape bool
)

func init() {
	DecodeCmd.Flags().BoolVar(&decodeTree, "tree", false, "Dump every frame as a typed tree")
	EncodeCmd.Flags().BoolVar(&encodeEscape, "escape", false, "Print the encoded bytes as a quoted Go string")
}

var DecodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode RESP frames from stdin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := outputMode(rawOutput, noRawOutput, jsonOutput)
		return decodeStream(cmd.InOrStdin(), cmd.OutOrStdout(), mode, decodeTree)
	},
}

var EncodeCmd = &cobra.Command{
	Use:   "encode cmd [arg [arg ...]]",
	Short: "Write a command as a RESP array of bulk strings",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wire := resp.Encode(resp.Command(args[0], args[1:]...))
		if encodeEscape {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%q\n", wire)
			return err
		}
		_, err := cmd.OutOrStdout().Write(wire)
		return err
	},
}

// decodeStream prints every frame read from r until EOF. A stream cut in the
// middle of a frame, or a malformed frame, is an error.
func decodeStream(r io.Reader, w io.Writer, mode OutputMode, tree bool) error {
	rd := resp.NewReader(r, nil)
	for {
		f, err := rd.ReadFrame()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if tree {
			if err := resp.Fprint(w, f); err != nil {
				return err
			}
			continue
		}
		out, err := formatReply(f, mode)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, out); err != nil {
			return err
		}
	}
}
