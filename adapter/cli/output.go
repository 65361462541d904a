package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
)

// PrintJSON writes v to the command's output as indented JSON.
func PrintJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

// PrintRaw writes reply bytes, indented when they are JSON and verbatim
// otherwise.
func PrintRaw(cmd *cobra.Command, data []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), buf.String())
	return err
}

// DescribeError prefixes host failures with their kind so system,
// contract and decode errors stay apart in terminal output.
func DescribeError(err error) error {
	switch kind := hostapi.ErrorKind(err); kind {
	case "", "other":
		return err
	default:
		return fmt.Errorf("%s error: %w", kind, err)
	}
}
