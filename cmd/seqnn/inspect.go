package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/born-ml/seqnn/internal/serialization"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.safetensors>",
		Short: "List the tensors and metadata of a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, meta, err := serialization.InspectSafeTensors(args[0])
			if err != nil {
				return err
			}
			renderTensorInfos(cmd.OutOrStdout(), infos, meta)
			return nil
		},
	}
}

func renderTensorInfos(w io.Writer, infos []serialization.TensorInfo, meta map[string]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"NAME", "DTYPE", "SHAPE", "BYTES"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")

	var total int64
	for _, info := range infos {
		table.Append([]string{
			info.Name,
			info.DType,
			fmt.Sprint(info.Shape),
			strconv.FormatInt(info.Size(), 10),
		})
		total += info.Size()
	}
	table.Render()
	fmt.Fprintf(w, "\n%d tensors, %d bytes\n", len(infos), total)

	if len(meta) == 0 {
		return
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(w, "\nmetadata:")
	for _, k := range keys {
		value := meta[k]
		if len(value) > 64 {
			value = fmt.Sprintf("%s... (%d bytes)", value[:61], len(meta[k]))
		}
		fmt.Fprintf(w, "  %s = %s\n", k, value)
	}
}
