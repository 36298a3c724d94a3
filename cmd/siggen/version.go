package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/tphakala/simd/cpu"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and SIMD support",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "siggen %s\n", version)
			_, _ = fmt.Fprintf(out, "  %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			_, _ = fmt.Fprintf(out, "  SIMD: %s\n", cpu.Info())
		},
	}
}
