package main

import (
	"runtime"

	"github.com/spf13/cobra"
)

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the logspectre version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("logspectre %s\n", version)
			cmd.Printf("built with %s for %s/%s\n",
				runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
