package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var lanes int

func main() {
	root := &cobra.Command{
		Use:   "dagflow",
		Short: "Drive the dagflow graph-transformation engine against a YAML graph file",
	}
	root.PersistentFlags().IntVar(&lanes, "lanes", 0, "worker crew size (0 = runtime.NumCPU())")

	root.AddCommand(buildCmd(), mapreduceCmd(), partitionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
