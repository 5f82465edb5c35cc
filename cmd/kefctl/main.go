package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kefctl",
	Short: "KEF wireless speaker control CLI",
	Long:  `A command line interface for controlling KEF wireless speakers over their TCP control port.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
