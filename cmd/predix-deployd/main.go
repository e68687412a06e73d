package main

import (
	"fmt"
	"os"

	"github.com/predixlabs/predix-deploy/internal/cli"
)

// predix-deployd is the daemon entrypoint: it runs the serve command
// directly so systemd units don't need the subcommand.
func main() {
	rootCmd := cli.NewRootCmd()
	rootCmd.SetArgs(append([]string{"serve"}, os.Args[1:]...))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
