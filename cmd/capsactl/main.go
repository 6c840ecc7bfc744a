// Command capsactl is an operator-facing tool built on top of the capsa
// core: generate key pairs, fingerprint a public key, build a capsa from
// files on disk, and unwrap one back to plaintext. It exists the way the
// library ships an ad hoc CLI alongside its public API for manual and CI
// probing, not as a replacement for a real integration.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "capsactl",
		Short: "Inspect and exercise the capsa envelope format from the command line",
	}

	root.AddCommand(newGenkeyCmd())
	root.AddCommand(newFingerprintCmd())
	root.AddCommand(newBuildCmd())
	root.AddCommand(newUnwrapCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "capsactl:", err)
		os.Exit(1)
	}
}
