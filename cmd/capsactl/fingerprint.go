package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	capsa "github.com/capsara/capsa-go"
)

func newFingerprintCmd() *cobra.Command {
	var pubPath string

	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the SHA-256 fingerprint of a PEM-encoded public key",
		RunE: func(cmd *cobra.Command, args []string) error {
			pem, err := os.ReadFile(pubPath)
			if err != nil {
				return fmt.Errorf("read %s: %w", pubPath, err)
			}
			fp, err := capsa.Fingerprint(string(pem))
			if err != nil {
				return fmt.Errorf("fingerprint: %w", err)
			}
			fmt.Println(fp)
			return nil
		},
	}

	cmd.Flags().StringVar(&pubPath, "pub", "", "path to a PEM-encoded public key (required)")
	cmd.MarkFlagRequired("pub")
	return cmd
}
