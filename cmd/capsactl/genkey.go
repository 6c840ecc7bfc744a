package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	capsa "github.com/capsara/capsa-go"
)

func newGenkeyCmd() *cobra.Command {
	var sizeBits int
	var outPrefix string

	cmd := &cobra.Command{
		Use:   "genkey",
		Short: "Generate an RSA-4096 key pair for use as a party identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			pubPEM, privPEM, fingerprint, err := capsa.GenerateKeypair(sizeBits)
			if err != nil {
				return fmt.Errorf("generate key pair: %w", err)
			}

			if outPrefix == "" {
				fmt.Println(pubPEM)
				fmt.Println(privPEM)
				fmt.Println("fingerprint:", fingerprint)
				return nil
			}

			pubPath := outPrefix + ".pub.pem"
			privPath := outPrefix + ".key.pem"
			if err := os.WriteFile(pubPath, []byte(pubPEM), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", pubPath, err)
			}
			if err := os.WriteFile(privPath, []byte(privPEM), 0o600); err != nil {
				return fmt.Errorf("write %s: %w", privPath, err)
			}
			fmt.Printf("wrote %s, %s\nfingerprint: %s\n", pubPath, privPath, fingerprint)
			return nil
		},
	}

	cmd.Flags().IntVar(&sizeBits, "bits", 4096, "RSA modulus size in bits (minimum 4096)")
	cmd.Flags().StringVar(&outPrefix, "out", "", "write PEM files to <out>.pub.pem / <out>.key.pem instead of stdout")
	return cmd
}
