package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	capsa "github.com/capsara/capsa-go"
)

func newUnwrapCmd() *cobra.Command {
	var capsaDir, partyID, privKeyPath, creatorPubPath, outDir string

	cmd := &cobra.Command{
		Use:   "unwrap",
		Short: "Verify and decrypt a capsa directory written by 'build'",
		RunE: func(cmd *cobra.Command, args []string) error {
			recordJSON, err := os.ReadFile(filepath.Join(capsaDir, "capsa.json"))
			if err != nil {
				return fmt.Errorf("read capsa.json: %w", err)
			}
			var record capsa.Capsa
			if err := json.Unmarshal(recordJSON, &record); err != nil {
				return fmt.Errorf("parse capsa.json: %w", err)
			}

			priv, err := os.ReadFile(privKeyPath)
			if err != nil {
				return fmt.Errorf("read private key: %w", err)
			}
			creatorPub, err := os.ReadFile(creatorPubPath)
			if err != nil {
				return fmt.Errorf("read creator public key: %w", err)
			}

			decrypted, err := capsa.VerifyAndUnwrap(context.Background(), record, string(priv),
				capsa.WithPartyID(partyID),
				capsa.WithExpectedCreatorKey(string(creatorPub)),
			)
			if err != nil {
				return fmt.Errorf("verify and unwrap: %w", err)
			}
			defer decrypted.ClearDeferred()()

			if decrypted.Subject != nil {
				fmt.Println("subject:", *decrypted.Subject)
			}
			if decrypted.Body != nil {
				fmt.Println("body:", *decrypted.Body)
			}

			if outDir != "" {
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return fmt.Errorf("create %s: %w", outDir, err)
				}
			}

			for _, rec := range record.Files {
				filename, err := decrypted.DecryptFilename(rec)
				if err != nil {
					return fmt.Errorf("decrypt filename for %s: %w", rec.FileID, err)
				}
				ciphertext, err := os.ReadFile(filepath.Join(capsaDir, rec.FileID+".bin"))
				if err != nil {
					return fmt.Errorf("read %s.bin: %w", rec.FileID, err)
				}
				plaintext, err := decrypted.DecryptFile(rec, ciphertext)
				if err != nil {
					return fmt.Errorf("decrypt file %s: %w", filename, err)
				}
				fmt.Printf("file: %s (%d bytes)\n", filename, len(plaintext))

				if outDir != "" {
					if err := os.WriteFile(filepath.Join(outDir, filename), plaintext, 0o644); err != nil {
						return fmt.Errorf("write %s: %w", filename, err)
					}
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&capsaDir, "capsa", "", "directory written by 'build' (required)")
	cmd.Flags().StringVar(&partyID, "party-id", "", "recipient party id (required)")
	cmd.Flags().StringVar(&privKeyPath, "priv", "", "path to recipient's private key PEM (required)")
	cmd.Flags().StringVar(&creatorPubPath, "creator-pub", "", "path to the creator's public key PEM (required)")
	cmd.Flags().StringVar(&outDir, "out", "", "directory to write decrypted files into")
	cmd.MarkFlagRequired("capsa")
	cmd.MarkFlagRequired("party-id")
	cmd.MarkFlagRequired("priv")
	cmd.MarkFlagRequired("creator-pub")
	return cmd
}
