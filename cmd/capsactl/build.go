package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	capsa "github.com/capsara/capsa-go"
	"github.com/capsara/capsa-go/internal/collab"
)

func newBuildCmd() *cobra.Command {
	var creatorID, creatorKeyPath, subject, body, outDir string
	var recipientSpecs, filePaths []string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a capsa from files on disk and write it to an output directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			creatorPriv, err := os.ReadFile(creatorKeyPath)
			if err != nil {
				return fmt.Errorf("read creator key: %w", err)
			}

			dir := collab.NewMemoryDirectory()
			var recipientIDs []string
			for _, spec := range recipientSpecs {
				id, pubPath, ok := strings.Cut(spec, "=")
				if !ok {
					return fmt.Errorf("invalid --recipient %q, want id=path/to/pub.pem", spec)
				}
				pub, err := os.ReadFile(pubPath)
				if err != nil {
					return fmt.Errorf("read recipient %s key: %w", id, err)
				}
				dir.Add(capsa.PartyKey{PartyID: id, PublicKeyPEM: string(pub)})
				recipientIDs = append(recipientIDs, id)
			}

			var files []capsa.File
			for _, path := range filePaths {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read file %s: %w", path, err)
				}
				files = append(files, capsa.File{Filename: filepath.Base(path), Data: data})
			}

			payload := capsa.Payload{Files: files}
			if subject != "" {
				payload.Subject = &subject
			}
			if body != "" {
				payload.Body = &body
			}

			built, err := capsa.Build(context.Background(), capsa.BuildInput{
				CreatorPartyID:       creatorID,
				CreatorPrivateKeyPEM: string(creatorPriv),
				Payload:              payload,
				Recipients:           recipientIDs,
				Directory:            dir,
			})
			if err != nil {
				return fmt.Errorf("build: %w", err)
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", outDir, err)
			}

			recordJSON, err := json.MarshalIndent(built.Capsa, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal capsa record: %w", err)
			}
			if err := os.WriteFile(filepath.Join(outDir, "capsa.json"), recordJSON, 0o644); err != nil {
				return fmt.Errorf("write capsa.json: %w", err)
			}

			for _, fp := range built.Files {
				path := filepath.Join(outDir, fp.FileID+".bin")
				if err := os.WriteFile(path, fp.EncryptedBytes, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
			}

			fmt.Printf("wrote %s with %d file(s)\n", outDir, len(built.Files))
			return nil
		},
	}

	cmd.Flags().StringVar(&creatorID, "creator-id", "", "creator party id (required)")
	cmd.Flags().StringVar(&creatorKeyPath, "creator-key", "", "path to creator's private key PEM (required)")
	cmd.Flags().StringArrayVar(&recipientSpecs, "recipient", nil, "recipient as id=path/to/pub.pem, repeatable")
	cmd.Flags().StringArrayVar(&filePaths, "file", nil, "file to include, repeatable")
	cmd.Flags().StringVar(&subject, "subject", "", "plaintext subject")
	cmd.Flags().StringVar(&body, "body", "", "plaintext body")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (required)")
	cmd.MarkFlagRequired("creator-id")
	cmd.MarkFlagRequired("creator-key")
	cmd.MarkFlagRequired("out")
	return cmd
}
