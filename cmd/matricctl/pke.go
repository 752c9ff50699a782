package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"matric-memory/internal/pke"
)

var (
	pkeKeyPath    string
	pkePassphrase string
)

var pkeCmd = &cobra.Command{
	Use:   "pke",
	Short: "Manage public-key-encryption recipient keys",
}

var pkeKeygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new recipient keypair and print its address",
	RunE: func(cmd *cobra.Command, args []string) error {
		pub, err := pke.GenerateKeypairFile(pkeKeyPath, pkePassphrase)
		if err != nil {
			return fmt.Errorf("generate keypair: %w", err)
		}
		fmt.Printf("private key written to %s\n", pkeKeyPath)
		fmt.Printf("address: %s\n", pke.ToAddress(*pub))
		return nil
	},
}

var pkeUnlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Unlock a private key file and print its address, verifying the passphrase",
	RunE: func(cmd *cobra.Command, args []string) error {
		priv, err := pke.LoadPrivateKey(pkeKeyPath, pkePassphrase)
		if err != nil {
			return fmt.Errorf("unlock key: %w", err)
		}
		pub, err := pke.PublicFromPrivate(priv)
		if err != nil {
			return fmt.Errorf("derive public key: %w", err)
		}
		fmt.Printf("address: %s\n", pke.ToAddress(pub))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{pkeKeygenCmd, pkeUnlockCmd} {
		c.Flags().StringVar(&pkeKeyPath, "key", "", "path to the private key file")
		c.Flags().StringVar(&pkePassphrase, "passphrase", "", "passphrase protecting the key file")
		_ = c.MarkFlagRequired("key")
		_ = c.MarkFlagRequired("passphrase")
	}
	pkeCmd.AddCommand(pkeKeygenCmd, pkeUnlockCmd)
}
