package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"path"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/stamp-indexer/common"
	"github.com/gaze-network/stamp-indexer/pkg/stackstx"
	"github.com/spf13/cobra"
)

type generateKeyCmdOptions struct {
	Path string
}

func NewGenerateKeyCommand() *cobra.Command {
	opts := &generateKeyCmdOptions{}

	cmd := &cobra.Command{
		Use:   "generate-faucet-key",
		Short: "Generate a new private key for the faucet wallet and print its addresses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateKeyHandler(opts, cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Path, "path", "", `Directory to save the private key file to. Printed only when empty`)

	return cmd
}

func generateKeyHandler(opts *generateKeyCmdOptions, cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	privKey, err := btcec.NewPrivateKey()
	if err != nil {
		return errors.Wrap(err, "can't generate private key")
	}
	// compressed public key marker
	privKeyHex := hex.EncodeToString(append(privKey.Serialize(), 0x01))

	for _, network := range []common.Network{common.NetworkTestnet, common.NetworkMainnet} {
		signer, err := stackstx.NewSigner(privKeyHex, network)
		if err != nil {
			return errors.Wrapf(err, "can't derive %s address", network)
		}
		fmt.Fprintf(out, "%s address: %s\n", network, signer.Address())
	}

	if opts.Path == "" {
		fmt.Fprintf(out, "Private key: %s\n", privKeyHex)
		return nil
	}

	if err := os.MkdirAll(opts.Path, 0o700); err != nil {
		return errors.Wrap(err, "create directory")
	}
	privateKeyPath := path.Join(opts.Path, "faucet.key")

	if _, err := os.Stat(privateKeyPath); err == nil {
		fmt.Fprintf(out, "Existing private key found at %s\n[WARNING] THE EXISTING PRIVATE KEY WILL BE LOST\nType [replace] to replace existing private key: ", privateKeyPath)
		var ans string
		_, _ = fmt.Fscanln(cmd.InOrStdin(), &ans)
		if ans != "replace" {
			fmt.Fprintln(out, "Key generation aborted")
			return nil
		}
	}

	if err := os.WriteFile(privateKeyPath, []byte(privKeyHex), 0o600); err != nil {
		return errors.Wrap(err, "write private key file")
	}
	fmt.Fprintf(out, "Private key saved at %s, set it as `faucet.private_key`\n", privateKeyPath)
	return nil
}
