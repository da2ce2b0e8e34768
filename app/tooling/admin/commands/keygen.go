package commands

import (
	"fmt"

	"github.com/MichaelGiresi/cuneos/foundation/blockchain/keys"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

func keygenCmd() *cobra.Command {
	var exchange string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a user key pair and profile key",
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := keys.ParseExchange(exchange)
			if err != nil {
				return err
			}

			kp, err := keys.Generate(ex)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "exchange:    %s\n", ex.Name())
			fmt.Fprintf(out, "public:      %s\n", hexutil.Encode(kp.Public))
			fmt.Fprintf(out, "profile key: %s\n", hexutil.Encode(kp.ProfileKey[:]))

			return nil
		},
	}

	cmd.Flags().StringVarP(&exchange, "exchange", "e", "x25519", "Key exchange primitive: x25519 or secp256k1.")

	return cmd
}
