package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bombsim/internal/receipt"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <token>",
	Short: "Check a signed result receipt",
	Long: `Verifies a result receipt issued by 'bombsim run' or 'bombsim serve'
and prints the result it certifies. The signing secret is read from
BOMBSIM_SECRET and must match the one used when the receipt was issued.

Examples:
  bombsim verify eyJhbGciOiJIUzI1NiIs...`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func runVerify(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	signer := receipt.NewSigner(cfg.Receipt.Issuer, cfg.Receipt.TTL, receipt.SecretFromEnv())
	claims, err := signer.Verify(args[0])
	if err != nil {
		return err
	}

	fmt.Println("Receipt OK")
	fmt.Printf("  session   %s\n", claims.Subject)
	fmt.Printf("  level     %d\n", claims.Level)
	fmt.Printf("  outcome   %s\n", claims.Outcome)
	fmt.Printf("  score     %d (bonus %d)\n", claims.Score, claims.Bonus)
	fmt.Printf("  stars     %d\n", claims.Stars)
	fmt.Printf("  lives     %d\n", claims.Lives)
	fmt.Printf("  time left %.1fs\n", claims.TimeRemaining)
	if claims.IssuedAt != nil {
		fmt.Printf("  issued    %s\n", claims.IssuedAt.Format(time.RFC3339))
	}
	return nil
}
