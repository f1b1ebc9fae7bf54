package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/kushal2060/charity-ledger-go/pkg/donations"
	"github.com/kushal2060/charity-ledger-go/pkg/merkle"
	"github.com/kushal2060/charity-ledger-go/pkg/types"
)

// Offline proof checker: verifies that a proof file recomputes its claimed
// root. It does not know whether that root is a charity's current root; use
// the server's verify endpoint for the full two-part check.
func main() {
	app := &cli.App{
		Name:      "verify-proof",
		Usage:     "Statically verify a merkle inclusion proof from a JSON file",
		ArgsUsage: "<proof-file>",
		Action:    runVerify,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func runVerify(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one proof file argument")
	}

	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to read proof file: %w", err)
	}

	var payload types.ProofPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("failed to parse proof file: %w", err)
	}

	proof, err := donations.ProofFromPayload(&payload)
	if err != nil {
		return err
	}

	if !merkle.VerifyProof(proof) {
		fmt.Printf("INVALID: proof for leaf index %d does not recompute root %s\n", proof.Index, proof.Root)
		os.Exit(1)
	}

	fmt.Printf("VALID: leaf index %d recomputes root %s\n", proof.Index, proof.Root)
	return nil
}
