package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/praetorian-inc/sigscan/pkg/signature"
	"github.com/spf13/cobra"
)

var checkFormat string

var checkCmd = &cobra.Command{
	Use:   "check <signature>",
	Short: "Validate a signature",
	Long:  "Compile a signature and print its canonical form, length, wildcard count and longest exact run",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkFormat, "format", "human", "Output format: human, json")
}

// signatureInfo is the JSON shape of check output.
type signatureInfo struct {
	Signature   string `json:"signature"`
	Length      int    `json:"length"`
	Wildcards   int    `json:"wildcards"`
	Anchor      string `json:"anchor"`
	AnchorIndex int    `json:"anchor_index"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	text, err := cfg.ResolveSignature(args[0])
	if err != nil {
		return err
	}

	sig, err := signature.Compile(text)
	if err != nil {
		return fmt.Errorf("compiling signature: %w", err)
	}

	anchor, pos := sig.Anchor()
	info := signatureInfo{
		Signature:   sig.String(),
		Length:      sig.Len(),
		Wildcards:   sig.Wildcards(),
		Anchor:      formatBytes(anchor),
		AnchorIndex: pos,
	}

	out := cmd.OutOrStdout()
	if checkFormat == "json" {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(info)
	}

	fmt.Fprintf(out, "Signature: %s\n", info.Signature)
	fmt.Fprintf(out, "Length:    %d bytes\n", info.Length)
	fmt.Fprintf(out, "Wildcards: %d\n", info.Wildcards)
	if len(anchor) > 0 {
		fmt.Fprintf(out, "Anchor:    %s at +%d\n", info.Anchor, pos)
	} else {
		fmt.Fprintf(out, "Anchor:    none\n")
	}
	return nil
}

// formatBytes renders b as space-separated upper-case hex.
func formatBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = fmt.Sprintf("%02X", c)
	}
	return strings.Join(parts, " ")
}
