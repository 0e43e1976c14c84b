package main

import (
	"encoding/json"
	"testing"

	"github.com/praetorian-inc/sigscan/pkg/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCheck_Human(t *testing.T) {
	isolateConfig(t)
	checkFormat = "human"

	cmd, out, _ := newTestCmd()
	require.NoError(t, runCheck(cmd, []string{"48 8b ? ?? 05"}))

	want := "Signature: 48 8B ?? ?? 05\n" +
		"Length:    5 bytes\n" +
		"Wildcards: 2\n" +
		"Anchor:    48 8B at +0\n"
	assert.Equal(t, want, out.String())
}

func TestRunCheck_AllWildcards(t *testing.T) {
	isolateConfig(t)
	checkFormat = "human"

	cmd, out, _ := newTestCmd()
	require.NoError(t, runCheck(cmd, []string{"?? ??"}))
	assert.Contains(t, out.String(), "Anchor:    none\n")
}

func TestRunCheck_JSON(t *testing.T) {
	isolateConfig(t)
	checkFormat = "json"
	t.Cleanup(func() { checkFormat = "human" })

	cmd, out, _ := newTestCmd()
	require.NoError(t, runCheck(cmd, []string{"?? 01 02 03 ?? 04"}))

	var info signatureInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, "?? 01 02 03 ?? 04", info.Signature)
	assert.Equal(t, 6, info.Length)
	assert.Equal(t, 2, info.Wildcards)
	assert.Equal(t, "01 02 03", info.Anchor)
	assert.Equal(t, 1, info.AnchorIndex)
}

func TestRunCheck_Alias(t *testing.T) {
	isolateConfig(t)
	checkFormat = "human"
	configPath = writeConfig(t, "signatures:\n  health: \"89 ?? 0C\"\n")

	cmd, out, _ := newTestCmd()
	require.NoError(t, runCheck(cmd, []string{"@health"}))
	assert.Contains(t, out.String(), "Signature: 89 ?? 0C\n")
}

func TestRunCheck_Malformed(t *testing.T) {
	isolateConfig(t)
	checkFormat = "human"

	cmd, out, _ := newTestCmd()
	err := runCheck(cmd, []string{"48 8"})
	require.Error(t, err)
	assert.ErrorIs(t, err, signature.ErrMalformedSignature)
	assert.Empty(t, out.String())
}
