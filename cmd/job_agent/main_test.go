package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"run", "watch", "profile", "review"} {
		assert.True(t, names[want], "command %q not registered", want)
	}
}

func TestProfileSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range profileCommand.Commands() {
		names[cmd.Name()] = true
	}
	assert.True(t, names["intake"])
	assert.True(t, names["confirm"])
	assert.True(t, names["show"])
}

func TestReviewSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range reviewCommand.Commands() {
		names[cmd.Name()] = true
	}
	assert.True(t, names["approve"])
	assert.True(t, names["reject"])
	assert.True(t, names["jobs"])
}

func TestIntakeFlags(t *testing.T) {
	require.NotNil(t, profileIntakeCommand.Flags().Lookup("resume"))
	require.NotNil(t, profileIntakeCommand.Flags().Lookup("answers"))
}
