package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckFlagsCoreImportingTransport(t *testing.T) {
	packages := []packageInfo{
		{ImportPath: modulePath + "/internal/world", Imports: []string{"math", modulePath + "/internal/render"}},
		{ImportPath: modulePath + "/internal/sim", Imports: []string{modulePath + "/internal/world", modulePath + "/logging", modulePath + "/internal/net/proto"}},
		{ImportPath: modulePath + "/internal/render", Imports: []string{modulePath + "/internal/sim", "github.com/ajstarks/svgo"}},
		{ImportPath: modulePath + "/internal/net", Imports: []string{modulePath}},
	}

	violations := check(packages, rules)
	require.Equal(t, []string{
		modulePath + "/internal/sim -> " + modulePath + "/internal/net/proto",
		modulePath + "/internal/world -> " + modulePath + "/internal/render",
	}, violations)
}

func TestWithinMatchesWholeSegments(t *testing.T) {
	require.True(t, within(modulePath+"/internal/world", modulePath+"/internal/world"))
	require.True(t, within(modulePath+"/internal/world/sub", modulePath+"/internal/world"))
	require.False(t, within(modulePath+"/internal/worldly", modulePath+"/internal/world"))
}
