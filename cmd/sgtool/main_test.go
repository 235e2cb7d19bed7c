package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/sharedgroups/internal/core/catalog"
)

const lampYAML = `version: 1
root:
  name: Lamp
  components:
    transform: {}
    mesh:
      texture: lamp.png
  children:
    - name: Bulb
      components:
        transform: {}
        light:
          intensity: 0.1
`

func writeFixture(t *testing.T) (configPath, groupPath string) {
	t.Helper()
	dir := t.TempDir()
	groupPath = filepath.Join(dir, "lamp.yaml")
	require.NoError(t, os.WriteFile(groupPath, []byte(lampYAML), 0o644))

	cfg := fmt.Sprintf(`log:
  level: error
groups:
  - %s
scenes:
  - id: 1
    name: main
    instances:
      - group: %s
        count: 2
`, groupPath, groupPath)
	configPath = filepath.Join(dir, "sgtool.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o644))
	return configPath, groupPath
}

func TestRunPrintsDefinitionAndInstances(t *testing.T) {
	configPath, groupPath := writeFixture(t)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out, options{config: configPath, set: "mesh.texture=brass.png"}))

	text := out.String()
	assert.Contains(t, text, "# group "+groupPath)
	assert.Contains(t, text, "brass.png")
	assert.Equal(t, 2, strings.Count(text, "# scene 1 instance"))
	assert.Contains(t, text, "# scene 1 instance 1 "+groupPath)
	assert.Contains(t, text, "# scene 1 instance 2 "+groupPath)

	onDisk, err := os.ReadFile(groupPath)
	require.NoError(t, err)
	assert.NotContains(t, string(onDisk), "brass.png")
}

func TestRunSavesModifiedGroups(t *testing.T) {
	configPath, groupPath := writeFixture(t)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out, options{config: configPath, set: "mesh.texture=brass.png", save: true}))

	onDisk, err := os.ReadFile(groupPath)
	require.NoError(t, err)
	assert.Contains(t, string(onDisk), "brass.png")
}

func TestRunRejectsBadEdit(t *testing.T) {
	configPath, _ := writeFixture(t)

	err := run(context.Background(), &bytes.Buffer{}, options{config: configPath, set: "texture=brass.png"})
	assert.Error(t, err)

	err = run(context.Background(), &bytes.Buffer{}, options{config: configPath, set: "sprite.texture=brass.png"})
	assert.ErrorIs(t, err, catalog.ErrUnknownComponent)
}

func TestRunWithoutConfig(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out, options{}))
	assert.Empty(t, out.String())
}
