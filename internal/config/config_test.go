package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(strings.NewReader(`
groups:
  - prefabs/lamp.yaml
scenes:
  - id: 1
    name: main
    instances:
      - group: prefabs/lamp.yaml
        count: 2
`))
	require.NoError(t, err)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, 100, c.History.Limit)
	require.Len(t, c.Scenes, 1)
	assert.Equal(t, 2, c.Scenes[0].Instances[0].Count)
}

func TestLoadEmpty(t *testing.T) {
	c, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"level":    "log: {level: loud}",
		"encoding": "log: {encoding: xml}",
		"limit":    "history: {limit: -1}",
		"scene id": "scenes: [{id: 0}]",
		"dup id":   "scenes: [{id: 1}, {id: 1}]",
		"unlisted": "scenes: [{id: 1, instances: [{group: a.yaml, count: 1}]}]",
		"count":    "groups: [a.yaml]\nscenes: [{id: 1, instances: [{group: a.yaml, count: -2}]}]",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(doc))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load(strings.NewReader("groups: {"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}
