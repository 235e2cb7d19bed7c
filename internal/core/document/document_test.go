package document

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/sharedgroups/internal/core/catalog"
	"github.com/zeusync/sharedgroups/internal/core/components"
	"github.com/zeusync/sharedgroups/internal/core/models"
	"github.com/zeusync/sharedgroups/internal/core/world"
)

const lampYAML = `version: 1
root:
  name: Lamp
  components:
    transform:
      position: [0, 2, 0]
    mesh:
      color: [1, 1, 1, 1]
      texture: lamp.png
  children:
    - name: Bulb
      components:
        light:
          intensity: 0.1
          color: [1, 0.9, 0.7]
    - name: Shade
      components:
        mesh:
          color: [0.2, 0.2, 0.2, 1]
`

func loadLamp(t *testing.T) *Document {
	t.Helper()
	doc, err := Load(bytes.NewBufferString(lampYAML), "lamp.yaml")
	require.NoError(t, err)
	return doc
}

func TestDecodeEntityBuildsHierarchy(t *testing.T) {
	doc := loadLamp(t)
	w := world.New(1, "scene")

	created, err := DecodeEntity(w, doc.Root, DecodeOptions{Index: -1})
	require.NoError(t, err)
	require.Len(t, created, 3)

	root, bulb, shade := created[0], created[1], created[2]
	assert.Equal(t, "Lamp", w.EntityName(root))
	assert.Equal(t, []models.Entity{bulb, shade}, w.Children(root))
	assert.Equal(t, components.Vector3{0, 2, 0}, models.GetComponent[components.Transform](w.Registry(), root).Position)
	assert.Equal(t, float32(0.1), models.GetComponent[components.Light](w.Registry(), bulb).Intensity)
	assert.Equal(t, components.Color{0.2, 0.2, 0.2, 1}, models.GetComponent[components.Mesh](w.Registry(), shade).Color)
}

func TestDecodeFailureLeavesWorldUntouched(t *testing.T) {
	w := world.New(1, "scene")
	bad := &EntityNode{
		Name: "bad",
		Components: map[string]ComponentNode{
			"transform": {},
		},
		Children: []*EntityNode{{
			Name:       "child",
			Components: map[string]ComponentNode{"light": {"intensity": "bright"}},
		}},
	}

	_, err := DecodeEntity(w, bad, DecodeOptions{Index: -1})
	assert.ErrorIs(t, err, ErrDecodeFailed)
	assert.Zero(t, w.Registry().EntityCount())

	unknown := &EntityNode{Components: map[string]ComponentNode{"physics": {}}}
	_, err = DecodeEntity(w, unknown, DecodeOptions{Index: -1})
	assert.ErrorIs(t, err, ErrUnknownComponent)

	orphaned := &EntityNode{Children: []*EntityNode{{Name: "c"}}}
	assert.ErrorIs(t, Validate(orphaned), ErrChildrenNeedTransform)
}

func TestEncodeDecodeRoundTripIsBitExact(t *testing.T) {
	w := world.New(1, "scene")
	e := w.CreateEntity("light")
	_, err := catalog.AddComponent(w.Registry(), e, catalog.LightComponent)
	require.NoError(t, err)
	odd := math.Float32frombits(0x3dcccccd) // 0.1f
	tiny := math.Float32frombits(0x00000001)
	light := models.FindComponent[components.Light](w.Registry(), e)
	light.Intensity = odd
	light.ShadowBias = tiny

	doc := &Document{Path: "light.yaml", Root: EncodeEntity(w, e)}
	data, err := Marshal(doc)
	require.NoError(t, err)

	back, err := Load(bytes.NewReader(data), "light.yaml")
	require.NoError(t, err)

	other := world.New(2, "other")
	created, err := DecodeEntity(other, back.Root, DecodeOptions{Index: -1})
	require.NoError(t, err)
	got := models.GetComponent[components.Light](other.Registry(), created[0])
	assert.Equal(t, math.Float32bits(odd), math.Float32bits(got.Intensity))
	assert.Equal(t, math.Float32bits(tiny), math.Float32bits(got.ShadowBias))
}

func TestDecodePreservesIDs(t *testing.T) {
	w := world.New(1, "scene")
	node := &EntityNode{Entity: 42, Name: "kept"}
	created, err := DecodeEntity(w, node, DecodeOptions{Index: -1, PreserveIDs: true})
	require.NoError(t, err)
	assert.Equal(t, []models.Entity{42}, created)

	// taken handles fall back to fresh ones
	created, err = DecodeEntity(w, node, DecodeOptions{Index: -1, PreserveIDs: true})
	require.NoError(t, err)
	assert.NotEqual(t, models.Entity(42), created[0])
}

func TestMergeEntityNodes(t *testing.T) {
	base := loadLamp(t).Root
	extend := &EntityNode{
		Entity: 100,
		Components: map[string]ComponentNode{
			// same value as base: not an override
			"mesh": {"texture": "lamp.png"},
		},
		Children: []*EntityNode{
			{Entity: 101, Components: map[string]ComponentNode{"light": {"intensity": 0.5}}},
			{Entity: 102, Components: map[string]ComponentNode{"script": {"path": "shade.lua"}}},
		},
	}

	results := MergeEntityNodes(extend, base)
	require.Len(t, results, 3)
	assert.Equal(t, MergeResult{IsShared: true}, results[0])
	assert.Equal(t, MergeResult{IsShared: true, Overrides: catalog.LightComponent.Bit()}, results[1])
	assert.Equal(t, MergeResult{IsShared: true, Overrides: catalog.ScriptComponent.Bit()}, results[2])

	assert.Equal(t, models.Entity(101), base.Children[0].Entity)
	assert.Equal(t, 0.5, base.Children[0].Components["light"]["intensity"])
	assert.Equal(t, "shade.lua", base.Children[1].Components["script"]["path"])
}

func TestMergeWithoutExtend(t *testing.T) {
	base := loadLamp(t).Root
	results := MergeEntityNodes(nil, base)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, MergeResult{}, r)
	}
}

func TestDiffKeepsOnlyMaskedComponents(t *testing.T) {
	base := loadLamp(t).Root
	ext := Diff(base, []uint64{0, catalog.LightComponent.Bit(), 0})
	assert.Empty(t, ext.Components)
	assert.Contains(t, ext.Children[0].Components, "light")
	assert.Empty(t, ext.Children[1].Components)
}

func TestMergeDropsRemovedComponents(t *testing.T) {
	base := loadLamp(t).Root
	extend := &EntityNode{
		Removed: []string{"transform", "camera"},
		Children: []*EntityNode{
			{Removed: []string{"light"}},
		},
	}

	results := MergeEntityNodes(extend, base)
	require.Len(t, results, 3)
	// transform is kept and camera was never there
	assert.Equal(t, MergeResult{IsShared: true}, results[0])
	assert.Contains(t, base.Components, "transform")
	assert.Equal(t, MergeResult{IsShared: true, Overrides: catalog.LightComponent.Bit()}, results[1])
	assert.NotContains(t, base.Children[0].Components, "light")
	assert.Equal(t, MergeResult{}, results[2])
}

func TestDiffListsMaskedMissingComponents(t *testing.T) {
	base := loadLamp(t).Root
	bulb := base.Children[0]
	delete(bulb.Components, "light")

	ext := Diff(base, []uint64{0, catalog.LightComponent.Bit(), 0})
	assert.Empty(t, ext.Children[0].Components)
	assert.Equal(t, []string{"light"}, ext.Children[0].Removed)
	assert.Empty(t, ext.Removed)

	clone := ext.Clone()
	clone.Children[0].Removed[0] = "mesh"
	assert.Equal(t, "light", ext.Children[0].Removed[0])
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, ValuesEqual(float32(0.1), 0.1))
	assert.True(t, ValuesEqual(components.Vector3{1, 0, 0}, []any{1, 0, 0.0}))
	assert.False(t, ValuesEqual(components.Vector3{1, 0, 0}, []any{1, 0, 1}))
	assert.True(t, ValuesEqual("a", "a"))
}

func TestCloneIsDeep(t *testing.T) {
	base := loadLamp(t).Root
	clone := base.Clone()
	clone.Children[0].Components["light"]["intensity"] = 9.0
	clone.Children[0].Components["light"]["color"].([]any)[0] = 0.0
	assert.Equal(t, 0.1, base.Children[0].Components["light"]["intensity"])
	assert.Equal(t, 1, base.Children[0].Components["light"]["color"].([]any)[0])
	assert.Equal(t, 3, clone.Count())
}

func TestLoadFilesAndFingerprint(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	require.NoError(t, os.WriteFile(a, []byte(lampYAML), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("version: 1\nroot:\n  name: Solo\n"), 0o644))

	docs, err := LoadFiles(context.Background(), []string{a, b})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, a, docs[0].Path)
	assert.Equal(t, "Solo", docs[1].Root.Name)

	fa, err := Fingerprint(docs[0])
	require.NoError(t, err)
	again, err := LoadFile(a)
	require.NoError(t, err)
	fb, err := Fingerprint(again)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)

	_, err = LoadFiles(context.Background(), []string{filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)
}
