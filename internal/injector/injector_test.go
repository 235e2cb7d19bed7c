package injector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/sharedgroups/internal/config"
	"github.com/zeusync/sharedgroups/internal/core/events/bus"
	"github.com/zeusync/sharedgroups/internal/core/sharedgroup"
	"github.com/zeusync/sharedgroups/internal/core/world"
)

func TestInitializeAppWiresBus(t *testing.T) {
	c := config.Default()
	c.Log.Level = "silent"
	app := InitializeApp(c)
	require.NotNil(t, app.Manager)

	var got []string
	_, err := app.Bus.Subscribe(sharedgroup.EventGroupCreated, func(e bus.Event) error {
		got = append(got, e.Data().(sharedgroup.Change).Path)
		return nil
	})
	require.NoError(t, err)

	w := world.New(1, "main")
	require.NoError(t, app.Manager.AddScene(w))
	e := w.CreateEntity("Solo")
	_, err = app.Manager.MarkEntityShared(1, e, "solo.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"solo.yaml"}, got)
}
