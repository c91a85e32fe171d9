package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YashMarke130105/pen-perfect-playground/internal/models"
)

func TestSet_StartsWithDefaults(t *testing.T) {
	assert.Equal(t, models.DefaultSource(), New().Snapshot())
}

func TestSet_EditsNotifyWithSnapshot(t *testing.T) {
	set := NewWith(models.SourceDocument{})

	var got []models.SourceDocument
	set.Subscribe(func(doc models.SourceDocument) { got = append(got, doc) })

	set.SetMarkup("<h1>Hi</h1>")
	set.SetStyle("h1{color:red}")
	set.SetScript(`throw new Error("boom")`)

	require.Len(t, got, 3)
	assert.Equal(t, models.SourceDocument{Markup: "<h1>Hi</h1>"}, got[0])
	assert.Equal(t, models.SourceDocument{Markup: "<h1>Hi</h1>", Style: "h1{color:red}"}, got[1])
	assert.Equal(t, set.Snapshot(), got[2])
}

func TestSet_UnchangedValueStillNotifies(t *testing.T) {
	set := NewWith(models.SourceDocument{Markup: "same"})

	calls := 0
	set.Subscribe(func(models.SourceDocument) { calls++ })

	set.SetMarkup("same")
	assert.Equal(t, 1, calls)
}

func TestSet_LoadAndReset(t *testing.T) {
	set := New()

	calls := 0
	set.Subscribe(func(models.SourceDocument) { calls++ })

	loaded := models.SourceDocument{Markup: "m", Style: "s", Script: "j"}
	set.Load(loaded)
	assert.Equal(t, loaded, set.Snapshot())
	assert.Equal(t, 1, calls, "load replaces all buffers with one notification")

	set.Reset()
	assert.Equal(t, models.DefaultSource(), set.Snapshot())
	assert.Equal(t, 2, calls)
}

func TestSet_Unsubscribe(t *testing.T) {
	set := New()

	var order []string
	cancelFirst := set.Subscribe(func(models.SourceDocument) { order = append(order, "first") })
	set.Subscribe(func(models.SourceDocument) { order = append(order, "second") })

	set.SetScript("1")
	cancelFirst()
	cancelFirst()
	set.SetScript("2")

	assert.Equal(t, []string{"first", "second", "second"}, order)
}

func TestSet_ListenerMayEditAgain(t *testing.T) {
	set := NewWith(models.SourceDocument{})

	set.Subscribe(func(doc models.SourceDocument) {
		if doc.Markup == "draft" {
			set.SetMarkup("final")
		}
	})

	set.SetMarkup("draft")
	assert.Equal(t, "final", set.Snapshot().Markup)
}
