package pointmorph

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAtlas(t *testing.T) *fontAtlas {
	t.Helper()
	atlas, err := newFontAtlas("", 0)
	require.NoError(t, err)
	return atlas
}

func TestNewFontAtlas_BuiltinFace(t *testing.T) {
	atlas := testAtlas(t)

	// Printable ascii, 32..126.
	assert.Len(t, atlas.glyphs, 95)

	g, ok := atlas.glyphs['A']
	require.True(t, ok)
	assert.InDelta(t, 7.0, g.Adv, 1e-6, "Face7x13 advance is 7px")
	assert.InDelta(t, 13.0, g.Size[1], 1e-6, "Face7x13 cell height is 13px")
	assert.InDelta(t, 13.0, atlas.lineHeight(), 1e-6)

	// The reserved fill block must be opaque and clear of any glyph.
	assert.EqualValues(t, 255, atlas.image.AlphaAt(1, 1).A)
	for r, g := range atlas.glyphs {
		clear := g.UVMin[0] >= 4.0/fontAtlasSize || g.UVMin[1] >= 4.0/fontAtlasSize
		assert.True(t, clear, "glyph %q overlaps the fill block", r)
	}
}

func TestNewFontAtlas_MissingFontFile(t *testing.T) {
	_, err := newFontAtlas(filepath.Join(t.TempDir(), "nope.ttf"), 14)
	assert.ErrorContains(t, err, "read font file")
}

func TestFontAtlas_AppendText(t *testing.T) {
	atlas := testAtlas(t)
	white := [4]float32{1, 1, 1, 1}

	verts := atlas.appendText(nil, textItem{
		Text:  "aa",
		Scale: 1,
		Color: white,
	}, 800, 600)
	require.Len(t, verts, 12, "one quad of two triangles per glyph")

	// For a bitmap face at the origin the ascent offset cancels the glyph's
	// negative vertical offset, so the first corner lands exactly at the
	// screen's top-left in ndc.
	assert.InDelta(t, -1.0, verts[0].Pos[0], 1e-6)
	assert.InDelta(t, 1.0, verts[0].Pos[1], 1e-6)

	g := atlas.glyphs['a']
	assert.Equal(t, g.UVMin, verts[0].UV)
	assert.Equal(t, white, verts[0].Color)

	// Second glyph starts one advance to the right.
	wantX := float32(7.0)/800.0*2.0 - 1.0
	assert.InDelta(t, wantX, verts[6].Pos[0], 1e-6)

	// ndc runs bottom-up, screen coordinates top-down.
	assert.Less(t, verts[2].Pos[1], verts[0].Pos[1])
}

func TestFontAtlas_AppendTextNewline(t *testing.T) {
	atlas := testAtlas(t)

	verts := atlas.appendText(nil, textItem{Text: "a\na", Scale: 1, Color: [4]float32{1, 1, 1, 1}}, 800, 600)
	require.Len(t, verts, 12)

	assert.InDelta(t, verts[0].Pos[0], verts[6].Pos[0], 1e-6, "newline returns to the start column")
	assert.Less(t, verts[6].Pos[1], verts[0].Pos[1], "second line sits below the first")
}

func TestFontAtlas_AppendTextSkipsUnknownRunes(t *testing.T) {
	atlas := testAtlas(t)

	verts := atlas.appendText(nil, textItem{Text: "a€b", Scale: 1}, 800, 600)
	assert.Len(t, verts, 12, "runes outside the atlas are dropped, not rendered as boxes")
}

func TestAppendRect(t *testing.T) {
	color := [4]float32{1, 0, 0, 0.5}
	verts := appendRect(nil, 0, 0, 400, 300, color, 800, 600)
	require.Len(t, verts, 6)

	assert.Equal(t, [2]float32{-1, 1}, verts[0].Pos)
	assert.Equal(t, [2]float32{0, 0}, verts[4].Pos)
	for _, v := range verts {
		assert.Equal(t, solidUV, v.UV)
		assert.Equal(t, color, v.Color)
	}
}

func TestVariantName(t *testing.T) {
	names := &VariantNames{Names: []string{"sphere", "cube"}}

	assert.Equal(t, "sphere", variantName(names, 0))
	assert.Equal(t, "cube", variantName(names, 1))
	assert.Equal(t, "variant 5", variantName(names, 5))
	assert.Equal(t, "variant -1", variantName(names, -1))
}

func TestHudInputSystem_ToggleVisibility(t *testing.T) {
	st := &hudState{visible: true}

	hudInputSystem(st, pressKey(KeyH))
	assert.False(t, st.visible)

	hudInputSystem(st, pressKey(KeyH))
	assert.True(t, st.visible)

	hudInputSystem(st, &Input{})
	assert.True(t, st.visible)
}
