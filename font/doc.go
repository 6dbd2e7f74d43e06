// Package font provides bitmap font catalogs for the debug text renderer.
//
// A [Font] maps runes to [Glyph] rectangles inside a single atlas texture.
// Catalogs come from three sources:
//   - AngelCode BMFont descriptors, text ([ParseText]) or XML ([ParseXML])
//   - golang.org/x/image bitmap faces ([BakeFace], [Default])
//   - tinyfont bitmap fonts ([BakeTinyFont])
//
// Lookups never fail: a rune missing from the catalog yields the zero
// Glyph, which renders as an empty quad and does not advance the cursor.
package font
