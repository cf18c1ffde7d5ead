package mana

// Color identifies one of the five land colors.
type Color string

const (
	ColorWhite Color = "W"
	ColorBlue  Color = "U"
	ColorBlack Color = "B"
	ColorRed   Color = "R"
	ColorGreen Color = "G"
)

// Colors lists every land color in canonical order.
var Colors = []Color{ColorWhite, ColorBlue, ColorBlack, ColorRed, ColorGreen}

// ParseColor converts a wire string into a Color.
func ParseColor(s string) (Color, bool) {
	switch Color(s) {
	case ColorWhite, ColorBlue, ColorBlack, ColorRed, ColorGreen:
		return Color(s), true
	default:
		return "", false
	}
}

// Valid reports whether c is one of the five land colors.
func (c Color) Valid() bool {
	_, ok := ParseColor(string(c))
	return ok
}
