package types

// Theme is the persisted colour preference of the terminal client.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ThemeStateKey is the preference key the theme is stored under.
const ThemeStateKey = "theme"

// ParseTheme maps a stored value to a Theme. Anything other than "dark" is light.
func ParseTheme(v string) Theme {
	if v == string(ThemeDark) {
		return ThemeDark
	}
	return ThemeLight
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}
