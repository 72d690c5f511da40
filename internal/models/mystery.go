package models

// Mystery is one of the five reflection topics of a theme.
type Mystery struct {
	Number      int    `json:"number" yaml:"number"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Group       Theme  `json:"group" yaml:"group"`
}

// MysteriesPerTheme is the fixed size of every mystery table.
const MysteriesPerTheme = 5

var mysteryTables = map[Theme][MysteriesPerTheme]Mystery{
	ThemeJoyful: {
		{Number: 1, Title: "Anunciación", Description: "Anunciación del Ángel Gabriel a María", Group: ThemeJoyful},
		{Number: 2, Title: "Visitación", Description: "Visitación de María a su prima Isabel", Group: ThemeJoyful},
		{Number: 3, Title: "Nacimiento", Description: "Nacimiento de Nuestro Señor Jesucristo", Group: ThemeJoyful},
		{Number: 4, Title: "Presentación", Description: "Presentación de Jesús en el Templo", Group: ThemeJoyful},
		{Number: 5, Title: "Hallazgo", Description: "Hallazgo del Niño Jesús en el Templo", Group: ThemeJoyful},
	},
	ThemeSorrowful: {
		{Number: 1, Title: "Oración en el Huerto", Description: "Oración de Jesús en el Huerto", Group: ThemeSorrowful},
		{Number: 2, Title: "Azotamiento", Description: "Azotamiento de Nuestro Señor Jesucristo", Group: ThemeSorrowful},
		{Number: 3, Title: "Coronación de Espinas", Description: "Coronación de espinas", Group: ThemeSorrowful},
		{Number: 4, Title: "Camino del Calvario", Description: "Camino del Calvario", Group: ThemeSorrowful},
		{Number: 5, Title: "Crucifixión", Description: "Crucifixión y muerte de Nuestro Señor Jesucristo", Group: ThemeSorrowful},
	},
	ThemeGlorious: {
		{Number: 1, Title: "Resurrección", Description: "Resurrección de Nuestro Señor Jesucristo", Group: ThemeGlorious},
		{Number: 2, Title: "Ascensión", Description: "Ascensión de Nuestro Señor Jesucristo", Group: ThemeGlorious},
		{Number: 3, Title: "Venida del Espíritu Santo", Description: "Venida del Espíritu Santo", Group: ThemeGlorious},
		{Number: 4, Title: "Asunción", Description: "Asunción de Nuestra Señora María", Group: ThemeGlorious},
		{Number: 5, Title: "Coronación", Description: "Coronación de Nuestra Señora María", Group: ThemeGlorious},
	},
	ThemeLuminous: {
		{Number: 1, Title: "Bautismo", Description: "Bautismo de Jesús en el Jordán", Group: ThemeLuminous},
		{Number: 2, Title: "Bodas de Caná", Description: "Milagro de Caná", Group: ThemeLuminous},
		{Number: 3, Title: "Predicación", Description: "Predicación de Jesús y su llamada al arrepentimiento", Group: ThemeLuminous},
		{Number: 4, Title: "Transfiguración", Description: "Transfiguración de Jesús", Group: ThemeLuminous},
		{Number: 5, Title: "Eucaristía", Description: "Institución de la Eucaristía", Group: ThemeLuminous},
	},
}

// MysteriesFor returns a copy of the five mysteries of a theme in ascending
// number order. Unknown themes yield nil.
func MysteriesFor(theme Theme) []Mystery {
	table, ok := mysteryTables[theme]
	if !ok {
		return nil
	}
	out := make([]Mystery, len(table))
	copy(out, table[:])
	return out
}

// LookupMystery finds the mystery identified by (theme, number).
func LookupMystery(theme Theme, number int) (Mystery, bool) {
	table, ok := mysteryTables[theme]
	if !ok || number < 1 || number > MysteriesPerTheme {
		return Mystery{}, false
	}
	return table[number-1], true
}
