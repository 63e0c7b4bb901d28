package port

import "time"

// Clock reads the current date
type Clock interface {
	Today() time.Time
}

// Translator localizes a source string into one language
type Translator interface {
	Translate(msg string) string
}

// Translations hands out a Translator per requested language
type Translations interface {
	For(lang string) Translator
}
