package form

import "regexp"

var placeholderPattern = regexp.MustCompile(`%\(([A-Za-z_][A-Za-z0-9_]*)\)s`)

// Repl substitutes %(name)s placeholders in tmpl with values from args.
// Placeholders without a matching argument are kept verbatim.
func Repl(tmpl string, args map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if v, ok := args[name]; ok {
			return v
		}
		return match
	})
}
