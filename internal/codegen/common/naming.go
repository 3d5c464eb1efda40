package common

import (
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// RoutePrefix is where generated POST handlers are mounted.
	RoutePrefix = "/api/emails/"
	// PreviewPrefix is where preview pages are mounted.
	PreviewPrefix = "/__emails/"
	// PartialsDir is the directory holding reusable partials; it never holds templates.
	PartialsDir = "components"
)

// Capitalize upper-cases the first letter and leaves the rest untouched,
// so "welcomeEmail" becomes "WelcomeEmail".
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// ToPascalCase joins dash, underscore, dot and space separated words,
// capitalizing each one: "order-confirmation" => "OrderConfirmation".
func ToPascalCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == ' '
	})
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(Capitalize(p))
	}
	return SanitizeLeadingDigit(b.String())
}

// ToCamelCase is ToPascalCase with a lower-case first letter.
func ToCamelCase(s string) string {
	p := ToPascalCase(s)
	r, size := utf8.DecodeRuneInString(p)
	if r == utf8.RuneError {
		return p
	}
	return string(unicode.ToLower(r)) + p[size:]
}

// SanitizeLeadingDigit prefixes names that start with a digit with "Num"
// to keep identifiers valid in generated code.
func SanitizeLeadingDigit(name string) string {
	if name == "" {
		return ""
	}
	if name[0] >= '0' && name[0] <= '9' {
		return "Num" + name
	}
	return name
}

// ComponentName is the Vue component name of a template, e.g. "WelcomeNge".
func ComponentName(name string) string {
	return ToPascalCase(name) + "Nge"
}

// RoutePath returns the POST endpoint for a template relative path.
func RoutePath(rel string) string {
	return RoutePrefix + strings.TrimPrefix(rel, "/")
}

// PreviewPath returns the preview page path for a template relative path.
func PreviewPath(rel string) string {
	return PreviewPrefix + strings.TrimPrefix(rel, "/")
}

// PageName returns the route name of a preview page: "v1/welcome" => "email-v1-welcome".
func PageName(rel string) string {
	return "email-" + strings.ReplaceAll(strings.Trim(rel, "/"), "/", "-")
}

// RelativePath joins directory nesting and template name with forward
// slashes and no leading slash.
func RelativePath(dir, name string) string {
	return strings.TrimPrefix(path.Join("/", dir, name), "/")
}
