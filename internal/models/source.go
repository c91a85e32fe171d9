package models

// Default editor content, used on editor start and on "new project".
const (
	DefaultTitle  = "Untitled Project"
	DefaultMarkup = "<!-- Write your HTML here -->\n<h1>Hello World!</h1>"
	DefaultStyle  = "/* Write your CSS here */\nbody {\n  font-family: Arial, sans-serif;\n  padding: 20px;\n}"
	DefaultScript = "// Write your JavaScript here\nconsole.log(\"Hello from CodeCanvas!\");"
)

// SourceDocument holds the three independent sources of a playground.
// The strings have no relationship to each other except that they are rendered together.
type SourceDocument struct {
	Markup string
	Style  string
	Script string
}

// DefaultSource returns the placeholder document shown in a fresh editor.
func DefaultSource() SourceDocument {
	return SourceDocument{
		Markup: DefaultMarkup,
		Style:  DefaultStyle,
		Script: DefaultScript,
	}
}
