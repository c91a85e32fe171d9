package preview

import (
	"strings"
	"unicode"

	"github.com/dop251/goja"
	"golang.org/x/net/html"
)

// styleDeclaration backs element.style. It reads and writes the element's
// style attribute directly, so inline styles survive serialization.
type styleDeclaration struct {
	vm *goja.Runtime
	n  *html.Node
}

type cssProperty struct {
	name, value string
}

func (s *styleDeclaration) Get(key string) goja.Value {
	switch key {
	case "cssText":
		return s.vm.ToValue(attr(s.n, "style"))
	case "length":
		return s.vm.ToValue(len(s.properties()))
	case "setProperty":
		return s.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			s.set(call.Argument(0).String(), stringOrEmpty(call.Argument(1)))
			return goja.Undefined()
		})
	case "getPropertyValue":
		return s.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return s.vm.ToValue(s.get(call.Argument(0).String()))
		})
	case "removeProperty":
		return s.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			name := call.Argument(0).String()
			old := s.get(name)
			s.set(name, "")
			return s.vm.ToValue(old)
		})
	}
	return s.vm.ToValue(s.get(cssName(key)))
}

func (s *styleDeclaration) Set(key string, val goja.Value) bool {
	if key == "cssText" {
		setAttr(s.n, "style", stringOrEmpty(val))
		return true
	}
	s.set(cssName(key), stringOrEmpty(val))
	return true
}

func (s *styleDeclaration) Has(key string) bool {
	if key == "cssText" || key == "length" {
		return true
	}
	return s.get(cssName(key)) != ""
}

func (s *styleDeclaration) Delete(key string) bool {
	s.set(cssName(key), "")
	return true
}

func (s *styleDeclaration) Keys() []string {
	props := s.properties()
	keys := make([]string, len(props))
	for i, p := range props {
		keys[i] = p.name
	}
	return keys
}

func (s *styleDeclaration) get(name string) string {
	for _, p := range s.properties() {
		if p.name == name {
			return p.value
		}
	}
	return ""
}

// set replaces or appends a property. An empty value removes it.
func (s *styleDeclaration) set(name, value string) {
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	props := s.properties()
	out := props[:0]
	replaced := false
	for _, p := range props {
		if p.name != name {
			out = append(out, p)
			continue
		}
		if value != "" && !replaced {
			out = append(out, cssProperty{name, value})
			replaced = true
		}
	}
	if value != "" && !replaced {
		out = append(out, cssProperty{name, value})
	}

	if len(out) == 0 {
		removeAttr(s.n, "style")
		return
	}
	parts := make([]string, len(out))
	for i, p := range out {
		parts[i] = p.name + ": " + p.value + ";"
	}
	setAttr(s.n, "style", strings.Join(parts, " "))
}

func (s *styleDeclaration) properties() []cssProperty {
	var props []cssProperty
	for _, decl := range strings.Split(attr(s.n, "style"), ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if !strings.HasPrefix(name, "--") {
			name = strings.ToLower(name)
		}
		if name == "" {
			continue
		}
		props = append(props, cssProperty{name, strings.TrimSpace(value)})
	}
	return props
}

// cssName maps a camelCase property (backgroundColor) to its CSS name
// (background-color). Custom properties and hyphenated names pass through.
func cssName(key string) string {
	if key == "cssFloat" {
		return "float"
	}
	if strings.HasPrefix(key, "--") {
		return key
	}
	if strings.Contains(key, "-") {
		return strings.ToLower(key)
	}
	var b strings.Builder
	for _, r := range key {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
