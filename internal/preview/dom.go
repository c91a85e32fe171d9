package preview

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// dom exposes a parsed document to sandboxed scripts.
// Every html.Node gets at most one proxy object so identity comparisons hold in JS.
type dom struct {
	vm      *goja.Runtime
	doc     *goquery.Document
	proxies map[*html.Node]*goja.Object
	nodes   map[*goja.Object]*html.Node

	// Listeners fired after the scripts, in registration order.
	ready []goja.Callable
	load  []goja.Callable
}

func newDOM(vm *goja.Runtime, doc *goquery.Document) *dom {
	d := &dom{
		vm:      vm,
		doc:     doc,
		proxies: make(map[*html.Node]*goja.Object),
		nodes:   make(map[*goja.Object]*html.Node),
	}
	document := d.documentObject()
	d.proxies[d.root()] = document
	d.nodes[document] = d.root()
	return d
}

func (d *dom) root() *html.Node {
	return d.doc.Nodes[0]
}

func (d *dom) body() *html.Node {
	return firstElement(d.root(), "body")
}

// documentObject builds the global document.
func (d *dom) documentObject() *goja.Object {
	o := d.vm.NewObject()
	_ = o.Set("nodeType", 9)
	_ = o.Set("nodeName", "#document")

	d.accessor(o, "body", func() goja.Value { return d.wrap(d.body()) }, nil)
	d.accessor(o, "head", func() goja.Value { return d.wrap(firstElement(d.root(), "head")) }, nil)
	d.accessor(o, "documentElement", func() goja.Value { return d.wrap(firstElement(d.root(), "html")) }, nil)
	d.accessor(o, "title", func() goja.Value {
		return d.vm.ToValue(strings.Join(strings.Fields(nodeText(firstElement(d.root(), "title"))), " "))
	}, func(v goja.Value) {
		title := firstElement(d.root(), "title")
		if title == nil {
			head := firstElement(d.root(), "head")
			if head == nil {
				return
			}
			title = newElement("title")
			head.AppendChild(title)
		}
		setText(title, v.String())
	})

	_ = o.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		id := call.Argument(0).String()
		return d.wrap(findFirst(d.root(), func(n *html.Node) bool {
			return n.Type == html.ElementNode && attr(n, "id") == id
		}))
	})
	d.queryMethods(o, d.root())

	_ = o.Set("createElement", func(call goja.FunctionCall) goja.Value {
		return d.wrap(newElement(call.Argument(0).String()))
	})
	_ = o.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		return d.wrap(&html.Node{Type: html.TextNode, Data: call.Argument(0).String()})
	})
	_ = o.Set("write", func(call goja.FunctionCall) goja.Value {
		if body := d.body(); body != nil {
			var b strings.Builder
			for _, arg := range call.Arguments {
				b.WriteString(arg.String())
			}
			goquery.NewDocumentFromNode(body).AppendHtml(b.String())
		}
		return goja.Undefined()
	})
	_ = o.Set("addEventListener", d.listen)
	_ = o.Set("removeEventListener", inert)

	return o
}

// listen registers document and window lifecycle listeners.
// Other event types are accepted and never fire: nothing is interactive headlessly.
func (d *dom) listen(call goja.FunctionCall) goja.Value {
	fn, ok := goja.AssertFunction(call.Argument(1))
	if !ok {
		return goja.Undefined()
	}
	switch call.Argument(0).String() {
	case "DOMContentLoaded":
		d.ready = append(d.ready, fn)
	case "load":
		d.load = append(d.load, fn)
	}
	return goja.Undefined()
}

// wrap returns the proxy for n, creating it on first use.
func (d *dom) wrap(n *html.Node) goja.Value {
	if n == nil {
		return goja.Null()
	}
	if o, ok := d.proxies[n]; ok {
		return o
	}
	o := d.nodeObject(n)
	d.proxies[n] = o
	d.nodes[o] = n
	return o
}

func (d *dom) wrapAll(nodes []*html.Node) goja.Value {
	items := make([]interface{}, len(nodes))
	for i, n := range nodes {
		items[i] = d.wrap(n)
	}
	return d.vm.NewArray(items...)
}

// node resolves a proxy passed in from script, throwing a TypeError otherwise.
func (d *dom) node(v goja.Value) *html.Node {
	if o, ok := v.(*goja.Object); ok {
		if n, ok := d.nodes[o]; ok {
			return n
		}
	}
	panic(d.vm.NewTypeError("parameter is not of type 'Node'"))
}

// nodeOrText accepts a node proxy or converts anything else to a text node, like Element.append.
func (d *dom) nodeOrText(v goja.Value) *html.Node {
	if o, ok := v.(*goja.Object); ok {
		if n, ok := d.nodes[o]; ok {
			return n
		}
	}
	return &html.Node{Type: html.TextNode, Data: v.String()}
}

func (d *dom) nodeObject(n *html.Node) *goja.Object {
	o := d.vm.NewObject()

	_ = o.Set("nodeType", nodeType(n))
	_ = o.Set("nodeName", nodeName(n))
	d.accessor(o, "parentNode", func() goja.Value { return d.wrap(n.Parent) }, nil)
	d.accessor(o, "parentElement", func() goja.Value {
		if n.Parent == nil || n.Parent.Type != html.ElementNode {
			return goja.Null()
		}
		return d.wrap(n.Parent)
	}, nil)
	d.accessor(o, "nextSibling", func() goja.Value { return d.wrap(n.NextSibling) }, nil)
	d.accessor(o, "previousSibling", func() goja.Value { return d.wrap(n.PrevSibling) }, nil)
	d.accessor(o, "firstChild", func() goja.Value { return d.wrap(n.FirstChild) }, nil)
	d.accessor(o, "lastChild", func() goja.Value { return d.wrap(n.LastChild) }, nil)
	d.accessor(o, "childNodes", func() goja.Value { return d.wrapAll(children(n, false)) }, nil)
	d.accessor(o, "textContent", func() goja.Value { return d.vm.ToValue(nodeText(n)) },
		func(v goja.Value) { setText(n, stringOrEmpty(v)) })
	_ = o.Set("remove", func(goja.FunctionCall) goja.Value {
		detach(n)
		return goja.Undefined()
	})

	if n.Type != html.ElementNode {
		get := func() goja.Value { return d.vm.ToValue(n.Data) }
		set := func(v goja.Value) { n.Data = stringOrEmpty(v) }
		d.accessor(o, "data", get, set)
		d.accessor(o, "nodeValue", get, set)
		return o
	}

	_ = o.Set("tagName", strings.ToUpper(n.Data))
	d.attrAccessor(o, "id", n, "id")
	d.attrAccessor(o, "className", n, "class")
	d.attrAccessor(o, "value", n, "value")
	d.attrAccessor(o, "href", n, "href")
	d.attrAccessor(o, "src", n, "src")
	d.accessor(o, "innerText", func() goja.Value { return d.vm.ToValue(nodeText(n)) },
		func(v goja.Value) { setText(n, stringOrEmpty(v)) })
	d.accessor(o, "innerHTML", func() goja.Value {
		inner, _ := goquery.NewDocumentFromNode(n).Html()
		return d.vm.ToValue(inner)
	}, func(v goja.Value) {
		if isVoid(n) {
			panic(d.vm.NewTypeError("HierarchyRequestError: <%s> cannot have children", n.Data))
		}
		goquery.NewDocumentFromNode(n).SetHtml(stringOrEmpty(v))
	})
	d.accessor(o, "outerHTML", func() goja.Value {
		outer, _ := goquery.OuterHtml(goquery.NewDocumentFromNode(n).Selection)
		return d.vm.ToValue(outer)
	}, nil)
	d.accessor(o, "children", func() goja.Value { return d.wrapAll(children(n, true)) }, nil)
	d.accessor(o, "firstElementChild", func() goja.Value {
		if kids := children(n, true); len(kids) > 0 {
			return d.wrap(kids[0])
		}
		return goja.Null()
	}, nil)
	_ = o.Set("style", d.vm.NewDynamicObject(&styleDeclaration{vm: d.vm, n: n}))
	_ = o.Set("classList", d.classList(n))

	_ = o.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		name := strings.ToLower(call.Argument(0).String())
		if !hasAttr(n, name) {
			return goja.Null()
		}
		return d.vm.ToValue(attr(n, name))
	})
	_ = o.Set("setAttribute", func(call goja.FunctionCall) goja.Value {
		setAttr(n, strings.ToLower(call.Argument(0).String()), call.Argument(1).String())
		return goja.Undefined()
	})
	_ = o.Set("removeAttribute", func(call goja.FunctionCall) goja.Value {
		removeAttr(n, strings.ToLower(call.Argument(0).String()))
		return goja.Undefined()
	})
	_ = o.Set("hasAttribute", func(call goja.FunctionCall) goja.Value {
		return d.vm.ToValue(hasAttr(n, strings.ToLower(call.Argument(0).String())))
	})

	_ = o.Set("appendChild", func(call goja.FunctionCall) goja.Value {
		child := d.node(call.Argument(0))
		d.insert(n, child, nil)
		return call.Argument(0)
	})
	_ = o.Set("append", func(call goja.FunctionCall) goja.Value {
		for _, arg := range call.Arguments {
			d.insert(n, d.nodeOrText(arg), nil)
		}
		return goja.Undefined()
	})
	_ = o.Set("prepend", func(call goja.FunctionCall) goja.Value {
		ref := n.FirstChild
		for _, arg := range call.Arguments {
			d.insert(n, d.nodeOrText(arg), ref)
		}
		return goja.Undefined()
	})
	_ = o.Set("insertBefore", func(call goja.FunctionCall) goja.Value {
		child := d.node(call.Argument(0))
		var ref *html.Node
		if r := call.Argument(1); !goja.IsNull(r) && !goja.IsUndefined(r) {
			ref = d.node(r)
			if ref.Parent != n {
				panic(d.vm.NewTypeError("NotFoundError: the node before which the new node is to be inserted is not a child of this node"))
			}
		}
		d.insert(n, child, ref)
		return call.Argument(0)
	})
	_ = o.Set("removeChild", func(call goja.FunctionCall) goja.Value {
		child := d.node(call.Argument(0))
		if child.Parent != n {
			panic(d.vm.NewTypeError("NotFoundError: the node to be removed is not a child of this node"))
		}
		n.RemoveChild(child)
		return call.Argument(0)
	})

	d.queryMethods(o, n)

	_ = o.Set("addEventListener", inert)
	_ = o.Set("removeEventListener", inert)
	_ = o.Set("click", inert)
	_ = o.Set("focus", inert)
	_ = o.Set("blur", inert)

	return o
}

// insert places child under parent before ref (append when ref is nil).
func (d *dom) insert(parent, child, ref *html.Node) {
	if parent.Type != html.ElementNode && parent.Type != html.DocumentNode {
		panic(d.vm.NewTypeError("HierarchyRequestError: this node type does not support children"))
	}
	if isVoid(parent) {
		panic(d.vm.NewTypeError("HierarchyRequestError: <%s> cannot have children", parent.Data))
	}
	if child.Type == html.DocumentNode || isAncestor(child, parent) {
		panic(d.vm.NewTypeError("HierarchyRequestError: the new child element contains the parent"))
	}
	if child == ref {
		return
	}
	detach(child)
	if ref == nil {
		parent.AppendChild(child)
		return
	}
	parent.InsertBefore(child, ref)
}

func (d *dom) queryMethods(o *goja.Object, n *html.Node) {
	_ = o.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		found := goquery.NewDocumentFromNode(n).Find(call.Argument(0).String()).First().Nodes
		if len(found) == 0 {
			return goja.Null()
		}
		return d.wrap(found[0])
	})
	_ = o.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		return d.wrapAll(goquery.NewDocumentFromNode(n).Find(call.Argument(0).String()).Nodes)
	})
	_ = o.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		tag := strings.ToLower(call.Argument(0).String())
		return d.wrapAll(findAll(n, func(e *html.Node) bool {
			return e.Type == html.ElementNode && (tag == "*" || e.Data == tag)
		}))
	})
	_ = o.Set("getElementsByClassName", func(call goja.FunctionCall) goja.Value {
		want := strings.Fields(call.Argument(0).String())
		return d.wrapAll(findAll(n, func(e *html.Node) bool {
			if e.Type != html.ElementNode || len(want) == 0 {
				return false
			}
			have := strings.Fields(attr(e, "class"))
			for _, w := range want {
				if !contains(have, w) {
					return false
				}
			}
			return true
		}))
	})
}

func (d *dom) classList(n *html.Node) *goja.Object {
	o := d.vm.NewObject()
	update := func(fn func([]string) []string) {
		setAttr(n, "class", strings.Join(fn(strings.Fields(attr(n, "class"))), " "))
	}
	_ = o.Set("add", func(call goja.FunctionCall) goja.Value {
		update(func(classes []string) []string {
			for _, arg := range call.Arguments {
				if c := arg.String(); !contains(classes, c) {
					classes = append(classes, c)
				}
			}
			return classes
		})
		return goja.Undefined()
	})
	_ = o.Set("remove", func(call goja.FunctionCall) goja.Value {
		update(func(classes []string) []string {
			for _, arg := range call.Arguments {
				classes = without(classes, arg.String())
			}
			return classes
		})
		return goja.Undefined()
	})
	_ = o.Set("contains", func(call goja.FunctionCall) goja.Value {
		return d.vm.ToValue(contains(strings.Fields(attr(n, "class")), call.Argument(0).String()))
	})
	_ = o.Set("toggle", func(call goja.FunctionCall) goja.Value {
		c := call.Argument(0).String()
		on := !contains(strings.Fields(attr(n, "class")), c)
		if force := call.Argument(1); !goja.IsUndefined(force) {
			on = force.ToBoolean()
		}
		update(func(classes []string) []string {
			classes = without(classes, c)
			if on {
				classes = append(classes, c)
			}
			return classes
		})
		return d.vm.ToValue(on)
	})
	d.accessor(o, "length", func() goja.Value {
		return d.vm.ToValue(len(strings.Fields(attr(n, "class"))))
	}, nil)
	return o
}

func (d *dom) accessor(o *goja.Object, name string, get func() goja.Value, set func(goja.Value)) {
	getter := d.vm.ToValue(func(goja.FunctionCall) goja.Value { return get() })
	var setter goja.Value
	if set != nil {
		setter = d.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			set(call.Argument(0))
			return goja.Undefined()
		})
	}
	_ = o.DefineAccessorProperty(name, getter, setter, goja.FLAG_TRUE, goja.FLAG_TRUE)
}

func (d *dom) attrAccessor(o *goja.Object, prop string, n *html.Node, name string) {
	d.accessor(o, prop, func() goja.Value {
		return d.vm.ToValue(attr(n, name))
	}, func(v goja.Value) {
		setAttr(n, name, stringOrEmpty(v))
	})
}

func inert(goja.FunctionCall) goja.Value {
	return goja.Undefined()
}

// html.Node helpers

func newElement(tag string) *html.Node {
	tag = strings.ToLower(strings.TrimSpace(tag))
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

// voidElements cannot have children; the serializer rejects them if they do.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "keygen": true, "link": true,
	"meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

func isVoid(n *html.Node) bool {
	return n.Type == html.ElementNode && voidElements[n.Data]
}

func nodeType(n *html.Node) int {
	switch n.Type {
	case html.ElementNode:
		return 1
	case html.TextNode:
		return 3
	case html.CommentNode:
		return 8
	case html.DocumentNode:
		return 9
	default:
		return 0
	}
}

func nodeName(n *html.Node) string {
	switch n.Type {
	case html.ElementNode:
		return strings.ToUpper(n.Data)
	case html.TextNode:
		return "#text"
	case html.CommentNode:
		return "#comment"
	default:
		return "#document"
	}
}

func nodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	return goquery.NewDocumentFromNode(n).Text()
}

// setText replaces all children of n with a single text node.
// Void elements stay empty: their content is never rendered.
func setText(n *html.Node, text string) {
	if n.Type != html.ElementNode {
		n.Data = text
		return
	}
	if isVoid(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

func isAncestor(candidate, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

func children(n *html.Node, elementsOnly bool) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !elementsOnly || c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if match(c) {
			return c
		}
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if match(c) {
			out = append(out, c)
		}
		out = append(out, findAll(c, match)...)
	}
	return out
}

func firstElement(n *html.Node, tag string) *html.Node {
	return findFirst(n, func(e *html.Node) bool {
		return e.Type == html.ElementNode && e.Data == tag
	})
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(n *html.Node, name string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace != "" || a.Key != name {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

func stringOrEmpty(v goja.Value) string {
	if v == nil || goja.IsNull(v) || goja.IsUndefined(v) {
		return ""
	}
	return v.String()
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func without(list []string, s string) []string {
	out := list[:0]
	for _, item := range list {
		if item != s {
			out = append(out, item)
		}
	}
	return out
}
