package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
	"golang.org/x/net/html"
)

const (
	originScript   = "script"
	originMarkup   = "markup"
	originListener = "listener"
	originTimer    = "timer"

	maxConsoleEntries = 500
	reportFunc        = "__canvasReport"
)

// Globals a browser frame would not offer a sandboxed document, or that
// only exist outside browsers.
var removedGlobals = []string{
	"require", "process", "module", "exports",
	"fetch", "XMLHttpRequest", "WebSocket", "EventSource",
	"importScripts", "Worker", "SharedWorker",
}

var errTimeout = errors.New("execution timeout exceeded")

// execution is the state of a single render. It owns a fresh goja runtime
// and is discarded afterwards; nothing is shared between renders.
type execution struct {
	cfg    Config
	logger *slog.Logger

	vm   *goja.Runtime
	dom  *dom
	view *View

	errorListeners []goja.Callable
	reporting      bool

	timers    []*timerTask
	clock     int64
	nextTimer int64

	// halted is set once the runtime was interrupted; interrupt holds the
	// value passed to Interrupt (errTimeout or the context's error).
	halted    bool
	interrupt any
}

type timerTask struct {
	id   int64
	due  int64
	fn   goja.Callable
	args []goja.Value
}

func newExecution(cfg Config, logger *slog.Logger, source string) (*execution, error) {
	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	vm := goja.New()
	vm.SetMaxCallStackSize(cfg.MaxCallStack)

	e := &execution{
		cfg:    cfg,
		logger: logger,
		vm:     vm,
		dom:    newDOM(vm, parsed),
		view:   &View{Source: source, Diagnostics: []Diagnostic{}, Console: []LogEntry{}},
	}
	e.setupGlobals()
	return e, nil
}

// run executes every script of the document, then lifecycle listeners, then
// queued timers, all within one execution budget.
func (e *execution) run(ctx context.Context) error {
	timer := time.AfterFunc(e.cfg.Timeout, func() {
		e.vm.Interrupt(errTimeout)
	})
	defer timer.Stop()
	stop := context.AfterFunc(ctx, func() {
		e.vm.Interrupt(ctx.Err())
	})
	defer stop()

	for _, script := range e.scripts() {
		if e.halted {
			break
		}
		switch attr(script, attrRole) {
		case roleReporter:
			e.exec(originMarkup, "reporter.js", nodeText(script))
			e.hookReporter()
		case roleMain:
			e.exec(originScript, "script.js", nodeText(script))
		default:
			e.exec(originMarkup, "markup.js", nodeText(script))
		}
	}

	e.fire(e.dom.ready, "DOMContentLoaded")
	e.fire(e.dom.load, "load")
	e.drainTimers()
	return e.conclude(ctx)
}

// conclude reports how the run ended. Only a run actually halted by the
// timeout gets a timeout diagnostic; an interrupt that arrives after the last
// script returned changes nothing.
func (e *execution) conclude(ctx context.Context) error {
	if !e.halted {
		return nil
	}
	if e.interrupt != errTimeout {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fmt.Errorf("render interrupted: %v", e.interrupt)
	}

	e.view.TimedOut = true
	message := fmt.Sprintf("script execution exceeded %s", e.cfg.Timeout)
	e.view.Diagnostics = append(e.view.Diagnostics, Diagnostic{Kind: KindTimeout, Message: message, Origin: originScript})
	e.dom.appendDiagnostic(message)
	return nil
}

// scripts returns the inline classic scripts in document order.
// External scripts are never fetched.
func (e *execution) scripts() []*html.Node {
	var out []*html.Node
	for _, n := range e.dom.doc.Find("script").Nodes {
		if hasAttr(n, "src") {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(attr(n, "type"))) {
		case "", "text/javascript", "application/javascript", "module":
			out = append(out, n)
		}
	}
	return out
}

func (e *execution) exec(origin, name, code string) {
	e.guard(origin, func() error {
		_, err := e.vm.RunScript(name, code)
		return err
	})
}

// guard runs fn and turns whatever it throws into a contained diagnostic.
func (e *execution) guard(origin string, fn func() error) {
	if e.halted {
		return
	}
	err := fn()
	if err == nil {
		return
	}

	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		e.halted = true
		e.interrupt = interrupted.Value()
		return
	}

	kind := KindThrown
	var message, label string
	var value goja.Value

	var overflow *goja.StackOverflowError
	var exception *goja.Exception
	switch {
	case errors.As(err, &overflow):
		message = "Maximum call stack size exceeded"
		label = "RangeError: " + message
	case errors.As(err, &exception):
		value = exception.Value()
		var name string
		name, message = describeError(value)
		if name == "SyntaxError" && origin != originListener && origin != originTimer {
			kind = KindSyntax
		}
		label = errorLabel(name, message)
	default:
		message = err.Error()
		label = message
	}

	e.record(Diagnostic{Kind: kind, Message: message, Origin: origin})
	e.dispatchError("Uncaught "+label, value)
}

func (e *execution) record(d Diagnostic) {
	e.view.Diagnostics = append(e.view.Diagnostics, d)
	e.logger.Debug("script failed", "kind", d.Kind, "origin", d.Origin, "message", d.Message)
}

// dispatchError delivers an uncaught error to window error listeners, the
// way a browser fires the error event. Errors thrown by those listeners are
// recorded but not dispatched again.
func (e *execution) dispatchError(message string, value goja.Value) {
	if e.reporting || e.halted {
		return
	}
	e.reporting = true
	defer func() { e.reporting = false }()

	event := e.vm.NewObject()
	_ = event.Set("type", "error")
	_ = event.Set("message", message)
	if value == nil {
		value = goja.Null()
	}
	_ = event.Set("error", value)

	for _, fn := range e.errorListeners {
		e.guard(originListener, func() error {
			_, err := fn(e.vm.GlobalObject(), event)
			return err
		})
	}
}

// hookReporter wraps the reporter installed by the document so errors caught
// around the user script are recorded too. The wrapper cannot be replaced by
// user code.
func (e *execution) hookReporter() {
	original, ok := goja.AssertFunction(e.vm.Get(reportFunc))
	if !ok {
		return
	}
	wrapper := e.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		_, message := describeError(call.Argument(0))
		e.record(Diagnostic{Kind: KindThrown, Message: message, Origin: originScript})
		if _, err := original(goja.Undefined(), call.Arguments...); err != nil {
			var interrupted *goja.InterruptedError
			if errors.As(err, &interrupted) {
				panic(err)
			}
			e.logger.Debug("error reporter failed", "error", err)
			e.dom.appendDiagnostic(message)
		}
		return goja.Undefined()
	})
	_ = e.vm.GlobalObject().DefineDataProperty(reportFunc, wrapper, goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)
}

func (e *execution) fire(listeners []goja.Callable, eventType string) {
	for _, fn := range listeners {
		event := e.vm.NewObject()
		_ = event.Set("type", eventType)
		_ = event.Set("target", e.dom.wrap(e.dom.root()))
		e.guard(originListener, func() error {
			_, err := fn(e.vm.GlobalObject(), event)
			return err
		})
	}
}

// drainTimers runs queued timers in due order on a virtual clock.
// At most Config.MaxTasks callbacks run; the rest are dropped.
func (e *execution) drainTimers() {
	for ran := 0; len(e.timers) > 0 && !e.halted; ran++ {
		if ran >= e.cfg.MaxTasks {
			e.logger.Debug("timer queue truncated", "pending", len(e.timers))
			break
		}
		next := 0
		for i, t := range e.timers {
			if t.due < e.timers[next].due {
				next = i
			}
		}
		task := e.timers[next]
		e.timers = append(e.timers[:next], e.timers[next+1:]...)
		if task.due > e.clock {
			e.clock = task.due
		}
		e.guard(originTimer, func() error {
			_, err := task.fn(e.vm.GlobalObject(), task.args...)
			return err
		})
	}
	e.timers = nil
}

func (e *execution) setTimeout(call goja.FunctionCall) goja.Value {
	fn, ok := goja.AssertFunction(call.Argument(0))
	if !ok {
		return e.vm.ToValue(0)
	}
	delay := call.Argument(1).ToInteger()
	if delay < 0 {
		delay = 0
	}
	var args []goja.Value
	if len(call.Arguments) > 2 {
		args = append(args, call.Arguments[2:]...)
	}
	return e.vm.ToValue(e.schedule(fn, delay, args))
}

func (e *execution) schedule(fn goja.Callable, delay int64, args []goja.Value) int64 {
	e.nextTimer++
	e.timers = append(e.timers, &timerTask{id: e.nextTimer, due: e.clock + delay, fn: fn, args: args})
	return e.nextTimer
}

func (e *execution) clearTimeout(call goja.FunctionCall) goja.Value {
	id := call.Argument(0).ToInteger()
	for i, t := range e.timers {
		if t.id == id {
			e.timers = append(e.timers[:i], e.timers[i+1:]...)
			break
		}
	}
	return goja.Undefined()
}

func (e *execution) setupGlobals() {
	vm := e.vm
	global := vm.GlobalObject()

	for _, name := range removedGlobals {
		_ = vm.Set(name, goja.Undefined())
	}

	for _, alias := range []string{"window", "self", "top", "parent", "frames"} {
		_ = vm.Set(alias, global)
	}

	document := e.dom.wrap(e.dom.root()).(*goja.Object)
	_ = document.DefineAccessorProperty("cookie", vm.ToValue(e.securityError), vm.ToValue(e.securityError), goja.FLAG_FALSE, goja.FLAG_TRUE)
	_ = vm.Set("document", document)

	console := vm.NewObject()
	for _, level := range []string{"log", "info", "warn", "error", "debug"} {
		_ = console.Set(level, e.makeConsoleFunc(level))
	}
	_ = console.Set("trace", e.makeConsoleFunc("debug"))
	_ = console.Set("table", e.makeConsoleFunc("log"))
	_ = console.Set("group", inert)
	_ = console.Set("groupEnd", inert)
	_ = console.Set("clear", func(goja.FunctionCall) goja.Value {
		e.view.Console = e.view.Console[:0]
		return goja.Undefined()
	})
	_ = vm.Set("console", console)

	_ = vm.Set("setTimeout", e.setTimeout)
	_ = vm.Set("clearTimeout", e.clearTimeout)
	_ = vm.Set("requestAnimationFrame", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			return vm.ToValue(0)
		}
		return vm.ToValue(e.schedule(fn, 16, []goja.Value{vm.ToValue(e.clock + 16)}))
	})
	_ = vm.Set("cancelAnimationFrame", e.clearTimeout)
	_ = vm.Set("queueMicrotask", func(call goja.FunctionCall) goja.Value {
		if fn, ok := goja.AssertFunction(call.Argument(0)); ok {
			e.schedule(fn, 0, nil)
		}
		return goja.Undefined()
	})
	// Intervals never fire headlessly: draining them would never finish.
	_ = vm.Set("setInterval", func(goja.FunctionCall) goja.Value {
		e.nextTimer++
		return vm.ToValue(e.nextTimer)
	})
	_ = vm.Set("clearInterval", inert)

	_ = vm.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		if call.Argument(0).String() == "error" {
			if fn, ok := goja.AssertFunction(call.Argument(1)); ok {
				e.errorListeners = append(e.errorListeners, fn)
			}
			return goja.Undefined()
		}
		return e.dom.listen(call)
	})
	_ = vm.Set("removeEventListener", inert)

	// Modal dialogs are blocked in a sandbox without allow-modals.
	_ = vm.Set("alert", e.makeConsoleFunc("alert"))
	_ = vm.Set("confirm", func(call goja.FunctionCall) goja.Value {
		e.makeConsoleFunc("alert")(call)
		return vm.ToValue(false)
	})
	_ = vm.Set("prompt", func(call goja.FunctionCall) goja.Value {
		e.makeConsoleFunc("alert")(call)
		return goja.Null()
	})

	storage := vm.ToValue(e.securityError)
	for _, name := range []string{"localStorage", "sessionStorage", "indexedDB"} {
		_ = global.DefineAccessorProperty(name, storage, nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	}

	navigator := vm.NewObject()
	_ = navigator.Set("userAgent", "codecanvas-headless")
	_ = navigator.Set("language", "en")
	_ = vm.Set("navigator", navigator)

	location := vm.NewObject()
	_ = location.Set("href", "about:srcdoc")
	_ = location.Set("origin", "null")
	_ = vm.Set("location", location)

	_ = vm.Set("innerWidth", 1024)
	_ = vm.Set("innerHeight", 768)
}

// securityError mirrors what an opaque-origin frame throws on storage access.
func (e *execution) securityError(goja.FunctionCall) goja.Value {
	panic(e.vm.NewGoError(errors.New("SecurityError: the document is sandboxed and lacks the 'allow-same-origin' flag")))
}

func (e *execution) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = formatValue(arg)
		}
		if len(e.view.Console) < maxConsoleEntries {
			e.view.Console = append(e.view.Console, LogEntry{Level: level, Message: strings.Join(parts, " ")})
		}
		return goja.Undefined()
	}
}

// finish strips scripts and serializes what the page shows.
func (e *execution) finish() error {
	e.dom.doc.Find("script").Remove()

	document, err := e.dom.doc.Html()
	if err != nil {
		return fmt.Errorf("serialize document: %w", err)
	}
	e.view.Document = document

	if body := e.dom.body(); body != nil {
		sel := goquery.NewDocumentFromNode(body)
		inner, err := sel.Html()
		if err != nil {
			return fmt.Errorf("serialize body: %w", err)
		}
		e.view.Body = strings.TrimSpace(inner)
		e.view.Text = strings.Join(strings.Fields(sel.Text()), " ")
	}
	return nil
}

// appendDiagnostic adds an error block from Go when no script can run anymore.
func (d *dom) appendDiagnostic(message string) {
	box := newElement("div")
	setAttr(box, "class", DiagnosticClass)
	setAttr(box, "style", DiagnosticStyle)
	label := newElement("strong")
	label.AppendChild(&html.Node{Type: html.TextNode, Data: DiagnosticLabel})
	box.AppendChild(label)
	box.AppendChild(&html.Node{Type: html.TextNode, Data: " " + message})

	parent := d.body()
	if parent == nil {
		parent = firstElement(d.root(), "html")
	}
	if parent != nil {
		parent.AppendChild(box)
	}
}

// describeError extracts the name and message of a thrown value.
// Thrown non-errors are stringified.
func describeError(v goja.Value) (name, message string) {
	if v == nil || goja.IsUndefined(v) {
		return "", "undefined"
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return "", v.String()
	}
	if n := obj.Get("name"); n != nil && !goja.IsUndefined(n) {
		name = n.String()
	}
	if m := obj.Get("message"); m != nil && !goja.IsUndefined(m) {
		return name, m.String()
	}
	return name, obj.String()
}

func errorLabel(name, message string) string {
	if name == "" {
		return message
	}
	return name + ": " + message
}

func formatValue(v goja.Value) string {
	obj, ok := v.(*goja.Object)
	if !ok {
		return v.String()
	}
	switch obj.ClassName() {
	case "Object", "Array":
		if data, err := obj.MarshalJSON(); err == nil {
			return string(data)
		}
	}
	return obj.String()
}
