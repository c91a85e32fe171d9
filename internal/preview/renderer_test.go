package preview

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YashMarke130105/pen-perfect-playground/internal/models"
)

func newTestRenderer(t *testing.T, cfg Config) *Renderer {
	t.Helper()

	r := New(cfg)
	t.Cleanup(func() { r.Close() })
	return r
}

func render(t *testing.T, r *Renderer, doc models.SourceDocument) *View {
	t.Helper()

	view, err := r.Render(context.Background(), doc)
	require.NoError(t, err, "user input must never fail a render")
	require.NotNil(t, view)
	return view
}

func TestRender_ThrowingScriptShowsDiagnostic(t *testing.T) {
	r := newTestRenderer(t, DefaultConfig())

	view := render(t, r, models.SourceDocument{
		Markup: "<h1>Hi</h1>",
		Style:  "h1{color:red}",
		Script: `throw new Error("boom")`,
	})

	assert.Contains(t, view.Body, "<h1>Hi</h1>")
	assert.Contains(t, view.Document, "h1{color:red}")
	assert.Contains(t, view.Body, `class="`+DiagnosticClass+`"`)
	assert.Equal(t, "Hi JavaScript Error: boom", view.Text)

	require.Len(t, view.Diagnostics, 1)
	assert.Equal(t, Diagnostic{Kind: KindThrown, Message: "boom", Origin: "script"}, view.Diagnostics[0])
	assert.True(t, view.Failed())

	require.NotEmpty(t, view.Console)
	assert.Equal(t, LogEntry{Level: "error", Message: "Error in user code: Error: boom"}, view.Console[0])
}

func TestRender_AnyInputRenders(t *testing.T) {
	r := newTestRenderer(t, DefaultConfig())

	tests := []struct {
		name string
		doc  models.SourceDocument
	}{
		{name: "empty", doc: models.SourceDocument{}},
		{name: "defaults", doc: models.DefaultSource()},
		{name: "malformed markup", doc: models.SourceDocument{Markup: "<div><p>unclosed <b>tags"}},
		{name: "invalid css", doc: models.SourceDocument{Style: "h1 { color: ; }}}"}},
		{name: "thrown string", doc: models.SourceDocument{Script: `throw "plain"`}},
		{name: "reference error", doc: models.SourceDocument{Script: `missing.call()`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			render(t, r, tt.doc)
		})
	}
}

func TestRender_EmptySources(t *testing.T) {
	r := newTestRenderer(t, DefaultConfig())

	view := render(t, r, models.SourceDocument{})

	assert.Empty(t, view.Body)
	assert.Empty(t, view.Text)
	assert.Empty(t, view.Diagnostics)
	assert.False(t, view.TimedOut)
}

func TestRender_Idempotent(t *testing.T) {
	r := newTestRenderer(t, DefaultConfig())
	doc := models.SourceDocument{
		Markup: `<ul id="list"></ul>`,
		Script: `for (var i = 0; i < 3; i++) {
  var li = document.createElement("li");
  li.textContent = "item " + i;
  document.getElementById("list").appendChild(li);
}
throw new Error("after")`,
	}

	first := render(t, r, doc)
	second := render(t, r, doc)

	assert.Equal(t, first.Body, second.Body)
	assert.Equal(t, first.Diagnostics, second.Diagnostics)
}

func TestRender_SyntaxError(t *testing.T) {
	r := newTestRenderer(t, DefaultConfig())

	view := render(t, r, models.SourceDocument{Markup: "<p>still here</p>", Script: "function ("})

	require.Len(t, view.Diagnostics, 1)
	assert.Equal(t, KindSyntax, view.Diagnostics[0].Kind)
	assert.Contains(t, view.Body, "<p>still here</p>")
	assert.Contains(t, view.Text, "JavaScript Error: Uncaught SyntaxError")
}

func TestRender_Timeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 100 * time.Millisecond
	r := newTestRenderer(t, cfg)

	start := time.Now()
	view := render(t, r, models.SourceDocument{Markup: "<p>loop</p>", Script: "while (true) {}"})

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.True(t, view.TimedOut)
	require.Len(t, view.Diagnostics, 1)
	assert.Equal(t, KindTimeout, view.Diagnostics[0].Kind)
	assert.Contains(t, view.Body, "<p>loop</p>")
	assert.Contains(t, view.Text, DiagnosticLabel)
}

func TestRender_TimeoutCoversTimers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 100 * time.Millisecond
	r := newTestRenderer(t, cfg)

	view := render(t, r, models.SourceDocument{Script: "setTimeout(function () { for (;;) {} }, 0)"})

	assert.True(t, view.TimedOut)
}

func TestRender_Isolation(t *testing.T) {
	r := newTestRenderer(t, DefaultConfig())

	t.Run("globals do not leak between renders", func(t *testing.T) {
		render(t, r, models.SourceDocument{Script: "window.leaked = 42; var alsoLeaked = 1;"})

		view := render(t, r, models.SourceDocument{
			Script: `document.body.textContent = typeof leaked + " " + typeof alsoLeaked`,
		})
		assert.Equal(t, "undefined undefined", view.Text)
	})

	t.Run("host capabilities are absent", func(t *testing.T) {
		view := render(t, r, models.SourceDocument{
			Script: `document.body.textContent = [typeof require, typeof process, typeof fetch, typeof XMLHttpRequest, typeof WebSocket].join(",")`,
		})
		assert.Equal(t, "undefined,undefined,undefined,undefined,undefined", view.Text)
	})

	t.Run("storage access is a security error", func(t *testing.T) {
		view := render(t, r, models.SourceDocument{
			Script: `try { localStorage.getItem("x"); } catch (e) { document.body.textContent = "blocked"; }`,
		})
		assert.Equal(t, "blocked", view.Text)
		assert.Empty(t, view.Diagnostics)
	})

	t.Run("window aliases the global scope", func(t *testing.T) {
		view := render(t, r, models.SourceDocument{
			Script: `var answer = 42; document.body.textContent = String(window.answer === 42 && self === window && globalThis === window)`,
		})
		assert.Equal(t, "true", view.Text)
	})
}

func TestRender_DOM(t *testing.T) {
	r := newTestRenderer(t, DefaultConfig())

	t.Run("elements are created and styled", func(t *testing.T) {
		view := render(t, r, models.SourceDocument{
			Markup: `<ul id="list"></ul>`,
			Script: `var list = document.getElementById("list");
["a", "b"].forEach(function (text) {
  var li = document.createElement("li");
  li.textContent = text;
  li.classList.add("item");
  list.appendChild(li);
});
list.style.backgroundColor = "red";`,
		})

		assert.Contains(t, view.Body, `<ul id="list" style="background-color: red;"><li class="item">a</li><li class="item">b</li></ul>`)
		assert.Empty(t, view.Diagnostics)
	})

	t.Run("queries and innerHTML", func(t *testing.T) {
		view := render(t, r, models.SourceDocument{
			Markup: `<div class="card x"><span>one</span></div><div class="card"><span>two</span></div>`,
			Script: `var cards = document.querySelectorAll(".card");
var names = [];
for (var i = 0; i < cards.length; i++) names.push(cards[i].querySelector("span").textContent);
document.getElementsByClassName("x")[0].innerHTML = "<em>" + names.join("+") + "</em>";`,
		})

		assert.Contains(t, view.Body, `<div class="card x"><em>one+two</em></div>`)
	})

	t.Run("proxies keep identity", func(t *testing.T) {
		view := render(t, r, models.SourceDocument{
			Markup: `<p id="p"></p>`,
			Script: `var p = document.getElementById("p");
p.textContent = String(p === document.querySelector("#p") && p.parentNode === document.body);`,
		})

		assert.Equal(t, "true", view.Text)
	})

	t.Run("hierarchy errors are catchable", func(t *testing.T) {
		view := render(t, r, models.SourceDocument{
			Script: `var d = document.createElement("div");
try { d.appendChild(d); } catch (e) { document.body.textContent = e.message; }`,
		})

		assert.Contains(t, view.Text, "HierarchyRequestError")
	})

	t.Run("removeChild and remove", func(t *testing.T) {
		view := render(t, r, models.SourceDocument{
			Markup: `<ul><li id="a">a</li><li id="b">b</li><li id="c">c</li></ul>`,
			Script: `var a = document.getElementById("a");
a.parentNode.removeChild(a);
document.getElementById("c").remove();`,
		})

		assert.Contains(t, view.Body, `<ul><li id="b">b</li></ul>`)
	})

	t.Run("inline markup scripts run", func(t *testing.T) {
		view := render(t, r, models.SourceDocument{
			Markup: `<p id="m"></p><script>document.getElementById("m").textContent = "inline";</script>`,
		})

		assert.Contains(t, view.Body, `<p id="m">inline</p>`)
		assert.NotContains(t, view.Body, "<script")
	})

	t.Run("document title", func(t *testing.T) {
		view := render(t, r, models.SourceDocument{Script: `document.title = "Named"`})

		assert.Contains(t, view.Document, "<title>Named</title>")
	})
}

func TestRender_VoidElementsStayEmpty(t *testing.T) {
	r := newTestRenderer(t, DefaultConfig())

	t.Run("children are rejected", func(t *testing.T) {
		view := render(t, r, models.SourceDocument{
			Markup: "<h1>Hi</h1>",
			Script: `var img = document.createElement("img");
try { img.appendChild(document.createTextNode("x")); } catch (e) { console.log(e.message); }
var br = document.createElement("br");
try { br.innerHTML = "<p>x</p>"; } catch (e) { console.log(e.message); }
img.textContent = "ignored";
document.body.appendChild(img);
document.body.appendChild(br);
throw new Error("boom");`,
		})

		assert.Contains(t, view.Body, "<h1>Hi</h1>")
		assert.Contains(t, view.Body, "<img/><br/>")
		assert.Contains(t, view.Document, "<img/><br/>")
		assert.Equal(t, "Hi JavaScript Error: boom", view.Text)

		require.GreaterOrEqual(t, len(view.Console), 2)
		assert.Equal(t, "HierarchyRequestError: <img> cannot have children", view.Console[0].Message)
		assert.Equal(t, "HierarchyRequestError: <br> cannot have children", view.Console[1].Message)
	})

	t.Run("uncaught rejection is a diagnostic", func(t *testing.T) {
		view := render(t, r, models.SourceDocument{
			Markup: "<p>kept</p>",
			Script: `var img = document.createElement("img");
img.appendChild(document.createTextNode("x"));`,
		})

		assert.Contains(t, view.Body, "<p>kept</p>")
		require.Len(t, view.Diagnostics, 1)
		assert.Contains(t, view.Diagnostics[0].Message, "HierarchyRequestError")
		assert.Contains(t, view.Text, "JavaScript Error: HierarchyRequestError")
	})
}

func TestRender_DiagnosticSurvivesOverwrittenGlobals(t *testing.T) {
	r := newTestRenderer(t, DefaultConfig())

	tests := []struct {
		name   string
		script string
	}{
		{name: "console removed", script: `console = undefined; throw new Error("boom")`},
		{name: "createElement replaced", script: `document.createElement = null; throw new Error("boom")`},
		{name: "createTextNode replaced", script: `document.createTextNode = function () { throw new Error("nope"); }; throw new Error("boom")`},
		{name: "body getter throws", script: `Object.defineProperty(document, "body", { get: function () { throw new Error("nope"); } });
throw new Error("boom")`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := render(t, r, models.SourceDocument{Markup: "<h1>Hi</h1>", Script: tt.script})

			assert.Equal(t, "Hi JavaScript Error: boom", view.Text)
			assert.NotContains(t, view.Text, "TypeError")
			require.Len(t, view.Diagnostics, 1)
			assert.Equal(t, Diagnostic{Kind: KindThrown, Message: "boom", Origin: "script"}, view.Diagnostics[0])
		})
	}
}

func TestExecution_LateTimeoutIsIgnored(t *testing.T) {
	e, err := newExecution(DefaultConfig(), slog.New(slog.DiscardHandler), Build(models.SourceDocument{Markup: "<p>done</p>"}))
	require.NoError(t, err)
	require.NoError(t, e.run(context.Background()))

	// The budget runs out after the last script has returned.
	e.vm.Interrupt(errTimeout)
	require.NoError(t, e.conclude(context.Background()))
	require.NoError(t, e.finish())

	assert.False(t, e.view.TimedOut)
	assert.Empty(t, e.view.Diagnostics)
	assert.Equal(t, "<p>done</p>", e.view.Body)
}

func TestRender_EventsAndTimers(t *testing.T) {
	r := newTestRenderer(t, DefaultConfig())

	t.Run("DOMContentLoaded fires after scripts", func(t *testing.T) {
		view := render(t, r, models.SourceDocument{
			Markup: `<p id="out"></p>`,
			Script: `document.addEventListener("DOMContentLoaded", function () {
  document.getElementById("out").textContent = "ready";
});`,
		})

		assert.Contains(t, view.Body, `<p id="out">ready</p>`)
	})

	t.Run("timers run in due order", func(t *testing.T) {
		view := render(t, r, models.SourceDocument{
			Script: `function add(text) {
  var span = document.createElement("span");
  span.textContent = text;
  document.body.appendChild(span);
}
setTimeout(add, 10, "later");
setTimeout(add, 0, "sooner");
var cancelled = setTimeout(add, 5, "never");
clearTimeout(cancelled);`,
		})

		assert.Contains(t, view.Body, "<span>sooner</span><span>later</span>")
		assert.NotContains(t, view.Body, "never")
	})

	t.Run("intervals are inert", func(t *testing.T) {
		view := render(t, r, models.SourceDocument{
			Script: `setInterval(function () { document.body.textContent = "tick"; }, 1)`,
		})

		assert.Empty(t, view.Text)
	})

	t.Run("timer errors are contained", func(t *testing.T) {
		view := render(t, r, models.SourceDocument{
			Script: `setTimeout(function () { throw new Error("late"); }, 0)`,
		})

		require.Len(t, view.Diagnostics, 1)
		assert.Equal(t, Diagnostic{Kind: KindThrown, Message: "late", Origin: "timer"}, view.Diagnostics[0])
		assert.Contains(t, view.Text, "JavaScript Error: Uncaught Error: late")
	})

	t.Run("runaway timers are bounded", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxTasks = 10
		small := newTestRenderer(t, cfg)

		view := render(t, small, models.SourceDocument{
			Script: `var n = 0; function again() { n++; document.body.textContent = String(n); setTimeout(again, 0); } again();`,
		})

		assert.Equal(t, "11", view.Text)
		assert.False(t, view.TimedOut)
	})
}

func TestRender_Console(t *testing.T) {
	r := newTestRenderer(t, DefaultConfig())

	view := render(t, r, models.SourceDocument{
		Script: `console.log("hi", 1, {a: 1}, [1, 2]); console.warn("careful"); alert("modal");`,
	})

	assert.Equal(t, []LogEntry{
		{Level: "log", Message: `hi 1 {"a":1} [1,2]`},
		{Level: "warn", Message: "careful"},
		{Level: "alert", Message: "modal"},
	}, view.Console)
}

func TestRender_ScriptCloseTagIsEscaped(t *testing.T) {
	r := newTestRenderer(t, DefaultConfig())

	view := render(t, r, models.SourceDocument{
		Markup: `<p id="o"></p>`,
		Script: `var s = "</script><b>x</b>"; document.getElementById("o").textContent = String(s.length);`,
	})

	assert.Contains(t, view.Body, `<p id="o">17</p>`)
	assert.Empty(t, view.Diagnostics)
}

type recordingObserver struct {
	mu    sync.Mutex
	views []*View
}

func (o *recordingObserver) ObserveRender(view *View) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.views = append(o.views, view)
}

func TestRenderer_Lifecycle(t *testing.T) {
	t.Run("observer sees every render", func(t *testing.T) {
		observer := &recordingObserver{}
		r := New(DefaultConfig(), WithObserver(observer))
		defer r.Close()

		render(t, r, models.SourceDocument{})
		render(t, r, models.SourceDocument{Script: "throw 1"})

		require.Len(t, observer.views, 2)
		assert.False(t, observer.views[0].Failed())
		assert.True(t, observer.views[1].Failed())
	})

	t.Run("busy when no slot frees up", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxConcurrent = 1
		cfg.AcquireWait = 20 * time.Millisecond
		r := newTestRenderer(t, cfg)

		r.slots <- struct{}{}
		defer r.release()

		_, err := r.Render(context.Background(), models.SourceDocument{})
		assert.ErrorIs(t, err, ErrBusy)
	})

	t.Run("cancelled while waiting", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxConcurrent = 1
		r := newTestRenderer(t, cfg)

		r.slots <- struct{}{}
		defer r.release()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := r.Render(ctx, models.SourceDocument{})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("closed", func(t *testing.T) {
		r := New(DefaultConfig())
		require.NoError(t, r.Close())
		require.NoError(t, r.Close())

		_, err := r.Render(context.Background(), models.SourceDocument{})
		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("concurrent renders", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxConcurrent = 2
		r := newTestRenderer(t, cfg)

		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				view, err := r.Render(context.Background(), models.SourceDocument{
					Markup: "<p>x</p>",
					Script: `document.querySelector("p").textContent = "y"`,
				})
				if err == nil && !strings.Contains(view.Body, "<p>y</p>") {
					err = assert.AnError
				}
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}
	})
}
