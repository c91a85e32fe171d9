/*
Package preview renders playground sources into an isolated document.

# Overview

A preview is rebuilt from scratch every time any of the three sources changes.
There is no incremental patching: the previous rendering is discarded and a
complete new document replaces it.

Two renditions share one document builder:

  - Build produces the document a browser loads into a sandboxed frame. The
    user script runs inside a try/catch and a window error listener, both of
    which append a visible diagnostic block to the page instead of failing.
  - Renderer executes the same document headlessly: goja runs the scripts
    against a DOM shim backed by goquery, and the resulting body, diagnostics
    and console output are returned as a View.

# Isolation

In the browser the document is served with a CSP sandbox (allow-scripts only)
or embedded as an iframe srcdoc with sandbox="allow-scripts". Without
allow-same-origin the frame gets an opaque origin and cannot reach host
cookies, storage or DOM.

Headlessly every render gets a brand-new goja runtime. The global scope has no
require, process, fetch, XMLHttpRequest or WebSocket; timers are queued and
drained after the scripts; execution is interrupted after Config.Timeout.

# Usage

	r := preview.New(preview.DefaultConfig())
	defer r.Close()

	view, err := r.Render(ctx, models.SourceDocument{
		Markup: "<h1>Hi</h1>",
		Style:  "h1{color:red}",
		Script: `throw new Error("boom")`,
	})
	// view.Diagnostics[0].Message == "boom"
*/
package preview
