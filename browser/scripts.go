package browser

import (
	"encoding/json"
	"fmt"
)

// xpathFn returns the absolute XPath of an element, e.g. /html/body/div[2].
const xpathFn = `function(el) {
	const parts = [];
	let node = el;
	while (node && node.nodeType === 1) {
		let idx = 0;
		let sib = node.previousElementSibling;
		while (sib) {
			if (sib.tagName === node.tagName) idx++;
			sib = sib.previousElementSibling;
		}
		const t = node.tagName.toLowerCase();
		parts.unshift(idx > 0 ? t + '[' + (idx + 1) + ']' : t);
		node = node.parentElement;
	}
	return '/' + parts.join('/');
}`

// computedStyleFn reads the named properties of an element. A property that
// throws is left out so one bad read does not lose the rest.
const computedStyleFn = `function(el, props) {
	if (!el || !el.isConnected) return null;
	let cs;
	try {
		cs = window.getComputedStyle(el);
	} catch (e) {
		return {};
	}
	const out = {};
	for (const p of props) {
		try {
			const v = cs[p];
			if (typeof v === 'string') out[p] = v;
		} catch (e) {}
	}
	return out;
}`

const cssVariablesFn = `function() {
	const styles = window.getComputedStyle(document.documentElement);
	const vars = {};
	for (let i = 0; i < styles.length; i++) {
		const p = styles[i];
		if (p.startsWith('--')) vars[p] = styles.getPropertyValue(p).trim();
	}
	return vars;
}`

// navigationStatusFn reports the HTTP status of the current document, or 0
// when the browser does not expose it.
const navigationStatusFn = `function() {
	const entries = performance.getEntriesByType('navigation');
	if (!entries.length || typeof entries[0].responseStatus !== 'number') return 0;
	return entries[0].responseStatus;
}`

const layoutWidthFn = `function() { return window.innerWidth; }`

const readyStateFn = `function() { return document.readyState; }`

const scrollHeightFn = `function() {
	return Math.max(document.documentElement.scrollHeight, document.body ? document.body.scrollHeight : 0);
}`

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// jsPath is the expression selecting the ordinal-th match of selector.
func jsPath(selector string, ordinal int) string {
	return fmt.Sprintf("document.querySelectorAll(%s)[%d]", jsString(selector), ordinal)
}

// call renders an immediately-invoked function expression.
func call(fn string, args ...string) string {
	expr := "(" + fn + ")("
	for i, a := range args {
		if i > 0 {
			expr += ", "
		}
		expr += a
	}
	return expr + ")"
}

// webdriverBody adapts a function for WebDriver's executeScript, which runs
// a function body with the call arguments in `arguments`.
func webdriverBody(fn string) string {
	return "return (" + fn + ").apply(null, arguments);"
}

// jsStrings renders a JavaScript array literal of strings.
func jsStrings(values []string) string {
	if values == nil {
		values = []string{}
	}
	b, _ := json.Marshal(values)
	return string(b)
}
