package browser

import (
	"encoding/json"
	"fmt"
)

// controlsFn collects controls with a role, limited to question groups whose
// text contains scope when scope is not empty.
const controlsFn = `function(role, scope) {
	const roots = [];
	if (scope) {
		const needle = scope.toLowerCase();
		for (const item of document.querySelectorAll('[role="listitem"]')) {
			if ((item.innerText || '').toLowerCase().includes(needle)) {
				roots.push(item);
			}
		}
	} else {
		roots.push(document);
	}
	const out = [];
	for (const root of roots) {
		for (const el of root.querySelectorAll('[role="' + role + '"]')) {
			out.push(el);
		}
	}
	return out;
}`

const labelFn = `function(el) {
	return (el.getAttribute('aria-label') || el.getAttribute('data-value') ||
		el.getAttribute('data-answer-value') || el.innerText || '').trim();
}`

func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		// Marshal of a string cannot fail.
		panic(err)
	}
	return string(b)
}

func controlsCall(q Query) string {
	return fmt.Sprintf("(%s)(%s, %s)", controlsFn, jsString(string(q.Role)), jsString(q.Scope))
}

// labelsJS evaluates to the labels of all matching controls.
func labelsJS(q Query) string {
	return fmt.Sprintf("%s.map(%s)", controlsCall(q), labelFn)
}

// countJS evaluates to the number of matching controls.
func countJS(q Query) string {
	return fmt.Sprintf("%s.length", controlsCall(q))
}

// firstJS evaluates to the first matching control or null.
func firstJS(q Query) string {
	return fmt.Sprintf("(%s[0] || null)", controlsCall(q))
}

// controlJS evaluates to the matching control labeled label, or null.
func controlJS(q Query, label string) string {
	return fmt.Sprintf("(%s.find(el => (%s)(el) === %s) || null)", controlsCall(q), labelFn, jsString(label))
}

// markerJS evaluates to the page fingerprint: the first line of every
// question group, then the role and label of every control.
var markerJS = fmt.Sprintf(`(function() {
	if (!document.body) {
		return '';
	}
	const label = %s;
	const parts = [];
	for (const item of document.querySelectorAll('[role="listitem"]')) {
		parts.push((item.innerText || '').trim().split('\n')[0]);
	}
	for (const el of document.querySelectorAll('[role="radio"],[role="checkbox"],[role="button"]')) {
		parts.push(el.getAttribute('role') + ':' + label(el));
	}
	return parts.join('|');
})()`, labelFn)

const readyJS = `document.readyState === 'complete'`
