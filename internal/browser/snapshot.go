package browser

import "strings"

const maxTreeChars = 60000

// snapshotScript обходит видимый DOM, нумерует интерактивные элементы
// атрибутом data-agent-id и возвращает текстовое дерево для LLM.
// У ссылок выводится абсолютный href: из него модель берёт URL статей.
const snapshotScript = `() => {
	let idCounter = 1;
	const interactiveTags = new Set(['a', 'button', 'input', 'textarea', 'select', 'summary']);
	const skipTags = new Set(['script', 'style', 'svg', 'path', 'noscript', 'iframe']);

	document.querySelectorAll('[data-agent-id]').forEach(el => el.removeAttribute('data-agent-id'));

	function cleanText(text, limit) {
		if (!text) return '';
		const res = text.replace(/\s+/g, ' ').trim();
		return res.length > limit ? res.slice(0, limit) + '...' : res;
	}

	function escapeAttr(value) {
		return value.replace(/"/g, '\\"');
	}

	function isVisible(el) {
		if (!el.getBoundingClientRect) return false;
		if (el.getAttribute('aria-hidden') === 'true') return false;
		const rect = el.getBoundingClientRect();
		const style = window.getComputedStyle(el);
		const inViewport = rect.top < window.innerHeight * 2 && rect.bottom > 0;
		return rect.width > 0 && rect.height > 0 &&
			style.visibility !== 'hidden' &&
			style.display !== 'none' &&
			style.opacity !== '0' &&
			inViewport;
	}

	function isInteractive(el) {
		const tag = el.tagName.toLowerCase();
		const role = (el.getAttribute('role') || '').toLowerCase();
		return interactiveTags.has(tag) ||
			['button', 'link', 'textbox', 'searchbox', 'combobox', 'tab', 'menuitem'].includes(role) ||
			el.onclick != null;
	}

	function describe(el) {
		const tag = el.tagName.toLowerCase();
		const parts = ['<' + tag];

		let label = cleanText(el.innerText || el.textContent || '', 150);
		if (!label) label = cleanText(el.getAttribute('aria-label') || '', 150);
		if (!label) label = cleanText(el.getAttribute('title') || '', 150);
		if ((tag === 'input' || tag === 'textarea') && !label) {
			label = cleanText(el.getAttribute('placeholder') || '', 150);
		}
		if (label) parts.push('label="' + escapeAttr(label) + '"');

		if (tag === 'input') {
			const type = (el.getAttribute('type') || 'text').toLowerCase();
			parts.push('type="' + type + '"');
			const val = cleanText(el.value, 80);
			if (val) parts.push('value="' + escapeAttr(val) + '"');
		}
		if (tag === 'a' && el.href && !el.href.startsWith('javascript:')) {
			parts.push('href="' + escapeAttr(el.href) + '"');
		}
		return parts.join(' ') + '>';
	}

	function traverse(node, depth) {
		if (!node || depth > 25) return '';

		if (node.nodeType === Node.TEXT_NODE) {
			const text = cleanText(node.textContent, 200);
			return text.length > 2 ? '  '.repeat(depth) + text + '\n' : '';
		}
		if (node.nodeType !== Node.ELEMENT_NODE) return '';

		const el = node;
		const tag = el.tagName.toLowerCase();
		if (skipTags.has(tag) || !isVisible(el)) return '';

		const prefix = '  '.repeat(depth);
		if (isInteractive(el)) {
			const id = idCounter++;
			el.setAttribute('data-agent-id', String(id));
			// текст ссылки уже в label, внутрь не спускаемся
			return prefix + '[' + id + '] ' + describe(el) + '\n';
		}

		let output = '';
		if (/^h[1-6]$/.test(tag)) {
			output += prefix + '<' + tag + '> ' + cleanText(el.innerText, 200) + '\n';
			return output;
		}
		for (const child of el.childNodes) {
			output += traverse(child, depth + 1);
		}
		return output;
	}

	return traverse(document.body, 0);
}`

// truncateTree режет дерево по границе строки.
func truncateTree(tree string) string {
	if len(tree) <= maxTreeChars {
		return tree
	}
	cut := tree[:maxTreeChars]
	if i := strings.LastIndexByte(cut, '\n'); i > 0 {
		cut = cut[:i+1]
	}
	return cut + "...[page truncated, scroll for more]\n"
}
