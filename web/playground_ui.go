package web

import (
	"fmt"

	"github.com/rohanthewiz/element"
	"github.com/rohanthewiz/rweb"

	"plugyard/registry"
)

// playgroundHandler serves the plugin playground interface
func playgroundHandler(c rweb.Context) error {
	return c.WriteHTML(generatePlaygroundUI(pluginRegistry))
}

func generatePlaygroundUI(reg *registry.Registry) string {
	b := element.NewBuilder()

	b.Html().R(
		b.Head().R(
			b.Title().T("Plugin Playground - Plugyard"),
			b.Meta("charset", "UTF-8"),
			b.Meta("name", "viewport", "content", "width=device-width, initial-scale=1.0"),
			b.Style().T(generatePlaygroundCSS()),
		),
		b.Body().R(
			b.Div("id", "playground").R(
				b.Header().R(
					b.Div("class", "header-content").R(
						b.H1().T("Plugin Playground"),
						b.Span("class", "plugin-count").T(fmt.Sprintf("%d plugins loaded", len(reg.Plugins()))),
					),
				),
				b.Main().R(
					b.Div("id", "plugin-list", "class", "plugin-list").T("Loading plugins..."),
					b.Section("class", "workbench").R(
						b.Div("id", "tool-header", "class", "tool-header").T("Select a tool to begin"),
						b.Div("id", "param-form", "class", "param-form").R(),
						b.Div("class", "editors").R(
							b.Div("class", "editor-group").R(
								b.Label("for", "env-json").T("Env (JSON)"),
								b.TextArea("id", "env-json", "rows", "3",
									"placeholder", `{"PIXABAY_API_KEY": "..."}`).T("{}"),
							),
							b.Div("class", "editor-group").R(
								b.Label("for", "config-json").T("Config (JSON)"),
								b.TextArea("id", "config-json", "rows", "3",
									"placeholder", `{"units": "fahrenheit"}`).T("{}"),
							),
							b.Div("class", "editor-group").R(
								b.Label("for", "locale-input").T("Locale"),
								b.Input("type", "text", "id", "locale-input", "value", "en"),
							),
						),
						b.Div("class", "actions").R(
							b.Button("id", "execute-btn", "class", "btn-primary", "onclick", "executeTool()").T("Execute"),
						),
						b.Div("id", "result", "class", "result-box hidden").R(),
						b.Section("class", "history").R(
							b.H2().T("Recent Executions"),
							b.Div("id", "history-list").T("No executions yet"),
						),
					),
				),
			),
			b.Script().T(generatePlaygroundJS()),
		),
	)

	return b.String()
}

func generatePlaygroundCSS() string {
	return `
		:root {
			--bg-primary: #1a1a1a;
			--bg-secondary: #2a2a2a;
			--bg-tertiary: #3a3a3a;
			--text-primary: #ffffff;
			--text-secondary: #b0b0b0;
			--accent: #4a9eff;
			--accent-hover: #3a8eef;
			--border: #404040;
			--success: #4caf50;
			--error: #f44336;
		}

		* {
			margin: 0;
			padding: 0;
			box-sizing: border-box;
		}

		body {
			font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
			background: var(--bg-primary);
			color: var(--text-primary);
			min-height: 100vh;
		}

		header {
			background: var(--bg-secondary);
			border-bottom: 1px solid var(--border);
			padding: 16px 24px;
		}

		.header-content {
			display: flex;
			align-items: center;
			justify-content: space-between;
		}

		.header-content h1 {
			font-size: 20px;
		}

		.plugin-count {
			color: var(--text-secondary);
			font-size: 13px;
		}

		main {
			display: grid;
			grid-template-columns: 280px 1fr;
			gap: 24px;
			padding: 24px;
			max-width: 1200px;
			margin: 0 auto;
		}

		.plugin-list {
			background: var(--bg-secondary);
			border: 1px solid var(--border);
			border-radius: 8px;
			padding: 12px;
			align-self: start;
		}

		.plugin-group {
			margin-bottom: 12px;
		}

		.plugin-name {
			font-weight: 600;
			font-size: 14px;
			padding: 6px 8px;
			color: var(--text-secondary);
		}

		.tool-btn {
			display: block;
			width: 100%;
			text-align: left;
			background: none;
			border: none;
			color: var(--text-primary);
			padding: 8px 12px;
			border-radius: 6px;
			cursor: pointer;
			font-size: 14px;
		}

		.tool-btn:hover {
			background: var(--bg-tertiary);
		}

		.tool-btn.active {
			background: var(--accent);
		}

		.workbench {
			display: flex;
			flex-direction: column;
			gap: 16px;
		}

		.tool-header {
			font-size: 16px;
			color: var(--text-secondary);
		}

		.param-form .form-group,
		.editor-group {
			margin-bottom: 12px;
			display: flex;
			flex-direction: column;
			gap: 4px;
		}

		label {
			font-size: 13px;
			color: var(--text-secondary);
		}

		input, textarea, select {
			background: var(--bg-secondary);
			border: 1px solid var(--border);
			border-radius: 6px;
			color: var(--text-primary);
			padding: 8px 10px;
			font-size: 14px;
			font-family: inherit;
		}

		textarea {
			font-family: 'SF Mono', Monaco, monospace;
			font-size: 13px;
		}

		.required-mark {
			color: var(--error);
		}

		.field-desc {
			font-size: 12px;
			color: var(--text-secondary);
		}

		.btn-primary {
			background: var(--accent);
			border: none;
			color: white;
			padding: 10px 20px;
			border-radius: 6px;
			cursor: pointer;
			font-size: 14px;
		}

		.btn-primary:hover {
			background: var(--accent-hover);
		}

		.result-box {
			background: var(--bg-secondary);
			border: 1px solid var(--border);
			border-radius: 8px;
			padding: 16px;
			white-space: pre-wrap;
			font-family: 'SF Mono', Monaco, monospace;
			font-size: 13px;
			overflow-x: auto;
		}

		.result-box.error {
			border-color: var(--error);
			color: var(--error);
		}

		.hidden {
			display: none;
		}

		.history h2 {
			font-size: 15px;
			margin-bottom: 8px;
		}

		.history-row {
			display: flex;
			gap: 12px;
			padding: 6px 8px;
			border-bottom: 1px solid var(--border);
			font-size: 13px;
		}

		.history-row .ok {
			color: var(--success);
		}

		.history-row .fail {
			color: var(--error);
		}

		.history-row .meta {
			color: var(--text-secondary);
		}
	`
}

func generatePlaygroundJS() string {
	return `
		let plugins = [];
		let current = null;
		let currentSchema = null;

		function escapeHtml(s) {
			const div = document.createElement('div');
			div.textContent = s == null ? '' : String(s);
			return div.innerHTML;
		}

		async function loadPlugins() {
			try {
				const res = await fetch('/api/plugins');
				const data = await res.json();
				plugins = data.plugins || [];
				renderPluginList();
			} catch (e) {
				document.getElementById('plugin-list').textContent = 'Failed to load plugins: ' + e.message;
			}
		}

		function renderPluginList() {
			const list = document.getElementById('plugin-list');
			let html = '';
			for (const p of plugins) {
				html += '<div class="plugin-group">';
				html += '<div class="plugin-name">' + escapeHtml(p.icon ? p.icon + ' ' + p.name : p.name) +
					' <span class="meta">v' + escapeHtml(p.version) + '</span></div>';
				for (const t of p.tools || []) {
					html += '<button class="tool-btn" data-plugin="' + escapeHtml(p.id) +
						'" data-tool="' + escapeHtml(t.id) +
						'" onclick="selectTool(this)">' + escapeHtml(t.name) + '</button>';
				}
				html += '</div>';
			}
			list.innerHTML = html || 'No plugins registered';
		}

		async function selectTool(btn) {
			const pluginId = btn.dataset.plugin;
			const toolId = btn.dataset.tool;
			document.querySelectorAll('.tool-btn').forEach(function(el) { el.classList.remove('active'); });
			btn.classList.add('active');

			const res = await fetch('/api/plugins?pluginId=' + encodeURIComponent(pluginId) +
				'&toolId=' + encodeURIComponent(toolId));
			const data = await res.json();
			current = { pluginId: pluginId, toolId: toolId };
			currentSchema = data.schema;
			document.getElementById('tool-header').textContent = pluginId + ' / ' + toolId;
			renderForm();
		}

		function renderForm() {
			const form = document.getElementById('param-form');
			if (!currentSchema || !currentSchema.properties) {
				form.innerHTML = '<div class="field-desc">This tool takes no parameters</div>';
				return;
			}
			const required = currentSchema.required || [];
			let html = '';
			for (const name of Object.keys(currentSchema.properties).sort()) {
				const prop = currentSchema.properties[name];
				const isRequired = required.includes(name);
				html += '<div class="form-group">';
				html += '<label>' + escapeHtml(prop.title || name);
				if (isRequired) html += ' <span class="required-mark">*</span>';
				html += '</label>';

				const defVal = prop.default != null ? String(prop.default) : '';
				if (prop.enum && prop.enum.length) {
					html += '<select data-param="' + escapeHtml(name) + '" data-type="' + escapeHtml(prop.type) + '">';
					if (!isRequired) html += '<option value=""></option>';
					for (const v of prop.enum) {
						const label = (prop.enum_labels && prop.enum_labels[v]) || v;
						const sel = String(v) === defVal ? ' selected' : '';
						html += '<option value="' + escapeHtml(v) + '"' + sel + '>' + escapeHtml(label) + '</option>';
					}
					html += '</select>';
				} else if (prop.type === 'boolean') {
					const checked = prop.default === true ? ' checked' : '';
					html += '<input type="checkbox" data-param="' + escapeHtml(name) + '" data-type="boolean"' + checked + '>';
				} else if (prop.type === 'number') {
					html += '<input type="number" step="any" data-param="' + escapeHtml(name) +
						'" data-type="number" value="' + escapeHtml(defVal) + '">';
				} else if (prop.type === 'array') {
					html += '<input type="text" data-param="' + escapeHtml(name) +
						'" data-type="array" placeholder="comma separated">';
				} else {
					html += '<input type="text" data-param="' + escapeHtml(name) +
						'" data-type="string" value="' + escapeHtml(defVal) + '">';
				}
				if (prop.description) {
					html += '<div class="field-desc">' + escapeHtml(prop.description) + '</div>';
				}
				html += '</div>';
			}
			form.innerHTML = html;
		}

		function collectParams() {
			const params = {};
			document.querySelectorAll('#param-form [data-param]').forEach(function(el) {
				const name = el.dataset.param;
				const type = el.dataset.type;
				if (type === 'boolean') {
					params[name] = el.checked;
					return;
				}
				const raw = el.value;
				if (raw === '') return;
				if (type === 'number') {
					params[name] = parseFloat(raw);
				} else if (type === 'array') {
					params[name] = raw.split(',').map(function(s) { return s.trim(); }).filter(Boolean);
				} else {
					params[name] = raw;
				}
			});
			return params;
		}

		function showResult(text, isError) {
			const box = document.getElementById('result');
			box.classList.remove('hidden');
			box.classList.toggle('error', !!isError);
			box.textContent = text;
		}

		function parseEditor(id, label) {
			const raw = document.getElementById(id).value.trim() || '{}';
			try {
				return JSON.parse(raw);
			} catch (e) {
				showResult(label + ' is not valid JSON: ' + e.message, true);
				return null;
			}
		}

		async function executeTool() {
			if (!current) {
				showResult('Select a tool first', true);
				return;
			}
			const env = parseEditor('env-json', 'Env');
			if (env === null) return;
			const config = parseEditor('config-json', 'Config');
			if (config === null) return;

			const body = {
				pluginId: current.pluginId,
				toolId: current.toolId,
				params: collectParams(),
				env: env,
				config: config,
				locale: document.getElementById('locale-input').value || 'en'
			};

			showResult('Running...', false);
			try {
				const res = await fetch('/api/execute', {
					method: 'POST',
					headers: { 'Content-Type': 'application/json' },
					body: JSON.stringify(body)
				});
				const data = await res.json();
				if (data.success) {
					showResult(JSON.stringify(data.result, null, 2), false);
				} else {
					showResult(data.error || 'execution failed', true);
				}
			} catch (e) {
				showResult('Request failed: ' + e.message, true);
			}
			loadHistory();
		}

		async function loadHistory() {
			try {
				const res = await fetch('/api/executions?limit=20');
				const data = await res.json();
				renderHistory(data.executions || []);
			} catch (e) {
				// history is best effort
			}
		}

		function renderHistory(rows) {
			const list = document.getElementById('history-list');
			if (!rows.length) {
				list.textContent = 'No executions yet';
				return;
			}
			let html = '';
			for (const r of rows) {
				const mark = r.success ? '<span class="ok">ok</span>' : '<span class="fail">fail</span>';
				html += '<div class="history-row">' + mark +
					'<span>' + escapeHtml(r.plugin_id) + ' / ' + escapeHtml(r.tool_id) + '</span>' +
					'<span class="meta">' + escapeHtml(r.duration_ms) + ' ms</span>' +
					(r.error ? '<span class="fail">' + escapeHtml(r.error) + '</span>' : '') +
					'</div>';
			}
			list.innerHTML = html;
		}

		loadPlugins();
		loadHistory();
	`
}
