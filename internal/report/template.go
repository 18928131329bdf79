package report

// DigestTemplate is the HTML template for the daily digest.
// It is embedded as a Go constant — no external file dependencies.
const DigestTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --left: #2563eb;
    --right: #dc2626;
    --neutral: #6b7280;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 900px;
    margin: 0 auto;
    padding: 20px;
  }
  h1, h2, h3 { font-weight: 600; }
  h1 { font-size: 1.5rem; margin-bottom: 4px; color: var(--accent); }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  h3 { font-size: 1rem; margin: 16px 0 8px; }
  .muted { color: var(--muted); font-size: 0.85rem; }

  .header {
    border-bottom: 3px solid var(--accent);
    padding-bottom: 12px;
    margin-bottom: 16px;
  }

  .bias-badge {
    display: inline-block;
    color: white;
    padding: 2px 12px;
    border-radius: 4px;
    font-weight: 700;
    margin-left: 8px;
  }
  .bias-badge.left    { background: var(--left); }
  .bias-badge.right   { background: var(--right); }
  .bias-badge.neutral { background: var(--neutral); }

  .sentiment-bar {
    display: grid;
    grid-template-columns: repeat(3, 1fr);
    gap: 8px;
    background: var(--section-bg);
    padding: 12px;
    border-radius: 8px;
    margin: 8px 0;
  }
  .sentiment-item { text-align: center; }
  .sentiment-item .label { font-size: 0.75rem; color: var(--muted); text-transform: uppercase; }
  .sentiment-item .value { font-size: 1rem; font-weight: 600; }

  table { width: 100%; border-collapse: collapse; margin: 8px 0; }
  th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid var(--border); font-size: 0.9rem; }
  th { color: var(--muted); font-size: 0.75rem; text-transform: uppercase; }

  .evidence { background: var(--section-bg); border-left: 3px solid var(--accent); padding: 8px 12px; margin: 8px 0; font-size: 0.9rem; }
  .empty { color: var(--muted); font-style: italic; margin-top: 24px; }
  .footer { margin-top: 32px; padding-top: 12px; border-top: 1px solid var(--border); }
</style>
</head>
<body>
<div class="header">
  <h1>{{.Title}}</h1>
  <p class="muted">{{.HumanDay}} · generated {{.GeneratedAt}} UTC</p>
</div>

{{if not .Sources}}
<p class="empty">No analysis reports for this day.</p>
{{end}}

{{range .Sources}}
<h2>{{.Flag}} {{.Name}} <span class="muted">({{.Articles}} articles)</span></h2>

<p>
  Political bias: <strong>{{.BiasScore}}</strong>
  <span class="bias-badge {{.LeaningClass}}">{{.Leaning}}</span>
  {{if .RatedBias}}<span class="muted">third-party consensus: {{.RatedBias}}</span>{{end}}
</p>
{{if .BiasEvidence}}<div class="evidence">{{.BiasEvidence}}</div>{{end}}

<div class="sentiment-bar">
  <div class="sentiment-item"><div class="label">Positive</div><div class="value">{{.SentimentPositive}}</div></div>
  <div class="sentiment-item"><div class="label">Negative</div><div class="value">{{.SentimentNegative}}</div></div>
  <div class="sentiment-item"><div class="label">Neutral</div><div class="value">{{.SentimentNeutral}}</div></div>
</div>

{{if .Narratives}}
<h3>Dominant Narratives</h3>
<table>
  <tr><th>Theme</th><th>Coverage</th><th>Examples</th></tr>
  {{range .Narratives}}
  <tr><td>{{.Theme}}</td><td>{{.Coverage}}</td><td class="muted">{{.Examples}}</td></tr>
  {{end}}
</table>
{{end}}

{{if .Values}}
<h3>Promoted Values</h3>
<table>
  <tr><th>Value</th><th>Examples</th></tr>
  {{range .Values}}
  <tr><td>{{.Value}}</td><td class="muted">{{.Examples}}</td></tr>
  {{end}}
</table>
{{end}}
{{end}}

<div class="footer muted">MediaLens · one report per publisher per day</div>
</body>
</html>
`
