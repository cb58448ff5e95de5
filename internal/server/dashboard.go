package server

import (
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

var dashboardTmpl = template.Must(template.New("dashboard").Parse(dashboardHTML))

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	stats, entries := s.log.Snapshot(50)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := map[string]any{"Stats": stats, "Entries": entries}
	if err := dashboardTmpl.Execute(w, data); err != nil {
		zap.L().Error("dashboard render failed", zap.Error(err))
	}
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Lead Qualifier</title>
<style>
  body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 0; background: #f4f5f7; color: #22272e; }
  header { background: #1a1f36; color: #fff; padding: 18px 32px; }
  header h1 { margin: 0; font-size: 20px; }
  main { max-width: 1000px; margin: 24px auto; padding: 0 16px; }
  .cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(140px, 1fr)); gap: 12px; }
  .card { background: #fff; border-radius: 8px; padding: 16px; box-shadow: 0 1px 3px rgba(0,0,0,.08); }
  .card .num { font-size: 28px; font-weight: 600; }
  .card .label { color: #6b7280; font-size: 13px; margin-top: 4px; }
  table { width: 100%; border-collapse: collapse; background: #fff; border-radius: 8px; margin-top: 24px; box-shadow: 0 1px 3px rgba(0,0,0,.08); }
  th, td { text-align: left; padding: 10px 14px; font-size: 14px; border-bottom: 1px solid #eceef1; }
  th { color: #6b7280; font-weight: 500; }
  .tag { display: inline-block; padding: 2px 8px; border-radius: 10px; font-size: 12px; }
  .tag.logged { background: #def7ec; color: #03543f; }
  .tag.skipped { background: #fdf6b2; color: #723b13; }
  .tag.errored { background: #fde8e8; color: #9b1c1c; }
</style>
</head>
<body>
<header><h1>Lead Qualifier</h1></header>
<main>
  <div class="cards" id="cards">
    <div class="card"><div class="num" id="total">{{.Stats.Total}}</div><div class="label">Processed</div></div>
    <div class="card"><div class="num" id="qualified">{{.Stats.Qualified}}</div><div class="label">Qualified</div></div>
    <div class="card"><div class="num" id="not_qualified">{{.Stats.Unqualified}}</div><div class="label">Not qualified</div></div>
    <div class="card"><div class="num" id="spam">{{.Stats.Spam}}</div><div class="label">Spam</div></div>
    <div class="card"><div class="num" id="skipped">{{.Stats.Skipped}}</div><div class="label">Skipped</div></div>
    <div class="card"><div class="num" id="errors">{{.Stats.Errored}}</div><div class="label">Errors</div></div>
  </div>
  <table>
    <thead><tr><th>Time</th><th>Outcome</th><th>Lead</th><th>Score</th><th>Summary</th></tr></thead>
    <tbody id="rows">
    {{range .Entries}}
      <tr>
        <td>{{.Timestamp.Format "15:04:05"}}</td>
        <td><span class="tag {{.Outcome}}">{{.Outcome}}</span></td>
        <td>{{if .LeadName}}{{.LeadName}}{{else}}{{.LeadIdentity}}{{end}}</td>
        <td>{{if .Scored}}{{.Score}}{{else}}&mdash;{{end}}</td>
        <td>{{.Summary}}</td>
      </tr>
    {{end}}
    </tbody>
  </table>
</main>
<script>
async function refresh() {
  try {
    const stats = await (await fetch('/api/stats')).json();
    document.getElementById('total').textContent = stats.total_processed;
    document.getElementById('qualified').textContent = stats.qualified;
    document.getElementById('not_qualified').textContent = stats.not_qualified;
    document.getElementById('spam').textContent = stats.spam;
    document.getElementById('skipped').textContent = stats.skipped;
    document.getElementById('errors').textContent = stats.errors;

    const logs = await (await fetch('/api/logs')).json();
    const rows = logs.map(e => {
      const t = new Date(e.timestamp).toLocaleTimeString();
      const lead = e.lead_name || e.lead_identity || '';
      const score = e.scored ? e.score : '—';
      return '<tr><td>' + t + '</td>' +
        '<td><span class="tag ' + e.outcome + '">' + e.outcome + '</span></td>' +
        '<td>' + lead + '</td><td>' + score + '</td>' +
        '<td>' + (e.summary || '') + '</td></tr>';
    });
    document.getElementById('rows').innerHTML = rows.join('');
  } catch (err) {
    console.error('refresh failed', err);
  }
}
setInterval(refresh, 5000);
</script>
</body>
</html>
`
