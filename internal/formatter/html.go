package formatter

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/djib1010/stremio-library-exporter/internal/library"
)

// reportTemplate renders the self-contained library gallery: stats header,
// tabbed watched/watchlist poster grids, title search, and restore notes.
var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Stremio Library Export</title>
<style>
:root { --bg-color: #121212; --card-bg: #1e1e1e; --text-color: #e0e0e0; --accent-color: #6c5ce7; --secondary-text: #a0a0a0; }
body { font-family: 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; background-color: var(--bg-color); color: var(--text-color); margin: 0; padding: 20px; }
header { text-align: center; margin-bottom: 40px; padding: 20px 0; border-bottom: 1px solid #333; }
h1 { color: var(--accent-color); margin-bottom: 10px; }
.stats { display: flex; justify-content: center; gap: 20px; margin-bottom: 20px; }
.stat-box { background: var(--card-bg); padding: 10px 20px; border-radius: 8px; text-align: center; }
.stat-number { display: block; font-size: 1.5em; font-weight: bold; color: var(--accent-color); }
.tabs { display: flex; justify-content: center; gap: 10px; margin-bottom: 30px; }
.tab-btn { background: var(--card-bg); border: none; color: var(--text-color); padding: 10px 25px; border-radius: 20px; cursor: pointer; font-size: 1em; }
.tab-btn.active { background: var(--accent-color); color: white; }
.search-container { text-align: center; margin-bottom: 30px; }
#search-input { padding: 10px 15px; width: 300px; border-radius: 20px; border: 1px solid #333; background: var(--card-bg); color: var(--text-color); font-size: 1em; }
.grid-container { display: grid; grid-template-columns: repeat(auto-fill, minmax(200px, 1fr)); gap: 25px; padding: 0 20px; max-width: 1400px; margin: 0 auto; }
.movie-card { background: var(--card-bg); border-radius: 10px; overflow: hidden; position: relative; height: 100%; display: flex; flex-direction: column; }
.poster-container { position: relative; padding-top: 150%; background-color: #2a2a2a; overflow: hidden; }
.poster-img { position: absolute; top: 0; left: 0; width: 100%; height: 100%; object-fit: cover; }
.card-content { padding: 15px; flex-grow: 1; display: flex; flex-direction: column; }
.movie-title { font-size: 1.1em; margin: 0 0 5px 0; white-space: nowrap; overflow: hidden; text-overflow: ellipsis; }
.movie-meta { font-size: 0.9em; color: var(--secondary-text); display: flex; justify-content: space-between; margin-bottom: 10px; }
.type-badge { background: #333; padding: 2px 8px; border-radius: 4px; font-size: 0.8em; text-transform: uppercase; }
.links { margin-top: auto; text-align: right; }
.imdb-link { color: #f5c518; text-decoration: none; font-size: 0.9em; }
.section { display: none; }
.section.active { display: block; }
.fallback-poster { display: flex; align-items: center; justify-content: center; position: absolute; top: 0; left: 0; width: 100%; height: 100%; color: #555; font-size: 3em; background: #2a2a2a; }
.notes { max-width: 800px; margin: 0 auto; background: var(--card-bg); padding: 30px; border-radius: 10px; line-height: 1.6; }
.notes h2 { color: var(--accent-color); border-bottom: 1px solid #333; padding-bottom: 15px; }
.notes pre { background: #000; padding: 15px; border-radius: 5px; overflow-x: auto; }
</style>
</head>
<body>
<header>
  <h1>Stremio Library Export</h1>
  <p>Generated on {{.GeneratedAt}}</p>
  <div class="stats">
    <div class="stat-box"><span class="stat-number">{{len .Watched}}</span>Watched</div>
    <div class="stat-box"><span class="stat-number">{{len .Watchlist}}</span>Watchlist</div>
  </div>
</header>
<div class="search-container">
  <input type="text" id="search-input" placeholder="Search by title..." onkeyup="filterItems()">
</div>
<div class="tabs">
  <button class="tab-btn active" onclick="switchTab(event, 'watched')">Watched</button>
  <button class="tab-btn" onclick="switchTab(event, 'watchlist')">Watchlist</button>
  <button class="tab-btn" onclick="switchTab(event, 'backup')">Backup &amp; Restore</button>
</div>
<div id="watched" class="section active">
  <div class="grid-container">{{range .Watched}}{{template "card" .}}{{end}}</div>
</div>
<div id="watchlist" class="section">
  <div class="grid-container">{{range .Watchlist}}{{template "card" .}}{{end}}</div>
</div>
<div id="backup" class="section">
  <div class="notes">
    <h2>Backup &amp; Restore</h2>
    <p>The export folder contains <code>library_backup.json</code>, the raw data needed for restoration, alongside the CSV lists and this report.</p>
    <p>To replay this library into a Stremio account, run:</p>
    <pre><code>slx restore library_backup.json</code></pre>
    <p><em>You will be asked to log in to the destination account.</em></p>
  </div>
</div>
<script>
function switchTab(event, tabName) {
  document.querySelectorAll('.section').forEach(el => el.classList.remove('active'));
  document.getElementById(tabName).classList.add('active');
  document.querySelectorAll('.tab-btn').forEach(btn => btn.classList.remove('active'));
  event.target.classList.add('active');
}
function filterItems() {
  const filter = document.getElementById('search-input').value.toLowerCase();
  document.querySelectorAll('.movie-card').forEach(card => {
    const title = card.getAttribute('data-title').toLowerCase();
    card.style.display = title.indexOf(filter) > -1 ? "" : "none";
  });
}
</script>
</body>
</html>
{{define "card"}}<div class="movie-card" data-title="{{.Title}}">
  <div class="poster-container">
    {{if .Poster}}<img src="{{.Poster}}" class="poster-img" alt="{{.Title}}" onerror="this.style.display='none'; this.nextElementSibling.style.display='flex'"><div class="fallback-poster" style="display:none"><span>&#127916;</span></div>{{else}}<div class="fallback-poster"><span>&#127916;</span></div>{{end}}
  </div>
  <div class="card-content">
    <h3 class="movie-title" title="{{.Title}}">{{.Title}}</h3>
    <div class="movie-meta"><span>{{.Year}}</span><span class="type-badge">{{.Type}}</span></div>
    <div class="links"><a href="https://www.imdb.com/title/{{.ID}}" target="_blank" class="imdb-link">IMDb &#8599;</a></div>
  </div>
</div>{{end}}`))

type reportData struct {
	GeneratedAt string
	Watched     []library.Item
	Watchlist   []library.Item
}

// ExportToHTML renders the bundle as a standalone HTML gallery report.
func ExportToHTML(bundle library.Bundle, generatedAt time.Time) ([]byte, error) {
	var buf bytes.Buffer
	data := reportData{
		GeneratedAt: generatedAt.Format("2006-01-02 15:04"),
		Watched:     bundle.Watched,
		Watchlist:   bundle.Watchlist,
	}
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render HTML report: %w", err)
	}
	return buf.Bytes(), nil
}
