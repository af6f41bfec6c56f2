package api

import (
	"encoding/json"
	"strconv"
	"strings"
)

// renderDashboard 把分类清单、自动刷新间隔和 IOC 源注入静态模板，只在启动时做一次
func renderDashboard(dash Dashboard) []byte {
	cats, _ := json.Marshal(dash.Categories)
	page := strings.NewReplacer(
		"%%CATS%%", string(cats),
		"%%AUTO_REFRESH_SECS%%", strconv.Itoa(dash.AutoRefreshSeconds),
		"%%IOC_SOURCE%%", dash.IOCSource,
	).Replace(dashboardHTML)
	return []byte(page)
}

const dashboardHTML = `<!doctype html>
<html lang="en" data-theme="dark">
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width,initial-scale=1"/>
  <title>CyberIntel &bull; CTI News</title>
  <style>
  :root{
    --bg:#F9F9F9; --panel:#FFFFFF; --ink:#000000; --ink-muted:#646464;
    --border:#A7A7A7; --accent:#E85002; --accent-600:#C10801; --radius:10px;
  }
  [data-theme="dark"]{
    --bg:#000000; --panel:#111111; --ink:#F9F9F9; --ink-muted:#A7A7A7; --border:#333333;
  }
  html,body{margin:0;padding:0;background:var(--bg);color:var(--ink);
            font:15px/1.55 system-ui,-apple-system,Segoe UI,Roboto,Arial,sans-serif}
  .wrap{max-width:1100px;margin:0 auto;padding:20px 16px 60px}
  header{display:flex;gap:12px;align-items:center;margin-bottom:10px}
  .brand{font-weight:800;font-size:24px}
  #tabs{display:flex;gap:8px;flex-wrap:wrap;margin-left:8px}
  .tab{display:inline-flex;gap:8px;align-items:center;padding:8px 12px;border:1px solid var(--border);
       border-radius:999px;text-decoration:none;color:var(--ink-muted)}
  .tab.active{color:var(--ink);border-color:var(--accent)}
  .pill{font-size:12px;color:#fff;background:var(--accent);padding:2px 8px;border-radius:999px}
  .toggle{margin-left:auto;border:1px solid var(--border);background:transparent;color:var(--ink);
          border-radius:999px;padding:8px 10px;cursor:pointer}
  .bar{border:1px solid var(--border);border-radius:var(--radius);background:var(--panel);padding:14px;margin-top:8px}
  .bar h1{font-size:20px;margin:0 0 6px 0}
  .muted{color:var(--ink-muted);font-size:13px}
  .toolbar{display:flex;gap:10px;align-items:center;margin-top:8px;flex-wrap:wrap}
  .input{flex:1;min-width:160px;border:1px solid var(--border);background:transparent;color:var(--ink);padding:10px 12px;border-radius:8px}
  .btn{border:1px solid var(--accent);background:var(--accent);color:#fff;padding:10px 14px;border-radius:8px;cursor:pointer;font-weight:600}
  .btn:hover{background:var(--accent-600)}
  .grid{display:grid;grid-template-columns:repeat(2,1fr);gap:12px;margin-top:14px}
  @media (max-width:920px){.grid{grid-template-columns:1fr}}
  .card{border:1px solid var(--border);background:var(--panel);border-radius:var(--radius);padding:14px}
  .src{color:var(--ink-muted);font-size:13px}
  .title{display:block;margin-top:6px;font-weight:700;color:var(--ink);text-decoration:none}
  .title:hover{text-decoration:underline}
  .summary{color:var(--ink-muted);margin-top:6px}
  .footer{margin-top:28px;text-align:center;color:var(--ink-muted);font-size:13px}
  .hidden{display:none}
  </style>
</head>
<body>
  <div class="wrap">
    <header>
      <div class="brand">CyberIntel</div>
      <nav id="tabs"></nav>
      <button id="themeToggle" class="toggle" title="Toggle dark/light">&#127769;</button>
    </header>

    <section class="bar">
      <h1>IT and Cybersecurity trends &amp; threats</h1>
      <div class="muted">
        <span id="countLabel">0 stories</span>
        &nbsp;&bull;&nbsp;
        <span id="lastUpdate">&mdash;</span>
        <span id="iocSource" class="hidden">
          &nbsp;&bull;&nbsp; IOC source:
          <a href="%%IOC_SOURCE%%" target="_blank" rel="noopener">%%IOC_SOURCE%%</a>
        </span>
      </div>
      <div class="toolbar">
        <input id="filter" class="input" placeholder="Filter news (title, source, summary)&hellip;"/>
        <button id="refreshBtn" class="btn" title="Fetch fresh data">Refresh now</button>
        <span class="muted">Auto-refresh %%AUTO_REFRESH_SECS%%s</span>
      </div>
      <div class="toolbar">
        <input id="regEmail" class="input" type="email" placeholder="you@example.com"/>
        <input id="regPass" class="input" type="password" placeholder="password"/>
        <button id="regBtn" class="btn">Get email alerts</button>
        <span class="muted" id="regStatus"></span>
      </div>
    </section>

    <section id="grid" class="grid"></section>
    <div class="footer">&copy; CyberIntel &bull; Live Community CTI Sharing Platform</div>
  </div>

<script>
(function(){
  const root = document.documentElement;
  const saved = localStorage.getItem("theme") || "dark";
  root.setAttribute("data-theme", saved);
  document.getElementById("themeToggle").onclick = () => {
    const next = root.getAttribute("data-theme")==="dark" ? "light" : "dark";
    root.setAttribute("data-theme", next);
    localStorage.setItem("theme", next);
  };

  const CATS = %%CATS%%;
  let CURRENT = "Home";

  function buildTabs(stats){
    const tabs = document.getElementById("tabs");
    const labels = ["Home"].concat(CATS);
    tabs.innerHTML = labels.map(l=>{
      const n = l==="Home" ? (stats.__all||0) : (stats[l]||0);
      const active = (CURRENT===l) ? " active" : "";
      return '<a href="#" class="tab'+active+'" data-cat="'+l+'">'+l+' <span class="pill">'+n+'</span></a>';
    }).join("");
    Array.from(tabs.querySelectorAll("a")).forEach(a=>{
      a.onclick = (e)=>{ e.preventDefault(); CURRENT=a.dataset.cat; load(false); };
    });
  }

  const grid = document.getElementById("grid");
  const filter = document.getElementById("filter");
  const countLabel = document.getElementById("countLabel");
  const lastUpdate = document.getElementById("lastUpdate");
  const refreshBtn = document.getElementById("refreshBtn");

  let CURRENT_ITEMS = [];
  const fmt = x => { try { return new Date(x).toLocaleString(); } catch(e){ return x; } };

  function render(items){
    CURRENT_ITEMS = items;
    const q = (filter.value||"").toLowerCase();
    const list = items.filter(it=>{
      const hay = (it.title+" "+(it.source||"")+" "+(it.summary||"")).toLowerCase();
      return hay.includes(q);
    });
    countLabel.textContent = list.length + " stories";
    grid.innerHTML = list.map(it =>
      '<article class="card">'+
        '<div class="src">'+(it.source||"&mdash;")+' &bull; '+fmt(it.published)+'</div>'+
        '<a class="title" href="'+it.link+'" target="_blank" rel="noopener">'+it.title+'</a>'+
        '<div class="summary">'+(it.summary||"")+'</div>'+
      '</article>'
    ).join("");
  }

  async function jget(url){
    const r = await fetch(url, {cache:"no-store"});
    return await r.json();
  }

  async function load(force){
    const stats = await jget("/api/stats");
    buildTabs(stats);
    const url = "/api/news?category="+encodeURIComponent(CURRENT)+"&limit=60"+(force?"&_="+Date.now():"");
    const data = await jget(url);
    lastUpdate.textContent = data.updated + " last update";
    render(data.items||[]);
  }

  let filTimer = null;
  filter.oninput = ()=>{
    clearTimeout(filTimer);
    filTimer = setTimeout(()=> render(CURRENT_ITEMS), 120);
  };

  refreshBtn.onclick = async ()=>{
    refreshBtn.disabled = true;
    try { await fetch("/api/refresh", {method:"POST"}); } catch(e){}
    await load(true);
    refreshBtn.disabled = false;
  };

  document.getElementById("regBtn").onclick = async ()=>{
    const status = document.getElementById("regStatus");
    const body = JSON.stringify({
      email: document.getElementById("regEmail").value,
      password: document.getElementById("regPass").value
    });
    try {
      const r = await fetch("/api/register", {method:"POST", headers:{"Content-Type":"application/json"}, body});
      const data = await r.json();
      status.textContent = r.ok ? "Subscribed: "+data.email : (data.message||"registration failed");
    } catch(e) {
      status.textContent = "registration failed";
    }
  };

  load(false);
  setInterval(()=> load(true), %%AUTO_REFRESH_SECS%% * 1000);
})();
</script>
</body>
</html>
`
