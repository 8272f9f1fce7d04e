package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/led-sequencer/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"yesno": func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="1">
<title>LED Sequencer</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.led { display: inline-block; width: 14px; height: 14px; border-radius: 50%; margin-right: 6px; border: 1px solid #888; }
.led.on { background: #e33; }
.led.off { background: #eee; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>LED Sequencer</h1>

<h2>Sequence</h2>
<table>
<tr><th>State</th><td id="state">{{.State}}</td></tr>
<tr><th>LEDs</th><td id="leds">{{range $i, $on := .Pattern}}<span class="led {{if $on}}on{{else}}off{{end}}" title="LED {{$i}} (pin {{index $.Config.LEDPins $i}})"></span>{{end}}</td></tr>
<tr><th>Running</th><td>{{yesno .Running}}</td></tr>
<tr><th>Press pending</th><td>{{yesno .Pending}}</td></tr>
<tr><th>Pattern table</th><td>{{.Config.Table}}</td></tr>
</table>

<h2>Counts</h2>
<table>
<tr><th>Presses</th><td>{{.Counts.Presses}}</td></tr>
<tr><th>Dropped</th><td>{{.Counts.Dropped}}</td></tr>
<tr><th>Sequences</th><td>{{.Counts.Starts}}</td></tr>
<tr><th>Completed</th><td>{{.Counts.Completed}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Chip</th><td>{{.Config.Chip}}</td></tr>
<tr><th>Button pin</th><td>{{.Config.ButtonPin}}</td></tr>
<tr><th>Debounce</th><td>{{if eq .Config.DebounceMs 0}}poll only{{else}}{{.Config.DebounceMs}}ms{{end}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>MQTT</th><td>{{if .Config.Broker}}<span class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</span> ({{.Config.Broker}}){{else}}disabled{{end}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> | <a href="/metrics">metrics</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
