package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/devboard/internal/button"
	"github.com/sweeney/devboard/internal/led"
	"github.com/sweeney/devboard/internal/status"
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
	"percent": func(duty uint16) string {
		return fmt.Sprintf("%d%%", int(duty)*100/int(led.MaxDuty))
	},
	"since": func(now, t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return now.Sub(t).Truncate(time.Second).String() + " ago"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Devboard</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on, .blink, .pwm { color: green; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Devboard</h1>

<h2>Buttons</h2>
<table>
{{range .Buttons}}<tr><th>{{.Name}}</th><td>{{.Presses}} presses, last {{since $.Now .LastPress}}</td></tr>
{{end}}</table>

<h2>LEDs</h2>
<table>
{{range .LEDs}}<tr><th>{{.ID}}</th><td class="{{.Mode}}">{{.Mode}}{{if .Blinking}} {{.Frequency}}Hz{{else if .PWM}} {{percent .Duty}}{{end}}</td></tr>
{{end}}<tr><th>Blink worker</th><td>{{if .BlinkRunning}}running{{else}}suspended{{end}}</td></tr>
{{if .Demo}}<tr><th>Demo</th><td>{{.Demo}}</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Chip</th><td>{{.Config.Chip}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/metrics">metrics</a></p>
</body>
</html>
`

type buttonRow struct {
	Name string
	status.ButtonInfo
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime  time.Duration
		Buttons []buttonRow
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	for i, b := range snap.Buttons {
		data.Buttons = append(data.Buttons, buttonRow{Name: button.ID(i).String(), ButtonInfo: b})
	}
	indexTmpl.Execute(w, data)
}
