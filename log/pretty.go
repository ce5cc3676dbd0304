package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Styles used by the pretty handler. Lipgloss drops the escape sequences
// when the output is not a terminal.
//
//nolint:gochecknoglobals
var (
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	stringStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	numberStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	durationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	trueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	falseStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	messageStyle  = lipgloss.NewStyle().Bold(true)

	levelStyle = map[Level]lipgloss.Style{
		LevelTrace: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
)

// prettyHandler writes one colorized line per record (text mode) or an
// indented object per record (json mode).
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr
	groups []string
	json   bool
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	asJSON bool,
) *prettyHandler {
	return &prettyHandler{
		opts: *opts,
		mu:   &sync.Mutex{},
		w:    w,
		json: asJSON,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	head := make([]slog.Attr, 0, 4)

	if !r.Time.IsZero() {
		head = append(head, h.replace(slog.Time(slog.TimeKey, r.Time)))
	}

	head = append(head, slog.String(slog.LevelKey, levelLabel(r.Level)))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			head = append(head, slog.String(slog.SourceKey,
				src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	body := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	body = append(body, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		body = append(body, a)

		return true
	})

	if len(h.groups) > 0 && len(body) > 0 {
		nested := slog.Attr{Key: h.groups[len(h.groups)-1], Value: slog.GroupValue(body...)}
		for i := len(h.groups) - 2; i >= 0; i-- {
			nested = slog.Attr{Key: h.groups[i], Value: slog.GroupValue(nested)}
		}

		body = []slog.Attr{nested}
	}

	var buf bytes.Buffer

	if h.json {
		h.writeJSON(&buf, head, r.Message, body)
	} else {
		h.writeText(&buf, head, r.Level, r.Message, body)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.groups = append(h.groups[:len(h.groups):len(h.groups)], name)

	return &c
}

// replace applies the configured ReplaceAttr hook, if any.
func (h *prettyHandler) replace(a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr == nil {
		return a
	}

	return h.opts.ReplaceAttr(nil, a)
}

func (h *prettyHandler) writeText(
	buf *bytes.Buffer,
	head []slog.Attr,
	level slog.Level,
	msg string,
	body []slog.Attr,
) {
	for _, a := range head {
		if a.Equal(slog.Attr{}) {
			continue
		}

		switch a.Key {
		case slog.LevelKey:
			style, ok := levelStyle[Level(level)]
			if !ok {
				style = lipgloss.NewStyle()
			}

			buf.WriteString(style.Render(fmt.Sprintf("%-5s", a.Value.String())))

		default:
			buf.WriteString(keyStyle.Render(a.Value.String()))
		}

		buf.WriteByte(' ')
	}

	buf.WriteString(messageStyle.Render(msg))

	for _, a := range body {
		h.writeTextAttr(buf, "", a)
	}

	buf.WriteByte('\n')
}

func (h *prettyHandler) writeTextAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, member := range a.Value.Group() {
			h.writeTextAttr(buf, key, member)
		}

		return
	}

	buf.WriteByte(' ')
	buf.WriteString(keyStyle.Render(key + "="))
	buf.WriteString(renderValue(a.Value))
}

func (h *prettyHandler) writeJSON(
	buf *bytes.Buffer,
	head []slog.Attr,
	msg string,
	body []slog.Attr,
) {
	obj := make(map[string]any, len(head)+len(body)+1)

	for _, a := range head {
		if !a.Equal(slog.Attr{}) {
			obj[a.Key] = a.Value.String()
		}
	}

	obj[slog.MessageKey] = msg

	for _, a := range body {
		a.Value = a.Value.Resolve()
		if !a.Equal(slog.Attr{}) {
			obj[a.Key] = nativeValue(a.Value)
		}
	}

	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		data = []byte(strconv.Quote(err.Error()))
	}

	buf.Write(data)
	buf.WriteByte('\n')
}

func renderValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return stringStyle.Render(v.String())

	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return numberStyle.Render(v.String())

	case slog.KindBool:
		if v.Bool() {
			return trueStyle.Render("true")
		}

		return falseStyle.Render("false")

	case slog.KindDuration:
		return durationStyle.Render(v.Duration().String())

	case slog.KindTime:
		return keyStyle.Render(v.Time().Format(time.RFC3339))

	default:
		return stringStyle.Render(v.String())
	}
}

func nativeValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindGroup:
		group := make(map[string]any, len(v.Group()))
		for _, a := range v.Group() {
			group[a.Key] = nativeValue(a.Value.Resolve())
		}

		return group

	case slog.KindDuration:
		return v.Duration().String()

	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}

		return v.Any()

	default:
		return v.Any()
	}
}
