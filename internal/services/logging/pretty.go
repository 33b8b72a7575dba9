package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// PrettyHandler is a compact slog handler for console output.
//
// Format:
//
//	15:04:05.000 INF [component] message key=value ...
type PrettyHandler struct {
	w     io.Writer
	mu    *sync.Mutex
	level slog.Level

	attrs []slog.Attr
	group string
}

func NewPrettyHandler(w io.Writer, level slog.Level) *PrettyHandler {
	return &PrettyHandler{w: w, mu: &sync.Mutex{}, level: level}
}

func (h *PrettyHandler) Enabled(_ context.Context, lvl slog.Level) bool {
	return lvl >= h.level
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	comp := ""
	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	collect := func(a slog.Attr) bool {
		if a.Key == "comp" || a.Key == "component" {
			comp = fmt.Sprint(a.Value.Any())
			return true
		}
		attrs = append(attrs, a)
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(func(a slog.Attr) bool { return collect(h.qualify(a)) })

	var b strings.Builder
	b.WriteString(r.Time.Local().Format("15:04:05.000"))
	b.WriteString(" ")
	b.WriteString(levelShort(r.Level))
	if comp != "" {
		b.WriteString(" [")
		b.WriteString(comp)
		b.WriteString("]")
	}
	b.WriteString(" ")
	b.WriteString(r.Message)
	for _, a := range attrs {
		b.WriteString(" ")
		b.WriteString(a.Key)
		b.WriteString("=")
		b.WriteString(valString(a.Value))
	}
	b.WriteString("\n")

	h.mu.Lock()
	_, err := io.WriteString(h.w, b.String())
	h.mu.Unlock()
	return err
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		cp.attrs = append(cp.attrs, h.qualify(a))
	}
	return &cp
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	cp := *h
	if cp.group == "" {
		cp.group = name
	} else {
		cp.group += "." + name
	}
	return &cp
}

func (h *PrettyHandler) qualify(a slog.Attr) slog.Attr {
	if h.group == "" {
		return a
	}
	return slog.Attr{Key: h.group + "." + a.Key, Value: a.Value}
}

func levelShort(l slog.Level) string {
	switch {
	case l <= slog.LevelDebug:
		return "DBG"
	case l < slog.LevelWarn:
		return "INF"
	case l < slog.LevelError:
		return "WRN"
	default:
		return "ERR"
	}
}

func valString(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return fmt.Sprintf("%q", v.String())
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	default:
		if v.Kind() == slog.KindAny {
			if err, ok := v.Any().(error); ok {
				return fmt.Sprintf("%q", err.Error())
			}
		}
		return fmt.Sprint(v.Any())
	}
}
