package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

type logFormat int

const (
	formatKV logFormat = iota
	formatJSON
)

// defaultKeyOrder pins the stable prefix of every log line: identity and
// correlation first, then domain fields, then free-form attrs sorted last.
var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"rid",
	"update_id",
	"chat_id",
	"user_id",
	"handler",
	"request_type",
	"notebook",
	"notebook_guid",
	"note_guid",
	"file_id",
	"cache",
	"state",
	"mode",
	"status",
	"outcome",
	"attempts",
	"duration_ms",
	"error",
}

type handlerConfig struct {
	level    slog.Leveler
	writer   io.Writer
	format   logFormat
	keyOrder []string
}

// structuredHandler renders records as a single deterministic line per
// record: ordered KV pairs for humans, or a JSON object with the same
// key order for machine ingestion.
type structuredHandler struct {
	cfg       handlerConfig
	keyRank   map[string]int
	baseAttrs []slog.Attr
	groups    []string
	mu        *sync.Mutex
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	rank := make(map[string]int, len(cfg.keyOrder))
	for i, key := range cfg.keyOrder {
		rank[key] = i
	}
	return &structuredHandler{
		cfg:     cfg,
		keyRank: rank,
		mu:      &sync.Mutex{},
	}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	if h.cfg.level == nil {
		return true
	}
	return level >= h.cfg.level.Level()
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.baseAttrs = append(append([]slog.Attr(nil), h.baseAttrs...), attrs...)
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

func (h *structuredHandler) Handle(ctx context.Context, record slog.Record) error {
	fields := make(map[string]any, record.NumAttrs()+len(h.baseAttrs)+8)

	fields["ts"] = record.Time.UTC().Format(time.RFC3339Nano)
	fields["level"] = normalizeLevel(record.Level)
	if record.Message != "" {
		fields["msg"] = record.Message
	}

	for _, attr := range h.baseAttrs {
		h.appendAttr(fields, attr, h.groups)
	}
	record.Attrs(func(attr slog.Attr) bool {
		h.appendAttr(fields, attr, h.groups)
		return true
	})
	h.fromContext(ctx, fields)

	normalizeFields(fields)

	line := h.render(fields)

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.cfg.writer, line)
	return err
}

func (h *structuredHandler) appendAttr(fields map[string]any, attr slog.Attr, groups []string) {
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		sub := groups
		if attr.Key != "" {
			sub = append(append([]string(nil), groups...), attr.Key)
		}
		for _, nested := range attr.Value.Group() {
			h.appendAttr(fields, nested, sub)
		}
		return
	}
	key := attr.Key
	if key == "" {
		return
	}
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	fields[key] = attrValue(attr.Value)
}

func attrValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return RoundMS(v.Duration())
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v.Any())
	}
}

func (h *structuredHandler) fromContext(ctx context.Context, fields map[string]any) {
	if ctx == nil {
		return
	}
	setIfMissing := func(key string, value any) {
		if _, ok := fields[key]; !ok {
			fields[key] = value
		}
	}
	if rid := RIDFrom(ctx); rid != "" {
		setIfMissing("rid", CompactRID(rid))
	}
	if id := UpdateIDFrom(ctx); id != 0 {
		setIfMissing("update_id", int64(id))
	}
	if id := ChatIDFrom(ctx); id != 0 {
		setIfMissing("chat_id", id)
	}
	if id := UserIDFrom(ctx); id != 0 {
		setIfMissing("user_id", id)
	}
	if handler := HandlerFrom(ctx); handler != "" {
		setIfMissing("handler", handler)
	}
}

func (h *structuredHandler) orderedKeys(fields map[string]any) []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, iOK := h.keyRank[keys[i]]
		rj, jOK := h.keyRank[keys[j]]
		switch {
		case iOK && jOK:
			return ri < rj
		case iOK:
			return true
		case jOK:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

func (h *structuredHandler) render(fields map[string]any) string {
	keys := h.orderedKeys(fields)
	if h.cfg.format == formatJSON {
		return renderJSON(fields, keys)
	}
	return renderKV(fields, keys)
}

func renderKV(fields map[string]any, keys []string) string {
	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(kvValue(fields[key]))
	}
	b.WriteByte('\n')
	return b.String()
}

func kvValue(v any) string {
	switch val := v.(type) {
	case string:
		if val == "" || strings.ContainsAny(val, " =\"\t\n") {
			return strconv.Quote(val)
		}
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return strconv.Quote(fmt.Sprint(val))
	}
}

func renderJSON(fields map[string]any, keys []string) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		keyJSON, _ := json.Marshal(key)
		b.Write(keyJSON)
		b.WriteByte(':')
		valJSON, err := json.Marshal(fields[key])
		if err != nil {
			valJSON, _ = json.Marshal(fmt.Sprint(fields[key]))
		}
		b.Write(valJSON)
	}
	b.WriteString("}\n")
	return b.String()
}
