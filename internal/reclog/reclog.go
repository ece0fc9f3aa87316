// Package reclog journals generated recommendations to daily JSONL files
// and compresses old files past the retention window.
package reclog

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"stock-advisor/internal/trace"
	"stock-advisor/internal/types"
)

var mu sync.Mutex

// Entry is one journaled recommendation.
type Entry struct {
	Time         string                     `json:"time"`
	Symbol       string                     `json:"symbol"`
	Action       string                     `json:"action"`
	Confidence   types.JSONFloat            `json:"confidence"`
	Narrative    string                     `json:"narrative"`
	Insights     map[string]types.JSONFloat `json:"insights,omitempty"`
	FallbackUsed bool                       `json:"fallback_used,omitempty"`
	TraceID      string                     `json:"trace_id,omitempty"`
	SpanID       string                     `json:"span_id,omitempty"`
}

func logDir() string {
	if v := os.Getenv("ADVISOR_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func dailyFilepath(t time.Time) string {
	d := t.Format("2006-01-02")
	return filepath.Join(logDir(), "recommendations", d+".jsonl")
}

// Append journals one recommendation under today's file.
func Append(ctx context.Context, rec types.Recommendation) error {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now()

	e := Entry{
		Time:       now.Format("2006-01-02 15:04:05"),
		Symbol:     rec.Decision.Symbol,
		Action:     rec.Decision.Action,
		Confidence: rec.Decision.Confidence,
		Narrative:  rec.Decision.Narrative,
		Insights:   rec.Decision.Insights,
	}
	if traceID, spanID, ok := trace.GetTraceFields(ctx); ok {
		e.TraceID = traceID
		e.SpanID = spanID
	}
	if rec.Forecast != nil {
		e.FallbackUsed = rec.Forecast.FallbackUsed
	}

	p := dailyFilepath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(e)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips journal files older than retentionDays and removes
// the originals.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	root := logDir()
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".jsonl" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil || !info.ModTime().Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		if _, e2 := os.Stat(gz); e2 == nil {
			_ = os.Remove(p)
			return nil
		}

		in, e3 := os.Open(p)
		if e3 != nil {
			return nil
		}
		defer in.Close()

		out, e4 := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if e4 != nil {
			return nil
		}
		gw := gzip.NewWriter(out)
		if _, e5 := io.Copy(gw, in); e5 == nil {
			_ = gw.Close()
			_ = out.Close()
			_ = os.Remove(p)
		} else {
			_ = gw.Close()
			_ = out.Close()
		}
		return nil
	})
}
