package log

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

var levelNames = map[Level]string{Debug: "debug", Info: "info", Warn: "warn", Error: "error"}
var nameToLevel = map[string]Level{"debug": Debug, "info": Info, "warn": Warn, "error": Error}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ParseLevel maps a level name to a Level, defaulting to Info.
func ParseLevel(s string) Level {
	if l, ok := nameToLevel[strings.ToLower(strings.TrimSpace(s))]; ok {
		return l
	}
	return Info
}

type Logger struct {
	out    io.Writer
	level  Level
	fields map[string]string
	mu     *sync.Mutex
}

// New logs to stderr at the level named by ROSTER_LOG_LEVEL.
func New() *Logger {
	return NewWithWriter(os.Stderr, ParseLevel(os.Getenv("ROSTER_LOG_LEVEL")))
}

func NewWithWriter(out io.Writer, level Level) *Logger {
	return &Logger{out: out, level: level, fields: make(map[string]string), mu: &sync.Mutex{}}
}

// With returns a child logger that adds kv to every record. Children share
// the parent's writer lock.
func (l *Logger) With(kv map[string]string) *Logger {
	child := &Logger{out: l.out, level: l.level, fields: make(map[string]string), mu: l.mu}
	for k, v := range l.fields {
		child.fields[k] = v
	}
	for k, v := range kv {
		child.fields[k] = v
	}
	return child
}

func (l *Logger) write(level Level, msg string, kv map[string]any) {
	if level < l.level {
		return
	}
	rec := make(map[string]any, 4+len(l.fields)+(len(kv)))
	rec["ts"] = time.Now().Format(time.RFC3339)
	rec["level"] = levelNames[level]
	rec["msg"] = msg
	for k, v := range l.fields {
		rec[k] = v
	}
	for k, v := range kv {
		rec[k] = v
	}
	maskSecrets(rec)
	l.mu.Lock()
	defer l.mu.Unlock()
	b, _ := json.Marshal(rec)
	_, _ = l.out.Write(append(b, '\n'))
}

func (l *Logger) Debug(msg string, kv ...any) { l.write(Debug, msg, toMap(kv...)) }
func (l *Logger) Info(msg string, kv ...any)  { l.write(Info, msg, toMap(kv...)) }
func (l *Logger) Warn(msg string, kv ...any)  { l.write(Warn, msg, toMap(kv...)) }
func (l *Logger) Error(msg string, kv ...any) { l.write(Error, msg, toMap(kv...)) }

func toMap(kv ...any) map[string]any {
	m := make(map[string]any)
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			continue
		}
		m[k] = kv[i+1]
	}
	return m
}

var secretKeys = []string{"password", "passwd", "secret", "token", "dsn"}

// dsnPassword matches the password part of user:password@host URLs and
// password=... key/value DSNs.
var dsnPassword = regexp.MustCompile(`(://[^:/@\s]+:)([^@\s]+)(@)|((?i)password=)(\S+)`)

// maskSecrets redacts likely secret values in-place.
func maskSecrets(m map[string]any) {
	for k, v := range m {
		s, ok := v.(string)
		if !ok {
			continue
		}
		lowerK := strings.ToLower(k)
		for _, p := range secretKeys {
			if strings.Contains(lowerK, p) {
				if p == "dsn" {
					m[k] = redactDSN(s)
				} else {
					m[k] = redact(s)
				}
				break
			}
		}
	}
}

func redactDSN(s string) string {
	return dsnPassword.ReplaceAllStringFunc(s, func(match string) string {
		sub := dsnPassword.FindStringSubmatch(match)
		if sub[1] != "" {
			return sub[1] + "***" + sub[3]
		}
		return sub[4] + "***"
	})
}

func redact(s string) string {
	n := len(s)
	if n <= 8 {
		return "***"
	}
	head, tail := s[:4], s[n-4:]
	return fmt.Sprintf("%s***%s", head, tail)
}
