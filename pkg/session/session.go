// Package session keeps per-run state of the server: an identifier, a
// directory under the log base, and named JSON log streams inside it.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	sessionIDsFile  = "session-ids.txt"
	sessionMetaFile = "session.toml"

	logMaxSizeMB  = 20
	logMaxBackups = 3
)

type sessionMeta struct {
	SessionID  string    `toml:"session_id"`
	Timestamp  time.Time `toml:"timestamp"`
	WorkingDir string    `toml:"path"`
}

type logHandler struct {
	w *lumberjack.Logger
	h slog.Handler
}

func newLogHandler(p string, opts *slog.HandlerOptions) *logHandler {
	w := &lumberjack.Logger{
		Filename:   p,
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
	}
	return &logHandler{
		w: w,
		h: slog.NewJSONHandler(w, opts),
	}
}

func (h *logHandler) Close() error {
	return h.w.Close()
}

type Session struct {
	meta        sessionMeta
	baseDir     string
	sessionPath string
	level       slog.Leveler

	mu       sync.Mutex
	handlers map[string]*logHandler
}

// DefaultBaseDir returns the directory holding sessions when no log
// directory is configured.
func DefaultBaseDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "filekeeper"), nil
}

// New creates a session for the server started in cwd. Nothing is written
// until Init is called.
func New(baseDir, cwd string, level slog.Leveler) (*Session, error) {
	sessionUUID, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	return &Session{
		meta: sessionMeta{
			SessionID:  sessionUUID.String(),
			Timestamp:  time.Now(),
			WorkingDir: cwd,
		},
		baseDir:     baseDir,
		sessionPath: filepath.Join(baseDir, "sessions", sessionUUID.String()),
		level:       level,
		handlers:    map[string]*logHandler{},
	}, nil
}

func (s *Session) ID() string {
	return s.meta.SessionID
}

func (s *Session) Timestamp() time.Time {
	return s.meta.Timestamp
}

func (s *Session) WorkingDir() string {
	return s.meta.WorkingDir
}

// Path returns the session directory.
func (s *Session) Path() string {
	return s.sessionPath
}

func (s *Session) updateSessionsFile(workingDir string) error {
	sessionsFile := filepath.Join(workingDir, sessionIDsFile)
	sessionsContent, err := os.ReadFile(sessionsFile)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		sessionsContent = []byte{}
	}
	var lines []string
	for line := range strings.Lines(string(sessionsContent)) {
		line = strings.TrimSpace(line)
		if line == s.meta.SessionID {
			return nil
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	lines = append(lines, s.meta.SessionID)
	return os.WriteFile(sessionsFile, []byte(strings.Join(lines, "\n")), 0644)
}

// Init creates the session directory, its metadata, and registers the
// session under its working directory.
func (s *Session) Init() error {
	workingDir := getWorkingDir(s.baseDir, s.meta.WorkingDir)
	if err := os.MkdirAll(workingDir, 0755); err != nil {
		return err
	}
	if err := s.updateSessionsFile(workingDir); err != nil {
		return err
	}
	if err := os.MkdirAll(s.sessionPath, 0755); err != nil {
		return err
	}
	encodedMeta, err := toml.Marshal(s.meta)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.sessionPath, sessionMetaFile), encodedMeta, 0644)
}

func (s *Session) logPath() string {
	return filepath.Join(s.sessionPath, "logs")
}

// NewLogHandler returns the handler writing the log stream name, creating
// it on first use.
func (s *Session) NewLogHandler(name string) (slog.Handler, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.handlers[name]; ok {
		return h.h, nil
	}
	if name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("malformed log name %q", name)
	}
	pathName := name
	if !strings.Contains(name, ".") {
		pathName = name + ".jsonl"
	}
	if err := os.MkdirAll(s.logPath(), 0755); err != nil {
		return nil, err
	}
	h := newLogHandler(filepath.Join(s.logPath(), pathName), &slog.HandlerOptions{
		AddSource: true,
		Level:     s.level,
	})
	s.handlers[name] = h
	return h.h, nil
}

// GetLogger returns a logger on the log stream name, tagged with the
// session id.
func (s *Session) GetLogger(name string) (*slog.Logger, error) {
	h, err := s.NewLogHandler(name)
	if err != nil {
		return nil, err
	}
	return slog.New(h).With("session_id", s.meta.SessionID), nil
}

// GetLogFile opens a raw log file in the session log directory.
func (s *Session) GetLogFile(name string) (*os.File, error) {
	if strings.Contains(name, "/") {
		return nil, fmt.Errorf("malformed log name %q", name)
	}
	if err := os.MkdirAll(s.logPath(), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(s.logPath(), name), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var allerr error
	for name, h := range s.handlers {
		if err := h.Close(); err != nil {
			allerr = errors.Join(allerr, fmt.Errorf("failed to close %s: %w", name, err))
		}
	}
	s.handlers = map[string]*logHandler{}
	return allerr
}

type contextKey struct{}

// With attaches s to ctx.
func (s *Session) With(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session attached to ctx.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok
}

func getWorkingDir(baseDir, p string) string {
	h := sha256.Sum256([]byte(p))
	return filepath.Join(baseDir, "paths", hex.EncodeToString(h[:]))
}

// List returns the sessions started in cwd, newest first.
func List(baseDir, cwd string) ([]*Session, error) {
	workingDir := getWorkingDir(baseDir, cwd)
	if finfo, err := os.Stat(workingDir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	} else if !finfo.IsDir() {
		return nil, fmt.Errorf("path %s is not a dir", workingDir)
	}

	content, err := os.ReadFile(filepath.Join(workingDir, sessionIDsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var results []*Session
	for line := range strings.Lines(string(content)) {
		s, err := Open(baseDir, strings.TrimSpace(line))
		if err != nil {
			continue
		}
		if s.meta.WorkingDir == cwd {
			results = append(results, s)
		}
	}
	sortNewestFirst(results)
	return results, nil
}

// Open loads an existing session by its id.
func Open(baseDir, sessionID string) (*Session, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, fmt.Errorf("illformed session ID %s: %w", sessionID, err)
	}
	sessionDir := filepath.Join(baseDir, "sessions", sessionID)
	if finfo, err := os.Stat(sessionDir); err != nil {
		return nil, err
	} else if !finfo.IsDir() {
		return nil, fmt.Errorf("path %s is not a directory", sessionDir)
	}

	metadata, err := os.ReadFile(filepath.Join(sessionDir, sessionMetaFile))
	if err != nil {
		return nil, err
	}
	var m sessionMeta
	if err := toml.Unmarshal(metadata, &m); err != nil {
		return nil, err
	}
	return &Session{
		meta:        m,
		baseDir:     baseDir,
		sessionPath: sessionDir,
		level:       slog.LevelInfo,
		handlers:    map[string]*logHandler{},
	}, nil
}

func sortNewestFirst(sessions []*Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Timestamp().After(sessions[j].Timestamp())
	})
}
