package graph

import (
	"context"
	"regexp"
	"strings"
	"sync"
)

// csvResult builds a Result the way an engine returns a decoded CSV: ordered
// columns plus one map per row.
func csvResult(columns []string, rows ...[]string) *Result {
	res := &Result{Columns: columns}
	for _, r := range rows {
		m := make(map[string]any, len(columns))
		for i, col := range columns {
			if i < len(r) {
				m[col] = r[i]
			}
		}
		res.Rows = append(res.Rows, m)
	}
	return res
}

type executedStmt struct {
	text   string
	params map[string]any
}

var loadFileRE = regexp.MustCompile(`^LOAD FROM '([^']+)'`)

// fakeEngine records every statement, staged file, and unlink. LOAD FROM
// statements return canned results keyed by file name; other statements
// return defaultResult (empty when unset). Errors can be injected per file
// and per statement prefix.
type fakeEngine struct {
	mu sync.Mutex

	loadResults   map[string]*Result
	loadErrs      map[string]error
	writeErrs     map[string]error
	execErrs      map[string]error
	prepareErrs   map[string]error
	defaultResult *Result
	schema        *Schema

	files    map[string][]byte
	writes   []string
	unlinks  []string
	executed []executedStmt
	prepared []string
	closed   bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		loadResults: make(map[string]*Result),
		loadErrs:    make(map[string]error),
		writeErrs:   make(map[string]error),
		execErrs:    make(map[string]error),
		prepareErrs: make(map[string]error),
		files:       make(map[string][]byte),
	}
}

func (f *fakeEngine) Execute(ctx context.Context, statement string, params map[string]any) (*Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed = append(f.executed, executedStmt{text: statement, params: params})
	for prefix, err := range f.execErrs {
		if strings.HasPrefix(statement, prefix) {
			return nil, err
		}
	}
	if m := loadFileRE.FindStringSubmatch(statement); m != nil {
		if err, ok := f.loadErrs[m[1]]; ok {
			return nil, err
		}
		if res, ok := f.loadResults[m[1]]; ok {
			return res, nil
		}
		return &Result{}, nil
	}
	if f.defaultResult != nil {
		return f.defaultResult, nil
	}
	return &Result{}, nil
}

func (f *fakeEngine) Prepare(ctx context.Context, statement string) (Statement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for prefix, err := range f.prepareErrs {
		if strings.HasPrefix(statement, prefix) {
			return nil, err
		}
	}
	f.prepared = append(f.prepared, statement)
	return &fakeStatement{engine: f, text: statement}, nil
}

func (f *fakeEngine) WriteFile(name string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.writeErrs[name]; ok {
		return err
	}
	f.files[name] = data
	f.writes = append(f.writes, name)
	return nil
}

func (f *fakeEngine) Unlink(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, name)
	f.unlinks = append(f.unlinks, name)
	return nil
}

func (f *fakeEngine) Schema(ctx context.Context) (*Schema, error) {
	if f.schema != nil {
		return f.schema, nil
	}
	return &Schema{}, nil
}

func (f *fakeEngine) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// executedWithPrefix returns the recorded statements whose text starts with
// prefix, in execution order.
func (f *fakeEngine) executedWithPrefix(prefix string) []executedStmt {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []executedStmt
	for _, e := range f.executed {
		if strings.HasPrefix(e.text, prefix) {
			out = append(out, e)
		}
	}
	return out
}

type fakeStatement struct {
	engine *fakeEngine
	text   string
	closed bool
}

func (s *fakeStatement) Execute(ctx context.Context, params map[string]any) error {
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()
	s.engine.executed = append(s.engine.executed, executedStmt{text: s.text, params: params})
	for prefix, err := range s.engine.execErrs {
		if strings.HasPrefix(s.text, prefix) {
			return err
		}
	}
	return nil
}

func (s *fakeStatement) Close() error {
	s.closed = true
	return nil
}
