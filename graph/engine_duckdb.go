package graph

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
)

// DuckEngine is the embedded graph engine. It accepts the fixed statement
// shapes this system emits (CREATE NODE TABLE, CREATE REL TABLE, CREATE
// node, MATCH ... CREATE relationship, LOAD FROM) and maps them onto
// DuckDB tables: one table per node label keyed by its primary key, one
// table per relationship with src/dst columns holding endpoint keys.
//
// Statements outside that dialect pass through to DuckDB as raw SQL, which
// gives callers a plain read path over the materialized tables. The table
// catalog is kept engine-side so Schema reports exactly what was declared.
type DuckEngine struct {
	db      *sql.DB
	workDir string

	mu        sync.Mutex
	nodes     map[string]*nodeTableDef
	rels      map[string]*relTableDef
	nodeOrder []string
	relOrder  []string
	closed    bool
}

type columnDef struct {
	name string
	typ  string // declared dialect type: STRING, DATE, TIMESTAMP
	pk   bool
}

type nodeTableDef struct {
	name string
	cols []columnDef
	pk   string
}

type relTableDef struct {
	name  string
	from  string
	to    string
	props []columnDef
}

// OpenDuckEngine opens an embedded engine. dbPath may be empty for an
// in-memory database; workDir is created if needed and receives staged
// export files for LOAD FROM.
func OpenDuckEngine(dbPath, workDir string) (*DuckEngine, error) {
	if workDir == "" {
		workDir = os.TempDir()
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("create engine work dir: %w", err)
	}
	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return &DuckEngine{
		db:      db,
		workDir: workDir,
		nodes:   make(map[string]*nodeTableDef),
		rels:    make(map[string]*relTableDef),
	}, nil
}

func (e *DuckEngine) WriteFile(name string, data []byte) error {
	path := filepath.Join(e.workDir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("stage file %s: %w", name, err)
	}
	return nil
}

func (e *DuckEngine) Unlink(name string) error {
	path := filepath.Join(e.workDir, filepath.Base(name))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unlink staged file %s: %w", name, err)
	}
	return nil
}

func (e *DuckEngine) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	return e.db.Close()
}

// Schema returns the declared catalog in declaration order.
func (e *DuckEngine) Schema(ctx context.Context) (*Schema, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrEngineClosed
	}
	s := &Schema{}
	for _, name := range e.nodeOrder {
		def := e.nodes[name]
		nt := NodeTable{Name: def.name}
		for _, col := range def.cols {
			nt.Properties = append(nt.Properties, Property{
				Name:       col.name,
				Type:       col.typ,
				PrimaryKey: col.pk,
			})
		}
		s.Nodes = append(s.Nodes, nt)
	}
	for _, name := range e.relOrder {
		def := e.rels[name]
		rt := RelTable{Name: def.name, From: def.from, To: def.to}
		for _, col := range def.props {
			rt.Properties = append(rt.Properties, Property{Name: col.name, Type: col.typ})
		}
		s.Rels = append(s.Rels, rt)
	}
	return s, nil
}

// translation is one dialect statement lowered to SQL with an ordered
// parameter name list. returnsRows marks read statements (loads and raw
// SQL); everything else goes through Exec.
type translation struct {
	sql         string
	paramNames  []string
	args        []any // fixed leading args (the LOAD FROM path)
	returnsRows bool
}

func (e *DuckEngine) Execute(ctx context.Context, statement string, params map[string]any) (*Result, error) {
	tr, err := e.translate(statement)
	if err != nil {
		return nil, err
	}
	args, err := tr.bind(params)
	if err != nil {
		return nil, err
	}
	if tr.returnsRows {
		rows, err := e.db.QueryContext(ctx, tr.sql, args...)
		if err != nil {
			return nil, fmt.Errorf("execute statement: %w", err)
		}
		defer rows.Close()
		return scanResult(rows)
	}
	if _, err := e.db.ExecContext(ctx, tr.sql, args...); err != nil {
		return nil, fmt.Errorf("execute statement: %w", err)
	}
	return &Result{}, nil
}

func (e *DuckEngine) Prepare(ctx context.Context, statement string) (Statement, error) {
	tr, err := e.translate(statement)
	if err != nil {
		return nil, err
	}
	stmt, err := e.db.PrepareContext(ctx, tr.sql)
	if err != nil {
		return nil, fmt.Errorf("prepare statement: %w", err)
	}
	return &duckStatement{stmt: stmt, tr: tr}, nil
}

type duckStatement struct {
	stmt *sql.Stmt
	tr   *translation
}

func (s *duckStatement) Execute(ctx context.Context, params map[string]any) error {
	args, err := s.tr.bind(params)
	if err != nil {
		return err
	}
	if _, err := s.stmt.ExecContext(ctx, args...); err != nil {
		return fmt.Errorf("execute prepared statement: %w", err)
	}
	return nil
}

func (s *duckStatement) Close() error { return s.stmt.Close() }

func (t *translation) bind(params map[string]any) ([]any, error) {
	args := make([]any, 0, len(t.args)+len(t.paramNames))
	args = append(args, t.args...)
	for _, name := range t.paramNames {
		v, ok := params[name]
		if !ok {
			return nil, fmt.Errorf("missing statement parameter $%s", name)
		}
		args = append(args, v)
	}
	return args, nil
}

var (
	nodeTableRE = regexp.MustCompile(`^CREATE NODE TABLE (\w+) \((.+), PRIMARY KEY\((\w+)\)\)$`)
	relTableRE  = regexp.MustCompile(`^CREATE REL TABLE (\w+) \(FROM (\w+) TO (\w+)(?:, (.+))?\)$`)
	createRE    = regexp.MustCompile(`^CREATE \(\w+:(\w+) \{(.+)\}\)$`)
	matchRE     = regexp.MustCompile(`^MATCH \((\w+):(\w+)\), \((\w+):(\w+)\) WHERE (\w+)\.(\w+) = \$(\w+) AND (\w+)\.(\w+) = \$(\w+) ` +
		`CREATE \((\w+)\)-\[\w+:(\w+)(?: \{(.+)\})?\]->\((\w+)\)$`)
	loadRE = regexp.MustCompile(`^LOAD FROM '(.+)' \(header=true, ignore_errors=true\) RETURN \*$`)
	propRE = regexp.MustCompile(`^(\w+): \$(\w+)$`)
)

func (e *DuckEngine) translate(statement string) (*translation, error) {
	statement = strings.TrimSpace(statement)
	if statement == "" {
		return nil, ErrNoStatement
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrEngineClosed
	}

	switch {
	case strings.HasPrefix(statement, "CREATE NODE TABLE "):
		return e.translateNodeTable(statement)
	case strings.HasPrefix(statement, "CREATE REL TABLE "):
		return e.translateRelTable(statement)
	case strings.HasPrefix(statement, "CREATE ("):
		return e.translateCreateNode(statement)
	case strings.HasPrefix(statement, "MATCH ("):
		return e.translateCreateRel(statement)
	case strings.HasPrefix(statement, "LOAD FROM "):
		return e.translateLoad(statement)
	default:
		// Raw SQL read path over the materialized tables.
		return &translation{sql: statement, returnsRows: true}, nil
	}
}

func (e *DuckEngine) translateNodeTable(statement string) (*translation, error) {
	m := nodeTableRE.FindStringSubmatch(statement)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrBadStatement, statement)
	}
	name, colList, pk := m[1], m[2], m[3]
	def := &nodeTableDef{name: name, pk: pk}
	var sqlCols []string
	for _, part := range strings.Split(colList, ", ") {
		fields := strings.Fields(part)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: bad column %q", ErrBadStatement, part)
		}
		col := columnDef{name: fields[0], typ: fields[1], pk: fields[0] == pk}
		def.cols = append(def.cols, col)
		sqlCols = append(sqlCols, fmt.Sprintf("%q %s", col.name, sqlType(col.typ)))
	}
	e.nodes[name] = def
	e.nodeOrder = append(e.nodeOrder, name)
	return &translation{
		sql: fmt.Sprintf("CREATE TABLE %q (%s, PRIMARY KEY(%q))", name, strings.Join(sqlCols, ", "), pk),
	}, nil
}

func (e *DuckEngine) translateRelTable(statement string) (*translation, error) {
	m := relTableRE.FindStringSubmatch(statement)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrBadStatement, statement)
	}
	name, from, to, propList := m[1], m[2], m[3], m[4]
	if _, ok := e.nodes[from]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, from)
	}
	if _, ok := e.nodes[to]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, to)
	}
	def := &relTableDef{name: name, from: from, to: to}
	sqlCols := []string{`"src" VARCHAR`, `"dst" VARCHAR`}
	if propList != "" {
		for _, part := range strings.Split(propList, ", ") {
			fields := strings.Fields(part)
			if len(fields) != 2 {
				return nil, fmt.Errorf("%w: bad column %q", ErrBadStatement, part)
			}
			col := columnDef{name: fields[0], typ: fields[1]}
			def.props = append(def.props, col)
			sqlCols = append(sqlCols, fmt.Sprintf("%q %s", col.name, sqlType(col.typ)))
		}
	}
	e.rels[name] = def
	e.relOrder = append(e.relOrder, name)
	return &translation{
		sql: fmt.Sprintf("CREATE TABLE %q (%s)", name, strings.Join(sqlCols, ", ")),
	}, nil
}

func (e *DuckEngine) translateCreateNode(statement string) (*translation, error) {
	m := createRE.FindStringSubmatch(statement)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrBadStatement, statement)
	}
	label, propList := m[1], m[2]
	def, ok := e.nodes[label]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, label)
	}
	names, paramNames, err := parseProps(propList)
	if err != nil {
		return nil, err
	}
	var cols, vals []string
	for _, colName := range names {
		typ, ok := def.columnType(colName)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no property %s", ErrBadStatement, label, colName)
		}
		cols = append(cols, fmt.Sprintf("%q", colName))
		vals = append(vals, castPlaceholder(typ))
	}
	return &translation{
		sql: fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)",
			label, strings.Join(cols, ", "), strings.Join(vals, ", ")),
		paramNames: paramNames,
	}, nil
}

// translateCreateRel lowers a MATCH-two-nodes, CREATE-edge statement into
// INSERT ... SELECT over the two endpoint tables. The inserted src and dst
// are the endpoints' primary keys; an edge row only appears when both WHERE
// conditions match an existing node, mirroring the dialect's semantics.
func (e *DuckEngine) translateCreateRel(statement string) (*translation, error) {
	m := matchRE.FindStringSubmatch(statement)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrBadStatement, statement)
	}
	alias1, label1, alias2, label2 := m[1], m[2], m[3], m[4]
	whereAlias1, whereCol1, whereParam1 := m[5], m[6], m[7]
	whereAlias2, whereCol2, whereParam2 := m[8], m[9], m[10]
	srcAlias, relName, propList, dstAlias := m[11], m[12], m[13], m[14]

	rel, ok := e.rels[relName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, relName)
	}
	aliasLabel := map[string]string{alias1: label1, alias2: label2}
	srcLabel, dstLabel := aliasLabel[srcAlias], aliasLabel[dstAlias]
	if srcLabel != rel.from || dstLabel != rel.to {
		return nil, fmt.Errorf("%w: %s connects %s to %s", ErrBadStatement, relName, rel.from, rel.to)
	}
	srcDef, dstDef := e.nodes[srcLabel], e.nodes[dstLabel]
	if srcDef == nil || dstDef == nil {
		return nil, fmt.Errorf("%w: %s or %s", ErrUnknownTable, srcLabel, dstLabel)
	}

	selectCols := []string{
		fmt.Sprintf("%s.%q", srcAlias, srcDef.pk),
		fmt.Sprintf("%s.%q", dstAlias, dstDef.pk),
	}
	insertCols := []string{`"src"`, `"dst"`}
	var paramNames []string
	if propList != "" {
		names, props, err := parseProps(propList)
		if err != nil {
			return nil, err
		}
		for i, colName := range names {
			typ, ok := rel.propType(colName)
			if !ok {
				return nil, fmt.Errorf("%w: %s has no property %s", ErrBadStatement, relName, colName)
			}
			insertCols = append(insertCols, fmt.Sprintf("%q", colName))
			selectCols = append(selectCols, castPlaceholder(typ))
			paramNames = append(paramNames, props[i])
		}
	}
	// SELECT-list placeholders bind before WHERE placeholders.
	paramNames = append(paramNames, whereParam1, whereParam2)

	sqlText := fmt.Sprintf(
		"INSERT INTO %q (%s) SELECT %s FROM %q %s, %q %s WHERE %s.%q = ? AND %s.%q = ?",
		relName, strings.Join(insertCols, ", "), strings.Join(selectCols, ", "),
		label1, alias1, label2, alias2,
		whereAlias1, whereCol1, whereAlias2, whereCol2,
	)
	return &translation{sql: sqlText, paramNames: paramNames}, nil
}

func (e *DuckEngine) translateLoad(statement string) (*translation, error) {
	m := loadRE.FindStringSubmatch(statement)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrBadStatement, statement)
	}
	path := filepath.Join(e.workDir, filepath.Base(m[1]))
	return &translation{
		sql:         "SELECT * FROM read_csv(?, header=true, ignore_errors=true, all_varchar=true, null_padding=true)",
		args:        []any{path},
		returnsRows: true,
	}, nil
}

func (d *nodeTableDef) columnType(name string) (string, bool) {
	for _, col := range d.cols {
		if col.name == name {
			return col.typ, true
		}
	}
	return "", false
}

func (d *relTableDef) propType(name string) (string, bool) {
	for _, col := range d.props {
		if col.name == name {
			return col.typ, true
		}
	}
	return "", false
}

// parseProps splits "a: $x, b: $y" into column names and parameter names.
func parseProps(propList string) (cols []string, params []string, err error) {
	for _, part := range strings.Split(propList, ", ") {
		m := propRE.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			return nil, nil, fmt.Errorf("%w: bad property %q", ErrBadStatement, part)
		}
		cols = append(cols, m[1])
		params = append(params, m[2])
	}
	return cols, params, nil
}

func sqlType(dialectType string) string {
	switch dialectType {
	case "STRING":
		return "VARCHAR"
	case "DATE":
		return "DATE"
	case "TIMESTAMP":
		return "TIMESTAMP"
	default:
		return "VARCHAR"
	}
}

// castPlaceholder wraps the bind placeholder so string-typed inputs coerce
// to the declared column type. NULLs pass through the cast untouched.
func castPlaceholder(dialectType string) string {
	switch dialectType {
	case "DATE":
		return "CAST(? AS DATE)"
	case "TIMESTAMP":
		return "CAST(? AS TIMESTAMP)"
	default:
		return "?"
	}
}

func scanResult(rows *sql.Rows) (*Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read result columns: %w", err)
	}
	res := &Result{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			switch v := vals[i].(type) {
			case []byte:
				row[col] = string(v)
			default:
				row[col] = v
			}
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("result rows iteration error: %w", err)
	}
	return res, nil
}
