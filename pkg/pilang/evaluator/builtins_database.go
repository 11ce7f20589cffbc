package evaluator

import (
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strings"

	perrors "github.com/SuperCuber/pilang/pkg/pilang/errors"
)

// builtinSQL runs a query against a database and streams the result rows
// as dicts keyed by column name. The first argument is a DSN (sqlite:path,
// postgres://..., mysql://...) or an alias defined in the host
// configuration. Connections are cached per DSN, so repeated queries in a
// session reuse them.
func builtinSQL(scope *Scope, args []Object) (Object, *perrors.PiError) {
	dsn, err := stringArg(args[0])
	if err != nil {
		return nil, err
	}
	query, err := stringArg(args[1])
	if err != nil {
		return nil, err
	}

	if alias, ok := scope.SQLAliases[dsn]; ok {
		dsn = alias
	}

	db, err := openDatabase(dsn)
	if err != nil {
		return nil, err
	}

	rows, queryErr := db.Query(query)
	if queryErr != nil {
		return nil, perrors.New("DB-0002", map[string]any{"Detail": queryErr.Error()})
	}

	columns, colErr := rows.Columns()
	if colErr != nil {
		rows.Close()
		return nil, perrors.New("DB-0002", map[string]any{"Detail": colErr.Error()})
	}

	return &List{Pending: &rowStream{rows: rows, columns: columns}}, nil
}

// openDatabase returns a cached connection for dsn, opening and
// ping-testing a fresh one on a miss.
func openDatabase(dsn string) (*sql.DB, *perrors.PiError) {
	driver, driverDSN, err := resolveDriver(dsn)
	if err != nil {
		return nil, err
	}

	cacheKey := driver + ":" + driverDSN
	if db, ok := dbCache.get(cacheKey); ok {
		return db, nil
	}

	db, openErr := sql.Open(driver, driverDSN)
	if openErr != nil {
		return nil, perrors.New("DB-0001", map[string]any{"Detail": openErr.Error()})
	}
	if pingErr := db.Ping(); pingErr != nil {
		db.Close()
		return nil, perrors.New("DB-0001", map[string]any{"Detail": pingErr.Error()})
	}

	dbCache.put(cacheKey, db)
	return db, nil
}

// resolveDriver maps a DSN to the registered driver name and the string
// that driver actually wants. MySQL URLs are rewritten because the driver
// takes user:pass@tcp(host:port)/db rather than a URL.
func resolveDriver(dsn string) (driver, driverDSN string, err *perrors.PiError) {
	switch {
	case strings.HasPrefix(dsn, "sqlite:"):
		return "sqlite", strings.TrimPrefix(dsn, "sqlite:"), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn, nil
	case strings.HasPrefix(dsn, "mysql://"):
		rewritten, mysqlErr := mysqlDSN(dsn)
		if mysqlErr != nil {
			return "", "", mysqlErr
		}
		return "mysql", rewritten, nil
	}
	return "", "", perrors.New("DB-0001", map[string]any{"Detail": fmt.Sprintf("unrecognized DSN %q", dsn)})
}

func mysqlDSN(raw string) (string, *perrors.PiError) {
	u, parseErr := url.Parse(raw)
	if parseErr != nil {
		return "", perrors.New("DB-0001", map[string]any{"Detail": parseErr.Error()})
	}

	var b strings.Builder
	if u.User != nil {
		b.WriteString(u.User.Username())
		if pass, ok := u.User.Password(); ok {
			b.WriteString(":")
			b.WriteString(pass)
		}
		b.WriteString("@")
	}

	port := u.Port()
	if port == "" {
		port = "3306"
	}
	fmt.Fprintf(&b, "tcp(%s)", net.JoinHostPort(u.Hostname(), port))

	b.WriteString("/")
	b.WriteString(strings.TrimPrefix(u.Path, "/"))
	if u.RawQuery != "" {
		b.WriteString("?")
		b.WriteString(u.RawQuery)
	}
	return b.String(), nil
}

// rowStream feeds query rows out one at a time. The sql.Rows handle stays
// open until the stream drains or fails, which is what keeps the result
// list lazy.
type rowStream struct {
	rows    *sql.Rows
	columns []string
}

func (s *rowStream) Next() (Object, bool, *perrors.PiError) {
	if s.rows == nil {
		return nil, false, nil
	}

	if !s.rows.Next() {
		err := s.rows.Err()
		s.rows.Close()
		s.rows = nil
		if err != nil {
			return nil, false, perrors.New("DB-0002", map[string]any{"Detail": err.Error()})
		}
		return nil, false, nil
	}

	values := make([]interface{}, len(s.columns))
	valuePtrs := make([]interface{}, len(s.columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}
	if scanErr := s.rows.Scan(valuePtrs...); scanErr != nil {
		s.rows.Close()
		s.rows = nil
		return nil, false, perrors.New("DB-0002", map[string]any{"Detail": scanErr.Error()})
	}

	row := NewDict()
	for i, col := range s.columns {
		row.Set(col, sqlValueToObject(values[i]))
	}
	return row, true, nil
}

// sqlValueToObject converts a scanned column value. Negative integers do
// not fit the unsigned integer model, so they come back as floats.
func sqlValueToObject(value interface{}) Object {
	switch v := value.(type) {
	case nil:
		return NULL
	case int64:
		if v >= 0 {
			return &Integer{Value: uint64(v)}
		}
		return &Float{Value: float64(v)}
	case float64:
		return &Float{Value: v}
	case bool:
		return nativeBoolToBooleanObject(v)
	case string:
		return &String{Value: v}
	case []byte:
		return &String{Value: string(v)}
	}
	return &String{Value: fmt.Sprintf("%v", value)}
}
