package repository

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"price-lookup/internal/config"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
)

// Dialect captures the SQL differences between supported inventory stores.
type Dialect struct {
	Name       string
	DriverName string

	// useTop selects "SELECT TOP (n)" instead of a trailing LIMIT
	useTop bool
	// escapeBrackets also escapes '[' in LIKE patterns (T-SQL character classes)
	escapeBrackets bool
	ilike          bool
	placeholder    func(n int) string
	quote          func(ident string) string
	healthQuery    string
}

const likeEscape = '!'

var dialects = map[string]Dialect{
	"sqlserver": {
		Name:           "sqlserver",
		DriverName:     "sqlserver",
		useTop:         true,
		escapeBrackets: true,
		placeholder:    func(n int) string { return "@p" + strconv.Itoa(n) },
		quote:          func(s string) string { return "[" + s + "]" },
		healthQuery:    "SELECT 1 AS ok, DB_NAME() AS db, SYSTEM_USER AS userName",
	},
	"mysql": {
		Name:        "mysql",
		DriverName:  "mysql",
		placeholder: func(int) string { return "?" },
		quote:       func(s string) string { return "`" + s + "`" },
		healthQuery: "SELECT 1 AS ok, DATABASE() AS db, CURRENT_USER() AS userName",
	},
	"postgres": {
		Name:        "postgres",
		DriverName:  "pgx",
		ilike:       true,
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		quote:       func(s string) string { return `"` + s + `"` },
		healthQuery: "SELECT 1 AS ok, current_database() AS db, current_user AS userName",
	},
	"sqlite3": {
		Name:        "sqlite3",
		DriverName:  "sqlite3",
		placeholder: func(int) string { return "?" },
		quote:       func(s string) string { return `"` + s + `"` },
		healthQuery: "SELECT 1 AS ok, 'main' AS db, '' AS userName",
	},
}

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	d, ok := dialects[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Dialect{}, fmt.Errorf("unsupported database driver %q", name)
	}
	return d, nil
}

// QuoteTable quotes a possibly schema-qualified table name.
func (d Dialect) QuoteTable(table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = d.quote(p)
	}
	return strings.Join(parts, ".")
}

// LikeContains builds a case-insensitive substring predicate and its argument.
func (d Dialect) LikeContains(column string, n int, needle string) (string, string) {
	pattern := "%" + d.escapeLike(needle) + "%"
	esc := fmt.Sprintf(" ESCAPE '%c'", likeEscape)
	if d.ilike {
		return fmt.Sprintf("%s ILIKE %s%s", d.quote(column), d.placeholder(n), esc), pattern
	}
	return fmt.Sprintf("UPPER(%s) LIKE UPPER(%s)%s", d.quote(column), d.placeholder(n), esc), pattern
}

func (d Dialect) escapeLike(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == likeEscape, r == '%', r == '_', r == '[' && d.escapeBrackets:
			b.WriteRune(likeEscape)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DSN builds the driver connection string from cfg unless cfg.DSN is set.
func (d Dialect) DSN(cfg config.DBConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}

	switch d.Name {
	case "sqlserver":
		q := url.Values{}
		q.Set("database", cfg.Name)
		if cfg.Encrypt {
			q.Set("encrypt", "true")
		} else {
			q.Set("encrypt", "disable")
		}
		q.Set("TrustServerCertificate", strconv.FormatBool(cfg.TrustCert))
		u := &url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(cfg.User, cfg.Password),
			Host:     cfg.Host,
			RawQuery: q.Encode(),
		}
		// a named instance is resolved through SQL Browser, so the port is dropped
		if cfg.Instance != "" {
			u.Path = cfg.Instance
		} else if cfg.Port != 0 {
			u.Host = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		}
		return u.String()

	case "mysql":
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(portOr(cfg.Port, 3306)))
		mc.DBName = cfg.Name
		mc.ParseTime = true
		if cfg.Encrypt {
			mc.TLSConfig = "true"
			if cfg.TrustCert {
				mc.TLSConfig = "skip-verify"
			}
		}
		return mc.FormatDSN()

	case "postgres":
		sslmode := "disable"
		if cfg.Encrypt {
			sslmode = "verify-full"
			if cfg.TrustCert {
				sslmode = "require"
			}
		}
		u := &url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.User, cfg.Password),
			Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(portOr(cfg.Port, 5432))),
			Path:     "/" + cfg.Name,
			RawQuery: "sslmode=" + sslmode,
		}
		return u.String()

	case "sqlite3":
		// read-only: no journal pragma, it would be a write
		return "file:" + cfg.SQLitePath + "?mode=ro"
	}
	return ""
}

func portOr(port, def int) int {
	if port == 0 {
		return def
	}
	return port
}
