package repository

import (
	"context"
	"net/url"
	"testing"

	"price-lookup/internal/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectFor_Unknown(t *testing.T) {
	_, err := DialectFor("oracle")
	assert.Error(t, err)

	d, err := DialectFor(" SQLServer ")
	require.NoError(t, err)
	assert.Equal(t, "sqlserver", d.Name)
}

func TestEscapeLike(t *testing.T) {
	sqlserver, _ := DialectFor("sqlserver")
	sqlite, _ := DialectFor("sqlite3")

	assert.Equal(t, "ABC", sqlserver.escapeLike("ABC"))
	assert.Equal(t, "!%!_!!", sqlite.escapeLike("%_!"))
	assert.Equal(t, "![A]", sqlserver.escapeLike("[A]"))
	assert.Equal(t, "[A]", sqlite.escapeLike("[A]"))
}

func TestLikeContains_UsesPlaceholderPerDialect(t *testing.T) {
	sqlserver, _ := DialectFor("sqlserver")
	mysqlD, _ := DialectFor("mysql")

	where, arg := sqlserver.LikeContains("Referencia", 1, "abc")
	assert.Equal(t, "UPPER([Referencia]) LIKE UPPER(@p1) ESCAPE '!'", where)
	assert.Equal(t, "%abc%", arg)

	where, _ = mysqlD.LikeContains("Referencia", 1, "abc")
	assert.Equal(t, "UPPER(`Referencia`) LIKE UPPER(?) ESCAPE '!'", where)
}

func TestDSN_SQLServer(t *testing.T) {
	d, _ := DialectFor("sqlserver")

	dsn := d.DSN(config.DBConfig{
		Host: "db01", Port: 1433, Name: "inventario", User: "sa", Password: "p@ss",
		TrustCert: true,
	})
	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "sqlserver", u.Scheme)
	assert.Equal(t, "db01:1433", u.Host)
	assert.Equal(t, "inventario", u.Query().Get("database"))
	assert.Equal(t, "disable", u.Query().Get("encrypt"))
	assert.Equal(t, "true", u.Query().Get("TrustServerCertificate"))
	pass, _ := u.User.Password()
	assert.Equal(t, "p@ss", pass)
}

func TestDSN_SQLServerNamedInstanceDropsPort(t *testing.T) {
	d, _ := DialectFor("sqlserver")

	u, err := url.Parse(d.DSN(config.DBConfig{Host: "db01", Instance: "SQLEXPRESS", Port: 1433, Encrypt: true}))
	require.NoError(t, err)
	assert.Equal(t, "db01", u.Host)
	assert.Equal(t, "/SQLEXPRESS", u.Path)
	assert.Equal(t, "true", u.Query().Get("encrypt"))
}

func TestDSN_MySQLAndPostgres(t *testing.T) {
	mysqlD, _ := DialectFor("mysql")
	assert.Equal(t, "root:secret@tcp(db:3306)/shop?parseTime=true",
		mysqlD.DSN(config.DBConfig{Host: "db", Name: "shop", User: "root", Password: "secret"}))

	pg, _ := DialectFor("postgres")
	assert.Equal(t, "postgres://u:p@db:5433/shop?sslmode=require",
		pg.DSN(config.DBConfig{Host: "db", Port: 5433, Name: "shop", User: "u", Password: "p", Encrypt: true, TrustCert: true}))
}

func TestDSN_SQLiteIsReadOnly(t *testing.T) {
	d, _ := DialectFor("sqlite3")
	assert.Equal(t, "file:/srv/inventory.db?mode=ro", d.DSN(config.DBConfig{SQLitePath: "/srv/inventory.db"}))
}

func TestDSN_Override(t *testing.T) {
	d, _ := DialectFor("postgres")
	assert.Equal(t, "custom", d.DSN(config.DBConfig{DSN: "custom", Host: "ignored"}))
}

func TestInMemoryRepository(t *testing.T) {
	price := decimal.NewFromInt(10)
	repo := NewInMemoryRepository(
		Record{Reference: "B-2", Barcode: "111", ListPrice: &price},
		Record{Reference: "A-1", Barcode: "111"},
		Record{Reference: "c-3", Barcode: "222"},
	)
	ctx := context.Background()

	rows, err := repo.FindByBarcode(ctx, "111", 50)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A-1", rows[0].Reference)

	rows, err = repo.FindByReference(ctx, "C-", 50)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "c-3", rows[0].Reference)

	rows, err = repo.FindByReference(ctx, "-", 2)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	health, err := repo.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "memory", health[0]["db"])
}
