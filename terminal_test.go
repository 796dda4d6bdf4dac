package fluentdb_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fluentdb "github.com/biyonik/go-fluent-db"
)

func TestTerminal_Get(t *testing.T) {
	conn := openTestDB(t)
	seed(t, conn)

	users, err := conn.Table("users").
		Where("age", ">", 18).
		Where("status", "=", "active").
		Get("id", "name")
	require.NoError(t, err)
	require.Equal(t, 1, users.Len())

	row, ok := users.First()
	require.True(t, ok)
	assert.Equal(t, fluentdb.Row{"id": int64(1), "name": "Ann"}, row)
}

func TestTerminal_GetWithJoin(t *testing.T) {
	conn := openTestDB(t)
	seed(t, conn)

	b := conn.Builder().TableAs("users", "u").Select("u.name", "p.title")
	b.Join("posts", "p").On("p.user_id", "=", "u.id").Where("p.published", "=", 1)
	rows, err := b.Order("p.id").Get()
	require.NoError(t, err)

	assert.Equal(t, []any{"Ann", "Cem"}, rows.Pluck("u.name"))
	assert.Equal(t, []any{"Hello", "Notes"}, rows.Pluck("title"))
}

func TestTerminal_GetEmpty(t *testing.T) {
	conn := openTestDB(t)

	rows, err := conn.Table("users").WhereIn("id", []int{}).Get()
	require.NoError(t, err)
	assert.True(t, rows.IsEmpty())
}

func TestTerminal_FirstAndFind(t *testing.T) {
	conn := openTestDB(t)
	seed(t, conn)

	row, err := conn.Table("users").Order("age", "desc").First()
	require.NoError(t, err)
	assert.Equal(t, "Cem", row.String("name"))

	_, err = conn.Table("users").Where("name", "=", "Nobody").First()
	assert.ErrorIs(t, err, fluentdb.ErrNoRows)

	row, err = conn.Table("users").Find(2, "name")
	require.NoError(t, err)
	assert.Equal(t, fluentdb.Row{"name": "Bob"}, row)

	_, err = conn.Table("users").Find(99)
	assert.True(t, errors.Is(err, fluentdb.ErrNoRows))
}

func TestTerminal_FindUsesPrimaryKey(t *testing.T) {
	conn := openTestDB(t)
	seed(t, conn)

	row, err := conn.Table("users").PrimaryKey("email").Find("bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Bob", row.String("name"))

	type account struct {
		Email string `db:"email,pk"`
		Name  string `db:"name"`
	}
	row, err = conn.Table("users").Model(account{}).Find("cem@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Cem", row.String("name"))
}

func TestTerminal_ColumnAndColumnMap(t *testing.T) {
	conn := openTestDB(t)
	seed(t, conn)

	names, err := conn.Table("users").Order("id").Column("name")
	require.NoError(t, err)
	assert.Equal(t, []any{"Ann", "Bob", "Cem"}, names)

	// Column mevcut projeksiyonu geçersiz kılar.
	names, err = conn.Table("users").Select("id", "email").Order("id").Column("name")
	require.NoError(t, err)
	assert.Equal(t, []any{"Ann", "Bob", "Cem"}, names)

	_, err = conn.Table("orders").SelectRaw("SUM(amount) AS total").Group("user_id").Column("total")
	assert.ErrorIs(t, err, fluentdb.ErrExecution)

	byID, err := conn.Table("users").ColumnMap("name", "id")
	require.NoError(t, err)
	assert.Equal(t, map[any]any{int64(1): "Ann", int64(2): "Bob", int64(3): "Cem"}, byID)
}

func TestTerminal_Aggregates(t *testing.T) {
	conn := openTestDB(t)
	seed(t, conn)

	orders := conn.Table("orders")

	count, err := orders.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	count, err = conn.Table("users").Count("email")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	sum, err := orders.Sum("amount")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, sum, 1e-9)

	maxAmount, err := orders.Max("amount")
	require.NoError(t, err)
	assert.InDelta(t, 64.25, maxAmount, 1e-9)

	minAmount, err := orders.Min("amount")
	require.NoError(t, err)
	assert.InDelta(t, 5.25, minAmount, 1e-9)

	avg, err := conn.Table("orders").Where("user_id", "=", 1).Avg("amount")
	require.NoError(t, err)
	assert.InDelta(t, 15.25, avg, 1e-9)

	// Eşleşme yoksa SUM NULL döner; sonuç 0 olur.
	sum, err = conn.Table("orders").Where("user_id", "=", 99).Sum("amount")
	require.NoError(t, err)
	assert.Zero(t, sum)

	// Aggregate'ler Builder'ı değiştirmez.
	_, err = orders.Limit(1).Count()
	require.NoError(t, err)
	rows, err := orders.Get()
	require.NoError(t, err)
	assert.Equal(t, 1, rows.Len())
}

func TestTerminal_AggregateRejectsStar(t *testing.T) {
	conn := openTestDB(t)

	_, err := conn.Table("orders").Sum("*")
	assert.ErrorIs(t, err, fluentdb.ErrMalformedQuery)
}

func TestTerminal_Exists(t *testing.T) {
	conn := openTestDB(t)
	seed(t, conn)

	ok, err := conn.Table("users").Where("age", ">", 40).Exists()
	require.NoError(t, err)
	assert.True(t, ok)

	none, err := conn.Table("users").Where("age", ">", 100).DoesntExist()
	require.NoError(t, err)
	assert.True(t, none)
}

func TestTerminal_InsertAndInsertAll(t *testing.T) {
	conn := openTestDB(t)

	id, err := conn.Table("users").Insert(&user{Name: "Ann", Email: "ann@example.com", Age: 30})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	ids, err := conn.Table("users").InsertAll([]user{
		{Name: "Bob", Email: "bob@example.com"},
		{Name: "Cem", Email: "cem@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids)

	// Hatalı satırdan önce eklenenler döner; örtük transaction yoktur.
	ids, err = conn.Table("users").InsertAll([]fluentdb.Record{
		fluentdb.Record{}.Set("name", "Dan").Set("email", "dan@example.com"),
		fluentdb.Record{}.Set("name", "Dup").Set("email", "ann@example.com"),
		fluentdb.Record{}.Set("name", "Eve").Set("email", "eve@example.com"),
	})
	assert.ErrorIs(t, err, fluentdb.ErrExecution)
	assert.Equal(t, []int64{4}, ids)

	n, err := conn.Table("users").Count()
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestTerminal_InsertAllInputs(t *testing.T) {
	conn := openTestDB(t)

	ids, err := conn.Table("users").InsertAll(nil)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = conn.Table("users").InsertAll(fluentdb.Record{}.Set("name", "Ann"))
	assert.ErrorIs(t, err, fluentdb.ErrMalformedQuery)

	_, err = conn.Table("users").InsertAll(42)
	assert.ErrorIs(t, err, fluentdb.ErrMalformedQuery)
	assert.ErrorIs(t, err, fluentdb.ErrNotASlice)
}

func TestTerminal_UpdateAndDelete(t *testing.T) {
	conn := openTestDB(t)
	seed(t, conn)

	n, err := conn.Table("users").
		Where("status", "=", "active").
		Update(fluentdb.Record{}.Set("status", "archived"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	archived, err := conn.Table("users").Where("status", "=", "archived").Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), archived)

	n, err = conn.Table("users").Where("age", "<", 18).Delete()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = conn.Table("users").Where("age", "<", 18).Delete()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTerminal_GetIntoAndFirstInto(t *testing.T) {
	conn := openTestDB(t)
	seed(t, conn)

	var users []user
	require.NoError(t, conn.Table("users").Order("id").GetInto(&users))
	require.Len(t, users, 3)
	assert.Equal(t, user{ID: 1, Name: "Ann", Email: "ann@example.com", Age: 30, Status: "active", CreatedAt: "2024-01-01"}, users[0])

	var ptrs []*user
	require.NoError(t, conn.Table("users").Where("age", ">", 40).GetInto(&ptrs))
	require.Len(t, ptrs, 1)
	assert.Equal(t, "Cem", ptrs[0].Name)

	var u user
	require.NoError(t, conn.Table("users").Where("email", "=", "bob@example.com").FirstInto(&u))
	assert.Equal(t, int64(2), u.ID)

	err := conn.Table("users").Where("id", "=", 99).FirstInto(&u)
	assert.ErrorIs(t, err, fluentdb.ErrNoRows)

	err = conn.Table("users").GetInto(users)
	assert.ErrorIs(t, err, fluentdb.ErrNotAPointer)
}

func TestTerminal_Paginate(t *testing.T) {
	conn := openTestDB(t)
	seed(t, conn)

	var page []user
	p, err := conn.Table("users").Order("id").Paginate(2, 2, &page)
	require.NoError(t, err)

	assert.Equal(t, &fluentdb.Pagination{Page: 2, PerPage: 2, Total: 3, TotalPages: 2, HasMore: false}, p)
	assert.True(t, p.HasPrev())
	assert.False(t, p.HasNext())
	require.Len(t, page, 1)
	assert.Equal(t, "Cem", page[0].Name)

	meta, err := conn.Table("users").Paginate(0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, meta.Page)
	assert.Equal(t, fluentdb.DefaultPerPage, meta.PerPage)
	assert.Equal(t, 1, meta.TotalPages)
}

func TestTerminal_GroupedAggregates(t *testing.T) {
	rec := &recorder{}
	conn := openTestDB(t, fluentdb.WithDebug(true), fluentdb.WithLogger(rec))
	seed(t, conn)

	// 4 sipariş, 3 kullanıcı: sayılan gruplardır, ilk grubun satırları değil.
	count, err := conn.Table("orders").Group("user_id").Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	totals := conn.Table("orders").
		Select("user_id").
		SelectRaw("SUM(amount) * ? AS total", 2).
		Group("user_id").
		Having("total", ">", 20)

	count, err = totals.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t,
		"SELECT COUNT(*) AS `aggregate` FROM (SELECT `user_id`, SUM(amount) * ? AS total FROM `orders` GROUP BY `user_id` HAVING `total` > ?) AS `aggregate_table`",
		rec.last())

	rec.mu.Lock()
	assert.Equal(t, []any{int64(2), int64(20)}, rec.args[len(rec.args)-1])
	rec.mu.Unlock()

	maxTotal, err := totals.Max("total")
	require.NoError(t, err)
	assert.InDelta(t, 128.5, maxTotal, 1e-9)
}

func TestTerminal_DistinctAggregates(t *testing.T) {
	conn := openTestDB(t)
	seed(t, conn)

	count, err := conn.Table("orders").Distinct().Count("user_id")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = conn.Table("orders").Select("user_id").Distinct().Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	sql, _, err := conn.Table("orders").Distinct().Select("user_id").ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT DISTINCT `user_id` FROM `orders`", sql)
}

func TestTerminal_PaginateGrouped(t *testing.T) {
	conn := openTestDB(t)
	seed(t, conn)

	type userTotal struct {
		UserID int64   `db:"user_id"`
		Total  float64 `db:"total"`
	}

	var rows []userTotal
	p, err := conn.Table("orders").
		Select("user_id").
		SelectRaw("SUM(amount) AS total").
		Group("user_id").
		Order("user_id").
		Paginate(1, 2, &rows)
	require.NoError(t, err)

	assert.Equal(t, &fluentdb.Pagination{Page: 1, PerPage: 2, Total: 3, TotalPages: 2, HasMore: true}, p)
	assert.Equal(t, []userTotal{{1, 30.5}, {2, 5.25}}, rows)
}

func TestTerminal_ErrorsCarryTable(t *testing.T) {
	conn := openTestDB(t)

	_, err := conn.Table("missing").Get()
	require.Error(t, err)

	var qe *fluentdb.QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, fluentdb.ErrExecution, qe.Kind)
	assert.Equal(t, "missing", qe.Table)
	assert.Equal(t, "SELECT * FROM `missing`", qe.SQL)
}

func TestTerminal_BuildErrorSkipsIO(t *testing.T) {
	rec := &recorder{}
	conn := openTestDB(t, fluentdb.WithDebug(true), fluentdb.WithLogger(rec))
	before := len(rec.all())

	_, err := conn.Table("users").Where("age", "=", struct{}{}).Get()
	assert.ErrorIs(t, err, fluentdb.ErrBindingType)
	assert.Len(t, rec.all(), before)
}
