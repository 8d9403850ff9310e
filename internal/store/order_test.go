package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"mini-ecommerce/internal/database"
	"mini-ecommerce/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

/* ---------- 假實作 ---------- */

// fakeTx 實作 pgx.Tx，僅覆寫測試需要的方法。
type fakeTx struct {
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
	commitErr  error
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *fakeTx) Commit(ctx context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}
func (t *fakeTx) Rollback(ctx context.Context) error { t.rolledBack = true; return nil }
func (t *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("unexpected CopyFrom")
}
func (t *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("unexpected SendBatch")
}
func (t *fakeTx) LargeObjects() pgx.LargeObjects { panic("unexpected LargeObjects") }
func (t *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("unexpected Prepare")
}
func (t *fakeTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("unexpected Exec")
}
func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("unexpected Query")
}
func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return t.queryRowFn(ctx, sql, args...)
}
func (t *fakeTx) Conn() *pgx.Conn { return nil }

// fakeOrderRow 實作 pgx.Row。
type fakeOrderRow struct {
	scanErr error
	order   *model.Order
	itemID  int
}

func (r *fakeOrderRow) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	o := r.order
	switch len(dest) {
	case 10:
		// 完整訂單欄位
		*dest[0].(*int) = o.ID
		*dest[1].(*int) = o.UserID
		*dest[2].(*float64) = o.TotalAmount
		*dest[3].(*string) = o.ShippingInfo.Address
		*dest[4].(*string) = o.ShippingInfo.City
		*dest[5].(*string) = o.ShippingInfo.PostalCode
		*dest[6].(*string) = o.ShippingInfo.Country
		*dest[7].(*string) = o.Status
		*dest[8].(*time.Time) = o.CreatedAt
		*dest[9].(*time.Time) = o.UpdatedAt
	case 4:
		// CreateOrder: id, status, created_at, updated_at
		*dest[0].(*int) = o.ID
		*dest[1].(*string) = o.Status
		*dest[2].(*time.Time) = o.CreatedAt
		*dest[3].(*time.Time) = o.UpdatedAt
	case 1:
		// order_items insert: id
		*dest[0].(*int) = r.itemID
	default:
		panic("fakeOrderRow.Scan: unexpected number of dest")
	}
	return nil
}

// fakeItemRows 實作 pgx.Rows，回傳訂單項目。
type fakeItemRows struct {
	data []model.OrderItem
	idx  int
	err  error
}

func (r *fakeItemRows) Close()                                       {}
func (r *fakeItemRows) Err() error                                   { return r.err }
func (r *fakeItemRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeItemRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeItemRows) Next() bool                                   { return r.idx < len(r.data) }
func (r *fakeItemRows) Scan(dest ...any) error {
	item := r.data[r.idx]
	r.idx++
	*dest[0].(*int) = item.ID
	*dest[1].(*int) = item.OrderID
	*dest[2].(*int) = item.ProductID
	*dest[3].(*int) = item.Quantity
	*dest[4].(*float64) = item.Price
	return nil
}
func (r *fakeItemRows) Values() ([]any, error) { return nil, nil }
func (r *fakeItemRows) RawValues() [][]byte    { return nil }
func (r *fakeItemRows) Conn() *pgx.Conn        { return nil }

// fakeOrderRows 實作 pgx.Rows，回傳訂單列。
type fakeOrderRows struct {
	data []model.Order
	idx  int
	err  error
}

func (r *fakeOrderRows) Close()                                       {}
func (r *fakeOrderRows) Err() error                                   { return r.err }
func (r *fakeOrderRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeOrderRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeOrderRows) Next() bool                                   { return r.idx < len(r.data) }
func (r *fakeOrderRows) Scan(dest ...any) error {
	o := r.data[r.idx]
	r.idx++
	return (&fakeOrderRow{order: &o}).Scan(dest...)
}
func (r *fakeOrderRows) Values() ([]any, error) { return nil, nil }
func (r *fakeOrderRows) RawValues() [][]byte    { return nil }
func (r *fakeOrderRows) Conn() *pgx.Conn        { return nil }

// fakeAdminRows 實作 pgx.Rows，回傳訂單加上 LEFT JOIN 的使用者欄位。
type fakeAdminRows struct {
	orders []model.Order
	users  []*model.User // 與 orders 對齊，nil 表示使用者已刪除
	idx    int
}

func (r *fakeAdminRows) Close()                                       {}
func (r *fakeAdminRows) Err() error                                   { return nil }
func (r *fakeAdminRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeAdminRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeAdminRows) Next() bool                                   { return r.idx < len(r.orders) }
func (r *fakeAdminRows) Scan(dest ...any) error {
	o := r.orders[r.idx]
	u := r.users[r.idx]
	r.idx++
	if err := (&fakeOrderRow{order: &o}).Scan(dest[:10]...); err != nil {
		return err
	}
	if u != nil {
		*dest[10].(**int) = &u.ID
		*dest[11].(**string) = &u.Name
		*dest[12].(**string) = &u.Email
	}
	return nil
}
func (r *fakeAdminRows) Values() ([]any, error) { return nil, nil }
func (r *fakeAdminRows) RawValues() [][]byte    { return nil }
func (r *fakeAdminRows) Conn() *pgx.Conn        { return nil }

/* ---------- 測試 ---------- */

func TestCreateOrder(t *testing.T) {
	now := time.Now()

	t.Run("success", func(t *testing.T) {
		nextItemID := 100
		tx := &fakeTx{}
		tx.queryRowFn = func(ctx context.Context, sql string, args ...any) pgx.Row {
			if strings.Contains(sql, "INSERT INTO orders") {
				require.Equal(t, 1, args[0])
				require.Equal(t, 25.5, args[1])
				require.Equal(t, model.OrderStatusPending, args[6])
				return &fakeOrderRow{order: &model.Order{ID: 10, Status: model.OrderStatusPending, CreatedAt: now, UpdatedAt: now}}
			}
			require.Equal(t, 10, args[0])
			nextItemID++
			return &fakeOrderRow{itemID: nextItemID}
		}
		db := &database.FakeDB{
			BeginFn: func(ctx context.Context) (pgx.Tx, error) { return tx, nil },
		}

		o, err := CreateOrder(context.Background(), db, &model.Order{
			UserID:      1,
			TotalAmount: 25.5,
			Items: []model.OrderItem{
				{ProductID: 2, Quantity: 3, Price: 8.5},
			},
		})
		require.NoError(t, err)
		require.Equal(t, 10, o.ID)
		require.Equal(t, model.OrderStatusPending, o.Status)
		require.Equal(t, 10, o.Items[0].OrderID)
		require.Equal(t, 101, o.Items[0].ID)
		require.True(t, tx.committed)
	})

	t.Run("begin error", func(t *testing.T) {
		db := &database.FakeDB{
			BeginFn: func(ctx context.Context) (pgx.Tx, error) { return nil, errors.New("begin") },
		}
		_, err := CreateOrder(context.Background(), db, &model.Order{})
		require.Error(t, err)
	})

	t.Run("item insert error rolls back", func(t *testing.T) {
		tx := &fakeTx{}
		tx.queryRowFn = func(ctx context.Context, sql string, args ...any) pgx.Row {
			if strings.Contains(sql, "INSERT INTO orders") {
				return &fakeOrderRow{order: &model.Order{ID: 10, Status: model.OrderStatusPending}}
			}
			return &fakeOrderRow{scanErr: errors.New("item")}
		}
		db := &database.FakeDB{
			BeginFn: func(ctx context.Context) (pgx.Tx, error) { return tx, nil },
		}
		_, err := CreateOrder(context.Background(), db, &model.Order{
			Items: []model.OrderItem{{ProductID: 1, Quantity: 1, Price: 1}},
		})
		require.Error(t, err)
		require.False(t, tx.committed)
		require.True(t, tx.rolledBack)
	})

	t.Run("commit error", func(t *testing.T) {
		tx := &fakeTx{commitErr: errors.New("commit")}
		tx.queryRowFn = func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &fakeOrderRow{order: &model.Order{ID: 10}}
		}
		db := &database.FakeDB{
			BeginFn: func(ctx context.Context) (pgx.Tx, error) { return tx, nil },
		}
		_, err := CreateOrder(context.Background(), db, &model.Order{})
		require.Error(t, err)
	})
}

func TestGetOrderByID(t *testing.T) {
	now := time.Now()
	want := model.Order{ID: 5, UserID: 2, TotalAmount: 12, Status: model.OrderStatusPending, CreatedAt: now, UpdatedAt: now}
	db := &database.FakeDB{
		QueryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			require.Equal(t, 5, args[0])
			return &fakeOrderRow{order: &want}
		},
		QueryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			require.Contains(t, sql, "order_items")
			return &fakeItemRows{data: []model.OrderItem{{ID: 1, OrderID: 5, ProductID: 3, Quantity: 2, Price: 6}}}, nil
		},
	}

	got, err := GetOrderByID(context.Background(), db, 5)
	require.NoError(t, err)
	require.Equal(t, 5, got.ID)
	require.Len(t, got.Items, 1)
	require.Equal(t, 3, got.Items[0].ProductID)

	db.QueryRowFn = func(ctx context.Context, sql string, args ...any) pgx.Row {
		return &fakeOrderRow{scanErr: pgx.ErrNoRows}
	}
	_, err = GetOrderByID(context.Background(), db, 5)
	require.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestListOrdersByUser(t *testing.T) {
	now := time.Now()
	orders := []model.Order{
		{ID: 9, UserID: 2, Status: model.OrderStatusDelivered, CreatedAt: now},
		{ID: 7, UserID: 2, Status: model.OrderStatusPending, CreatedAt: now.Add(-time.Hour)},
	}
	db := &database.FakeDB{
		QueryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			if strings.Contains(sql, "order_items") {
				return &fakeItemRows{data: []model.OrderItem{{ID: 1, OrderID: 9, ProductID: 4, Quantity: 1, Price: 2}}}, nil
			}
			require.Equal(t, 2, args[0])
			return &fakeOrderRows{data: orders}, nil
		},
	}

	got, err := ListOrdersByUser(context.Background(), db, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, 9, got[0].ID)
	require.Len(t, got[0].Items, 1)
	require.Empty(t, got[1].Items)

	db.QueryFn = func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
		return nil, errors.New("q")
	}
	_, err = ListOrdersByUser(context.Background(), db, 2)
	require.Error(t, err)
}

func TestListAllOrders(t *testing.T) {
	now := time.Now()
	orders := []model.Order{
		{ID: 2, UserID: 1, TotalAmount: 30, Status: model.OrderStatusPending, CreatedAt: now},
		{ID: 1, UserID: 9, TotalAmount: 10, Status: model.OrderStatusDelivered, CreatedAt: now.Add(-time.Hour)},
	}
	users := []*model.User{
		{ID: 1, Name: "Alice", Email: "a@x.com"},
		nil, // 已刪除的使用者
	}
	db := &database.FakeDB{
		QueryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			switch {
			case strings.Contains(sql, "order_items"):
				return &fakeItemRows{data: []model.OrderItem{
					{ID: 1, OrderID: 2, ProductID: 5, Quantity: 2, Price: 15},
					{ID: 2, OrderID: 1, ProductID: 6, Quantity: 1, Price: 10},
				}}, nil
			case strings.Contains(sql, "FROM products"):
				// 商品 6 已刪除，僅回傳 5
				return &fakeProductRows{data: []model.Product{{ID: 5, Name: "Tea", Price: 15, ImageURL: "/uploads/tea.png"}}}, nil
			default:
				return &fakeAdminRows{orders: orders, users: users}, nil
			}
		},
	}

	got, err := ListAllOrders(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.NotNil(t, got[0].User)
	require.Equal(t, "Alice", got[0].User.Name)
	require.Nil(t, got[1].User)

	require.Len(t, got[0].Order.Items, 1)
	require.NotNil(t, got[0].Products[5])
	require.Nil(t, got[0].Products[6])
}

func TestUpdateOrderStatus(t *testing.T) {
	db := &database.FakeDB{
		ExecFn: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			require.Equal(t, 3, args[0])
			require.Equal(t, model.OrderStatusDelivered, args[1])
			return pgconn.NewCommandTag("UPDATE 1"), nil
		},
	}
	require.NoError(t, UpdateOrderStatus(context.Background(), db, 3, model.OrderStatusDelivered))

	db.ExecFn = func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
		return pgconn.NewCommandTag("UPDATE 0"), nil
	}
	require.Error(t, UpdateOrderStatus(context.Background(), db, 3, model.OrderStatusDelivered))

	db.ExecFn = func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
		return pgconn.CommandTag{}, errors.New("exec")
	}
	require.Error(t, UpdateOrderStatus(context.Background(), db, 3, model.OrderStatusDelivered))
}
