package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/Rvd99/ali-baba/models"
)

func TestMarkPaid_DuplicateDeliveryIsNoOp(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewGormOrderRepository(gormDB)
	orderID := uuid.New()

	mock.ExpectBegin()
	// Conditional flip matches nothing: the order is no longer PENDING.
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	// The order exists, so this is a redelivery, not an unknown order.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectCommit()

	applied, err := repo.MarkPaid(context.Background(), orderID, "pi_123")
	assert.NoError(t, err)
	assert.False(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPaid_UnknownOrder(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewGormOrderRepository(gormDB)
	orderID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	applied, err := repo.MarkPaid(context.Background(), orderID, "pi_123")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.False(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelStaleCheckoutOrders(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewGormOrderRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders"`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	n, err := repo.CancelStaleCheckoutOrders(context.Background(), time.Now().Add(-24*time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewGormOrderRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateStatus(context.Background(), uuid.New(), models.OrderStatusShipped)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
