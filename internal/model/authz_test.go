package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func i64(v int64) *int64 { return &v }

func TestCanViewPayment(t *testing.T) {
	admin := Caller{ID: 1, Role: RoleAdmin}
	resident := Caller{ID: 2, Role: RoleResident, UnitID: i64(10)}
	homeless := Caller{ID: 3, Role: RoleResident}

	t.Run("admin sees everything", func(t *testing.T) {
		assert.True(t, CanViewPayment(admin, &Payment{UserID: 99, UnitID: i64(55)}))
	})

	t.Run("resident sees own payment", func(t *testing.T) {
		assert.True(t, CanViewPayment(resident, &Payment{UserID: 2, UnitID: i64(55)}))
	})

	t.Run("resident sees payment on own unit", func(t *testing.T) {
		assert.True(t, CanViewPayment(resident, &Payment{UserID: 99, UnitID: i64(10)}))
	})

	t.Run("resident sees unlinked payment", func(t *testing.T) {
		assert.True(t, CanViewPayment(resident, &Payment{UserID: 99}))
		assert.True(t, CanViewPayment(homeless, &Payment{UserID: 99}))
	})

	t.Run("resident cannot see another unit's payment", func(t *testing.T) {
		assert.False(t, CanViewPayment(resident, &Payment{UserID: 99, UnitID: i64(55)}))
		assert.False(t, CanViewPayment(homeless, &Payment{UserID: 99, UnitID: i64(10)}))
	})
}

func TestCanEditPayment(t *testing.T) {
	assert.True(t, CanEditPayment(Caller{ID: 1, Role: RoleAdmin}, &Payment{UserID: 9}))
	assert.True(t, CanEditPayment(Caller{ID: 9, Role: RoleResident}, &Payment{UserID: 9}))
	assert.False(t, CanEditPayment(Caller{ID: 2, Role: RoleResident}, &Payment{UserID: 9}))
}

func TestCanDeletePayment(t *testing.T) {
	assert.True(t, CanDeletePayment(Caller{Role: RoleAdmin}))
	assert.False(t, CanDeletePayment(Caller{Role: RoleResident}))
}

func TestCanSubmitProof(t *testing.T) {
	resident := Caller{ID: 2, Role: RoleResident, UnitID: i64(10)}

	assert.True(t, CanSubmitProof(Caller{Role: RoleAdmin}, &Payment{}))
	assert.True(t, CanSubmitProof(resident, &Payment{UnitID: i64(10)}))
	assert.False(t, CanSubmitProof(resident, &Payment{UnitID: i64(11)}))
	// unlinked pendings cannot be self-resolved
	assert.False(t, CanSubmitProof(resident, &Payment{}))
}

func TestCanLinkUnit(t *testing.T) {
	resident := Caller{ID: 2, Role: RoleResident, UnitID: i64(10)}

	assert.True(t, CanLinkUnit(Caller{Role: RoleAdmin}, i64(55)))
	assert.True(t, CanLinkUnit(resident, nil))
	assert.True(t, CanLinkUnit(resident, i64(10)))
	assert.False(t, CanLinkUnit(resident, i64(55)))
	assert.False(t, CanLinkUnit(Caller{ID: 3, Role: RoleResident}, i64(10)))
}
