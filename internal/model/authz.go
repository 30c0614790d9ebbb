package model

// Capability predicates for the payment ledger. Every role/ownership rule
// lives here so handlers and services share one definition.

// CanViewPayment: admins see everything; a resident sees a payment they
// created, a payment on their own unit, or an unlinked payment.
func CanViewPayment(c Caller, p *Payment) bool {
	if c.IsAdmin() {
		return true
	}
	if p.UserID == c.ID {
		return true
	}
	if p.UnitID == nil {
		return true
	}
	return c.UnitID != nil && *p.UnitID == *c.UnitID
}

// CanEditPayment: creator or admin.
func CanEditPayment(c Caller, p *Payment) bool {
	return c.IsAdmin() || p.UserID == c.ID
}

// CanDeletePayment: admin only.
func CanDeletePayment(c Caller) bool {
	return c.IsAdmin()
}

// CanSubmitProof: admins may resolve any pending due; a resident only one
// linked to their own unit. Unlinked pendings cannot be self-resolved.
func CanSubmitProof(c Caller, p *Payment) bool {
	if c.IsAdmin() {
		return true
	}
	return p.UnitID != nil && c.UnitID != nil && *p.UnitID == *c.UnitID
}

// CanLinkUnit: a resident may leave a payment unlinked or point it at their
// own unit, never at someone else's.
func CanLinkUnit(c Caller, unitID *int64) bool {
	if c.IsAdmin() || unitID == nil {
		return true
	}
	return c.UnitID != nil && *unitID == *c.UnitID
}
