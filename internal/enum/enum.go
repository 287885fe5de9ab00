package enum

// ── Item workflow states (display order; transitions are NOT enforced,
// any state may be set to any other so mis-clicks can be reverted) ──

const (
	ItemStatusReceived      = "Received"
	ItemStatusCutting       = "Cutting"
	ItemStatusSewing        = "Sewing"
	ItemStatusReadyForTrial = "Ready for Trial"
	ItemStatusDelivered     = "Delivered"
)

// ItemStatuses lists the workflow states in display order. Status
// distribution counts are keyed on exactly this set; anything else in a
// stored document is ignored.
var ItemStatuses = []string{
	ItemStatusReceived,
	ItemStatusCutting,
	ItemStatusSewing,
	ItemStatusReadyForTrial,
	ItemStatusDelivered,
}

// ── Order-level lifecycle (coarse, independent of item states) ──

const (
	OrderStatusActive    = "Active"
	OrderStatusDelivered = "Delivered"
)

// ── Ledger transaction types ──

const (
	TransactionIncome  = "Income"
	TransactionExpense = "Expense"
)

// ── Worker roles for earnings attribution ──

const (
	WorkerRoleCutter = "Cutter"
	WorkerRoleSewer  = "Sewer"
)

// ── User roles ──

const (
	UserRoleOwner = "OWNER"
	UserRoleStaff = "STAFF"
)

// ── Discounts and payment methods ──

const (
	DiscountTypePercent = "percent"
	DiscountTypeFixed   = "fixed"
)

const (
	PaymentMethodCash = "Cash"
	PaymentMethodUPI  = "UPI"
	PaymentMethodCard = "Card"
)

// ── Measurement field vocabulary ──

const (
	MeasurementLength   = "Length"
	MeasurementChest    = "Chest"
	MeasurementWaist    = "Waist"
	MeasurementSleeve   = "Sleeve"
	MeasurementShoulder = "Shoulder"
	MeasurementHips     = "Hips"
	MeasurementNeck     = "Neck"
	MeasurementOther    = "Other"
)

// MeasurementFields is the fixed vocabulary for item measurements. Field
// edits outside this set land on the item itself, not the measurement map.
var MeasurementFields = []string{
	MeasurementLength,
	MeasurementChest,
	MeasurementWaist,
	MeasurementSleeve,
	MeasurementShoulder,
	MeasurementHips,
	MeasurementNeck,
	MeasurementOther,
}

// IsMeasurementField reports whether the field belongs to the measurement
// vocabulary.
func IsMeasurementField(field string) bool {
	for _, f := range MeasurementFields {
		if f == field {
			return true
		}
	}
	return false
}

// IsItemStatus reports whether s is one of the five workflow states.
func IsItemStatus(s string) bool {
	for _, st := range ItemStatuses {
		if st == s {
			return true
		}
	}
	return false
}
