package models

// AttendanceStatus defines the possible status values for attendance.
type AttendanceStatus string

const (
	Present AttendanceStatus = "present"
	Absent  AttendanceStatus = "absent"
	Late    AttendanceStatus = "late"
	Excused AttendanceStatus = "excused"
)

// Gender defines the possible gender values for a student.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// PaymentStatus defines the status of a payment
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// PaymentMethod is how a payment was made.
type PaymentMethod string

const (
	Cash         PaymentMethod = "cash"
	MobileMoney  PaymentMethod = "mobile_money"
	BankTransfer PaymentMethod = "bank_transfer"
)
