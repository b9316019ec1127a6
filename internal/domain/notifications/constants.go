package notifications

// TypePayslipIssued matches payroll.NotificationTypeIssued.
const TypePayslipIssued = "payslip_issued"

const (
	DefaultLimit = 20
	MaxLimit     = 100
)
