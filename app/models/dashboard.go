package models

// DashboardStats is the admin dashboard summary. Rates are percentages with one
// decimal place.
type DashboardStats struct {
	TotalStudents     int     `json:"total_students"`
	ActiveStudents    int     `json:"active_students"`
	TotalTeachers     int     `json:"total_teachers"`
	TotalClasses      int     `json:"total_classes"`
	FeesBilled        float64 `json:"fees_billed"`
	FeesCollected     float64 `json:"fees_collected"`
	FeesOutstanding   float64 `json:"fees_outstanding"`
	MonthlyRevenue    float64 `json:"monthly_revenue"`
	MonthlyExpenses   float64 `json:"monthly_expenses"`
	StudentAttendance float64 `json:"student_attendance"`
	FeeCollectionRate float64 `json:"fee_collection_rate"`
}
