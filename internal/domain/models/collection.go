package models

// Shift identifies the collection window of the day.
type Shift string

const (
	ShiftMorning Shift = "Morning"
	ShiftEvening Shift = "Evening"
	ShiftNight   Shift = "Night"
)

// PaymentStatus tracks how much of a collection has been settled.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
	PaymentPartial PaymentStatus = "Partial"
)

// MilkCollection is one delivery of milk by a farmer at a center.
// TotalAmount always equals Quantity times RatePerLiter to two decimals;
// RatePerLiter is derived by the rate calculation and never authored
// independently once computed.
type MilkCollection struct {
	CollectionID     int           `json:"collectionID,omitempty"`
	CollectionNumber string        `json:"collectionNumber,omitempty"`
	CollectionDate   string        `json:"collectionDate"`
	FarmerID         int           `json:"farmerID"`
	CenterID         int           `json:"centerID"`
	CollectionTime   string        `json:"collectionTime,omitempty"`
	Quantity         float64       `json:"quantity"`
	FatPercentage    float64       `json:"fatPercentage,omitempty"`
	SNFPercentage    float64       `json:"snfPercentage,omitempty"`
	CLR              float64       `json:"clr,omitempty"`
	Temperature      float64       `json:"temperature,omitempty"`
	Acidity          float64       `json:"acidity,omitempty"`
	RatePerLiter     float64       `json:"ratePerLiter,omitempty"`
	TotalAmount      float64       `json:"totalAmount,omitempty"`
	CollectionType   string        `json:"collectionType,omitempty"`
	Shift            Shift         `json:"shift"`
	PaymentStatus    PaymentStatus `json:"paymentStatus,omitempty"`
	BatchNumber      string        `json:"batchNumber,omitempty"`
	IsPaid           bool          `json:"isPaid,omitempty"`
	PaymentDate      string        `json:"paymentDate,omitempty"`
}

// CollectionSummary is a per-date rollup for one farmer.
type CollectionSummary struct {
	Date          string  `json:"date"`
	TotalQuantity float64 `json:"totalQuantity"`
	TotalAmount   float64 `json:"totalAmount"`
	AverageFat    float64 `json:"averageFat"`
	FarmerCount   int     `json:"farmerCount"`
}

// CenterCollection is a per-center rollup for one date.
type CenterCollection struct {
	CenterID      int     `json:"centerID"`
	CenterCode    string  `json:"centerCode"`
	CenterName    string  `json:"centerName"`
	TotalQuantity float64 `json:"totalQuantity"`
	TotalAmount   float64 `json:"totalAmount"`
	AverageFat    float64 `json:"averageFat"`
}

// CollectionSearchParams filters the server-side summary and export reads.
type CollectionSearchParams struct {
	FromDate      string
	ToDate        string
	CenterID      int
	FarmerID      int
	Shift         Shift
	PaymentStatus PaymentStatus
	Page          int
	PageSize      int
	SortBy        string
}
