package models

import "time"

// Farmer is a member record as returned by the backend. The backend is the
// system of record; instances are held only for the duration of one request.
type Farmer struct {
	FarmerID          int       `json:"farmerID"`
	FarmerCode        string    `json:"farmerCode"`
	FullName          string    `json:"fullName"`
	FatherName        string    `json:"fatherName,omitempty"`
	ContactNumber     string    `json:"contactNumber"`
	AlternateContact  string    `json:"alternateContact,omitempty"`
	Address           string    `json:"address,omitempty"`
	Village           string    `json:"village,omitempty"`
	Taluka            string    `json:"taluka,omitempty"`
	District          string    `json:"district,omitempty"`
	State             string    `json:"state,omitempty"`
	Pincode           string    `json:"pincode,omitempty"`
	BankAccountNumber string    `json:"bankAccountNumber,omitempty"`
	IFSCCode          string    `json:"ifscode,omitempty"`
	BankName          string    `json:"bankName,omitempty"`
	BranchName        string    `json:"branchName,omitempty"`
	AadharNumber      string    `json:"aadharNumber,omitempty"`
	RegistrationDate  time.Time `json:"registrationDate"`
	IsActive          bool      `json:"isActive"`
	TotalCollections  int       `json:"totalCollections,omitempty"`
	TotalAmount       float64   `json:"totalAmount,omitempty"`
	BalanceAmount     float64   `json:"balanceAmount,omitempty"`
}

// CreateFarmer is the POST /Farmers payload. FarmerCode may be left empty;
// the service fills in a generated fallback code before sending.
type CreateFarmer struct {
	FarmerCode        string `json:"farmerCode,omitempty"`
	FullName          string `json:"fullName"`
	FatherName        string `json:"fatherName,omitempty"`
	ContactNumber     string `json:"contactNumber"`
	AlternateContact  string `json:"alternateContact,omitempty"`
	Address           string `json:"address,omitempty"`
	Village           string `json:"village,omitempty"`
	Taluka            string `json:"taluka,omitempty"`
	District          string `json:"district,omitempty"`
	State             string `json:"state,omitempty"`
	Pincode           string `json:"pincode,omitempty"`
	BankAccountNumber string `json:"bankAccountNumber,omitempty"`
	IFSCCode          string `json:"ifscode,omitempty"`
	BankName          string `json:"bankName,omitempty"`
	BranchName        string `json:"branchName,omitempty"`
	AadharNumber      string `json:"aadharNumber,omitempty"`
}

// UpdateFarmer is the PUT /Farmers/{id} payload. Pointer fields distinguish
// "leave unchanged" from an explicit zero value.
type UpdateFarmer struct {
	FarmerCode        *string `json:"farmerCode,omitempty"`
	FullName          *string `json:"fullName,omitempty"`
	FatherName        *string `json:"fatherName,omitempty"`
	ContactNumber     *string `json:"contactNumber,omitempty"`
	AlternateContact  *string `json:"alternateContact,omitempty"`
	Address           *string `json:"address,omitempty"`
	Village           *string `json:"village,omitempty"`
	Taluka            *string `json:"taluka,omitempty"`
	District          *string `json:"district,omitempty"`
	State             *string `json:"state,omitempty"`
	Pincode           *string `json:"pincode,omitempty"`
	BankAccountNumber *string `json:"bankAccountNumber,omitempty"`
	IFSCCode          *string `json:"ifscode,omitempty"`
	BankName          *string `json:"bankName,omitempty"`
	BranchName        *string `json:"branchName,omitempty"`
	AadharNumber      *string `json:"aadharNumber,omitempty"`
	IsActive          *bool   `json:"isActive,omitempty"`
}

// FarmerSearchParams controls client-side filtering and paging of the
// farmer list.
type FarmerSearchParams struct {
	Page     int
	PageSize int
	Search   string
	IsActive *bool
}

// FarmerPaymentSummary is the per-farmer payment rollup returned by the
// reports endpoint.
type FarmerPaymentSummary struct {
	FarmerID      int     `json:"farmerID"`
	TotalQuantity float64 `json:"totalQuantity"`
	TotalAmount   float64 `json:"totalAmount"`
	PaidAmount    float64 `json:"paidAmount"`
	BalanceAmount float64 `json:"balanceAmount"`
}
