package partner

import (
	"time"

	"github.com/bizgrid/backend/internal/domain/partner"
	"github.com/google/uuid"
)

// UpsertCustomerRequest identifies a customer by mobile and/or tax registration number
type UpsertCustomerRequest struct {
	Mobile            string `json:"mobile" binding:"max=20"`
	TaxRegistrationNo string `json:"tax_registration_no" binding:"max=20"`
	LegalName         string `json:"legal_name" binding:"required,min=1,max=200"`
	StateCode         string `json:"state_code" binding:"omitempty,jurisdiction"`
	Alias             string `json:"alias" binding:"max=200"`
}

// CustomerListFilter represents the linked customer list query
type CustomerListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// LinkedCustomerResponse is a master customer as seen through the caller's link
type LinkedCustomerResponse struct {
	LinkID            uuid.UUID `json:"link_id"`
	MasterCustomerID  uuid.UUID `json:"master_customer_id"`
	LegalName         string    `json:"legal_name"`
	Alias             string    `json:"alias,omitempty"`
	Mobile            *string   `json:"mobile,omitempty"`
	TaxRegistrationNo *string   `json:"tax_registration_no,omitempty"`
	StateCode         *string   `json:"state_code,omitempty"`
	LinkedAt          time.Time `json:"linked_at"`
}

// ToLinkedCustomerResponse converts a link and its master customer
func ToLinkedCustomerResponse(link *partner.CustomerLink, master *partner.MasterCustomer) LinkedCustomerResponse {
	return LinkedCustomerResponse{
		LinkID:            link.ID,
		MasterCustomerID:  master.ID,
		LegalName:         master.LegalName,
		Alias:             link.Alias,
		Mobile:            master.Mobile,
		TaxRegistrationNo: master.TaxRegistrationNo,
		StateCode:         master.StateCode,
		LinkedAt:          link.CreatedAt,
	}
}

// UpsertCustomerResponse adds whether the master customer was newly created
type UpsertCustomerResponse struct {
	LinkedCustomerResponse
	Created bool `json:"created"`
}
