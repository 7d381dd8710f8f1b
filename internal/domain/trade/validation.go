package trade

import (
	"fmt"

	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/bizgrid/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IssueCode identifies a per-line validation problem
type IssueCode string

const (
	IssueProductNotFound     IssueCode = "PRODUCT_NOT_FOUND"
	IssueInvalidQuantity     IssueCode = "INVALID_QUANTITY"
	IssueProductInactive     IssueCode = "PRODUCT_INACTIVE"
	IssueMasterNotApproved   IssueCode = "MASTER_PRODUCT_NOT_APPROVED"
	IssueMissingTaxCode      IssueCode = "MISSING_TAX_CODE"
	IssueInsufficientStock   IssueCode = "INSUFFICIENT_STOCK"
	IssueInvalidSerial       IssueCode = "INVALID_SERIAL"
	IssueSerialCountMismatch IssueCode = "SERIAL_COUNT_MISMATCH"
)

// LineIssue describes one problem on one line. Line is zero-based.
type LineIssue struct {
	Line         int              `json:"line"`
	OrgProductID uuid.UUID        `json:"org_product_id"`
	Code         IssueCode        `json:"code"`
	Message      string           `json:"message"`
	Available    *decimal.Decimal `json:"available,omitempty"`
	Serial       string           `json:"serial,omitempty"`
}

// ValidationResult collects every issue found. Business-rule failures are data here,
// never Go errors.
type ValidationResult struct {
	Errors   []LineIssue `json:"errors"`
	Warnings []LineIssue `json:"warnings"`
}

// Valid reports whether the lines can be finalized (or saved, in draft mode)
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Codes returns the distinct error codes, in first-seen order
func (r ValidationResult) Codes() []IssueCode {
	seen := make(map[IssueCode]bool)
	var codes []IssueCode
	for _, issue := range r.Errors {
		if !seen[issue.Code] {
			seen[issue.Code] = true
			codes = append(codes, issue.Code)
		}
	}
	return codes
}

// ValidationSnapshot is the state the validator reads, loaded under the caller's tenant
// predicate. Products missing from Products are treated as not found.
type ValidationSnapshot struct {
	Products map[uuid.UUID]*catalog.OrgProduct
	// Masters holds the linked master products visible to the caller
	Masters map[uuid.UUID]*catalog.MasterProduct
	// Rates holds the resolved tax rate per master product id
	Rates map[uuid.UUID]decimal.Decimal
	// OnHand holds on-hand quantity per org product id
	OnHand map[uuid.UUID]decimal.Decimal
	// AvailableSerials holds available serial units per org product id
	AvailableSerials map[uuid.UUID]map[string]*inventory.SerialUnit
}

// ProductIDs returns the distinct product ids referenced by items
func ProductIDs(items []ItemInput) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if !seen[item.OrgProductID] {
			seen[item.OrgProductID] = true
			ids = append(ids, item.OrgProductID)
		}
	}
	return ids
}

// EvaluateLines checks every line against the snapshot and collects all issues.
// With allowDraft set, governance and tax checks are skipped and stock or serial
// shortfalls are reported as warnings; finalize mode reports them as errors.
func EvaluateLines(items []ItemInput, snap ValidationSnapshot, allowDraft bool) ValidationResult {
	result := ValidationResult{Errors: []LineIssue{}, Warnings: []LineIssue{}}
	soft := func(issue LineIssue) {
		if allowDraft {
			result.Warnings = append(result.Warnings, issue)
		} else {
			result.Errors = append(result.Errors, issue)
		}
	}

	requested := make(map[uuid.UUID]decimal.Decimal)
	claimed := make(map[uuid.UUID]map[string]bool)

	for idx, item := range items {
		product := snap.Products[item.OrgProductID]
		if product == nil {
			result.Errors = append(result.Errors, LineIssue{
				Line:         idx,
				OrgProductID: item.OrgProductID,
				Code:         IssueProductNotFound,
				Message:      "Product not found",
			})
			continue
		}
		if !item.Quantity.IsPositive() {
			result.Errors = append(result.Errors, LineIssue{
				Line:         idx,
				OrgProductID: item.OrgProductID,
				Code:         IssueInvalidQuantity,
				Message:      "Quantity must be greater than zero",
			})
			continue
		}

		if !product.IsActive() {
			soft(LineIssue{Line: idx, OrgProductID: product.ID, Code: IssueProductInactive, Message: fmt.Sprintf("Product %s is inactive", product.SKU)})
		}

		if !allowDraft {
			checkGovernance(&result, idx, product, snap)
		}

		if product.IsSerialTracked() {
			for _, issue := range checkSerials(idx, product, item, snap, claimed) {
				soft(issue)
			}
			continue
		}

		onHand := snap.OnHand[product.ID]
		prior := requested[product.ID]
		total := prior.Add(item.Quantity)
		requested[product.ID] = total
		if total.GreaterThan(onHand) {
			available := decimal.Max(onHand.Sub(prior), decimal.Zero)
			soft(LineIssue{
				Line:         idx,
				OrgProductID: product.ID,
				Code:         IssueInsufficientStock,
				Message:      fmt.Sprintf("Only %s of %s available", available.String(), product.SKU),
				Available:    &available,
			})
		}
	}
	return result
}

func checkGovernance(result *ValidationResult, idx int, product *catalog.OrgProduct, snap ValidationSnapshot) {
	var master *catalog.MasterProduct
	if product.MasterProductID != nil {
		master = snap.Masters[*product.MasterProductID]
	}
	if master == nil || !master.ApprovalStatus.IsPublished() {
		result.Errors = append(result.Errors, LineIssue{
			Line:         idx,
			OrgProductID: product.ID,
			Code:         IssueMasterNotApproved,
			Message:      fmt.Sprintf("Catalog entry for %s is not approved", product.SKU),
		})
		return
	}
	if _, ok := snap.Rates[master.ID]; !ok {
		result.Errors = append(result.Errors, LineIssue{
			Line:         idx,
			OrgProductID: product.ID,
			Code:         IssueMissingTaxCode,
			Message:      fmt.Sprintf("No tax rate is configured for %s", product.SKU),
		})
	}
}

func checkSerials(idx int, product *catalog.OrgProduct, item ItemInput, snap ValidationSnapshot, claimed map[uuid.UUID]map[string]bool) []LineIssue {
	var issues []LineIssue
	serials := normalizeSerials(item.Serials)
	if !decimal.NewFromInt(int64(len(serials))).Equal(item.Quantity) {
		issues = append(issues, LineIssue{
			Line:         idx,
			OrgProductID: product.ID,
			Code:         IssueSerialCountMismatch,
			Message:      fmt.Sprintf("Quantity %s does not match %d serial numbers", item.Quantity.String(), len(serials)),
		})
	}

	available := snap.AvailableSerials[product.ID]
	if claimed[product.ID] == nil {
		claimed[product.ID] = make(map[string]bool)
	}
	for _, serial := range serials {
		if claimed[product.ID][serial] || available[serial] == nil {
			issues = append(issues, LineIssue{
				Line:         idx,
				OrgProductID: product.ID,
				Code:         IssueInvalidSerial,
				Message:      fmt.Sprintf("Serial %s is not available", serial),
				Serial:       serial,
			})
			continue
		}
		claimed[product.ID][serial] = true
	}
	return issues
}
