package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Intent names recognized across the three entity agents. Anything else is
// dispatched to the "unrecognized" default.
const (
	IntentAddCustomer    = "add_customer"
	IntentListCustomers  = "list_customers"
	IntentGetCustomer    = "get_customer"
	IntentUpdateCustomer = "update_customer"
	IntentDeleteCustomer = "delete_customer"

	IntentAddProduct    = "add_product"
	IntentListProducts  = "list_products"
	IntentGetProduct    = "get_product"
	IntentUpdateProduct = "update_product"
	IntentDeleteProduct = "delete_product"

	IntentMakeSale   = "make_sale"
	IntentListSales  = "list_sales"
	IntentGetSale    = "get_sale"
	IntentUpdateSale = "update_sale"
	IntentDeleteSale = "delete_sale"
)

// IntentRequest is the structured command the classifier returns:
// {"intent": "...", "parameters": {...}}. Parameters stay raw until the
// owning agent decodes them into the typed struct for the intent.
type IntentRequest struct {
	Intent     string          `json:"intent"`
	Parameters json.RawMessage `json:"parameters"`
}

// DecodeParams unmarshals the request parameters into v. A missing or null
// parameters object decodes into the zero value.
func (r *IntentRequest) DecodeParams(v any) error {
	if len(r.Parameters) == 0 || string(r.Parameters) == "null" {
		return nil
	}
	if err := json.Unmarshal(r.Parameters, v); err != nil {
		return fmt.Errorf("decode %s parameters: %w", r.Intent, err)
	}
	return nil
}

// DecodeIntent parses the classifier's reply into an IntentRequest.
// Classifier output is sometimes wrapped in a markdown code fence; the
// fence is stripped before decoding.
func DecodeIntent(reply string) (*IntentRequest, error) {
	cleaned := stripCodeFence(strings.TrimSpace(reply))

	var req IntentRequest
	if err := json.Unmarshal([]byte(cleaned), &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassifier, err)
	}
	if req.Intent == "" {
		return nil, fmt.Errorf("%w: missing intent", ErrClassifier)
	}
	return &req, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Optional language tag on the opening fence.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if first == "json" || first == "" {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Typed parameter payloads, one per mutating intent. Optional fields are
// pointers so absent and zero are distinguishable.

type AddCustomerParams struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type UpdateCustomerParams struct {
	ID    int64   `json:"id"`
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

type AddProductParams struct {
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	Description string   `json:"description,omitempty"`
}

type UpdateProductParams struct {
	ID          int64    `json:"id"`
	Name        *string  `json:"name,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Description *string  `json:"description,omitempty"`
}

type MakeSaleParams struct {
	CustomerID int64 `json:"customer_id"`
	ProductID  int64 `json:"product_id"`
	Quantity   int64 `json:"quantity"`
}

type UpdateSaleParams struct {
	ID         int64  `json:"id"`
	CustomerID *int64 `json:"customer_id,omitempty"`
	ProductID  *int64 `json:"product_id,omitempty"`
	Quantity   *int64 `json:"quantity,omitempty"`
}

// EntityIDParams covers the get/delete intents that only carry an id.
type EntityIDParams struct {
	ID int64 `json:"id"`
}
